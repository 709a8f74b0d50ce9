package capture

import (
	"encoding/base64"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/tidwall/gjson"
)

// HAROptions narrows a HAR import
type HAROptions struct {
	// Filter keeps only entries whose URL contains this substring
	Filter string
	// Limit caps the number of imported entries; 0 means no cap
	Limit int
}

// LoadHAR converts the entries of a HAR file into exchanges. Non-HTTP(S)
// entries are skipped, as are HTTP/2 pseudo-headers.
func LoadHAR(path string, opts HAROptions) ([]Exchange, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read HAR file: %w", err)
	}
	return ParseHAR(data, opts)
}

// ParseHAR is LoadHAR over an in-memory document
func ParseHAR(data []byte, opts HAROptions) ([]Exchange, error) {
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("failed to parse HAR file: invalid JSON")
	}

	entries := gjson.GetBytes(data, "log.entries")
	if !entries.IsArray() || len(entries.Array()) == 0 {
		return nil, fmt.Errorf("no entries found in HAR file")
	}

	var exchanges []Exchange
	var entryErr error
	entries.ForEach(func(_, entry gjson.Result) bool {
		rawURL := entry.Get("request.url").String()
		if !strings.HasPrefix(rawURL, "http://") && !strings.HasPrefix(rawURL, "https://") {
			return true
		}
		if opts.Filter != "" && !strings.Contains(rawURL, opts.Filter) {
			return true
		}

		ex, err := harEntry(entry)
		if err != nil {
			entryErr = fmt.Errorf("entry %s: %w", rawURL, err)
			return false
		}
		exchanges = append(exchanges, ex)
		return opts.Limit == 0 || len(exchanges) < opts.Limit
	})

	if entryErr != nil {
		return nil, entryErr
	}
	return exchanges, nil
}

func harEntry(entry gjson.Result) (Exchange, error) {
	req := entry.Get("request")
	resp := entry.Get("response")

	method := req.Get("method").String()
	rawURL := req.Get("url").String()

	respBody := resp.Get("content.text").String()
	if resp.Get("content.encoding").String() == "base64" {
		decoded, err := base64.StdEncoding.DecodeString(respBody)
		if err != nil {
			return Exchange{}, fmt.Errorf("failed to decode response body: %w", err)
		}
		respBody = string(decoded)
	}

	ex := Exchange{
		Source:   SourceHAR,
		Method:   method,
		URL:      rawURL,
		Status:   int(resp.Get("status").Int()),
		Duration: time.Duration(entry.Get("time").Float() * float64(time.Millisecond)),
		Request: RenderRequest(method, rawURL, req.Get("httpVersion").String(),
			harHeaders(req.Get("headers")), []byte(req.Get("postData.text").String())),
	}

	if ex.Status > 0 {
		ex.Response = RenderResponse(resp.Get("httpVersion").String(), ex.Status,
			resp.Get("statusText").String(), harHeaders(resp.Get("headers")), []byte(respBody))
	}

	ex.CapturedAt = time.Now()
	if started := entry.Get("startedDateTime").String(); started != "" {
		if t, err := time.Parse(time.RFC3339Nano, started); err == nil {
			ex.CapturedAt = t
		}
	}

	return ex, nil
}

func harHeaders(list gjson.Result) []Header {
	var headers []Header
	list.ForEach(func(_, h gjson.Result) bool {
		name := h.Get("name").String()
		if name == "" || strings.HasPrefix(name, ":") {
			return true
		}
		headers = append(headers, Header{Name: name, Value: h.Get("value").String()})
		return true
	})
	return headers
}
