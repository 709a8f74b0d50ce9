package capture

import (
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func assertEqual[T comparable](t *testing.T, name string, got, want T) {
	t.Helper()
	if got != want {
		t.Errorf("%s = %#v, want %#v", name, got, want)
	}
}

func TestRenderRequest(t *testing.T) {
	h := http.Header{}
	h.Set("Cookie", "a=b")
	h.Set("Accept", "*/*")

	got := RenderRequest("POST", "https://api.example.com/v1/items?x=1", "", SortedHeaders(h), []byte(`{"a":1}`))
	want := "POST /v1/items?x=1 HTTP/1.1\r\n" +
		"Host: api.example.com\r\n" +
		"Accept: */*\r\n" +
		"Cookie: a=b\r\n" +
		"\r\n" +
		`{"a":1}`
	assertEqual(t, "RenderRequest", got, want)
}

func TestRenderRequest_KeepsExistingHost(t *testing.T) {
	got := RenderRequest("GET", "http://a.test/", "HTTP/1.0", []Header{{Name: "host", Value: "b.test"}}, nil)
	assertEqual(t, "RenderRequest", got, "GET / HTTP/1.0\r\nhost: b.test\r\n\r\n")
}

func TestRenderResponse(t *testing.T) {
	tests := []struct {
		name   string
		code   int
		status string
		want   string
	}{
		{"full status line", 200, "200 OK", "HTTP/1.1 200 OK\r\n\r\n"},
		{"reason only", 404, "Not Found", "HTTP/1.1 404 Not Found\r\n\r\n"},
		{"derived reason", 502, "", "HTTP/1.1 502 Bad Gateway\r\n\r\n"},
		{"unknown code", 799, "", "HTTP/1.1 799\r\n\r\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assertEqual(t, "RenderResponse", RenderResponse("", tt.code, tt.status, nil, nil), tt.want)
		})
	}
}

func TestNormalizeCRLF(t *testing.T) {
	assertEqual(t, "mixed", NormalizeCRLF("a\nb\r\nc\n"), "a\r\nb\r\nc\r\n")
	assertEqual(t, "idempotent", NormalizeCRLF(NormalizeCRLF("a\nb")), "a\r\nb")
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "req.http")
	if err := os.WriteFile(path, []byte("GET / HTTP/1.1\nHost: a\n\nbody"), 0644); err != nil {
		t.Fatal(err)
	}

	raw, err := LoadFile(path, false)
	if err != nil {
		t.Fatalf("LoadFile() error = %v", err)
	}
	assertEqual(t, "raw", raw, "GET / HTTP/1.1\nHost: a\n\nbody")

	raw, err = LoadFile(path, true)
	if err != nil {
		t.Fatalf("LoadFile() error = %v", err)
	}
	assertEqual(t, "crlf", raw, "GET / HTTP/1.1\r\nHost: a\r\n\r\nbody")

	if _, err := LoadFile(filepath.Join(t.TempDir(), "missing"), false); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestFromFiles(t *testing.T) {
	dir := t.TempDir()
	reqPath := filepath.Join(dir, "req.txt")
	respPath := filepath.Join(dir, "resp.txt")
	os.WriteFile(reqPath, []byte("GET /login?next=%2F HTTP/1.1\nHost: shop.test\nCookie: s=1\n\n"), 0644)
	os.WriteFile(respPath, []byte("HTTP/1.1 302 Found\nLocation: /\n\n"), 0644)

	ex, err := FromFiles(reqPath, respPath, true)
	if err != nil {
		t.Fatalf("FromFiles() error = %v", err)
	}
	assertEqual(t, "method", ex.Method, "GET")
	assertEqual(t, "url", ex.URL, "http://shop.test/login?next=%2F")
	assertEqual(t, "status", ex.Status, 302)
	assertEqual(t, "source", ex.Source, SourceFile)
	if !strings.Contains(ex.Request, "\r\n\r\n") {
		t.Errorf("request not normalised: %q", ex.Request)
	}
}

func TestParseStatus(t *testing.T) {
	assertEqual(t, "ok", ParseStatus("HTTP/1.1 200 OK\r\n"), 200)
	assertEqual(t, "request line", ParseStatus("GET / HTTP/1.1"), 0)
	assertEqual(t, "empty", ParseStatus(""), 0)
}

const harFixture = `{
  "log": {
    "version": "1.2",
    "entries": [
      {
        "startedDateTime": "2024-05-01T10:00:00.000Z",
        "time": 12.5,
        "request": {
          "method": "POST",
          "url": "https://api.example.com/login",
          "httpVersion": "HTTP/2",
          "headers": [
            {"name": ":authority", "value": "api.example.com"},
            {"name": "Content-Type", "value": "application/json"},
            {"name": "Cookie", "value": "sid=abc"}
          ],
          "postData": {"mimeType": "application/json", "text": "{\"user\":\"a\"}"}
        },
        "response": {
          "status": 200,
          "statusText": "OK",
          "httpVersion": "HTTP/2",
          "headers": [{"name": "Content-Type", "value": "text/html"}],
          "content": {"size": 13, "mimeType": "text/html", "text": "PGh0bWw+PC9odG1sPg==", "encoding": "base64"}
        }
      },
      {
        "startedDateTime": "2024-05-01T10:00:01.000Z",
        "time": 1,
        "request": {"method": "GET", "url": "data:image/png;base64,xx", "headers": []},
        "response": {"status": 200, "headers": [], "content": {"text": ""}}
      },
      {
        "startedDateTime": "2024-05-01T10:00:02.000Z",
        "time": 3,
        "request": {"method": "GET", "url": "http://cdn.example.com/app.js", "headers": []},
        "response": {"status": 304, "statusText": "", "headers": [], "content": {}}
      }
    ]
  }
}`

func TestParseHAR(t *testing.T) {
	exchanges, err := ParseHAR([]byte(harFixture), HAROptions{})
	if err != nil {
		t.Fatalf("ParseHAR() error = %v", err)
	}
	if len(exchanges) != 2 {
		t.Fatalf("got %d exchanges, want 2 (data: URL skipped)", len(exchanges))
	}

	first := exchanges[0]
	assertEqual(t, "method", first.Method, "POST")
	assertEqual(t, "status", first.Status, 200)
	assertEqual(t, "source", first.Source, SourceHAR)
	assertEqual(t, "duration", first.Duration, 12500*time.Microsecond)
	assertEqual(t, "capturedAt", first.CapturedAt.Equal(time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)), true)
	assertEqual(t, "request", first.Request,
		"POST /login HTTP/2\r\nHost: api.example.com\r\nContent-Type: application/json\r\nCookie: sid=abc\r\n\r\n{\"user\":\"a\"}")
	assertEqual(t, "response", first.Response,
		"HTTP/2 200 OK\r\nContent-Type: text/html\r\n\r\n<html></html>")

	assertEqual(t, "second status line", StartLine(exchanges[1].Response), "HTTP/1.1 304 Not Modified")
}

func TestParseHAR_FilterAndLimit(t *testing.T) {
	exchanges, err := ParseHAR([]byte(harFixture), HAROptions{Filter: "cdn."})
	if err != nil {
		t.Fatalf("ParseHAR() error = %v", err)
	}
	if len(exchanges) != 1 || exchanges[0].URL != "http://cdn.example.com/app.js" {
		t.Errorf("filter kept %+v", exchanges)
	}

	exchanges, err = ParseHAR([]byte(harFixture), HAROptions{Limit: 1})
	if err != nil {
		t.Fatalf("ParseHAR() error = %v", err)
	}
	assertEqual(t, "limited", len(exchanges), 1)
}

func TestParseHAR_Errors(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"invalid json", `{"log":`},
		{"no entries", `{"log":{"entries":[]}}`},
		{"bad base64", `{"log":{"entries":[{"request":{"method":"GET","url":"http://a/"},"response":{"status":200,"content":{"text":"!!","encoding":"base64"}}}]}}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParseHAR([]byte(tt.data), HAROptions{}); err == nil {
				t.Error("ParseHAR() expected error")
			}
		})
	}
}

func TestExchangeTitle(t *testing.T) {
	assertEqual(t, "with status", Exchange{Method: "GET", URL: "http://a/", Status: 200}.Title(), "GET http://a/ -> 200")
	assertEqual(t, "pending", Exchange{Method: "GET", URL: "http://a/"}.Title(), "GET http://a/")
}
