package proxy

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/studiowebux/reqshot/internal/capture"
)

// Hop-by-hop headers that must not be forwarded
var hopHeaders = map[string]bool{
	"Connection":          true,
	"Keep-Alive":          true,
	"Proxy-Authenticate":  true,
	"Proxy-Authorization": true,
	"Proxy-Connection":    true,
	"Te":                  true,
	"Trailers":            true,
	"Transfer-Encoding":   true,
	"Upgrade":             true,
}

// Transaction is one request seen by the proxy and what came back
type Transaction struct {
	ID          int
	Timestamp   time.Time
	Method      string
	URL         string
	Proto       string
	ReqHeaders  http.Header
	ReqBody     []byte
	Status      int
	StatusText  string
	RespProto   string
	RespHeaders http.Header
	RespBody    []byte
	Duration    time.Duration
}

// Exchange renders the transaction as raw request and response text
func (t *Transaction) Exchange() capture.Exchange {
	ex := capture.Exchange{
		CapturedAt: t.Timestamp,
		Source:     capture.SourceProxy,
		Method:     t.Method,
		URL:        t.URL,
		Status:     t.Status,
		Duration:   t.Duration,
		Request:    capture.RenderRequest(t.Method, t.URL, t.Proto, capture.SortedHeaders(t.ReqHeaders), t.ReqBody),
	}
	if t.RespHeaders != nil {
		ex.Response = capture.RenderResponse(t.RespProto, t.Status, t.StatusText, capture.SortedHeaders(t.RespHeaders), t.RespBody)
	}
	return ex
}

// Options configures a Proxy
type Options struct {
	// Addr is the listen address, e.g. ":8888" or "127.0.0.1:0"
	Addr string
	// MaxTransactions bounds the in-memory ring; defaults to 1000
	MaxTransactions int
	// OnCapture runs for every completed plain-HTTP transaction
	OnCapture func(*Transaction)
	Logger    zerolog.Logger
}

// Proxy is an HTTP capture proxy. Plain HTTP is recorded in full; HTTPS is
// tunnelled through CONNECT and only the tunnel itself is recorded.
type Proxy struct {
	opts     Options
	log      zerolog.Logger
	client   *http.Client
	mu       sync.RWMutex
	txs      []*Transaction
	nextID   int
	server   *http.Server
	listener net.Listener
	notifyCh chan struct{} // signals that a transaction arrived
}

// New creates a proxy; call Start to begin listening
func New(opts Options) *Proxy {
	if opts.MaxTransactions <= 0 {
		opts.MaxTransactions = 1000
	}
	return &Proxy{
		opts:   opts,
		log:    opts.Logger.With().Str("component", "proxy").Logger(),
		nextID: 1,
		client: &http.Client{
			Timeout: 30 * time.Second,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
			// Redirects are captured as they are, not followed
			CheckRedirect: func(*http.Request, []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
		notifyCh: make(chan struct{}, 100),
	}
}

// Handler exposes the proxy as an http.Handler
func (p *Proxy) Handler() http.Handler {
	return http.HandlerFunc(p.handleProxy)
}

// Start binds the listen address and serves in the background
func (p *Proxy) Start() error {
	ln, err := net.Listen("tcp", p.opts.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", p.opts.Addr, err)
	}
	p.listener = ln
	p.server = &http.Server{Handler: p.Handler(), ReadHeaderTimeout: 10 * time.Second}

	go func() {
		if err := p.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			p.log.Error().Err(err).Msg("proxy server stopped")
		}
	}()

	p.log.Info().Str("addr", ln.Addr().String()).Msg("proxy listening")
	return nil
}

// Addr returns the bound address, or "" before Start
func (p *Proxy) Addr() string {
	if p.listener == nil {
		return ""
	}
	return p.listener.Addr().String()
}

// Stop shuts the server down, waiting for in-flight requests until ctx ends
func (p *Proxy) Stop(ctx context.Context) error {
	if p.server == nil {
		return nil
	}
	return p.server.Shutdown(ctx)
}

// handleProxy handles incoming proxy requests
func (p *Proxy) handleProxy(w http.ResponseWriter, r *http.Request) {
	startTime := time.Now()

	// Handle CONNECT method for HTTPS tunneling
	if r.Method == http.MethodConnect {
		p.handleConnect(w, r, startTime)
		return
	}

	// Proxy requests carry an absolute URL; fall back to the Host header
	targetURL := r.URL.String()
	if r.URL.Scheme == "" {
		if r.URL.Host == "" && r.Host != "" {
			targetURL = "http://" + r.Host + r.URL.RequestURI()
		} else {
			http.Error(w, "Invalid proxy request: missing scheme and host", http.StatusBadRequest)
			return
		}
	}

	tx := &Transaction{
		ID:         p.getNextID(),
		Timestamp:  startTime,
		Method:     r.Method,
		URL:        targetURL,
		Proto:      r.Proto,
		ReqHeaders: r.Header.Clone(),
	}

	var bodyBytes []byte
	if r.Body != nil {
		var err error
		bodyBytes, err = io.ReadAll(r.Body)
		if err == nil {
			tx.ReqBody = bodyBytes
		}
	}

	var bodyReader io.Reader
	if len(bodyBytes) > 0 {
		bodyReader = bytes.NewReader(bodyBytes)
	}
	proxyReq, err := http.NewRequestWithContext(r.Context(), r.Method, targetURL, bodyReader)
	if err != nil {
		p.fail(w, tx, http.StatusInternalServerError, fmt.Sprintf("Error creating proxy request: %v", err))
		return
	}

	copyHeaders(proxyReq.Header, r.Header)

	resp, err := p.client.Do(proxyReq)
	if err != nil {
		p.fail(w, tx, http.StatusBadGateway, fmt.Sprintf("Error forwarding request: %v", err))
		return
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		p.fail(w, tx, http.StatusInternalServerError, fmt.Sprintf("Error reading response: %v", err))
		return
	}

	tx.Status = resp.StatusCode
	tx.StatusText = resp.Status
	tx.RespProto = resp.Proto
	tx.RespHeaders = resp.Header.Clone()
	tx.RespBody = respBody
	tx.Duration = time.Since(startTime)

	p.record(tx, true)

	copyHeaders(w.Header(), resp.Header)
	w.WriteHeader(resp.StatusCode)
	w.Write(respBody)
}

// fail records a transaction that never got an upstream response
func (p *Proxy) fail(w http.ResponseWriter, tx *Transaction, status int, text string) {
	tx.Status = status
	tx.StatusText = text
	tx.Duration = time.Since(tx.Timestamp)
	p.log.Warn().Str("method", tx.Method).Str("url", tx.URL).Int("status", status).Msg(text)
	p.record(tx, true)
	http.Error(w, text, status)
}

func copyHeaders(dst, src http.Header) {
	for name, values := range src {
		if hopHeaders[name] {
			continue
		}
		for _, value := range values {
			dst.Add(name, value)
		}
	}
}

// getNextID returns the next transaction ID and increments the counter
func (p *Proxy) getNextID() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	id := p.nextID
	p.nextID++
	return id
}

// record stores tx, trims the ring and runs the capture hook
func (p *Proxy) record(tx *Transaction, notifyHook bool) {
	p.mu.Lock()
	p.txs = append(p.txs, tx)
	if len(p.txs) > p.opts.MaxTransactions {
		p.txs = p.txs[len(p.txs)-p.opts.MaxTransactions:]
	}
	p.mu.Unlock()

	p.log.Debug().
		Int("id", tx.ID).
		Str("method", tx.Method).
		Str("url", tx.URL).
		Int("status", tx.Status).
		Dur("duration", tx.Duration).
		Msg("transaction recorded")

	if notifyHook && p.opts.OnCapture != nil {
		p.opts.OnCapture(tx)
	}

	select {
	case p.notifyCh <- struct{}{}:
	default:
	}
}

// NotifyChannel returns the notification channel
func (p *Proxy) NotifyChannel() <-chan struct{} {
	return p.notifyCh
}

// Transactions returns a copy of the recorded transactions, oldest first
func (p *Proxy) Transactions() []*Transaction {
	p.mu.RLock()
	defer p.mu.RUnlock()

	txs := make([]*Transaction, len(p.txs))
	copy(txs, p.txs)
	return txs
}

// Count returns the number of recorded transactions
func (p *Proxy) Count() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.txs)
}

// Clear drops all recorded transactions and resets the ID counter
func (p *Proxy) Clear() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.txs = nil
	p.nextID = 1
}

// FormatSize formats byte size as human-readable string
func FormatSize(bytes int) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(bytes)/float64(div), "KMGTPE"[exp])
}

// FormatDuration formats duration as human-readable string
func FormatDuration(d time.Duration) string {
	if d < time.Microsecond {
		return fmt.Sprintf("%dns", d.Nanoseconds())
	}
	if d < time.Millisecond {
		return fmt.Sprintf("%dµs", d.Microseconds())
	}
	if d < time.Second {
		return fmt.Sprintf("%.2fms", float64(d.Microseconds())/1000.0)
	}
	return fmt.Sprintf("%.2fs", d.Seconds())
}

// handleConnect tunnels HTTPS. The encrypted stream is not inspected, so the
// tunnel is recorded without invoking the capture hook.
func (p *Proxy) handleConnect(w http.ResponseWriter, r *http.Request, startTime time.Time) {
	tx := &Transaction{
		ID:         p.getNextID(),
		Timestamp:  startTime,
		Method:     http.MethodConnect,
		URL:        "https://" + r.Host,
		Proto:      r.Proto,
		ReqHeaders: r.Header.Clone(),
	}

	targetConn, err := net.DialTimeout("tcp", r.Host, 10*time.Second)
	if err != nil {
		tx.Status = http.StatusBadGateway
		tx.StatusText = fmt.Sprintf("Failed to connect to %s: %v", r.Host, err)
		tx.Duration = time.Since(startTime)
		p.record(tx, false)
		http.Error(w, tx.StatusText, http.StatusBadGateway)
		return
	}
	defer targetConn.Close()

	hijacker, ok := w.(http.Hijacker)
	if !ok {
		tx.Status = http.StatusInternalServerError
		tx.StatusText = "Hijacking not supported"
		tx.Duration = time.Since(startTime)
		p.record(tx, false)
		http.Error(w, tx.StatusText, http.StatusInternalServerError)
		return
	}

	clientConn, _, err := hijacker.Hijack()
	if err != nil {
		tx.Status = http.StatusInternalServerError
		tx.StatusText = fmt.Sprintf("Failed to hijack connection: %v", err)
		tx.Duration = time.Since(startTime)
		p.record(tx, false)
		http.Error(w, tx.StatusText, http.StatusInternalServerError)
		return
	}
	defer clientConn.Close()

	if _, err := clientConn.Write([]byte("HTTP/1.1 200 Connection Established\r\n\r\n")); err != nil {
		tx.Status = http.StatusInternalServerError
		tx.StatusText = fmt.Sprintf("Failed to send response: %v", err)
		tx.Duration = time.Since(startTime)
		p.record(tx, false)
		return
	}

	tx.Status = http.StatusOK
	tx.StatusText = "200 Connection Established (HTTPS tunnel)"
	tx.Duration = time.Since(startTime)
	p.record(tx, false)

	errCh := make(chan error, 2)
	go func() {
		_, err := io.Copy(targetConn, clientConn)
		errCh <- err
	}()
	go func() {
		_, err := io.Copy(clientConn, targetConn)
		errCh <- err
	}()

	// Wait for either direction to finish
	<-errCh
}
