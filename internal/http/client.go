package http

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// DefaultTimeout bounds a whole request, from dial to the last body byte.
const DefaultTimeout = 60 * time.Second

// DefaultUserAgent is sent with every request unless overridden.
const DefaultUserAgent = "tapmusic-collage"

// Client wraps HTTP operations for the collage service.
//
// Client provides:
//   - Configured User-Agent header
//   - Timeout handling
//   - Proxy selection (none, system, manual)
//   - Single-shot downloads with optional progress tracking
//
// Example usage:
//
//	client, err := NewClient(WithTimeout(30 * time.Second))
//
//	// Fetch the collage image
//	data, err := client.Get(ctx, collageURL)
//
//	// Fetch with progress
//	data, err = client.GetWithProgress(ctx, collageURL, func(written, total int64) {
//	    fmt.Printf("%d / %d bytes\n", written, total)
//	})
//
// Client never retries. Every call performs exactly one request.
type Client struct {
	httpClient *http.Client
	userAgent  string
}

// Option configures a Client.
type Option func(*clientOptions)

type clientOptions struct {
	timeout   time.Duration
	userAgent string
	proxyType string
	proxyAddr string
	proxyPort int
	transport http.RoundTripper
}

// WithTimeout sets the overall request timeout. Zero or negative keeps DefaultTimeout.
func WithTimeout(d time.Duration) Option {
	return func(o *clientOptions) {
		if d > 0 {
			o.timeout = d
		}
	}
}

// WithUserAgent sets the User-Agent header. Empty keeps DefaultUserAgent.
func WithUserAgent(ua string) Option {
	return func(o *clientOptions) {
		if ua != "" {
			o.userAgent = ua
		}
	}
}

// WithProxy selects how the proxy is chosen:
//   - "none": connect directly
//   - "system": honor HTTP_PROXY/HTTPS_PROXY/NO_PROXY
//   - "manual": always use http://address:port
func WithProxy(proxyType, address string, port int) Option {
	return func(o *clientOptions) {
		o.proxyType = proxyType
		o.proxyAddr = address
		o.proxyPort = port
	}
}

// WithTransport replaces the underlying RoundTripper. Proxy settings are
// ignored when a transport is supplied.
func WithTransport(rt http.RoundTripper) Option {
	return func(o *clientOptions) {
		o.transport = rt
	}
}

// NewClient creates a new HTTP client.
//
// Without options the client is configured with:
//   - 60 second timeout
//   - "tapmusic-collage" User-Agent header
//   - system proxy settings
func NewClient(opts ...Option) (*Client, error) {
	o := clientOptions{
		timeout:   DefaultTimeout,
		userAgent: DefaultUserAgent,
		proxyType: "system",
	}
	for _, opt := range opts {
		opt(&o)
	}

	rt := o.transport
	if rt == nil {
		tr := http.DefaultTransport.(*http.Transport).Clone()
		switch o.proxyType {
		case "", "system":
			tr.Proxy = http.ProxyFromEnvironment
		case "none":
			tr.Proxy = nil
		case "manual":
			if o.proxyAddr == "" || o.proxyPort <= 0 {
				return nil, fmt.Errorf("manual proxy needs an address and a port, got %q:%d", o.proxyAddr, o.proxyPort)
			}
			u, err := url.Parse("http://" + net.JoinHostPort(o.proxyAddr, strconv.Itoa(o.proxyPort)))
			if err != nil {
				return nil, fmt.Errorf("invalid proxy: %w", err)
			}
			tr.Proxy = http.ProxyURL(u)
		default:
			return nil, fmt.Errorf("unknown proxy type %q", o.proxyType)
		}
		rt = tr
	}

	return &Client{
		httpClient: &http.Client{
			Transport: rt,
			Timeout:   o.timeout,
		},
		userAgent: o.userAgent,
	}, nil
}

// ProgressWriter wraps a writer to track download progress.
//
// Use this to monitor downloads by providing an OnUpdate callback
// that receives the current bytes written and total expected bytes.
//
// Example:
//
//	pw := &ProgressWriter{
//	    Writer: &buf,
//	    Total:  contentLength,
//	    OnUpdate: func(written, total int64) {
//	        fmt.Printf("%d / %d bytes\n", written, total)
//	    },
//	}
//	io.Copy(pw, response.Body)
type ProgressWriter struct {
	// Writer is the underlying writer to write data to.
	Writer io.Writer

	// Total is the expected total bytes (from Content-Length header).
	// It is -1 when the server did not announce a length.
	Total int64

	// Written is the current number of bytes written.
	Written int64

	// OnUpdate is called after each Write with current progress.
	// Parameters are (bytesWritten, totalExpected).
	OnUpdate func(written, total int64)
}

// Write implements io.Writer, tracking progress and calling OnUpdate.
func (pw *ProgressWriter) Write(p []byte) (int, error) {
	n, err := pw.Writer.Write(p)
	pw.Written += int64(n)
	if pw.OnUpdate != nil {
		pw.OnUpdate(pw.Written, pw.Total)
	}
	return n, err
}

// Get performs a GET request and returns the whole response body.
//
// The request includes the configured User-Agent header. Any 2xx status
// counts as success. Every failure is a *FetchError.
//
// Example:
//
//	data, err := client.Get(ctx, "https://tapmusic.net/collage.php?user=alice&type=7day&size=4x4")
func (c *Client) Get(ctx context.Context, url string) ([]byte, error) {
	return c.GetWithProgress(ctx, url, nil)
}

// GetWithProgress is Get with an optional progress callback.
//
// The body is buffered in memory; onProgress is called as bytes arrive with
// (bytesRead, contentLength). Pass nil to disable progress tracking.
func (c *Client) GetWithProgress(ctx context.Context, url string, onProgress func(written, total int64)) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, &FetchError{Kind: KindRequest, URL: url, Err: err}
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &FetchError{Kind: classify(err), URL: url, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// Drain a little so the connection can be reused; the body is not reported.
		_, _ = io.CopyN(io.Discard, resp.Body, 4<<10)
		return nil, &FetchError{Kind: KindStatus, URL: url, StatusCode: resp.StatusCode, Status: resp.Status}
	}

	var buf bytes.Buffer
	if resp.ContentLength > 0 {
		buf.Grow(int(resp.ContentLength))
	}

	var w io.Writer = &buf
	if onProgress != nil {
		w = &ProgressWriter{
			Writer:   &buf,
			Total:    resp.ContentLength,
			OnUpdate: onProgress,
		}
	}

	if _, err := io.Copy(w, resp.Body); err != nil {
		kind := KindRead
		if classify(err) == KindTimeout {
			kind = KindTimeout
		}
		return nil, &FetchError{Kind: kind, URL: url, StatusCode: resp.StatusCode, Err: err}
	}

	return buf.Bytes(), nil
}

func classify(err error) FetchErrorKind {
	if errors.Is(err, context.DeadlineExceeded) {
		return KindTimeout
	}
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return KindTimeout
	}
	if errors.Is(err, context.Canceled) {
		return KindCanceled
	}
	return KindConnect
}
