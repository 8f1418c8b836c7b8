// Package http provides an HTTP client configured for collage requests.
//
// The Client in this package handles:
//   - User-Agent headers
//   - Timeout handling
//   - Proxy selection
//   - Buffered downloads with progress tracking
//
// # Basic Usage
//
//	client, err := http.NewClient(http.WithTimeout(30 * time.Second))
//
//	// Fetch the collage
//	data, err := client.Get(ctx, collageURL)
//
// # Errors
//
// Every failure is a *FetchError whose Kind tells a connection problem,
// a timeout, a non-2xx status and a broken body apart:
//
//	var fe *http.FetchError
//	if errors.As(err, &fe) && fe.Kind == http.KindStatus {
//	    fmt.Println("server said", fe.StatusCode)
//	}
//
// # Progress Tracking
//
// The ProgressWriter type can be used to wrap any io.Writer for progress tracking:
//
//	pw := &http.ProgressWriter{
//	    Writer:   &buf,
//	    Total:    contentLength,
//	    OnUpdate: func(written, total int64) { /* update UI */ },
//	}
package http
