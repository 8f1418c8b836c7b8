// Package download fetches a collage from the remote service and saves it.
//
// # Manager
//
// The Manager runs the whole single-shot pipeline:
//
//  1. Refuse if the output path is taken
//  2. Build the collage URL
//  3. Fetch the image (one request, no retries)
//  4. Optionally downscale it
//  5. Write it atomically without overwriting
//
// # Basic Usage
//
//	manager, err := download.NewManager(settings, func(event download.ProgressEvent) {
//	    fmt.Println(event.Message)
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	result, err := manager.Run(ctx, req, target)
//	switch download.Kind(err) {
//	case download.KindNone:
//	    fmt.Println("saved", result.Path)
//	case download.KindOutputCollision:
//	    // the file was already there; nothing was requested
//	}
package download
