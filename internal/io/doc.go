// Package ioutils provides file system and image processing utilities.
//
// This package contains functions for:
//   - Checking that a destination path is free
//   - Exclusive, atomic file writes that never overwrite
//   - Directory creation
//   - Optional collage downscaling
//
// # File Operations
//
//	// Refuse to continue when something is already there
//	if err := ioutils.CheckAvailable(path); err != nil {
//	    return err
//	}
//
//	// Write data without ever replacing an existing file
//	err := ioutils.WriteFileExclusive(ctx, path, data)
//
//	// Ensure directory exists
//	err := ioutils.EnsureDir("/path/to/new/directory")
//
// # Image Processing
//
// The ImageService scales collages down when a maximum size is configured:
//
//	svc := ioutils.NewImageService()
//	resized, _ := svc.Fit(ctx, imageData, 1000)
package ioutils
