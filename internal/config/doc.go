// Package config provides configuration management for tapmusic-collage.
//
// This package handles:
//   - Loading and saving settings from JSON files
//   - Default configuration values
//   - Conversion to PathConfig and http client options for other packages
//
// # Default Settings
//
// Use DefaultSettings() to get sensible defaults:
//
//	settings := config.DefaultSettings()
//	// Requests go to https://tapmusic.net/collage.php
//	// 60 second timeout
//	// Captions and play counts enabled
//
// # Loading from File
//
//	settings, err := config.Load("/path/to/tapmusic.json")
//	if err != nil {
//	    // Uses defaults if file doesn't exist
//	}
//
// # Saving Settings
//
//	settings.FileNameFormat = "{user}-{period}-{timestamp}.jpg"
//	err := settings.Save("/path/to/tapmusic.json")
//
// # Configuration Options
//
// Settings includes options for:
//   - The collage endpoint, timeout and User-Agent
//   - Output directory, file naming and downscaling
//   - Caption and play count defaults
//   - Proxy configuration
package config
