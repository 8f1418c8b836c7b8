package model

import (
	"path/filepath"
	"regexp"
	"strings"
	"time"
)

// DefaultFileNameFormat is the template used when no file name is given.
const DefaultFileNameFormat = "{user}_{period}_{size}_{timestamp}.jpg"

// TimestampLayout formats the {timestamp} placeholder (YYYY-MM-DD_HHMMSS).
const TimestampLayout = "2006-01-02_150405"

// OutputTarget is where a collage will be saved.
//
// Use ResolveTarget to build one from a request, so that generated names
// follow the configured format and explicit names cannot leave Directory.
type OutputTarget struct {
	// Directory is the destination directory as given by the user.
	Directory string

	// FileName is the base name of the collage file.
	FileName string
}

// Path returns the full destination path.
func (t *OutputTarget) Path() string {
	return filepath.Join(t.Directory, t.FileName)
}

// PathConfig holds file naming settings for generated collage names.
//
// FileNameFormat supports these placeholders:
//   - {user} - last.fm username (sanitized)
//   - {period} - period token, e.g. "7day"
//   - {size} - grid, e.g. "4x4"
//   - {timestamp} - local wall-clock time formatted with TimestampLayout
//
// Example:
//
//	cfg := &PathConfig{FileNameFormat: "{user}-{period}.jpg"}
type PathConfig struct {
	FileNameFormat string
}

// ResolveTarget computes the output target for req inside directory.
//
// If fileName is empty, a name is generated from cfg.FileNameFormat using now
// as the timestamp. Two generated names are only guaranteed to differ when
// now differs by at least one second.
//
// A non-empty fileName is used verbatim (no extension is added), but it must
// be a plain base name: path separators, "." and ".." are rejected.
//
// Example:
//
//	target, _ := ResolveTarget("/tmp", req, "", time.Now(), nil)
//	// target.Path() = "/tmp/alice_7day_4x4_2024-03-01_142501.jpg"
func ResolveTarget(directory string, req *CollageRequest, fileName string, now time.Time, cfg *PathConfig) (*OutputTarget, error) {
	if strings.TrimSpace(directory) == "" {
		return nil, &InvalidArgumentError{Name: "directory", Value: directory, Reason: "must not be empty"}
	}

	if fileName == "" {
		format := DefaultFileNameFormat
		if cfg != nil && cfg.FileNameFormat != "" {
			format = cfg.FileNameFormat
		}
		fileName = generateFileName(format, req, now)
	} else if err := validateFileName(fileName); err != nil {
		return nil, err
	}

	return &OutputTarget{Directory: directory, FileName: fileName}, nil
}

func generateFileName(format string, req *CollageRequest, now time.Time) string {
	name := format
	name = strings.ReplaceAll(name, "{user}", sanitizeFileName(req.User))
	name = strings.ReplaceAll(name, "{period}", req.Period.Token())
	name = strings.ReplaceAll(name, "{size}", req.Size.Grid())
	name = strings.ReplaceAll(name, "{timestamp}", now.Local().Format(TimestampLayout))
	return sanitizeFileName(name)
}

func validateFileName(name string) error {
	switch {
	case strings.TrimSpace(name) == "":
		return &InvalidArgumentError{Name: "filename", Value: name, Reason: "must not be blank"}
	case name == "." || name == "..":
		return &InvalidArgumentError{Name: "filename", Value: name, Reason: "must name a file"}
	case strings.ContainsAny(name, `/\`) || filepath.Base(name) != name:
		return &InvalidArgumentError{Name: "filename", Value: name, Reason: "must not contain path separators"}
	}
	return nil
}

var (
	invalidFileChars = regexp.MustCompile(`[<>:"/\\|?*\x00-\x1f]`)
	trailingDots     = regexp.MustCompile(`\.+$`)
	repeatedSpace    = regexp.MustCompile(`\s+`)
)

// sanitizeFileName removes or replaces characters that are invalid in file names.
//
//	sanitizeFileName("a/b:c") // Returns "a_b_c"
func sanitizeFileName(name string) string {
	name = invalidFileChars.ReplaceAllString(name, "_")
	name = trailingDots.ReplaceAllString(name, "")
	name = repeatedSpace.ReplaceAllString(name, " ")
	return strings.TrimRight(name, " ")
}
