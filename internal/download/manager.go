package download

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sync/atomic"

	"github.com/handiism/tapmusic-collage/internal/config"
	"github.com/handiism/tapmusic-collage/internal/http"
	ioutils "github.com/handiism/tapmusic-collage/internal/io"
	"github.com/handiism/tapmusic-collage/internal/model"
	"github.com/handiism/tapmusic-collage/internal/tapmusic"
)

// ProgressLevel indicates the severity/type of a progress message.
type ProgressLevel int

const (
	LevelInfo ProgressLevel = iota
	LevelVerbose
	LevelWarning
	LevelError
	LevelSuccess
)

// ProgressEvent represents a download progress update.
type ProgressEvent struct {
	Message string
	Level   ProgressLevel
}

// Result describes a saved collage.
type Result struct {
	URL   string
	Path  string
	Bytes int
}

// Manager fetches one collage and saves it.
type Manager struct {
	settings     *config.Settings
	httpClient   *http.Client
	imageService *ioutils.ImageService

	totalBytes    int64
	receivedBytes int64

	onProgress func(ProgressEvent)
}

// NewManager creates a new download Manager.
func NewManager(settings *config.Settings, onProgress func(ProgressEvent)) (*Manager, error) {
	client, err := http.NewClient(settings.HTTPOptions()...)
	if err != nil {
		return nil, err
	}

	return &Manager{
		settings:     settings,
		httpClient:   client,
		imageService: ioutils.NewImageService(),
		onProgress:   onProgress,
	}, nil
}

// Run performs the whole pipeline for one collage, in order:
//
//  1. refuse if anything exists at the target path (no request is made)
//  2. create the directory when CreateDirectory is set, otherwise
//     require it to exist (no request is made if it does not)
//  3. GET the collage, buffering the body
//  4. downscale it when MaxSize is set
//  5. write it without ever replacing an existing file
//
// Errors are *CollisionError, *http.FetchError, *ProcessError or
// *PersistError; use Kind to classify them. A failed run leaves no file.
func (m *Manager) Run(ctx context.Context, req *model.CollageRequest, target *model.OutputTarget) (*Result, error) {
	path := target.Path()

	if err := ioutils.CheckAvailable(path); err != nil {
		if errors.Is(err, fs.ErrExist) {
			return nil, &CollisionError{Path: path, Err: err}
		}
		return nil, &PersistError{Path: path, Err: err}
	}

	if m.settings.CreateDirectory {
		if err := ioutils.EnsureDir(target.Directory); err != nil {
			return nil, &PersistError{Path: path, Err: err}
		}
	} else if err := checkDirectory(target.Directory); err != nil {
		return nil, &PersistError{Path: path, Err: err}
	}

	u := tapmusic.BuildURL(m.settings.BaseURL, req)
	m.progress(ProgressEvent{Message: fmt.Sprintf("Requesting %s collage for %s", req.Size.Grid(), req.User), Level: LevelInfo})
	m.progress(ProgressEvent{Message: "GET " + u, Level: LevelVerbose})

	data, err := m.httpClient.GetWithProgress(ctx, u, func(written, total int64) {
		atomic.StoreInt64(&m.receivedBytes, written)
		atomic.StoreInt64(&m.totalBytes, total)
	})
	if err != nil {
		return nil, err
	}
	m.progress(ProgressEvent{Message: fmt.Sprintf("Received %d bytes", len(data)), Level: LevelVerbose})

	if m.settings.MaxSize > 0 {
		resized, err := m.imageService.Fit(ctx, data, m.settings.MaxSize)
		if err != nil {
			return nil, &ProcessError{Err: err}
		}
		if len(resized) != len(data) {
			m.progress(ProgressEvent{Message: fmt.Sprintf("Resized collage to fit %dpx", m.settings.MaxSize), Level: LevelVerbose})
		}
		data = resized
	}

	if err := ioutils.WriteFileExclusive(ctx, path, data); err != nil {
		if errors.Is(err, fs.ErrExist) {
			return nil, &CollisionError{Path: path, Err: err}
		}
		return nil, &PersistError{Path: path, Err: err}
	}

	m.progress(ProgressEvent{Message: "Saved " + path, Level: LevelSuccess})
	return &Result{URL: u, Path: path, Bytes: len(data)}, nil
}

func checkDirectory(dir string) error {
	fi, err := os.Stat(dir)
	if err != nil {
		return err
	}
	if !fi.IsDir() {
		return fmt.Errorf("%s: not a directory", dir)
	}
	return nil
}

// GetProgress returns the bytes received so far and the announced total.
// Total is -1 when the server did not send a Content-Length.
func (m *Manager) GetProgress() (received, total int64) {
	return atomic.LoadInt64(&m.receivedBytes), atomic.LoadInt64(&m.totalBytes)
}

func (m *Manager) progress(event ProgressEvent) {
	if m.onProgress != nil {
		m.onProgress(event)
	}
}
