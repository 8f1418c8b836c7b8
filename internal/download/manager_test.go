package download

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"io/fs"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/handiism/tapmusic-collage/internal/config"
	httpx "github.com/handiism/tapmusic-collage/internal/http"
	"github.com/handiism/tapmusic-collage/internal/model"
)

type fakeService struct {
	*httptest.Server
	hits     int32
	lastPath atomic.Value
}

func newFakeService(t *testing.T, handler http.HandlerFunc) *fakeService {
	t.Helper()
	svc := &fakeService{}
	svc.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&svc.hits, 1)
		svc.lastPath.Store(r.URL.RequestURI())
		handler(w, r)
	}))
	t.Cleanup(svc.Close)
	return svc
}

func (s *fakeService) Hits() int { return int(atomic.LoadInt32(&s.hits)) }

func newTestManager(t *testing.T, baseURL string, mutate func(*config.Settings)) (*Manager, *[]ProgressEvent) {
	t.Helper()
	settings := config.DefaultSettings()
	settings.BaseURL = baseURL + "/collage.php"
	settings.ProxyType = "none"
	settings.TimeoutSeconds = 5
	if mutate != nil {
		mutate(settings)
	}

	var events []ProgressEvent
	m, err := NewManager(settings, func(e ProgressEvent) { events = append(events, e) })
	if err != nil {
		t.Fatalf("NewManager() error = %v", err)
	}
	return m, &events
}

func mustRequest(t *testing.T, user, size, period string, caption, playcount bool) *model.CollageRequest {
	t.Helper()
	req, err := model.NewCollageRequest(user, size, period, caption, playcount)
	if err != nil {
		t.Fatalf("NewCollageRequest() error = %v", err)
	}
	return req
}

func TestManager_Run_Success(t *testing.T) {
	svc := newFakeService(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/jpeg")
		w.Write([]byte("collage-bytes"))
	})
	m, events := newTestManager(t, svc.URL, nil)

	dir := t.TempDir()
	req := mustRequest(t, "alice", "4", "7d", true, false)
	now := time.Date(2024, 3, 1, 14, 25, 1, 0, time.Local)
	target, err := model.ResolveTarget(dir, req, "", now, nil)
	if err != nil {
		t.Fatalf("ResolveTarget() error = %v", err)
	}

	res, err := m.Run(context.Background(), req, target)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	wantURI := "/collage.php?user=alice&type=7day&size=4x4&caption=true"
	if got := svc.lastPath.Load(); got != wantURI {
		t.Errorf("request URI = %v, want %q", got, wantURI)
	}

	wantPath := filepath.Join(dir, "alice_7day_4x4_2024-03-01_142501.jpg")
	if res.Path != wantPath {
		t.Errorf("Result.Path = %q, want %q", res.Path, wantPath)
	}
	data, err := os.ReadFile(wantPath)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	if string(data) != "collage-bytes" || res.Bytes != len(data) {
		t.Errorf("saved %q (%d bytes reported)", data, res.Bytes)
	}

	received, total := m.GetProgress()
	if received != int64(len(data)) || total != int64(len(data)) {
		t.Errorf("GetProgress() = %d/%d, want %d/%d", received, total, len(data), len(data))
	}

	if len(*events) == 0 || (*events)[len(*events)-1].Level != LevelSuccess {
		t.Errorf("last event should be a success, got %+v", *events)
	}
}

func TestManager_Run_ExplicitName(t *testing.T) {
	svc := newFakeService(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("x"))
	})
	m, _ := newTestManager(t, svc.URL, nil)

	dir := t.TempDir()
	req := mustRequest(t, "alice", "4", "7d", true, false)
	target, _ := model.ResolveTarget(dir, req, "myart.jpg", time.Now(), nil)

	res, err := m.Run(context.Background(), req, target)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if res.Path != filepath.Join(dir, "myart.jpg") {
		t.Errorf("Result.Path = %q", res.Path)
	}
}

func TestManager_Run_CollisionSkipsRequest(t *testing.T) {
	svc := newFakeService(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("new"))
	})
	m, _ := newTestManager(t, svc.URL, nil)

	dir := t.TempDir()
	existing := filepath.Join(dir, "myart.jpg")
	if err := os.WriteFile(existing, []byte("old"), 0o644); err != nil {
		t.Fatal(err)
	}

	req := mustRequest(t, "alice", "4", "7d", true, true)
	target, _ := model.ResolveTarget(dir, req, "myart.jpg", time.Now(), nil)

	_, err := m.Run(context.Background(), req, target)
	if !errors.Is(err, ErrOutputCollision) {
		t.Fatalf("Run() error = %v, want ErrOutputCollision", err)
	}
	if Kind(err) != KindOutputCollision {
		t.Errorf("Kind() = %q", Kind(err))
	}
	if svc.Hits() != 0 {
		t.Errorf("service was hit %d times, want 0", svc.Hits())
	}
	if data, _ := os.ReadFile(existing); string(data) != "old" {
		t.Errorf("existing file changed to %q", data)
	}
}

func TestManager_Run_CollisionWithDirectory(t *testing.T) {
	svc := newFakeService(t, func(w http.ResponseWriter, r *http.Request) {})
	m, _ := newTestManager(t, svc.URL, nil)

	dir := t.TempDir()
	if err := os.Mkdir(filepath.Join(dir, "art"), 0o755); err != nil {
		t.Fatal(err)
	}
	req := mustRequest(t, "alice", "4", "7d", true, true)
	target, _ := model.ResolveTarget(dir, req, "art", time.Now(), nil)

	if _, err := m.Run(context.Background(), req, target); Kind(err) != KindOutputCollision {
		t.Fatalf("Run() error = %v, want output collision", err)
	}
	if svc.Hits() != 0 {
		t.Errorf("service was hit %d times, want 0", svc.Hits())
	}
}

func TestManager_Run_ServerErrorWritesNothing(t *testing.T) {
	svc := newFakeService(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	})
	m, _ := newTestManager(t, svc.URL, nil)

	dir := t.TempDir()
	req := mustRequest(t, "alice", "4", "7d", true, false)
	target, _ := model.ResolveTarget(dir, req, "", time.Now(), nil)

	_, err := m.Run(context.Background(), req, target)
	if Kind(err) != KindFetchFailed {
		t.Fatalf("Kind(%v) = %q, want fetch_failed", err, Kind(err))
	}
	if httpx.StatusCode(err) != http.StatusInternalServerError {
		t.Errorf("StatusCode() = %d, want 500", httpx.StatusCode(err))
	}

	entries, _ := os.ReadDir(dir)
	if len(entries) != 0 {
		t.Errorf("directory not empty after failure: %v", entries)
	}
}

func TestManager_Run_MissingDirectory(t *testing.T) {
	svc := newFakeService(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("x"))
	})
	m, _ := newTestManager(t, svc.URL, nil)

	dir := filepath.Join(t.TempDir(), "missing")
	req := mustRequest(t, "alice", "4", "7d", true, false)
	target, _ := model.ResolveTarget(dir, req, "a.jpg", time.Now(), nil)

	_, err := m.Run(context.Background(), req, target)
	if Kind(err) != KindPersistFailed {
		t.Fatalf("Kind(%v) = %q, want persist_failed", err, Kind(err))
	}
	if !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("errors.Is(err, fs.ErrNotExist) = false for %v", err)
	}
	if svc.Hits() != 0 {
		t.Errorf("server hit %d times, want 0", svc.Hits())
	}
}

func TestManager_Run_DirectoryIsFile(t *testing.T) {
	svc := newFakeService(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("x"))
	})
	m, _ := newTestManager(t, svc.URL, nil)

	dir := filepath.Join(t.TempDir(), "file")
	if err := os.WriteFile(dir, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	req := mustRequest(t, "alice", "4", "7d", true, false)
	target, _ := model.ResolveTarget(dir, req, "a.jpg", time.Now(), nil)

	_, err := m.Run(context.Background(), req, target)
	if Kind(err) != KindPersistFailed {
		t.Fatalf("Kind(%v) = %q, want persist_failed", err, Kind(err))
	}
	if svc.Hits() != 0 {
		t.Errorf("server hit %d times, want 0", svc.Hits())
	}
}

func TestManager_Run_CreateDirectory(t *testing.T) {
	svc := newFakeService(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("x"))
	})
	m, _ := newTestManager(t, svc.URL, func(s *config.Settings) { s.CreateDirectory = true })

	dir := filepath.Join(t.TempDir(), "new", "dir")
	req := mustRequest(t, "alice", "4", "7d", true, false)
	target, _ := model.ResolveTarget(dir, req, "a.jpg", time.Now(), nil)

	if _, err := m.Run(context.Background(), req, target); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "a.jpg")); err != nil {
		t.Errorf("file not written: %v", err)
	}
}

func TestManager_Run_MaxSize(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 200, 200))
	for i := range img.Pix {
		img.Pix[i] = 0xff
	}
	img.Set(0, 0, color.Black)
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, nil); err != nil {
		t.Fatal(err)
	}

	svc := newFakeService(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write(buf.Bytes())
	})
	m, _ := newTestManager(t, svc.URL, func(s *config.Settings) { s.MaxSize = 50 })

	dir := t.TempDir()
	req := mustRequest(t, "alice", "10", "all", true, true)
	target, _ := model.ResolveTarget(dir, req, "small.jpg", time.Now(), nil)

	if _, err := m.Run(context.Background(), req, target); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	f, err := os.Open(filepath.Join(dir, "small.jpg"))
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	cfg, _, err := image.DecodeConfig(f)
	if err != nil {
		t.Fatalf("DecodeConfig() error = %v", err)
	}
	if cfg.Width != 50 || cfg.Height != 50 {
		t.Errorf("saved size = %dx%d, want 50x50", cfg.Width, cfg.Height)
	}
}

func TestManager_Run_MaxSizeRejectsNonImage(t *testing.T) {
	svc := newFakeService(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html>not an image</html>"))
	})
	m, _ := newTestManager(t, svc.URL, func(s *config.Settings) { s.MaxSize = 50 })

	dir := t.TempDir()
	req := mustRequest(t, "alice", "4", "7d", true, true)
	target, _ := model.ResolveTarget(dir, req, "a.jpg", time.Now(), nil)

	if _, err := m.Run(context.Background(), req, target); Kind(err) != KindProcessFailed {
		t.Fatalf("Kind(%v) = %q, want process_failed", err, Kind(err))
	}
	if entries, _ := os.ReadDir(dir); len(entries) != 0 {
		t.Errorf("directory not empty after failure: %v", entries)
	}
}

func TestKind(t *testing.T) {
	tests := []struct {
		err  error
		want ErrorKind
	}{
		{nil, KindNone},
		{&model.InvalidArgumentError{Name: "size", Value: "7"}, KindInvalidArgument},
		{fmt.Errorf("wrapped: %w", &CollisionError{Path: "/a", Err: fs.ErrExist}), KindOutputCollision},
		{&httpx.FetchError{Kind: httpx.KindConnect, URL: "http://x"}, KindFetchFailed},
		{&PersistError{Path: "/a", Err: fs.ErrPermission}, KindPersistFailed},
		{&ProcessError{Err: errors.New("bad jpeg")}, KindProcessFailed},
		{errors.New("other"), KindUnknown},
	}

	for _, tt := range tests {
		if got := Kind(tt.err); got != tt.want {
			t.Errorf("Kind(%v) = %q, want %q", tt.err, got, tt.want)
		}
	}
}
