package app

import (
	"context"
	"image"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/spotbeam/spotbeam/internal/config"
	"github.com/spotbeam/spotbeam/internal/database"
	"github.com/spotbeam/spotbeam/internal/settings"
	"github.com/spotbeam/spotbeam/pkg/capture"
	"github.com/spotbeam/spotbeam/pkg/desktop"
)

type fakeScreener struct {
	img    image.Image
	err    error
	called int
}

func (f *fakeScreener) GrabScreen(screen capture.Screen) (image.Image, error) {
	f.called++
	if f.err != nil {
		return image.NewRGBA(image.Rectangle{}), f.err
	}
	return f.img, nil
}

func newTestApp(t *testing.T, screener *fakeScreener) (*App, *database.Repository) {
	t.Helper()

	dir := t.TempDir()

	db, err := database.Connect(filepath.Join(dir, "test.db"))
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	if err := db.Initialize(); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	repo := database.NewRepository(db)
	store := settings.NewStore(repo, zerolog.Nop())

	cfg := config.Default()
	cfg.IPC.SocketPath = filepath.Join(dir, "spotbeam.sock")

	a := New(cfg, store, repo, desktop.Detect(), screener, zerolog.Nop())
	a.primaryScreen = capture.Screen{Geometry: image.Rect(0, 0, 64, 48)}
	return a, repo
}

func TestExecuteSpot(t *testing.T) {
	a, _ := newTestApp(t, &fakeScreener{})

	if err := a.Execute("spot=on"); err != nil {
		t.Fatalf("Execute(spot=on) error: %v", err)
	}
	if value, _ := a.store.Get("spot.enabled"); value != "true" {
		t.Errorf("spot.enabled = %s, want true", value)
	}

	if err := a.Execute("spot=off"); err != nil {
		t.Fatalf("Execute(spot=off) error: %v", err)
	}
	if value, _ := a.store.Get("spot.enabled"); value != "false" {
		t.Errorf("spot.enabled = %s, want false", value)
	}

	if err := a.Execute("spot=sideways"); err == nil {
		t.Error("Execute(spot=sideways) should fail")
	}
}

func TestExecuteSettingsDialog(t *testing.T) {
	a, _ := newTestApp(t, &fakeScreener{})

	if err := a.Execute("settings=show"); err != nil {
		t.Fatalf("Execute(settings=show) error: %v", err)
	}
	if value, _ := a.store.Get("dialog.visible"); value != "true" {
		t.Errorf("dialog.visible = %s, want true", value)
	}

	if err := a.Execute("settings=hide"); err != nil {
		t.Fatalf("Execute(settings=hide) error: %v", err)
	}
	if value, _ := a.store.Get("dialog.visible"); value != "false" {
		t.Errorf("dialog.visible = %s, want false", value)
	}
}

func TestExecuteProperty(t *testing.T) {
	a, _ := newTestApp(t, &fakeScreener{})

	if err := a.Execute("zoom.factor=4"); err != nil {
		t.Fatalf("Execute(zoom.factor=4) error: %v", err)
	}
	if value, _ := a.store.Get("zoom.factor"); value != "4" {
		t.Errorf("zoom.factor = %s, want 4", value)
	}

	if err := a.Execute("zoom.factor=200"); err == nil {
		t.Error("out-of-range assignment should fail")
	}
	if err := a.Execute("no.such.key=1"); err == nil {
		t.Error("unknown property assignment should fail")
	}
}

func TestExecuteRejectsMalformed(t *testing.T) {
	for _, cmd := range []string{"", "   ", "spot", "frobnicate"} {
		a, _ := newTestApp(t, &fakeScreener{})
		if err := a.Execute(cmd); err == nil {
			t.Errorf("Execute(%q) should fail", cmd)
		}
	}
}

func TestExecuteZoomTriggersCapture(t *testing.T) {
	screener := &fakeScreener{img: image.NewRGBA(image.Rect(0, 0, 64, 48))}
	a, _ := newTestApp(t, screener)

	if err := a.Execute("zoom.enabled=true"); err != nil {
		t.Fatalf("Execute(zoom.enabled=true) error: %v", err)
	}
	if screener.called != 1 {
		t.Errorf("screener called %d times, want 1", screener.called)
	}

	frame := a.ZoomFrame()
	if frame == nil || frame.Bounds().Dx() != 64 {
		t.Errorf("ZoomFrame() = %v, want the captured 64x48 frame", frame)
	}

	// Disabling zoom does not grab again.
	if err := a.Execute("zoom.enabled=false"); err != nil {
		t.Fatalf("Execute(zoom.enabled=false) error: %v", err)
	}
	if screener.called != 1 {
		t.Errorf("screener called %d times after disable, want 1", screener.called)
	}
}

func TestExecuteZoomTruthySpellings(t *testing.T) {
	// Every bool spelling the validator accepts must behave like "true".
	for _, value := range []string{"1", "t", "TRUE"} {
		screener := &fakeScreener{img: image.NewRGBA(image.Rect(0, 0, 64, 48))}
		a, _ := newTestApp(t, screener)

		if err := a.Execute("zoom.enabled=" + value); err != nil {
			t.Fatalf("Execute(zoom.enabled=%s) error: %v", value, err)
		}
		if screener.called != 1 {
			t.Errorf("zoom.enabled=%s: screener called %d times, want 1", value, screener.called)
		}

		status := a.Status()
		if status["zoom_enabled"] != true {
			t.Errorf("zoom.enabled=%s: status zoom_enabled = %v, want true", value, status["zoom_enabled"])
		}
	}
}

func TestCaptureFailureRecorded(t *testing.T) {
	screener := &fakeScreener{err: errors.New("no compositor")}
	a, repo := newTestApp(t, screener)

	if err := a.Execute("zoom.enabled=true"); err != nil {
		t.Fatalf("capture failure should not fail the command: %v", err)
	}

	// The degraded frame is still usable.
	frame := a.ZoomFrame()
	if frame == nil || !frame.Bounds().Empty() {
		t.Errorf("ZoomFrame() = %v, want an empty frame", frame)
	}

	logs, err := repo.GetErrorLogsSince(time.Now().Add(-time.Minute))
	if err != nil {
		t.Fatalf("GetErrorLogsSince() error: %v", err)
	}
	if len(logs) != 1 || logs[0].Source != "capture" {
		t.Errorf("error logs = %+v, want one capture entry", logs)
	}
}

func TestRunQuitCommand(t *testing.T) {
	a, _ := newTestApp(t, &fakeScreener{})

	done := make(chan error, 1)
	go func() { done <- a.Run(context.Background()) }()

	// Wait for the IPC socket to appear, then quit through Execute the
	// way the command handler would.
	deadline := time.Now().Add(2 * time.Second)
	for {
		if _, err := os.Stat(a.cfg.IPC.SocketPath); err == nil {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("Run() did not open its IPC socket in time")
		}
		time.Sleep(5 * time.Millisecond)
	}

	if err := a.Execute("quit"); err != nil {
		t.Fatalf("Execute(quit) error: %v", err)
	}

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Run() error: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Run() did not stop after quit")
	}
}

func TestStatus(t *testing.T) {
	a, _ := newTestApp(t, &fakeScreener{img: image.NewRGBA(image.Rect(0, 0, 64, 48))})

	if err := a.Execute("spot=on"); err != nil {
		t.Fatalf("Execute() error: %v", err)
	}
	if err := a.Execute("zoom.enabled=true"); err != nil {
		t.Fatalf("Execute() error: %v", err)
	}

	status := a.Status()
	if status["running"] != true {
		t.Error("status running = false")
	}
	if status["spot_enabled"] != true {
		t.Error("status spot_enabled = false")
	}
	if status["zoom_enabled"] != true {
		t.Error("status zoom_enabled = false")
	}
	if status["frame_width"] != 64 || status["frame_height"] != 48 {
		t.Errorf("frame size = %vx%v, want 64x48", status["frame_width"], status["frame_height"])
	}
}

func TestProperties(t *testing.T) {
	a, _ := newTestApp(t, &fakeScreener{})

	if err := a.Execute("spot.shape=star"); err != nil {
		t.Fatalf("Execute() error: %v", err)
	}

	props, err := a.Properties()
	if err != nil {
		t.Fatalf("Properties() error: %v", err)
	}
	if props["spot.shape"] != "star" {
		t.Errorf("spot.shape = %s, want star", props["spot.shape"])
	}
	if props["spot.size"] != "32" {
		t.Errorf("spot.size = %s, want default 32", props["spot.size"])
	}
}
