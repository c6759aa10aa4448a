// Package app ties the running instance together: it owns the settings
// store, the desktop capture pipeline and the IPC command surface.
package app

import (
	"context"
	"image"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/spotbeam/spotbeam/internal/config"
	"github.com/spotbeam/spotbeam/internal/database"
	"github.com/spotbeam/spotbeam/internal/ipc"
	"github.com/spotbeam/spotbeam/internal/models"
	"github.com/spotbeam/spotbeam/internal/settings"
	"github.com/spotbeam/spotbeam/pkg/capture"
	"github.com/spotbeam/spotbeam/pkg/desktop"
	"github.com/spotbeam/spotbeam/version"
)

// Screener captures a screen for the zoom overlay.
type Screener interface {
	GrabScreen(screen capture.Screen) (image.Image, error)
}

type App struct {
	cfg      *config.Config
	log      zerolog.Logger
	store    *settings.Store
	repo     *database.Repository
	desktop  *desktop.Desktop
	capturer Screener

	// primaryScreen is resolved once at startup; overridable in tests.
	primaryScreen capture.Screen

	mu        sync.Mutex
	lastFrame image.Image
	cancel    context.CancelFunc
}

func New(cfg *config.Config, store *settings.Store, repo *database.Repository,
	d *desktop.Desktop, capturer Screener, log zerolog.Logger) *App {
	return &App{
		cfg:           cfg,
		log:           log,
		store:         store,
		repo:          repo,
		desktop:       d,
		capturer:      capturer,
		primaryScreen: capture.PrimaryScreen(),
	}
}

// Run serves the IPC command channel until the context is cancelled or a
// quit command arrives.
func (a *App) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	a.cancel = cancel

	server := ipc.NewServer(a.cfg.IPC.SocketPath, a, ipc.Timeouts{
		Read:  a.cfg.IPC.ReadTimeout,
		Write: a.cfg.IPC.WriteTimeout,
		Idle:  a.cfg.IPC.IdleTimeout,
	}, a.log)

	errChan := make(chan error, 1)
	go func() {
		if err := server.Start(); err != nil && err != http.ErrServerClosed {
			errChan <- err
		}
	}()

	a.log.Info().
		Str("desktop", a.desktop.Type().String()).
		Bool("wayland", a.desktop.IsWayland()).
		Msg("spotbeam instance running")

	var runErr error
	select {
	case <-ctx.Done():
	case runErr = <-errChan:
		a.log.Error().Err(runErr).Msg("IPC server error")
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil && runErr == nil {
		runErr = err
	}

	return runErr
}

// Execute runs one command string from the CLI or IPC channel. The
// vocabulary is spot=[on|off], settings=[show|hide], quit, and
// key=value for any registered settings property.
func (a *App) Execute(cmd string) error {
	cmd = strings.TrimSpace(cmd)
	if cmd == "" {
		return errors.New("command cannot be an empty string")
	}

	if cmd == "quit" {
		a.log.Info().Msg("quit command received")
		if a.cancel != nil {
			a.cancel()
		}
		return nil
	}

	key, value, found := strings.Cut(cmd, "=")
	if !found {
		return errors.Errorf("unknown command: %s", cmd)
	}

	switch key {
	case "spot":
		switch value {
		case "on":
			return a.setProperty("spot.enabled", "true")
		case "off":
			return a.setProperty("spot.enabled", "false")
		}
		return errors.Errorf("spot expects on or off, got %q", value)
	case "settings":
		switch value {
		case "show":
			return a.setProperty("dialog.visible", "true")
		case "hide":
			return a.setProperty("dialog.visible", "false")
		}
		return errors.Errorf("settings expects show or hide, got %q", value)
	}

	return a.setProperty(key, value)
}

func (a *App) setProperty(key, value string) error {
	if err := a.store.Set(key, value); err != nil {
		return err
	}

	// Enabling zoom needs a frame of the current screen to magnify.
	if key == "zoom.enabled" {
		if on, err := strconv.ParseBool(value); err == nil && on {
			a.refreshZoomFrame()
		}
	}

	return nil
}

// refreshZoomFrame grabs the primary screen. Capture failures degrade to
// an empty frame; the failure is logged and recorded for diagnostics.
func (a *App) refreshZoomFrame() {
	img, err := a.capturer.GrabScreen(a.primaryScreen)
	if err != nil {
		a.log.Warn().Err(err).Msg("zoom capture degraded to an empty frame")
		if logErr := a.repo.CreateErrorLog(&models.ErrorLog{
			Timestamp: time.Now(),
			Source:    "capture",
			ErrorMsg:  err.Error(),
		}); logErr != nil {
			a.log.Error().Err(logErr).Msg("failed to record capture error")
		}
	}

	a.mu.Lock()
	a.lastFrame = img
	a.mu.Unlock()
}

// ZoomFrame returns the most recent capture, or nil when zoom has not
// been enabled yet.
func (a *App) ZoomFrame() image.Image {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.lastFrame
}

// Status implements ipc.Executor.
func (a *App) Status() map[string]interface{} {
	status := map[string]interface{}{
		"running": true,
		"version": version.String(),
		"desktop": a.desktop.Type().String(),
		"wayland": a.desktop.IsWayland(),
	}

	if spot, err := a.store.Get("spot.enabled"); err == nil {
		on, _ := strconv.ParseBool(spot)
		status["spot_enabled"] = on
	}
	if zoom, err := a.store.Get("zoom.enabled"); err == nil {
		on, _ := strconv.ParseBool(zoom)
		status["zoom_enabled"] = on
	}

	a.mu.Lock()
	if a.lastFrame != nil {
		bounds := a.lastFrame.Bounds()
		status["frame_width"] = bounds.Dx()
		status["frame_height"] = bounds.Dy()
	}
	a.mu.Unlock()

	return status
}

// Properties implements ipc.Executor.
func (a *App) Properties() (map[string]string, error) {
	return a.store.All()
}
