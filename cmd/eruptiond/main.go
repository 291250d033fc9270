// Command eruptiond is the daemon entry point: it parses flags,
// bootstraps structured logging, wires the daemon supervisor, and runs
// until interrupted.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/lmittmann/tint"

	"github.com/cpw/eruption-roccat-vulcan/internal/daemon"
)

func main() {
	os.Exit(run())
}

func run() int {
	var (
		numKeys        = flag.Int("num-keys", 144, "number of addressable keys on the device")
		gridCols       = flag.Int("grid-cols", 22, "key grid column count, for rotate()")
		gridRows       = flag.Int("grid-rows", 6, "key grid row count, for rotate()")
		profileDir     = flag.String("profile-dir", defaultProfileDir(), "directory of profile JSON documents")
		activeProfile  = flag.String("profile", "default", "active profile name")
		scriptDir      = flag.String("script-dir", "src/scripts", "directory effect scripts are loaded from")
		keyboardDevice = flag.String("keyboard-device", "", "evdev node to mirror, e.g. /dev/input/by-id/... (empty disables mirroring)")
		barrierTimeout = flag.Duration("barrier-timeout", 250*time.Millisecond, "max time to wait for scripts each frame")
		deviceSettle   = flag.Duration("device-settle", 10*time.Millisecond, "pause between render ticks")
		verbose        = flag.Bool("verbose", false, "enable debug logging")
	)
	flag.Parse()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(tint.NewHandler(os.Stderr, &tint.Options{Level: level}))
	slog.SetDefault(logger)

	d, err := daemon.New(daemon.Options{
		NumKeys:        *numKeys,
		GridCols:       *gridCols,
		GridRows:       *gridRows,
		ProfileDir:     *profileDir,
		ActiveProfile:  *activeProfile,
		ScriptDir:      *scriptDir,
		KeyboardDevice: *keyboardDevice,
		BarrierTimeout: *barrierTimeout,
		DeviceSettle:   *deviceSettle,
		Logger:         logger,
	})
	if err != nil {
		logger.Error("daemon initialization failed", "error", err)
		return 1
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := loadScripts(d, *scriptDir, logger); err != nil {
		logger.Error("loading scripts failed", "error", err)
		return 1
	}

	logger.Info("daemon starting", "num_keys", *numKeys, "profile", *activeProfile)
	if err := d.Run(ctx); err != nil {
		logger.Error("daemon exited with error", "error", err)
		return 1
	}
	logger.Info("daemon stopped")
	return 0
}

// loadScripts loads every *.lua file directly under dir. A missing
// directory is not an error: a freshly installed daemon has no
// effects configured yet.
func loadScripts(d *daemon.Daemon, dir string, logger *slog.Logger) error {
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return err
	}
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".lua") {
			continue
		}
		name := strings.TrimSuffix(e.Name(), ".lua")
		path := filepath.Join(dir, e.Name())
		if err := d.LoadScript(name, path); err != nil {
			return fmt.Errorf("script %q: %w", name, err)
		}
		logger.Info("script loaded", "name", name, "path", path)
	}
	return nil
}

func defaultProfileDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".eruption/profiles"
	}
	return fmt.Sprintf("%s/.eruption/profiles", home)
}
