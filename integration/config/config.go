// Package config parses the LFX_* environment variable family and, when a
// config file is present, watches it for hot-reloadable overrides.
package config

import (
	"bufio"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/fsnotify/fsnotify"
)

// Values holds the parsed LFX_* configuration.
type Values struct {
	// TargetFrameTimeNS is 1e9 / LFX_MAX_FPS, or 0 if LFX_MAX_FPS is unset.
	TargetFrameTimeNS uint64
	// Placebo mirrors LFX_PLACEBO.
	Placebo bool
	// UE4HookAddr is the parsed LFX_UE4_HOOK hex address, or 0 if unset.
	UE4HookAddr uint64
}

// Load reads LFX_MAX_FPS, LFX_PLACEBO and LFX_UE4_HOOK from the process
// environment once.
func Load() Values {
	var v Values
	if raw, ok := os.LookupEnv("LFX_MAX_FPS"); ok {
		if fps, err := strconv.ParseUint(raw, 10, 64); err == nil && fps > 0 {
			v.TargetFrameTimeNS = 1_000_000_000 / fps
		}
	}
	if raw, ok := os.LookupEnv("LFX_PLACEBO"); ok {
		v.Placebo = isTruthy(raw)
	}
	if raw, ok := os.LookupEnv("LFX_UE4_HOOK"); ok {
		raw = strings.TrimPrefix(strings.TrimPrefix(raw, "0x"), "0X")
		if addr, err := strconv.ParseUint(raw, 16, 64); err == nil {
			v.UE4HookAddr = addr
		}
	}
	return v
}

func isTruthy(raw string) bool {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "1", "true", "yes", "on":
		return true
	default:
		return false
	}
}

// DefaultPath returns the config file path config.Watch falls back to when
// none is given explicitly: $XDG_CONFIG_HOME/framepacer/config.env, falling
// back to ./framepacer.env.
func DefaultPath() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "framepacer", "config.env")
	}
	return "framepacer.env"
}

// parseFile reads a simple KEY=VALUE file, one assignment per line, and
// merges it on top of base (file values override the environment).
func parseFile(path string, base Values) (Values, error) {
	f, err := os.Open(path)
	if err != nil {
		return base, err
	}
	defer f.Close()

	env := map[string]string{}
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		key, val, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		env[strings.TrimSpace(key)] = strings.TrimSpace(val)
	}
	if err := scanner.Err(); err != nil {
		return base, err
	}

	v := base
	if raw, ok := env["LFX_MAX_FPS"]; ok {
		if fps, err := strconv.ParseUint(raw, 10, 64); err == nil && fps > 0 {
			v.TargetFrameTimeNS = 1_000_000_000 / fps
		}
	}
	if raw, ok := env["LFX_PLACEBO"]; ok {
		v.Placebo = isTruthy(raw)
	}
	return v, nil
}

// Sink receives reloaded configuration values. integration.Adapter
// implements the methods this needs directly.
type Sink interface {
	SetTargetFrameTime(ns uint64)
	SetPlacebo(placebo bool)
}

// Watch watches path for changes and applies reloaded values to sink. It is
// best-effort: if path does not exist, Watch logs at Debug and returns a
// no-op stop function and a nil error immediately, relying on environment
// variables alone.
// The returned stop function closes the underlying watcher; safe to call
// once. If Watch returns a non-nil error, stop is nil.
func Watch(path string, base Values, sink Sink) (stop func(), err error) {
	if _, statErr := os.Stat(path); statErr != nil {
		slog.Debug("config file not present, skipping hot reload", "path", path)
		return func() {}, nil
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		watcher.Close()
		return nil, err
	}

	done := make(chan struct{})
	go func() {
		for {
			select {
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Clean(event.Name) != filepath.Clean(path) {
					continue
				}
				if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
					continue
				}
				v, err := parseFile(path, base)
				if err != nil {
					slog.Debug("config reload failed", "path", path, "err", err)
					continue
				}
				sink.SetTargetFrameTime(v.TargetFrameTimeNS)
				sink.SetPlacebo(v.Placebo)
				slog.Debug("config reloaded", "path", path, "target_frame_time_ns", v.TargetFrameTimeNS, "placebo", v.Placebo)
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				slog.Debug("config watcher error", "err", err)
			case <-done:
				return
			}
		}
	}()

	return func() {
		close(done)
		watcher.Close()
	}, nil
}
