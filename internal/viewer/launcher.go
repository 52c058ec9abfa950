// Package viewer opens cached images in an external image viewer.
package viewer

import (
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"runtime"
	"strings"
)

// ErrNoViewer is returned when neither a configured nor a detected viewer
// could be started
var ErrNoViewer = errors.New("no image viewer available")

// Launcher opens image paths or URLs in the configured viewer or the system
// default
type Launcher struct {
	command string   // configured viewer command, empty for auto-detect
	args    []string // additional arguments for the viewer
	logger  *slog.Logger

	// Overridable for tests
	goos     string
	lookPath func(string) (string, error)
	start    func(name string, args ...string) error
}

// launchPath defines a single way to start a viewer
type launchPath struct {
	path string // Command path: "imv", "feh", or "open-a:AppName"
	args []string
}

// viewers registry: platform -> launch paths to try in order
var viewers = map[string][]launchPath{
	"darwin": {
		{path: "open-a:Preview"},
	},
	"linux": {
		{path: "imv"},
		{path: "feh", args: []string{"--scale-down", "--auto-zoom"}},
		{path: "nsxiv"},
		{path: "sxiv"},
		{path: "eog"},
	},
	"windows": {},
}

// NewLauncher creates a launcher. An empty command auto-detects a viewer.
func NewLauncher(command string, args []string, logger *slog.Logger) *Launcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Launcher{
		command:  command,
		args:     args,
		logger:   logger,
		goos:     runtime.GOOS,
		lookPath: exec.LookPath,
		start:    startDetached,
	}
}

func startDetached(name string, args ...string) error {
	return exec.Command(name, args...).Start()
}

// Open shows target (a local path or URL) in a viewer
func (l *Launcher) Open(target string) error {
	// Tier 1: User configured a specific viewer
	if l.command != "" {
		args := append(append([]string{}, l.args...), target)
		l.logger.Info("launching configured viewer", "command", l.command, "args", args)
		if err := l.start(l.command, args...); err != nil {
			return fmt.Errorf("failed to start %s: %w", l.command, err)
		}
		return nil
	}

	// Tier 2: Try the platform candidates
	if name, err := l.detectAndLaunch(target); err == nil {
		l.logger.Info("launched with detected viewer", "viewer", name)
		return nil
	}

	// Tier 3: Fall back to system default (open/xdg-open/start)
	return l.launchDefault(target)
}

// detectAndLaunch tries candidate viewers in order. Returns the path that
// succeeded.
func (l *Launcher) detectAndLaunch(target string) (string, error) {
	candidates, ok := viewers[l.goos]
	if !ok {
		candidates = viewers["linux"]
	}

	for _, lp := range candidates {
		var err error
		if app, isApp := strings.CutPrefix(lp.path, "open-a:"); isApp {
			err = l.start("open", "-a", app, target)
		} else if _, err = l.lookPath(lp.path); err == nil {
			err = l.start(lp.path, append(append([]string{}, lp.args...), target)...)
		}

		if err == nil {
			return lp.path, nil
		}
		l.logger.Debug("viewer not available", "path", lp.path, "error", err)
	}
	return "", ErrNoViewer
}

// launchDefault opens target using the system default handler
func (l *Launcher) launchDefault(target string) error {
	var name string
	var args []string

	switch l.goos {
	case "darwin":
		name, args = "open", []string{target}
	case "windows":
		name, args = "cmd", []string{"/c", "start", "", target}
	default:
		// Linux and other Unix-like systems
		name, args = "xdg-open", []string{target}
	}

	l.logger.Info("launching with system default", "os", l.goos, "target", target)
	if err := l.start(name, args...); err != nil {
		return fmt.Errorf("%w: %v", ErrNoViewer, err)
	}
	return nil
}
