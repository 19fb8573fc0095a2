// Package cli implements the tileview command-line interface.
//
// The commands drive the tile renderer headlessly: an image file is decoded,
// shown in an offscreen window surface and the window is written as PNG.
// This exercises the same notification sequence an interactive viewer
// sends (replace, zoom, scroll) without a display.
//
// # Commands
//
//   - render: render an image file through the tile engine into a PNG
//   - config: print the effective renderer configuration as TOML
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging. The
// charmbracelet/log logger doubles as the slog handler of the renderer.
package cli

import (
	"io"
	"log/slog"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/gogpu/tileview"
)

const appName = "tileview"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	out io.Writer
}

// New creates a CLI logging to w at level. Command output goes to out.
func New(w, out io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: log.NewWithOptions(w, log.Options{
			ReportTimestamp: true,
			TimeFormat:      "15:04:05.00",
			Level:           level,
			Prefix:          appName,
		}),
		out: out,
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// slog returns the logger as a log/slog logger for the renderer.
func (c *CLI) slog() *slog.Logger {
	return slog.New(c.Logger)
}

// RootCommand creates the root cobra command with all subcommands
// registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          appName,
		Short:        "tileview renders images through a tiled cache",
		Long:         `tileview drives the tile renderer headlessly: it decodes an image, renders it into an offscreen window at a given zoom, scroll, orientation and stereo mode, and writes the window as PNG.`,
		SilenceUsage: true,
	}

	root.AddCommand(c.renderCommand())
	root.AddCommand(c.configCommand())
	return root
}

// loadConfig returns the configuration at path, or the defaults when path
// is empty.
func loadConfig(path string) (tileview.Config, error) {
	if path == "" {
		return tileview.DefaultConfig(), nil
	}
	return tileview.LoadConfig(path)
}
