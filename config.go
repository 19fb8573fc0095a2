package tileview

import (
	"errors"
	"fmt"
	"image/color"
	"os"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	xdraw "golang.org/x/image/draw"
)

// ErrInvalidConfig is returned for configuration values the renderer
// cannot work with.
var ErrInvalidConfig = errors.New("tileview: invalid config")

// Interp selects the interpolation of the quality pass.
type Interp uint8

const (
	// InterpDefault defers to the configured quality.
	InterpDefault Interp = iota
	InterpNearest
	InterpApprox
	InterpBilinear
	InterpCatmullRom
)

var interpNames = [...]string{"default", "nearest", "approx", "bilinear", "catmullrom"}

// String returns the interpolation name.
func (i Interp) String() string {
	if int(i) < len(interpNames) {
		return interpNames[i]
	}
	return "unknown"
}

// Interpolator returns the golang.org/x/image/draw implementation.
func (i Interp) Interpolator() xdraw.Interpolator {
	switch i {
	case InterpNearest:
		return xdraw.NearestNeighbor
	case InterpApprox:
		return xdraw.ApproxBiLinear
	case InterpCatmullRom:
		return xdraw.CatmullRom
	default:
		return xdraw.BiLinear
	}
}

// MarshalText implements encoding.TextMarshaler.
func (i Interp) MarshalText() ([]byte, error) {
	return []byte(i.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler. "tiles" and "hyper"
// are accepted as aliases of approx and catmullrom.
func (i *Interp) UnmarshalText(text []byte) error {
	s := strings.ToLower(strings.TrimSpace(string(text)))
	switch s {
	case "tiles":
		s = "approx"
	case "hyper":
		s = "catmullrom"
	}
	for n, name := range interpNames {
		if s == name {
			*i = Interp(n)
			return nil
		}
	}
	return fmt.Errorf("%w: unknown interpolation %q", ErrInvalidConfig, text)
}

// Color is an RGBA color written as "#rrggbb" or "#rrggbbaa" in text form.
type Color color.RGBA

// RGBA implements color.Color.
func (c Color) RGBA() (r, g, b, a uint32) {
	return color.RGBA(c).RGBA()
}

// MarshalText implements encoding.TextMarshaler.
func (c Color) MarshalText() ([]byte, error) {
	if c.A == 0xff {
		return fmt.Appendf(nil, "#%02x%02x%02x", c.R, c.G, c.B), nil
	}
	return fmt.Appendf(nil, "#%02x%02x%02x%02x", c.R, c.G, c.B, c.A), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (c *Color) UnmarshalText(text []byte) error {
	s := strings.TrimPrefix(strings.TrimSpace(string(text)), "#")
	if len(s) != 6 && len(s) != 8 {
		return fmt.Errorf("%w: color %q", ErrInvalidConfig, text)
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return fmt.Errorf("%w: color %q: %w", ErrInvalidConfig, text, err)
	}
	if len(s) == 6 {
		v = v<<8 | 0xff
	}
	*c = Color{R: uint8(v >> 24), G: uint8(v >> 16), B: uint8(v >> 8), A: uint8(v)}
	return nil
}

// Config holds the renderer settings.
type Config struct {
	// TileWidth and TileHeight are the cache tile dimensions.
	TileWidth  int `toml:"tile_width"`
	TileHeight int `toml:"tile_height"`

	// CacheBudget is the tile cache size in bytes.
	CacheBudget int64 `toml:"cache_budget"`

	// TwoPass renders with nearest sampling first and refines with
	// Quality afterwards.
	TwoPass bool   `toml:"two_pass"`
	Quality Interp `toml:"quality"`

	Background  Color `toml:"background"`
	CheckColor1 Color `toml:"check_color1"`
	CheckColor2 Color `toml:"check_color2"`
	CheckSize   int   `toml:"check_size"`
}

// DefaultConfig returns the default settings: 128x128 tiles, a 10 MiB
// cache and two-pass bilinear rendering on black.
func DefaultConfig() Config {
	return Config{
		TileWidth:   128,
		TileHeight:  128,
		CacheBudget: 10 << 20,
		TwoPass:     true,
		Quality:     InterpBilinear,
		Background:  Color{A: 0xff},
		CheckColor1: Color{R: 0x99, G: 0x99, B: 0x99, A: 0xff},
		CheckColor2: Color{R: 0x66, G: 0x66, B: 0x66, A: 0xff},
		CheckSize:   16,
	}
}

// Validate reports the first unusable value.
func (c Config) Validate() error {
	switch {
	case c.TileWidth <= 0 || c.TileHeight <= 0:
		return fmt.Errorf("%w: tile size %dx%d", ErrInvalidConfig, c.TileWidth, c.TileHeight)
	case c.CacheBudget < 0:
		return fmt.Errorf("%w: negative cache budget %d", ErrInvalidConfig, c.CacheBudget)
	case c.CheckSize <= 0:
		return fmt.Errorf("%w: check size %d", ErrInvalidConfig, c.CheckSize)
	case c.Quality > InterpCatmullRom:
		return fmt.Errorf("%w: quality %d", ErrInvalidConfig, c.Quality)
	}
	return nil
}

// LoadConfig reads a TOML file over DefaultConfig. Keys missing from the
// file keep their defaults.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("tileview: read config: %w", err)
	}
	md, err := toml.Decode(string(data), &cfg)
	if err != nil {
		return cfg, fmt.Errorf("%w: %s: %w", ErrInvalidConfig, path, err)
	}
	if undec := md.Undecoded(); len(undec) > 0 {
		return cfg, fmt.Errorf("%w: %s: unknown key %q", ErrInvalidConfig, path, undec[0].String())
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}
