package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/pflag"

	"github.com/gogpu/tileview"
	"github.com/gogpu/tileview/orient"
)

var (
	_ pflag.Value = (*stereoFlag)(nil)
	_ pflag.Value = (*orientFlag)(nil)
	_ pflag.Value = (*interpFlag)(nil)
	_ pflag.Value = (*pointFlag)(nil)
)

// stereoFlag parses a tileview.StereoMode such as "dual|horiz".
type stereoFlag tileview.StereoMode

func (f *stereoFlag) String() string { return tileview.StereoMode(*f).String() }
func (f *stereoFlag) Type() string   { return "stereo" }

func (f *stereoFlag) Set(s string) error {
	m, ok := tileview.ParseStereoMode(s)
	if !ok {
		return fmt.Errorf("unknown stereo mode %q", s)
	}
	*f = stereoFlag(m)
	return nil
}

// orientFlag parses an EXIF orientation, by number (1-8) or name.
type orientFlag orient.Orientation

func (f *orientFlag) String() string { return orient.Orientation(*f).String() }
func (f *orientFlag) Type() string   { return "orientation" }

func (f *orientFlag) Set(s string) error {
	if n, err := strconv.Atoi(s); err == nil {
		o := orient.Orientation(n)
		if !o.Valid() {
			return fmt.Errorf("orientation %d out of range 1-8", n)
		}
		*f = orientFlag(o)
		return nil
	}
	for o := orient.TopLeft; o <= orient.LeftBottom; o++ {
		if strings.EqualFold(o.String(), s) {
			*f = orientFlag(o)
			return nil
		}
	}
	return fmt.Errorf("unknown orientation %q", s)
}

// interpFlag wraps tileview.Interp text parsing.
type interpFlag tileview.Interp

func (f *interpFlag) String() string { return tileview.Interp(*f).String() }
func (f *interpFlag) Type() string   { return "quality" }

func (f *interpFlag) Set(s string) error {
	return (*tileview.Interp)(f).UnmarshalText([]byte(s))
}

// pointFlag parses "x,y".
type pointFlag struct {
	X, Y int
	set  bool
}

func (f *pointFlag) String() string { return fmt.Sprintf("%d,%d", f.X, f.Y) }
func (f *pointFlag) Type() string   { return "x,y" }

func (f *pointFlag) Set(s string) error {
	xs, ys, ok := strings.Cut(s, ",")
	if !ok {
		return fmt.Errorf("want x,y, got %q", s)
	}
	x, err := strconv.Atoi(strings.TrimSpace(xs))
	if err != nil {
		return fmt.Errorf("x: %w", err)
	}
	y, err := strconv.Atoi(strings.TrimSpace(ys))
	if err != nil {
		return fmt.Errorf("y: %w", err)
	}
	f.X, f.Y, f.set = x, y, true
	return nil
}
