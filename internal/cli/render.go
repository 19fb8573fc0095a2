package cli

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"
	"math"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/gogpu/tileview"
	"github.com/gogpu/tileview/loop"
	"github.com/gogpu/tileview/orient"
	"github.com/gogpu/tileview/osd"
	"github.com/gogpu/tileview/surface"
)

// renderOpts holds the flags of the render command.
type renderOpts struct {
	output      string
	config      string
	width       int
	height      int
	zoom        float64
	scroll      pointFlag
	orientation orientFlag
	stereo      stereoFlag
	sideBySide  bool
	quality     interpFlag
	tileSize    int
	info        bool
	backend     string
}

func (c *CLI) renderCommand() *cobra.Command {
	opts := renderOpts{
		width:       800,
		height:      600,
		zoom:        1,
		orientation: orientFlag(orient.TopLeft),
		backend:     "image",
	}

	cmd := &cobra.Command{
		Use:   "render [image]",
		Short: "Render an image through the tile engine into a PNG",
		Long: `Render decodes an image (PNG, JPEG, GIF, TIFF, BMP or WebP), shows it in an
offscreen window and writes the window as PNG.

With --scroll the image is first drawn at the origin and then scrolled, so
the output exercises the shift-and-expose path of the renderer.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runRender(args[0], opts)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&opts.output, "output", "o", "", "output PNG file (default: <image>.view.png)")
	f.StringVarP(&opts.config, "config", "c", "", "TOML configuration file")
	f.IntVar(&opts.width, "width", opts.width, "viewport width")
	f.IntVar(&opts.height, "height", opts.height, "viewport height")
	f.Float64VarP(&opts.zoom, "zoom", "z", opts.zoom, "zoom factor; 0 fits the image to the viewport")
	f.Var(&opts.scroll, "scroll", "scroll position after the first draw")
	f.Var(&opts.orientation, "orientation", "EXIF orientation, 1-8 or name such as right-top")
	f.Var(&opts.stereo, "stereo", "stereo mode flags, e.g. dual|horiz or anaglyph-rc")
	f.BoolVar(&opts.sideBySide, "sbs", false, "input holds both stereo eyes side by side")
	f.Var(&opts.quality, "quality", "interpolation: nearest, approx, bilinear or catmullrom")
	f.IntVar(&opts.tileSize, "tile-size", 0, "tile width and height (default from config)")
	f.BoolVar(&opts.info, "info", false, "show the image info overlay")
	f.StringVar(&opts.backend, "backend", opts.backend, "window surface backend")

	return cmd
}

func (c *CLI) runRender(path string, opts renderOpts) error {
	start := time.Now()
	cfg, err := loadConfig(opts.config)
	if err != nil {
		return err
	}
	if opts.tileSize > 0 {
		cfg.TileWidth, cfg.TileHeight = opts.tileSize, opts.tileSize
	}
	if q := tileview.Interp(opts.quality); q != tileview.InterpDefault {
		cfg.Quality = q
	}
	if opts.width <= 0 || opts.height <= 0 {
		return fmt.Errorf("viewport %dx%d: %w", opts.width, opts.height, tileview.ErrInvalidConfig)
	}

	img, st, err := decodeFile(path)
	if err != nil {
		return err
	}
	c.Logger.Debug("decoded", "file", path, "size", img.Bounds().Size())

	mode := tileview.StereoMode(opts.stereo)
	v := newViewState(img, opts.sideBySide, opts.width, opts.height)
	v.setOrientation(orient.Orientation(opts.orientation))
	v.setZoom(opts.zoom)

	out, err := render(v, mode, cfg, opts, c, infoFor(path, st, v))
	if err != nil {
		return err
	}

	if opts.output == "" {
		opts.output = trimExt(path) + ".view.png"
	}
	if err := writePNG(opts.output, out); err != nil {
		return err
	}
	c.Logger.Infof("Wrote %s (%s)", opts.output, time.Since(start).Round(time.Millisecond))
	return nil
}

// render draws v into a window with one renderer per displayed eye and
// returns the window contents.
func render(v *viewState, mode tileview.StereoMode, cfg tileview.Config, opts renderOpts, c *CLI, info osd.Info) (*image.RGBA, error) {
	modes := []tileview.StereoMode{mode}
	winW, winH := v.view.ViewportWidth, v.view.ViewportHeight
	if mode&tileview.StereoDual != 0 {
		left := mode &^ tileview.StereoRight
		modes = []tileview.StereoMode{left, left | tileview.StereoRight}
		switch {
		case mode&tileview.StereoHoriz != 0:
			winW *= 2
		case mode&tileview.StereoVert != 0:
			winH *= 2
		}
	}

	win, err := surface.NewByName(opts.backend, surface.Options{
		Width:      winW,
		Height:     winH,
		Background: color.RGBA(cfg.Background),
	})
	if err != nil {
		return nil, fmt.Errorf("window: %w", err)
	}
	defer win.Close()
	c.Logger.Debug("window", "backend", opts.backend, "size", win.Bounds().Size())

	l := loop.New()
	var face *osd.Face
	if opts.info {
		f, err := osd.DefaultFace()
		if err != nil {
			return nil, err
		}
		face = f
	}

	rs := make([]*tileview.Renderer, 0, len(modes))
	defer func() {
		for _, r := range rs {
			r.Close()
		}
	}()
	for _, m := range modes {
		r, err := tileview.New(v, win,
			tileview.WithConfig(cfg),
			tileview.WithScheduler(l),
			tileview.WithLogger(c.slog()),
		)
		if err != nil {
			return nil, err
		}
		rs = append(rs, r)

		r.SetStereo(m)
		r.ViewportResized()
		r.PixbufReplaced(false)
		if face != nil {
			face.ShowInfo(r, 0, info)
		}
	}
	ticks := l.Flush()

	if opts.scroll.set {
		dx, dy := v.scrollTo(opts.scroll.X, opts.scroll.Y)
		for _, r := range rs {
			r.Scroll(dx, dy)
		}
		ticks += l.Flush()
	}

	for i, r := range rs {
		s := r.Stats()
		c.Logger.Debug("renderer done", "eye", i, "tiles", s.Tiles, "bytes", s.Bytes, "evictions", s.Evictions)
	}
	c.Logger.Debug("loop drained", "ticks", ticks)
	return win.Snapshot(), nil
}

func decodeFile(path string) (image.Image, os.FileInfo, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("open image: %w", err)
	}
	defer f.Close()

	st, err := f.Stat()
	if err != nil {
		return nil, nil, fmt.Errorf("stat image: %w", err)
	}
	img, _, err := image.Decode(f)
	if err != nil {
		return nil, nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return img, st, nil
}

func writePNG(path string, img image.Image) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create output: %w", err)
	}
	defer func() {
		err = errors.Join(err, f.Close())
	}()
	if err := png.Encode(f, img); err != nil {
		return fmt.Errorf("encode %s: %w", path, err)
	}
	return nil
}

func infoFor(path string, st os.FileInfo, v *viewState) osd.Info {
	return osd.Info{
		Index:   1,
		Total:   1,
		Name:    filepath.Base(path),
		Width:   v.view.ImageWidth,
		Height:  v.view.ImageHeight,
		ModTime: st.ModTime(),
		Size:    st.Size(),
	}
}

func trimExt(path string) string {
	return path[:len(path)-len(filepath.Ext(path))]
}

// viewState is the controller of a headless view.
type viewState struct {
	view tileview.View
}

func newViewState(img image.Image, sideBySide bool, vw, vh int) *viewState {
	b := img.Bounds()
	iw, ih := b.Dx(), b.Dy()
	v := &viewState{view: tileview.View{
		Image:          img,
		ImageWidth:     iw,
		ImageHeight:    ih,
		Alpha:          hasAlpha(img),
		Scale:          1,
		ViewportWidth:  vw,
		ViewportHeight: vh,
		Orientation:    orient.TopLeft,
	}}
	if sideBySide {
		v.view.ImageWidth = iw / 2
		v.view.RightOffset = iw / 2
	}
	return v
}

// View implements tileview.Controller.
func (v *viewState) View() *tileview.View {
	return &v.view
}

func (v *viewState) setOrientation(o orient.Orientation) {
	v.view.Orientation = o.Normalize()
}

// setZoom sets the scale and recomputes the display geometry. A zero or
// negative zoom fits the image to the viewport.
func (v *viewState) setZoom(zoom float64) {
	vv := &v.view
	sw, sh := orient.DisplaySize(vv.Orientation, vv.ImageWidth, vv.ImageHeight)
	if zoom <= 0 {
		zoom = min(float64(vv.ViewportWidth)/float64(max(sw, 1)), float64(vv.ViewportHeight)/float64(max(sh, 1)))
	}
	vv.Scale = zoom

	w := max(int(math.Round(float64(vv.ImageWidth)*zoom)), 1)
	h := max(int(math.Round(float64(vv.ImageHeight)*zoom)), 1)
	vv.Width, vv.Height = orient.DisplaySize(vv.Orientation, w, h)

	vv.VisWidth = min(vv.Width, vv.ViewportWidth)
	vv.VisHeight = min(vv.Height, vv.ViewportHeight)
	vv.XOffset = (vv.ViewportWidth - vv.VisWidth) / 2
	vv.YOffset = (vv.ViewportHeight - vv.VisHeight) / 2
	v.scrollTo(vv.XScroll, vv.YScroll)
}

// scrollTo clamps and sets the scroll position and returns the change.
func (v *viewState) scrollTo(x, y int) (dx, dy int) {
	vv := &v.view
	x = max(0, min(x, vv.Width-vv.VisWidth))
	y = max(0, min(y, vv.Height-vv.VisHeight))
	dx, dy = x-vv.XScroll, y-vv.YScroll
	vv.XScroll, vv.YScroll = x, y
	return dx, dy
}

func hasAlpha(img image.Image) bool {
	if o, ok := img.(interface{ Opaque() bool }); ok {
		return !o.Opaque()
	}
	return true
}
