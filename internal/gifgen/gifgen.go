// Package gifgen turns a still image into a looping animated GIF by
// applying a transform to every frame.
package gifgen

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/color/palette"
	"image/draw"
	"image/gif"
	"os"
	"path/filepath"
	"time"

	"github.com/disintegration/imaging"
	"go.uber.org/zap"

	"github.com/rbxservers/rbxservers-bot/internal/config"
)

// minDelay is the smallest frame delay GIF viewers honour reliably.
const minDelay = 10 * time.Millisecond

var (
	// ErrNoFrames is returned when fewer than one frame is requested.
	ErrNoFrames = errors.New("frame count must be at least 1")
	// ErrDelayTooShort is returned for delays below 10ms.
	ErrDelayTooShort = errors.New("frame delay must be at least 10ms")
)

// Options describes one GIF to generate.
type Options struct {
	Input  string
	Output string
	Frames int
	// Delay is the display time of each frame, rounded to the nearest 10ms.
	Delay  time.Duration
	Effect Effect
	// Size, when positive, fits the image into a Size x Size canvas first.
	Size       int
	Background color.Color
}

// Result describes the written GIF.
type Result struct {
	Path   string
	Frames int
	// Delay is per frame, in hundredths of a second as stored in the file.
	Delay  int
	Bounds image.Rectangle
}

// Generator renders GIFs.
type Generator struct {
	logger *zap.Logger
}

// NewGenerator creates a Generator.
func NewGenerator(logger *zap.Logger) *Generator {
	return &Generator{logger: logger.Named("gifgen")}
}

// Generate reads opts.Input, renders every frame and writes opts.Output.
// The output is written to a temporary file first and renamed into place.
func (g *Generator) Generate(ctx context.Context, opts Options) (Result, error) {
	if err := validate(&opts); err != nil {
		return Result{}, err
	}

	src, err := imaging.Open(opts.Input)
	if err != nil {
		return Result{}, fmt.Errorf("failed to open %s: %w", opts.Input, err)
	}
	if opts.Size > 0 {
		src = imaging.PasteCenter(imaging.New(opts.Size, opts.Size, opts.Background), imaging.Fit(src, opts.Size, opts.Size, imaging.Lanczos))
	}

	anim, err := g.Render(ctx, src, opts)
	if err != nil {
		return Result{}, err
	}

	if err := writeGIF(opts.Output, anim); err != nil {
		return Result{}, err
	}

	res := Result{
		Path:   opts.Output,
		Frames: len(anim.Image),
		Delay:  anim.Delay[0],
		Bounds: src.Bounds(),
	}
	g.logger.Info("GIF written",
		zap.String("path", res.Path),
		zap.Int("frames", res.Frames),
		zap.Duration("delay", opts.Delay),
		zap.String("effect", opts.Effect.String()),
	)

	return res, nil
}

// Render builds the animation in memory. Frames are rendered in order, and
// ctx is checked between frames.
func (g *Generator) Render(ctx context.Context, src image.Image, opts Options) (*gif.GIF, error) {
	if err := validate(&opts); err != nil {
		return nil, err
	}

	bounds := image.Rect(0, 0, src.Bounds().Dx(), src.Bounds().Dy())
	pal := paletteFor(opts.Background)
	delay := centiseconds(opts.Delay)
	anim := &gif.GIF{
		Image:     make([]*image.Paletted, 0, opts.Frames),
		Delay:     make([]int, 0, opts.Frames),
		Disposal:  make([]byte, 0, opts.Frames),
		LoopCount: 0,
	}

	for i := 0; i < opts.Frames; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		frame := opts.Effect.apply(src, i, opts.Frames, opts.Background)
		anim.Image = append(anim.Image, quantize(frame, bounds, opts.Background, pal))
		anim.Delay = append(anim.Delay, delay)
		anim.Disposal = append(anim.Disposal, gif.DisposalBackground)
		g.logger.Debug("Rendered frame", zap.Int("frame", i+1), zap.Int("of", opts.Frames))
	}

	return anim, nil
}

func validate(opts *Options) error {
	if opts.Frames < 1 {
		return ErrNoFrames
	}
	if opts.Delay < minDelay {
		return ErrDelayTooShort
	}
	if opts.Background == nil {
		opts.Background = color.White
	}

	return nil
}

// centiseconds converts d to the GIF delay unit, rounding to the nearest
// hundredth of a second.
func centiseconds(d time.Duration) int {
	return int((d + 5*time.Millisecond) / (10 * time.Millisecond))
}

// paletteFor returns Plan 9. When bg is fully transparent, index 0 becomes
// a transparent slot and the last Plan 9 entry is dropped.
func paletteFor(bg color.Color) color.Palette {
	if _, _, _, a := bg.RGBA(); a != 0 {
		return palette.Plan9
	}

	pal := make(color.Palette, 0, len(palette.Plan9))
	pal = append(pal, color.Transparent)

	return append(pal, palette.Plan9[:len(palette.Plan9)-1]...)
}

// quantize centres frame on a bg canvas of the given bounds and maps it to
// pal with Floyd-Steinberg dithering.
func quantize(frame image.Image, bounds image.Rectangle, bg color.Color, pal color.Palette) *image.Paletted {
	canvas := imaging.PasteCenter(imaging.New(bounds.Dx(), bounds.Dy(), bg), frame)
	dst := image.NewPaletted(bounds, pal)
	draw.FloydSteinberg.Draw(dst, bounds, canvas, image.Point{})

	return dst
}

func writeGIF(path string, anim *gif.GIF) (err error) {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".gifgen-*.gif")
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer func() {
		if err != nil {
			_ = os.Remove(tmp.Name())
		}
	}()

	if err = gif.EncodeAll(tmp, anim); err != nil {
		_ = tmp.Close()

		return fmt.Errorf("failed to encode GIF: %w", err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("failed to write GIF: %w", err)
	}
	if err = os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to move GIF into place: %w", err)
	}

	return nil
}

// OptionsFromConfig converts the configured defaults into Options.
func OptionsFromConfig(cfg config.GIFConfig) (Options, error) {
	effect, err := ParseEffect(cfg.Effect)
	if err != nil {
		return Options{}, err
	}
	bg, err := ParseColor(cfg.Background)
	if err != nil {
		return Options{}, err
	}

	return Options{
		Input:      cfg.Input,
		Output:     cfg.Output,
		Frames:     cfg.Frames,
		Delay:      cfg.Delay,
		Effect:     effect,
		Size:       cfg.Size,
		Background: bg,
	}, nil
}
