package gifgen

import (
	"context"
	"image"
	"image/color"
	"image/color/palette"
	"image/gif"
	"image/png"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"

	"github.com/rbxservers/rbxservers-bot/internal/config"
)

func writePNG(t *testing.T, dir string, w, h int) string {
	t.Helper()

	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.NRGBA{R: uint8(x * 255 / w), G: 80, B: uint8(y * 255 / h), A: 255})
		}
	}

	path := filepath.Join(dir, "logo.png")
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, png.Encode(f, img))

	return path
}

func decodeGIF(t *testing.T, path string) *gif.GIF {
	t.Helper()

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	anim, err := gif.DecodeAll(f)
	require.NoError(t, err)

	return anim
}

func TestGenerate(t *testing.T) {
	for _, effect := range []Effect{EffectSpin, EffectPulse, EffectFade} {
		t.Run(effect.String(), func(t *testing.T) {
			dir := t.TempDir()
			out := filepath.Join(dir, "logo.gif")

			res, err := NewGenerator(zaptest.NewLogger(t)).Generate(context.Background(), Options{
				Input:  writePNG(t, dir, 32, 24),
				Output: out,
				Frames: 6,
				Delay:  50 * time.Millisecond,
				Effect: effect,
			})
			require.NoError(t, err)

			assert.Equal(t, out, res.Path)
			assert.Equal(t, 6, res.Frames)
			assert.Equal(t, 5, res.Delay)

			anim := decodeGIF(t, out)
			require.Len(t, anim.Image, 6)
			assert.Equal(t, 0, anim.LoopCount)
			for i, d := range anim.Delay {
				assert.Equal(t, 5, d, "frame %d", i)
				assert.Equal(t, image.Rect(0, 0, 32, 24), anim.Image[i].Bounds(), "frame %d", i)
			}
		})
	}
}

func TestGenerate_Resize(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "small.gif")

	res, err := NewGenerator(zap.NewNop()).Generate(context.Background(), Options{
		Input:  writePNG(t, dir, 40, 20),
		Output: out,
		Frames: 2,
		Delay:  100 * time.Millisecond,
		Size:   16,
	})
	require.NoError(t, err)

	assert.Equal(t, image.Rect(0, 0, 16, 16), res.Bounds)
	anim := decodeGIF(t, out)
	assert.Equal(t, image.Rect(0, 0, 16, 16), anim.Image[0].Bounds())
	assert.Equal(t, []int{10, 10}, anim.Delay)
}

func TestGenerate_Validation(t *testing.T) {
	dir := t.TempDir()
	input := writePNG(t, dir, 8, 8)
	gen := NewGenerator(zap.NewNop())

	_, err := gen.Generate(context.Background(), Options{Input: input, Output: filepath.Join(dir, "a.gif"), Frames: 0, Delay: time.Second})
	assert.ErrorIs(t, err, ErrNoFrames)

	_, err = gen.Generate(context.Background(), Options{Input: input, Output: filepath.Join(dir, "b.gif"), Frames: 3, Delay: 5 * time.Millisecond})
	assert.ErrorIs(t, err, ErrDelayTooShort)

	_, err = gen.Generate(context.Background(), Options{Input: filepath.Join(dir, "missing.png"), Output: filepath.Join(dir, "c.gif"), Frames: 3, Delay: time.Second})
	assert.ErrorContains(t, err, "failed to open")

	notImage := filepath.Join(dir, "notes.png")
	require.NoError(t, os.WriteFile(notImage, []byte("not an image"), 0o600))
	_, err = gen.Generate(context.Background(), Options{Input: notImage, Output: filepath.Join(dir, "d.gif"), Frames: 3, Delay: time.Second})
	assert.Error(t, err)

	for _, name := range []string{"a.gif", "b.gif", "c.gif", "d.gif"} {
		assert.NoFileExists(t, filepath.Join(dir, name))
	}
}

func TestGenerate_TransparentBackground(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "logo.png")
	output := filepath.Join(dir, "logo.gif")

	img := image.NewNRGBA(image.Rect(0, 0, 20, 20))
	for y := 5; y < 15; y++ {
		for x := 5; x < 15; x++ {
			img.Set(x, y, color.NRGBA{R: 255, A: 255})
		}
	}
	f, err := os.Create(input)
	require.NoError(t, err)
	require.NoError(t, png.Encode(f, img))
	require.NoError(t, f.Close())

	bg, err := ParseColor("transparent")
	require.NoError(t, err)

	_, err = NewGenerator(zap.NewNop()).Generate(context.Background(), Options{
		Input: input, Output: output, Frames: 4, Delay: 50 * time.Millisecond, Background: bg,
	})
	require.NoError(t, err)

	anim := decodeGIF(t, output)
	require.Len(t, anim.Image, 4)
	for i, frame := range anim.Image {
		_, _, _, a := frame.At(0, 0).RGBA()
		assert.Zero(t, a, "frame %d corner should be transparent", i)

		r, _, _, a := frame.At(10, 10).RGBA()
		assert.NotZero(t, a, "frame %d centre should be opaque", i)
		assert.Greater(t, r, uint32(0x8000), "frame %d centre should stay red", i)
	}
}

func TestPaletteFor(t *testing.T) {
	assert.Equal(t, len(palette.Plan9), len(paletteFor(color.White)))

	pal := paletteFor(color.Transparent)
	require.Len(t, pal, 256)
	_, _, _, a := pal[0].RGBA()
	assert.Zero(t, a)
}

func TestCentiseconds(t *testing.T) {
	tests := map[time.Duration]int{
		10 * time.Millisecond:  1,
		14 * time.Millisecond:  1,
		15 * time.Millisecond:  2,
		50 * time.Millisecond:  5,
		104 * time.Millisecond: 10,
		time.Second:            100,
	}
	for d, want := range tests {
		assert.Equal(t, want, centiseconds(d), d.String())
	}
}

func TestGenerate_RoundsDelay(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "logo.gif")

	res, err := NewGenerator(zap.NewNop()).Generate(context.Background(), Options{
		Input: writePNG(t, dir, 8, 8), Output: out, Frames: 2, Delay: 15 * time.Millisecond,
	})
	require.NoError(t, err)

	assert.Equal(t, 2, res.Delay)
	assert.Equal(t, []int{2, 2}, decodeGIF(t, out).Delay)
}

func TestRender_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewGenerator(zap.NewNop()).Render(ctx, image.NewNRGBA(image.Rect(0, 0, 4, 4)), Options{Frames: 3, Delay: 20 * time.Millisecond})

	assert.ErrorIs(t, err, context.Canceled)
}

func TestParseEffect(t *testing.T) {
	for input, want := range map[string]Effect{"": EffectSpin, "spin": EffectSpin, " Pulse ": EffectPulse, "FADE": EffectFade} {
		got, err := ParseEffect(input)
		require.NoError(t, err, input)
		assert.Equal(t, want, got, input)
	}

	_, err := ParseEffect("wobble")
	assert.ErrorContains(t, err, `unknown effect "wobble"`)
}

func TestParseColor(t *testing.T) {
	c, err := ParseColor("#ff8000")
	require.NoError(t, err)
	assert.Equal(t, color.NRGBA{R: 0xff, G: 0x80, B: 0x00, A: 0xff}, c)

	c, err = ParseColor("#00000080")
	require.NoError(t, err)
	assert.Equal(t, color.NRGBA{A: 0x80}, c)

	c, err = ParseColor("")
	require.NoError(t, err)
	assert.Equal(t, color.White, c)

	_, err = ParseColor("#12")
	assert.Error(t, err)
	_, err = ParseColor("#zzzzzz")
	assert.Error(t, err)
}

func TestOptionsFromConfig(t *testing.T) {
	opts, err := OptionsFromConfig(config.GIFConfig{
		Input: "in.png", Output: "out.gif", Frames: 12, Delay: 40 * time.Millisecond, Effect: "fade", Background: "black",
	})
	require.NoError(t, err)

	assert.Equal(t, EffectFade, opts.Effect)
	assert.Equal(t, color.Black, opts.Background)
	assert.Equal(t, 12, opts.Frames)

	_, err = OptionsFromConfig(config.GIFConfig{Effect: "nope"})
	assert.Error(t, err)
}
