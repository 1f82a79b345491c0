package cli

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/gif"
	"image/png"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/fx"
	"go.uber.org/fx/fxtest"

	"github.com/rbxservers/rbxservers-bot/internal/keepalive"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()

	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	cmd.SetArgs(append([]string{"--config", filepath.Join(t.TempDir(), "none.yaml"), "--log-level", "error"}, args...))

	err := cmd.ExecuteContext(context.Background())

	return out.String(), err
}

func TestVersionCmd(t *testing.T) {
	out, err := run(t, "version")

	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "rbxservers dev"), out)
}

func TestSmokeCmd(t *testing.T) {
	healthy := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer tkn", r.Header.Get("Authorization"))
		_, _ = w.Write([]byte(`{"status":"ok","success":true}`))
	}))
	defer healthy.Close()

	out, err := run(t, "smoke", "--base-url", healthy.URL, "--token", "tkn")
	require.NoError(t, err)
	assert.Contains(t, out, "api: 3/3 passed")
	assert.Contains(t, out, "bot: 3/3 passed")

	out, err = run(t, "smoke", "--base-url", healthy.URL, "--token", "tkn", "--suite", "bot")
	require.NoError(t, err)
	assert.NotContains(t, out, "api:")
}

func TestSmokeCmd_Failures(t *testing.T) {
	broken := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api/health" {
			_, _ = w.Write([]byte(`{"status":"ok"}`))

			return
		}
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer broken.Close()

	out, err := run(t, "smoke", "--base-url", broken.URL, "--suite", "api")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "2 failed endpoint(s)")
	assert.Contains(t, out, "api: 1/3 passed")
	assert.Equal(t, 1, exitCode(err))
}

func TestSmokeCmd_Errors(t *testing.T) {
	_, err := run(t, "smoke")
	assert.ErrorContains(t, err, "base URL is not configured")

	_, err = run(t, "smoke", "--base-url", "http://127.0.0.1:1", "--suite", "missing")
	assert.Error(t, err)
}

func TestGifCmd(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "logo.png")
	output := filepath.Join(dir, "logo.gif")

	img := image.NewNRGBA(image.Rect(0, 0, 20, 20))
	for i := 0; i < 20; i++ {
		img.Set(i, i, color.NRGBA{R: 255, A: 255})
	}
	f, err := os.Create(input)
	require.NoError(t, err)
	require.NoError(t, png.Encode(f, img))
	require.NoError(t, f.Close())

	out, err := run(t, "gif", "-i", input, "-o", output, "--frames", "4", "--delay", "20ms", "--effect", "pulse")
	require.NoError(t, err)
	assert.Contains(t, out, "4 frames, 20x20")

	g, err := os.Open(output)
	require.NoError(t, err)
	defer g.Close()
	anim, err := gif.DecodeAll(g)
	require.NoError(t, err)
	assert.Len(t, anim.Image, 4)
	assert.Equal(t, []int{2, 2, 2, 2}, anim.Delay)

	_, err = run(t, "gif", "-i", input, "-o", output, "--effect", "wobble")
	assert.ErrorContains(t, err, "unknown effect")

	_, err = run(t, "gif", "-i", input, "-o", output, "--frames", "0")
	assert.ErrorContains(t, err, "frame count")
}

func TestChromeCheckCmd_Failure(t *testing.T) {
	_, err := run(t, "chromecheck", "--exec-path", filepath.Join(t.TempDir(), "no-chrome"), "--timeout", "10s")

	require.Error(t, err)
	assert.Equal(t, 1, exitCode(err))
	assert.Contains(t, err.Error(), "chrome is not available")
}

func TestExitCode(t *testing.T) {
	assert.Equal(t, 1, exitCode(errors.New("plain")))
	assert.Equal(t, 2, exitCode(&exitError{code: 2, err: errors.New("wrapped")}))
}

func TestServeOptions_Validate(t *testing.T) {
	opts := &rootOptions{configPath: filepath.Join(t.TempDir(), "none.yaml")}

	require.NoError(t, fx.ValidateApp(serveOptions(opts, false)...))
	require.NoError(t, fx.ValidateApp(keepAliveOptions(opts, "")...))
}

func TestKeepAliveOptions_Serves(t *testing.T) {
	opts := &rootOptions{configPath: filepath.Join(t.TempDir(), "none.yaml"), logLevel: "error"}

	var server *keepalive.Server
	app := fxtest.New(t, append(keepAliveOptions(opts, "127.0.0.1:0"), fx.Populate(&server))...)
	app.RequireStart()
	defer app.RequireStop()

	resp, err := http.Get("http://" + server.Addr() + "/status")
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, resp.Body.Close())
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), "bot: disabled")
}
