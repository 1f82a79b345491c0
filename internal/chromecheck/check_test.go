package chromecheck

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
)

type fakeLauncher struct {
	info  Info
	err   error
	block bool
	got   Config
}

func (f *fakeLauncher) Launch(ctx context.Context, cfg Config) (Info, error) {
	f.got = cfg
	if f.block {
		<-ctx.Done()

		return Info{}, ctx.Err()
	}

	return f.info, f.err
}

func TestChecker_Success(t *testing.T) {
	launcher := &fakeLauncher{info: Info{Product: "HeadlessChrome/130.0", ProtocolVersion: "1.3"}}
	checker := NewChecker(Config{NoSandbox: true}, launcher, zaptest.NewLogger(t))

	info, err := checker.Check(context.Background())

	require.NoError(t, err)
	assert.Equal(t, "HeadlessChrome/130.0", info.Product)
	assert.True(t, launcher.got.NoSandbox)
	assert.Equal(t, defaultTimeout, launcher.got.Timeout)
	assert.Equal(t, 0, ExitCode(err))
}

func TestChecker_LaunchFailure(t *testing.T) {
	launcher := &fakeLauncher{err: errors.New(`exec: "google-chrome": executable file not found in $PATH`)}
	checker := NewChecker(Config{}, launcher, zap.NewNop())

	_, err := checker.Check(context.Background())

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnavailable)
	assert.Contains(t, err.Error(), "executable file not found")
	assert.Equal(t, 1, ExitCode(err))
}

func TestChecker_Timeout(t *testing.T) {
	checker := NewChecker(Config{Timeout: 20 * time.Millisecond}, &fakeLauncher{block: true}, zap.NewNop())

	info, err := checker.Check(context.Background())

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnavailable)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Contains(t, err.Error(), "timed out after 20ms")
	assert.GreaterOrEqual(t, info.Elapsed, 20*time.Millisecond)
}

// TestChromedpLauncher drives a real browser. It only runs when
// CHROMECHECK_E2E is set, since CI images usually lack Chrome.
func TestChromedpLauncher(t *testing.T) {
	if os.Getenv("CHROMECHECK_E2E") == "" {
		t.Skip("set CHROMECHECK_E2E=1 to launch a real browser")
	}

	checker := NewChecker(Config{NoSandbox: true, Timeout: time.Minute}, nil, zaptest.NewLogger(t))

	info, err := checker.Check(context.Background())

	require.NoError(t, err)
	assert.NotEmpty(t, info.Product)
}
