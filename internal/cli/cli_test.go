package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/zeusync/physim/internal/config"
	"github.com/zeusync/physim/internal/core/systems/physics/engine"
	"github.com/zeusync/physim/internal/server"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// quiet isolates the test from any physim.yaml and keeps the log down.
func quiet(t *testing.T) {
	t.Helper()
	t.Chdir(t.TempDir())
	t.Setenv("PHYSIM_LOGGER_LEVEL", "error")
}

func execute(ctx context.Context, args ...string) (string, error) {
	cmd := NewRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(ctx)
	return out.String(), err
}

func lastLine(s string) string {
	lines := strings.Split(strings.TrimSpace(s), "\n")
	return lines[len(lines)-1]
}

func TestVersion(t *testing.T) {
	out, err := execute(context.Background(), "--version")
	require.NoError(t, err)
	assert.Equal(t, "physim dev\n", out)

	out, err = execute(context.Background(), "version")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "physim dev "), out)
}

func TestScenes(t *testing.T) {
	quiet(t)
	out, err := execute(context.Background(), "scenes")
	require.NoError(t, err)
	assert.Contains(t, out, "drop")
	assert.Contains(t, out, "pegboard")
	assert.Contains(t, out, "A 10 kg ball")
}

func TestSimulate_Text(t *testing.T) {
	quiet(t)
	out, err := execute(context.Background(), "simulate", "-d", "3s", "--every", "1s")
	require.NoError(t, err)

	reports := 0
	for _, line := range strings.Split(out, "\n") {
		if strings.HasPrefix(line, "t=") {
			reports++
			assert.Contains(t, line, "ball")
		}
	}
	assert.Equal(t, 3, reports)
	assert.Contains(t, out, "bounces ball         1\n")
	assert.True(t, strings.HasPrefix(lastLine(out), "ticks 360  collisions "), lastLine(out))
	assert.Contains(t, lastLine(out), "digest ")
}

func TestSimulate_RestingContactsAreNotBounces(t *testing.T) {
	quiet(t)
	bounces := func(d string) string {
		out, err := execute(context.Background(), "simulate", "-d", d, "--every", d)
		require.NoError(t, err)
		for _, line := range strings.Split(out, "\n") {
			if strings.HasPrefix(line, "bounces ball") {
				return line
			}
		}
		t.Fatalf("no bounce line in %q", out)
		return ""
	}

	settled := bounces("20s")
	assert.Equal(t, settled, bounces("40s"), "a ball at rest stops bouncing")
	assert.NotEqual(t, "bounces ball         0", settled)
}

func TestSimulate_IsDeterministic(t *testing.T) {
	quiet(t)
	first, err := execute(context.Background(), "simulate", "-d", "4s", "--scene", "pegboard")
	require.NoError(t, err)
	second, err := execute(context.Background(), "simulate", "-d", "4s", "--scene", "pegboard")
	require.NoError(t, err)

	assert.Equal(t, lastLine(first), lastLine(second))
}

func TestSimulate_JSON(t *testing.T) {
	quiet(t)
	out, err := execute(context.Background(), "simulate", "-d", "1s", "--json", "--scene", "pegboard")
	require.NoError(t, err)

	var frame engine.Frame
	require.NoError(t, json.Unmarshal([]byte(out), &frame))
	assert.Equal(t, uint64(120), frame.Tick)
	assert.Len(t, frame.Bodies, 9)
	assert.Equal(t, frame.Digest(), frame.Hash)
}

func TestSimulate_InvalidFlags(t *testing.T) {
	quiet(t)
	_, err := execute(context.Background(), "simulate", "-d", "0s")
	assert.ErrorIs(t, err, ErrInvalidFlag)

	_, err = execute(context.Background(), "simulate", "--every=-1s")
	assert.ErrorIs(t, err, ErrInvalidFlag)
}

func TestConfigErrors(t *testing.T) {
	quiet(t)
	_, err := execute(context.Background(), "simulate", "--config", "missing.yaml")
	assert.Error(t, err)

	_, err = execute(context.Background(), "simulate", "--log-level", "loud")
	assert.ErrorIs(t, err, config.ErrInvalid)

	_, err = execute(context.Background(), "simulate", "--scene", "nowhere.yaml")
	assert.Error(t, err)
}

func TestServe_StopsOnCancel(t *testing.T) {
	quiet(t)
	ctx, cancel := context.WithTimeout(context.Background(), 300*time.Millisecond)
	defer cancel()

	_, err := execute(ctx, "serve", "--addr", "127.0.0.1:0")
	assert.NoError(t, err)
}

func TestServe_WithQUIC(t *testing.T) {
	quiet(t)
	ctx, cancel := context.WithTimeout(context.Background(), 300*time.Millisecond)
	defer cancel()

	_, err := execute(ctx, "serve", "--addr", "127.0.0.1:0", "--quic-addr", "127.0.0.1:0")
	assert.NoError(t, err)
}

func TestServe_ListenError(t *testing.T) {
	quiet(t)
	_, err := execute(context.Background(), "serve", "--addr", "127.0.0.1:99999")
	assert.ErrorIs(t, err, server.ErrListenerFailed)
}
