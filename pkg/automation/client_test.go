package automation_test

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/sessiongate/pkg/automation"
	"github.com/dmitrymomot/sessiongate/pkg/logger"
	"github.com/dmitrymomot/sessiongate/pkg/session"
)

const waitFor = 5 * time.Second

// TestHelperProcess is not a real test. It plays the automation binary when
// the test executable is started by the client under test.
func TestHelperProcess(t *testing.T) {
	if os.Getenv("GO_WANT_HELPER_PROCESS") != "1" {
		return
	}
	os.Exit(runFakeBinary())
}

func runFakeBinary() int {
	var sessionID string
	for i, arg := range os.Args {
		if arg == "--session" && i+1 < len(os.Args) {
			sessionID = os.Args[i+1]
		}
	}

	out := json.NewEncoder(os.Stdout)
	fmt.Println("booting headless browser")
	fmt.Fprintln(os.Stderr, "some diagnostics")

	if strings.HasPrefix(sessionID, "paired") {
		_ = out.Encode(map[string]any{"type": "ready"})
	} else {
		_ = out.Encode(map[string]any{"type": "qr", "data": "QR-" + sessionID})
	}

	in := bufio.NewScanner(os.Stdin)
	for in.Scan() {
		var cmd struct {
			ID     string `json:"id"`
			Cmd    string `json:"cmd"`
			Number string `json:"number"`
			To     string `json:"to"`
			Text   string `json:"text"`
		}
		if err := json.Unmarshal(in.Bytes(), &cmd); err != nil {
			return 2
		}

		res := map[string]any{"type": "result", "id": cmd.ID, "ok": true}
		switch cmd.Cmd {
		case "resolve":
			if cmd.Number == "5555" {
				time.Sleep(300 * time.Millisecond)
			}
			if cmd.Number == "0000" {
				res["value"] = ""
			} else {
				res["value"] = cmd.Number + "@c.us"
			}
		case "send":
			switch cmd.Text {
			case "crash":
				return 3
			case "fail":
				res["ok"] = false
				res["error"] = "boom"
			}
		}
		_ = out.Encode(res)
	}
	return 0
}

func helperConfig(t *testing.T) automation.Config {
	t.Helper()
	return automation.Config{
		Binary:         os.Args[0],
		Args:           []string{"-test.run=^TestHelperProcess$", "--"},
		Env:            []string{"GO_WANT_HELPER_PROCESS=1"},
		DataDir:        t.TempDir(),
		QRTimeout:      time.Second,
		RequestTimeout: waitFor,
		StopTimeout:    time.Second,
	}
}

func newClient(t *testing.T, cfg automation.Config, id string) *automation.Client {
	t.Helper()
	c, err := automation.New(cfg, id, automation.WithLogger(logger.Discard()))
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func nextEvent(t *testing.T, c *automation.Client) session.Event {
	t.Helper()
	select {
	case ev := <-c.Events():
		return ev
	case <-time.After(waitFor):
		t.Fatal("no event received")
		return session.Event{}
	}
}

func TestNew_Validation(t *testing.T) {
	t.Parallel()

	_, err := automation.New(automation.Config{}, "s1")
	require.ErrorIs(t, err, automation.ErrBinaryNotConfigured)

	_, err = automation.New(automation.Config{Binary: "definitely-not-installed-binary"}, "s1")
	require.ErrorIs(t, err, automation.ErrBinaryNotFound)
}

func TestClient_EmitsPairingPayload(t *testing.T) {
	t.Parallel()

	cfg := helperConfig(t)
	c := newClient(t, cfg, "s1")
	require.NoError(t, c.Initialize(context.Background()))

	ev := nextEvent(t, c)
	assert.Equal(t, session.EventQR, ev.Kind)
	assert.Equal(t, "QR-s1", ev.Payload)

	info, err := os.Stat(filepath.Join(cfg.DataDir, "s1"))
	require.NoError(t, err)
	assert.True(t, info.IsDir())
	assert.Equal(t, filepath.Join(cfg.DataDir, "s1"), c.DataDir())
}

func TestClient_ResolveAndSend(t *testing.T) {
	t.Parallel()

	c := newClient(t, helperConfig(t), "paired-1")
	ctx := context.Background()

	_, _, err := c.ResolveCanonicalID(ctx, "+1 555 123 4567")
	require.ErrorIs(t, err, automation.ErrNotRunning)

	require.NoError(t, c.Initialize(ctx))
	assert.Equal(t, session.EventReady, nextEvent(t, c).Kind)

	id, found, err := c.ResolveCanonicalID(ctx, "+1 (555) 123-4567")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "15551234567@c.us", id)

	_, found, err = c.ResolveCanonicalID(ctx, "0000")
	require.NoError(t, err)
	assert.False(t, found)

	id, found, err = c.ResolveCanonicalID(ctx, "120363@g.us")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "120363@g.us", id)

	_, found, err = c.ResolveCanonicalID(ctx, "no digits")
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, c.SendMessage(ctx, "15551234567@c.us", "hi"))

	err = c.SendMessage(ctx, "15551234567@c.us", "fail")
	require.ErrorIs(t, err, automation.ErrCommandFailed)
	assert.Contains(t, err.Error(), "boom")

	// Registered numbers are served from the cache once the process is gone.
	require.NoError(t, c.Close())
	id, found, err = c.ResolveCanonicalID(ctx, "15551234567")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "15551234567@c.us", id)

	_, _, err = c.ResolveCanonicalID(ctx, "0000")
	require.Error(t, err)
}

func TestClient_UnexpectedExitReportsDisconnect(t *testing.T) {
	t.Parallel()

	c := newClient(t, helperConfig(t), "paired-2")
	ctx := context.Background()
	require.NoError(t, c.Initialize(ctx))
	require.Equal(t, session.EventReady, nextEvent(t, c).Kind)

	err := c.SendMessage(ctx, "15551234567@c.us", "crash")
	require.ErrorIs(t, err, automation.ErrProcessExited)

	ev := nextEvent(t, c)
	assert.Equal(t, session.EventDisconnected, ev.Kind)
	assert.Contains(t, ev.Reason, "exit status 3")

	// Re-initializing the same client brings it back.
	require.NoError(t, c.Initialize(ctx))
	assert.Equal(t, session.EventReady, nextEvent(t, c).Kind)
}

func TestClient_RestartAndCloseAreQuiet(t *testing.T) {
	t.Parallel()

	c := newClient(t, helperConfig(t), "s3")
	ctx := context.Background()

	require.NoError(t, c.Initialize(ctx))
	assert.Equal(t, "QR-s3", nextEvent(t, c).Payload)

	require.NoError(t, c.Initialize(ctx))
	assert.Equal(t, session.EventQR, nextEvent(t, c).Kind, "restart produces a fresh pairing payload")

	require.NoError(t, c.Close())
	require.NoError(t, c.Close())

	select {
	case ev := <-c.Events():
		t.Fatalf("unexpected event after close: %+v", ev)
	case <-time.After(200 * time.Millisecond):
	}

	require.ErrorIs(t, c.Initialize(ctx), automation.ErrClosed)
}

func TestFactory(t *testing.T) {
	t.Parallel()

	factory := automation.Factory(helperConfig(t), logger.Discard())
	client, err := factory("s4")
	require.NoError(t, err)
	require.NoError(t, client.Close())

	_, err = automation.Factory(automation.Config{}, nil)("s5")
	require.ErrorIs(t, err, automation.ErrBinaryNotConfigured)
}

func TestClient_SharedResolveSurvivesCanceledCaller(t *testing.T) {
	t.Parallel()

	c := newClient(t, helperConfig(t), "paired-2")
	ctx := context.Background()
	require.NoError(t, c.Initialize(ctx))
	assert.Equal(t, session.EventReady, nextEvent(t, c).Kind)

	impatient, cancel := context.WithTimeout(ctx, 50*time.Millisecond)
	defer cancel()

	errs := make(chan error, 1)
	go func() {
		_, _, err := c.ResolveCanonicalID(impatient, "5555")
		errs <- err
	}()
	time.Sleep(10 * time.Millisecond)

	id, found, err := c.ResolveCanonicalID(ctx, "5555")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "5555@c.us", id)
	require.ErrorIs(t, <-errs, context.DeadlineExceeded)
}

func TestClient_ResolveFoldsFullwidthChatID(t *testing.T) {
	t.Parallel()

	c := newClient(t, helperConfig(t), "s9")
	id, found, err := c.ResolveCanonicalID(context.Background(), " １５５５＠ｃ．ｕｓ ")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "1555@c.us", id)
}

func TestNormalizeNumber(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "15551234567", automation.NormalizeNumber("+1 (555) 123-4567"))
	assert.Equal(t, "", automation.NormalizeNumber("abc"))
	assert.Equal(t, "15551234", automation.NormalizeNumber("+１５５５１２３４"), "fullwidth digits")
	assert.Equal(t, "966501234", automation.NormalizeNumber("+٩٦٦ ٥٠١ ٢٣٤"), "Arabic-Indic digits")
	assert.Equal(t, "91234", automation.NormalizeNumber("+९१२३४"), "Devanagari digits")
	assert.Equal(t, "09", automation.NormalizeNumber("𝟎𝟡"), "mathematical digits")
	assert.Equal(t, "", automation.NormalizeNumber("²³"), "superscripts are not decimal digits")
	assert.True(t, automation.IsChatID("1@c.us"))
	assert.True(t, automation.IsChatID("1@g.us"))
	assert.False(t, automation.IsChatID("15551234567"))
}
