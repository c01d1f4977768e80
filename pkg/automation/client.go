package automation

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"
	"golang.org/x/text/width"

	"github.com/dmitrymomot/sessiongate/pkg/cache"
	"github.com/dmitrymomot/sessiongate/pkg/logger"
	"github.com/dmitrymomot/sessiongate/pkg/session"
)

const (
	eventsBufferSize = 64
	maxLineSize      = 1 << 20
)

// Client runs the automation binary for one session.
type Client struct {
	cfg       Config
	sessionID string
	binary    string
	logger    *slog.Logger

	events    chan session.Event
	done      chan struct{}
	closeOnce sync.Once

	mu     sync.Mutex
	proc   *process
	closed bool

	resolves singleflight.Group
	resolved *cache.LRU[string, string]
}

// Option configures a Client.
type Option func(*Client)

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// New prepares a client for sessionID. The process is not started until
// Initialize is called.
func New(cfg Config, sessionID string, opts ...Option) (*Client, error) {
	if cfg.Binary == "" {
		return nil, ErrBinaryNotConfigured
	}
	binary, err := exec.LookPath(cfg.Binary)
	if err != nil {
		return nil, errors.Join(ErrBinaryNotFound, err)
	}

	c := &Client{
		cfg:       cfg,
		sessionID: sessionID,
		binary:    binary,
		logger:    slog.Default(),
		events:    make(chan session.Event, eventsBufferSize),
		done:      make(chan struct{}),
		resolved:  cache.New[string, string](max(cfg.ResolveCacheSize, 1), cache.WithTTL(cfg.ResolveCacheTTL)),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = c.logger.With(logger.Component("automation"), logger.SessionID(sessionID))
	return c, nil
}

// Factory adapts New to session.ClientFactory.
func Factory(cfg Config, log *slog.Logger) session.ClientFactory {
	return func(sessionID string) (session.Client, error) {
		c, err := New(cfg, sessionID, WithLogger(log))
		if err != nil {
			return nil, err
		}
		return c, nil
	}
}

// DataDir returns the credential directory of the session.
func (c *Client) DataDir() string {
	return filepath.Join(c.cfg.DataDir, c.sessionID)
}

// Initialize starts a fresh process, stopping the previous one first.
// It returns once the process is running; progress arrives on Events.
func (c *Client) Initialize(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrClosed
	}
	old := c.proc
	c.proc = nil
	c.mu.Unlock()

	if old != nil {
		c.logger.Info("restarting automation process", logger.PID(old.pid()))
		old.stop(c.cfg.StopTimeout)
	}

	dir := c.DataDir()
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return errors.Join(ErrStartFailed, err)
	}

	args := append(slices.Clone(c.cfg.Args),
		"--session", c.sessionID,
		"--data-dir", dir,
		"--qr-timeout", strconv.FormatInt(c.cfg.QRTimeout.Milliseconds(), 10),
	)
	cmd := exec.Command(c.binary, args...)
	cmd.Env = append(os.Environ(), c.cfg.Env...)
	cmd.Stderr = &logWriter{logger: c.logger.With(slog.String("stream", "stderr"))}

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return errors.Join(ErrStartFailed, err)
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return errors.Join(ErrStartFailed, err)
	}
	if err := cmd.Start(); err != nil {
		return errors.Join(ErrStartFailed, err)
	}

	p := newProcess(cmd, stdin)
	go c.supervise(p, stdout)

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		p.stop(c.cfg.StopTimeout)
		return ErrClosed
	}
	c.proc = p
	c.mu.Unlock()

	c.logger.Info("automation process started", logger.PID(p.pid()))
	return nil
}

// supervise reads stdout until the process closes it, then reaps the process.
func (c *Client) supervise(p *process, stdout io.Reader) {
	c.readLoop(p, stdout)
	err := p.cmd.Wait()
	p.finish(err)

	c.mu.Lock()
	if c.proc == p {
		c.proc = nil
	}
	c.mu.Unlock()

	if p.stopping.Load() {
		c.logger.Debug("automation process stopped", logger.PID(p.pid()))
		return
	}

	reason := "automation process exited"
	if err != nil {
		reason = fmt.Sprintf("%s: %v", reason, err)
	}
	c.logger.Warn(reason, logger.PID(p.pid()))
	c.emit(session.Disconnected(reason))
}

func (c *Client) readLoop(p *process, stdout io.Reader) {
	scanner := bufio.NewScanner(stdout)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	for scanner.Scan() {
		line := scanner.Bytes()
		var msg message
		if err := json.Unmarshal(line, &msg); err != nil || msg.Type == "" {
			c.logger.Debug(string(line), slog.String("stream", "stdout"))
			continue
		}

		// A stopping process may still flush events; they belong to a
		// superseded attempt.
		if msg.Type != msgResult && p.stopping.Load() {
			continue
		}

		switch msg.Type {
		case msgQR:
			c.emit(session.QR(msg.Data))
		case msgReady:
			c.emit(session.Ready())
		case msgAuthFailure:
			c.emit(session.AuthFailure(msg.Reason))
		case msgDisconnected:
			c.emit(session.Disconnected(msg.Reason))
		case msgResult:
			p.deliver(msg)
		default:
			c.logger.Debug("unknown message type", slog.String("type", msg.Type))
		}
	}
	if err := scanner.Err(); err != nil {
		c.logger.Warn("failed to read automation output", logger.Error(err))
		// Drain so the process is not blocked on a full pipe.
		_, _ = io.Copy(io.Discard, stdout)
	}
}

func (c *Client) emit(ev session.Event) {
	select {
	case c.events <- ev:
	case <-c.done:
	}
}

func (c *Client) request(ctx context.Context, cmd command) (string, error) {
	c.mu.Lock()
	p := c.proc
	c.mu.Unlock()
	if p == nil {
		return "", ErrNotRunning
	}

	if c.cfg.RequestTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.cfg.RequestTimeout)
		defer cancel()
	}

	cmd.ID = uuid.NewString()
	ch := p.register(cmd.ID)
	defer p.unregister(cmd.ID)

	line, err := json.Marshal(cmd)
	if err != nil {
		return "", err
	}
	if err := p.write(append(line, '\n')); err != nil {
		return "", errors.Join(ErrNotRunning, err)
	}

	select {
	case res := <-ch:
		if !res.OK {
			return "", errors.Join(ErrCommandFailed, errors.New(res.Error))
		}
		return res.Value, nil
	case <-p.done:
		return "", p.exited()
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

// ResolveCanonicalID maps a phone number to a chat id. Inputs that already
// are chat ids are returned unchanged apart from width folding. Concurrent
// lookups of the same number share one request and registered numbers are
// cached.
func (c *Client) ResolveCanonicalID(ctx context.Context, raw string) (string, bool, error) {
	raw = width.Fold.String(strings.TrimSpace(raw))
	if IsChatID(raw) {
		return raw, true, nil
	}

	number := NormalizeNumber(raw)
	if number == "" {
		return "", false, nil
	}

	if chatID, ok := c.resolved.Get(number); ok {
		return chatID, true, nil
	}

	// The shared lookup outlives any single caller; request bounds it.
	res := c.resolves.DoChan(number, func() (any, error) {
		return c.request(context.WithoutCancel(ctx), command{Cmd: cmdResolve, Number: number})
	})
	var r singleflight.Result
	select {
	case r = <-res:
	case <-ctx.Done():
		return "", false, ctx.Err()
	}
	if r.Err != nil {
		return "", false, r.Err
	}
	chatID := r.Val.(string)
	if chatID == "" {
		return "", false, nil
	}
	c.resolved.Put(number, chatID)
	return chatID, true, nil
}

// SendMessage delivers text to chatID.
func (c *Client) SendMessage(ctx context.Context, chatID, text string) error {
	_, err := c.request(ctx, command{Cmd: cmdSend, To: chatID, Text: text})
	return err
}

// Events returns the lifecycle event stream.
func (c *Client) Events() <-chan session.Event {
	return c.events
}

// Close stops the process. The client cannot be initialized again.
func (c *Client) Close() error {
	c.closeOnce.Do(func() {
		c.mu.Lock()
		c.closed = true
		p := c.proc
		c.proc = nil
		c.mu.Unlock()

		close(c.done)
		if p != nil {
			p.stop(c.cfg.StopTimeout)
		}
	})
	return nil
}
