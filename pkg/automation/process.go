package automation

import (
	"errors"
	"io"
	"os/exec"
	"sync"
	"sync/atomic"
	"time"
)

// process is one running instance of the automation binary.
type process struct {
	cmd   *exec.Cmd
	stdin io.WriteCloser

	writeMu sync.Mutex

	mu      sync.Mutex
	pending map[string]chan message

	done     chan struct{}
	exitErr  error
	stopping atomic.Bool
}

func newProcess(cmd *exec.Cmd, stdin io.WriteCloser) *process {
	return &process{
		cmd:     cmd,
		stdin:   stdin,
		pending: make(map[string]chan message),
		done:    make(chan struct{}),
	}
}

func (p *process) pid() int {
	if p.cmd.Process == nil {
		return 0
	}
	return p.cmd.Process.Pid
}

func (p *process) register(id string) chan message {
	ch := make(chan message, 1)
	p.mu.Lock()
	p.pending[id] = ch
	p.mu.Unlock()
	return ch
}

func (p *process) unregister(id string) {
	p.mu.Lock()
	delete(p.pending, id)
	p.mu.Unlock()
}

// deliver routes a result to the request waiting for it. Results for
// requests that already gave up are dropped.
func (p *process) deliver(msg message) {
	p.mu.Lock()
	ch, ok := p.pending[msg.ID]
	delete(p.pending, msg.ID)
	p.mu.Unlock()

	if ok {
		ch <- msg
	}
}

func (p *process) write(line []byte) error {
	p.writeMu.Lock()
	defer p.writeMu.Unlock()

	select {
	case <-p.done:
		return ErrProcessExited
	default:
	}
	_, err := p.stdin.Write(line)
	return err
}

// finish records the exit status. Called once, after Wait returns.
func (p *process) finish(err error) {
	p.exitErr = err
	close(p.done)
}

func (p *process) exited() error {
	<-p.done
	if p.exitErr != nil {
		return errors.Join(ErrProcessExited, p.exitErr)
	}
	return ErrProcessExited
}

// stop asks the binary to exit by closing its stdin and kills it if it is
// still running after timeout.
func (p *process) stop(timeout time.Duration) {
	p.stopping.Store(true)

	p.writeMu.Lock()
	_ = p.stdin.Close()
	p.writeMu.Unlock()

	select {
	case <-p.done:
		return
	case <-time.After(timeout):
	}

	if p.cmd.Process != nil {
		_ = p.cmd.Process.Kill()
	}
	<-p.done
}
