package session

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/dmitrymomot/sessiongate/pkg/backoff"
	"github.com/dmitrymomot/sessiongate/pkg/logger"
)

// controller serializes every state change of one handle.
type controller struct {
	h        *Handle
	factory  ClientFactory
	policy   backoff.Policy
	logger   *slog.Logger
	now      func() time.Time
	onChange func(prev, next Snapshot, ev Event)

	events   <-chan Event
	timer    *time.Timer
	timerGen uint64
	initGen  uint64
}

func (c *controller) run() {
	defer close(c.h.done)
	defer c.stopTimer()

	if err := c.ensureClient(); err != nil {
		c.fail(err)
	} else {
		c.initialize()
	}

	for {
		select {
		case ev, ok := <-c.events:
			if !ok {
				c.events = nil
				continue
			}
			c.apply(ev)
		case ev := <-c.h.inbox:
			c.apply(ev)
			if ev.ack != nil {
				close(ev.ack)
			}
			if c.h.Snapshot().State == StateClosed {
				return
			}
		}
	}
}

func (c *controller) apply(ev Event) {
	switch ev.Kind {
	case EventReconnect:
		if ev.gen != c.timerGen {
			c.logger.Debug("stale reconnect dropped", logger.SessionID(c.h.id))
			return
		}
	case EventInitFailed:
		if ev.gen != c.initGen {
			c.logger.Debug("stale initialization failure dropped", logger.SessionID(c.h.id), slog.String("reason", ev.Reason))
			return
		}
	}

	cur := c.h.Snapshot()
	next, effects, ok := Transition(cur, ev, c.policy, c.now())
	if !ok {
		c.logger.Debug("event ignored",
			logger.SessionID(c.h.id),
			logger.State(cur.State.String()),
			slog.String("event", string(ev.Kind)),
		)
		return
	}

	c.publish(cur, next, ev)
	for _, eff := range effects {
		c.execute(eff)
	}
}

func (c *controller) execute(eff Effect) {
	switch eff.Kind {
	case EffectInitialize:
		if err := c.ensureClient(); err != nil {
			c.fail(err)
			return
		}
		c.initialize()

	case EffectScheduleReconnect:
		c.stopTimer()
		c.timerGen++
		gen := c.timerGen
		c.timer = time.AfterFunc(eff.Delay, func() {
			c.h.post(c.h.ctx, Event{Kind: EventReconnect, gen: gen})
		})
		c.logger.Info("reconnect scheduled",
			logger.SessionID(c.h.id),
			logger.Duration(eff.Delay),
			logger.RetryCount(c.h.Snapshot().RetryCount),
		)

	case EffectCancelReconnect:
		c.stopTimer()
		c.timerGen++

	case EffectCloseClient:
		c.initGen++
		c.h.cancel()
		if client := c.h.currentClient(); client != nil {
			if err := client.Close(); err != nil {
				c.logger.Warn("failed to close client", logger.SessionID(c.h.id), logger.Error(err))
			}
		}
	}
}

// ensureClient constructs the client on first use. A handle keeps the same
// client for its whole life.
func (c *controller) ensureClient() error {
	if c.h.currentClient() != nil {
		return nil
	}
	client, err := c.factory(c.h.id)
	if err != nil {
		return err
	}
	c.h.setClient(client)
	c.events = client.Events()
	return nil
}

// initialize runs Client.Initialize without blocking the controller. A
// returned error or panic comes back as an init_failed event.
func (c *controller) initialize() {
	c.initGen++
	gen := c.initGen
	client := c.h.currentClient()
	ctx := c.h.ctx

	go func() {
		var err error
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("panic during initialization: %v", r)
			}
			if err != nil {
				c.h.post(ctx, Event{Kind: EventInitFailed, Reason: err.Error(), gen: gen})
			}
		}()
		err = client.Initialize(ctx)
	}()
}

// fail parks the session when the client cannot even be constructed.
func (c *controller) fail(err error) {
	cur := c.h.Snapshot()
	next := cur
	next.State = StateDisconnectedPermanent
	next.PairingPayload = ""
	next.LastError = describe(ErrInitializationFailed, err.Error())
	next.UpdatedAt = c.now()

	c.logger.Error("failed to construct client", logger.SessionID(c.h.id), logger.Error(err))
	c.publish(cur, next, Event{Kind: EventInitFailed, Reason: err.Error()})
}

func (c *controller) publish(prev, next Snapshot, ev Event) {
	c.h.snap.Store(&next)

	level := slog.LevelInfo
	if next.State == StateAuthFailed || next.State == StateDisconnectedPermanent {
		level = slog.LevelWarn
	}
	c.logger.LogAttrs(c.h.ctx, level, "session state changed",
		logger.SessionID(c.h.id),
		logger.Transition(prev.State.String(), next.State.String(), string(ev.Kind)),
		logger.RetryCount(next.RetryCount),
	)

	if c.onChange != nil {
		c.onChange(prev, next, ev)
	}
}

func (c *controller) stopTimer() {
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
}
