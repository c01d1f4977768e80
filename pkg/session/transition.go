package session

import (
	"fmt"
	"time"

	"github.com/dmitrymomot/sessiongate/pkg/backoff"
)

// EffectKind is a side effect requested by Transition.
type EffectKind int

const (
	EffectInitialize EffectKind = iota + 1
	EffectScheduleReconnect
	EffectCancelReconnect
	EffectCloseClient
)

func (k EffectKind) String() string {
	switch k {
	case EffectInitialize:
		return "initialize"
	case EffectScheduleReconnect:
		return "schedule_reconnect"
	case EffectCancelReconnect:
		return "cancel_reconnect"
	case EffectCloseClient:
		return "close_client"
	default:
		return "unknown"
	}
}

// Effect is executed by the controller after a transition is published.
type Effect struct {
	Kind  EffectKind
	Delay time.Duration // for EffectScheduleReconnect
}

// Transition computes the snapshot that follows cur when ev is applied.
// It reports false when ev does not apply to the current state; the returned
// snapshot is then cur unchanged and there are no effects.
func Transition(cur Snapshot, ev Event, policy backoff.Policy, now time.Time) (Snapshot, []Effect, bool) {
	next := cur
	var effects []Effect

	switch ev.Kind {
	case EventQR:
		if ev.Payload == "" || !cur.State.in(StateInitializing, StateAwaitingPairing) {
			return cur, nil, false
		}
		next.State = StateAwaitingPairing
		next.PairingPayload = ev.Payload

	case EventReady:
		if !cur.State.in(StateInitializing, StateAwaitingPairing, StateDisconnected) {
			return cur, nil, false
		}
		if cur.State == StateDisconnected {
			effects = append(effects, Effect{Kind: EffectCancelReconnect})
		}
		next.State = StateReady
		next.PairingPayload = ""
		next.LastError = ""
		next.RetryCount = 0

	case EventAuthFailure:
		if cur.State == StateClosed {
			return cur, nil, false
		}
		next.State = StateAuthFailed
		next.PairingPayload = ""
		next.LastError = describe(ErrAuthFailure, ev.Reason)
		effects = append(effects, Effect{Kind: EffectCancelReconnect})

	case EventDisconnected, EventInitFailed:
		live := []State{StateReady, StateInitializing, StateAwaitingPairing}
		if ev.Kind == EventInitFailed {
			live = []State{StateInitializing, StateAwaitingPairing}
		}
		if !cur.State.in(live...) {
			return cur, nil, false
		}
		next.PairingPayload = ""
		if ev.Kind == EventInitFailed {
			next.LastError = describe(ErrInitializationFailed, ev.Reason)
		} else {
			next.LastError = ev.Reason
		}

		attempt := cur.RetryCount + 1
		if !policy.Allowed(attempt) {
			next.State = StateDisconnectedPermanent
			break
		}
		next.State = StateDisconnected
		effects = append(effects, Effect{Kind: EffectScheduleReconnect, Delay: policy.Delay(attempt)})

	case EventReconnect:
		if cur.State != StateDisconnected {
			return cur, nil, false
		}
		next.State = StateInitializing
		next.RetryCount = cur.RetryCount + 1
		effects = append(effects, Effect{Kind: EffectInitialize})

	case EventRepair:
		if !cur.State.in(StateAuthFailed, StateDisconnected, StateDisconnectedPermanent) {
			return cur, nil, false
		}
		next.State = StateInitializing
		next.RetryCount = 0
		next.LastError = ""
		effects = append(effects, Effect{Kind: EffectCancelReconnect}, Effect{Kind: EffectInitialize})

	case EventClose:
		if cur.State == StateClosed {
			return cur, nil, false
		}
		next.State = StateClosed
		next.PairingPayload = ""
		effects = append(effects, Effect{Kind: EffectCancelReconnect}, Effect{Kind: EffectCloseClient})

	default:
		return cur, nil, false
	}

	next.UpdatedAt = now
	return next, effects, true
}

func describe(sentinel error, reason string) string {
	if reason == "" {
		return sentinel.Error()
	}
	return fmt.Sprintf("%s: %s", sentinel, reason)
}
