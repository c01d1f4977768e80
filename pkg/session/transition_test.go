package session_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/sessiongate/pkg/backoff"
	"github.com/dmitrymomot/sessiongate/pkg/session"
)

var testPolicy = backoff.Policy{
	Strategy:    backoff.Exponential{Initial: time.Second, Max: 8 * time.Second, Multiplier: 2},
	MaxAttempts: 3,
}

func kinds(effects []session.Effect) []session.EffectKind {
	out := make([]session.EffectKind, 0, len(effects))
	for _, e := range effects {
		out = append(out, e.Kind)
	}
	return out
}

func TestTransition_Table(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	tests := []struct {
		name    string
		cur     session.Snapshot
		ev      session.Event
		applied bool
		want    session.State
		effects []session.EffectKind
	}{
		{
			name:    "qr while initializing",
			cur:     session.Snapshot{State: session.StateInitializing},
			ev:      session.QR("P1"),
			applied: true,
			want:    session.StateAwaitingPairing,
		},
		{
			name:    "empty qr ignored",
			cur:     session.Snapshot{State: session.StateInitializing},
			ev:      session.QR(""),
			applied: false,
			want:    session.StateInitializing,
		},
		{
			name:    "qr while ready ignored",
			cur:     session.Snapshot{State: session.StateReady},
			ev:      session.QR("P1"),
			applied: false,
			want:    session.StateReady,
		},
		{
			name:    "ready after pairing",
			cur:     session.Snapshot{State: session.StateAwaitingPairing, PairingPayload: "P1"},
			ev:      session.Ready(),
			applied: true,
			want:    session.StateReady,
		},
		{
			name:    "ready while disconnected cancels reconnect",
			cur:     session.Snapshot{State: session.StateDisconnected, RetryCount: 2},
			ev:      session.Ready(),
			applied: true,
			want:    session.StateReady,
			effects: []session.EffectKind{session.EffectCancelReconnect},
		},
		{
			name:    "ready while auth failed ignored",
			cur:     session.Snapshot{State: session.StateAuthFailed},
			ev:      session.Ready(),
			applied: false,
			want:    session.StateAuthFailed,
		},
		{
			name:    "auth failure from ready",
			cur:     session.Snapshot{State: session.StateReady},
			ev:      session.AuthFailure("bad creds"),
			applied: true,
			want:    session.StateAuthFailed,
			effects: []session.EffectKind{session.EffectCancelReconnect},
		},
		{
			name:    "disconnect from ready schedules reconnect",
			cur:     session.Snapshot{State: session.StateReady},
			ev:      session.Disconnected("NAVIGATION"),
			applied: true,
			want:    session.StateDisconnected,
			effects: []session.EffectKind{session.EffectScheduleReconnect},
		},
		{
			name:    "disconnect after last attempt is permanent",
			cur:     session.Snapshot{State: session.StateInitializing, RetryCount: 3},
			ev:      session.Disconnected("gone"),
			applied: true,
			want:    session.StateDisconnectedPermanent,
		},
		{
			name:    "disconnect while disconnected ignored",
			cur:     session.Snapshot{State: session.StateDisconnected},
			ev:      session.Disconnected("again"),
			applied: false,
			want:    session.StateDisconnected,
		},
		{
			name:    "reconnect timer re-initializes",
			cur:     session.Snapshot{State: session.StateDisconnected, RetryCount: 1},
			ev:      session.Event{Kind: session.EventReconnect},
			applied: true,
			want:    session.StateInitializing,
			effects: []session.EffectKind{session.EffectInitialize},
		},
		{
			name:    "reconnect timer after ready ignored",
			cur:     session.Snapshot{State: session.StateReady},
			ev:      session.Event{Kind: session.EventReconnect},
			applied: false,
			want:    session.StateReady,
		},
		{
			name:    "init failure from ready ignored",
			cur:     session.Snapshot{State: session.StateReady},
			ev:      session.Event{Kind: session.EventInitFailed, Reason: "late"},
			applied: false,
			want:    session.StateReady,
		},
		{
			name:    "repair from permanent",
			cur:     session.Snapshot{State: session.StateDisconnectedPermanent, RetryCount: 3, LastError: "x"},
			ev:      session.Event{Kind: session.EventRepair},
			applied: true,
			want:    session.StateInitializing,
			effects: []session.EffectKind{session.EffectCancelReconnect, session.EffectInitialize},
		},
		{
			name:    "repair while ready ignored",
			cur:     session.Snapshot{State: session.StateReady},
			ev:      session.Event{Kind: session.EventRepair},
			applied: false,
			want:    session.StateReady,
		},
		{
			name:    "close from any live state",
			cur:     session.Snapshot{State: session.StateAwaitingPairing, PairingPayload: "P"},
			ev:      session.Event{Kind: session.EventClose},
			applied: true,
			want:    session.StateClosed,
			effects: []session.EffectKind{session.EffectCancelReconnect, session.EffectCloseClient},
		},
		{
			name:    "events after close ignored",
			cur:     session.Snapshot{State: session.StateClosed},
			ev:      session.AuthFailure("late"),
			applied: false,
			want:    session.StateClosed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			next, effects, applied := session.Transition(tt.cur, tt.ev, testPolicy, now)
			assert.Equal(t, tt.applied, applied)
			assert.Equal(t, tt.want, next.State)
			assert.Equal(t, tt.effects, nilIfEmpty(kinds(effects)))
			if applied {
				assert.Equal(t, now, next.UpdatedAt)
			} else {
				assert.Equal(t, tt.cur, next)
			}
		})
	}
}

func nilIfEmpty(k []session.EffectKind) []session.EffectKind {
	if len(k) == 0 {
		return nil
	}
	return k
}

func TestTransition_PairingPayload(t *testing.T) {
	t.Parallel()

	now := time.Now()
	snap := session.Snapshot{ID: "s1", State: session.StateInitializing}

	snap, _, _ = session.Transition(snap, session.QR("P1"), testPolicy, now)
	assert.Equal(t, "P1", snap.PairingPayload)
	assert.True(t, snap.QRNeeded())

	snap, _, _ = session.Transition(snap, session.QR("P2"), testPolicy, now)
	assert.Equal(t, "P2", snap.PairingPayload, "newer qr supersedes the old payload")

	snap, _, _ = session.Transition(snap, session.Ready(), testPolicy, now)
	assert.Empty(t, snap.PairingPayload)
	assert.False(t, snap.QRNeeded())
	assert.True(t, snap.Ready())
}

func TestTransition_RetryAccounting(t *testing.T) {
	t.Parallel()

	now := time.Now()
	snap := session.Snapshot{ID: "s1", State: session.StateReady}

	var delays []time.Duration
	for range testPolicy.MaxAttempts {
		next, effects, ok := session.Transition(snap, session.Disconnected("lost"), testPolicy, now)
		require.True(t, ok)
		require.Equal(t, session.StateDisconnected, next.State)
		require.Len(t, effects, 1)
		delays = append(delays, effects[0].Delay)

		snap, _, ok = session.Transition(next, session.Event{Kind: session.EventReconnect}, testPolicy, now)
		require.True(t, ok)
		require.Equal(t, session.StateInitializing, snap.State)
	}

	assert.Equal(t, []time.Duration{time.Second, 2 * time.Second, 4 * time.Second}, delays)
	assert.Equal(t, 3, snap.RetryCount)

	snap, effects, ok := session.Transition(snap, session.Disconnected("lost"), testPolicy, now)
	require.True(t, ok)
	assert.Equal(t, session.StateDisconnectedPermanent, snap.State)
	assert.Empty(t, effects)
	assert.Equal(t, "lost", snap.LastError)

	snap, _, ok = session.Transition(snap, session.Event{Kind: session.EventRepair}, testPolicy, now)
	require.True(t, ok)
	assert.Equal(t, 0, snap.RetryCount)
	assert.Empty(t, snap.LastError)

	snap, _, _ = session.Transition(snap, session.QR("P"), testPolicy, now)
	snap, _, _ = session.Transition(snap, session.Ready(), testPolicy, now)
	assert.Equal(t, 0, snap.RetryCount)
}

func TestTransition_ErrorDescriptions(t *testing.T) {
	t.Parallel()

	now := time.Now()
	snap, _, _ := session.Transition(session.Snapshot{State: session.StateReady}, session.AuthFailure("bad creds"), testPolicy, now)
	assert.Equal(t, "authentication failure: bad creds", snap.LastError)

	snap, _, _ = session.Transition(session.Snapshot{State: session.StateInitializing}, session.Event{Kind: session.EventInitFailed, Reason: "browser crashed"}, testPolicy, now)
	assert.Equal(t, "client initialization failed: browser crashed", snap.LastError)
	assert.Equal(t, session.StateDisconnected, snap.State)
}
