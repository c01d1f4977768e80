// Package backoff computes retry delays for reconnecting sessions.
//
// A Policy combines a delay Strategy with an attempt ceiling. The manager asks
// the policy for the delay before attempt N and whether attempt N is allowed at
// all; once the ceiling is reached the caller stops retrying and surfaces the
// failure to an operator instead.
//
// # Usage
//
//	p := backoff.Policy{
//	    Strategy: backoff.Exponential{
//	        Initial:    time.Second,
//	        Max:        time.Minute,
//	        Multiplier: 2,
//	        Jitter:     0.1,
//	    },
//	    MaxAttempts: 5,
//	}
//
//	if p.Allowed(attempt) {
//	    time.AfterFunc(p.Delay(attempt), reconnect)
//	}
//
// Delays are never shorter than MinInterval so a misconfigured zero base delay
// cannot turn a reconnect loop into a busy loop.
package backoff
