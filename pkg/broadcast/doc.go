// Package broadcast fans out values to any number of in-process subscribers.
//
// MemoryBroadcaster never blocks the publisher: each subscriber owns a
// buffered channel and a message that does not fit is dropped for that
// subscriber only. Subscriptions end when their context is cancelled, when
// Close is called on the subscriber, or when the broadcaster itself closes.
//
// # Usage
//
//	b := broadcast.NewMemoryBroadcaster[Change](16)
//	defer b.Close()
//
//	sub := b.Subscribe(ctx)
//	go func() {
//	    for msg := range sub.Receive() {
//	        handle(msg.Data)
//	    }
//	}()
//
//	b.Broadcast(Message[Change]{Data: change})
package broadcast
