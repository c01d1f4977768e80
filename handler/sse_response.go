package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/starfederation/datastar-go/datastar"
)

// SSEHandler runs for the lifetime of a DataStar SSE connection. The
// connection is closed when it returns or the client disconnects.
type SSEHandler func(stream StreamContext) error

// StreamContext extends Context with SSE streaming capabilities.
type StreamContext interface {
	Context

	// SendComponent patches a templ component into the page.
	SendComponent(component TemplComponent, opts ...TemplOption) error

	// SendSignals updates frontend signals.
	SendSignals(signals map[string]any) error
}

type sseResponse struct {
	handler SSEHandler
}

// Render validates the DataStar connection and executes the SSE handler.
func (s sseResponse) Render(w http.ResponseWriter, r *http.Request) error {
	if !IsDataStar(r) {
		return ErrBadRequest.WithMessage("SSE endpoint requires DataStar connection")
	}

	// Streams outlive the server's write timeout.
	_ = http.NewResponseController(w).SetWriteDeadline(time.Time{})

	return s.handler(&streamContext{
		Context: NewContext(w, r),
		sse:     datastar.NewSSE(w, r),
	})
}

// SSE creates a response that keeps the connection open and runs handler.
//
//	return handler.SSE(func(stream handler.StreamContext) error {
//		sub := manager.Subscribe(stream)
//		defer sub.Close()
//		for msg := range sub.Receive() {
//			if err := stream.SendComponent(view(msg.Data)); err != nil {
//				return err
//			}
//		}
//		return nil
//	})
func SSE(handler SSEHandler) Response {
	return sseResponse{handler: handler}
}

type streamContext struct {
	Context
	sse *datastar.ServerSentEventGenerator
}

func (c *streamContext) SendComponent(component TemplComponent, opts ...TemplOption) error {
	if c.sse == nil {
		return ErrSSENotInitialized
	}
	return c.sse.PatchElementTempl(component, opts...)
}

func (c *streamContext) SendSignals(signals map[string]any) error {
	if c.sse == nil {
		return ErrSSENotInitialized
	}
	data, err := json.Marshal(signals)
	if err != nil {
		return err
	}
	return c.sse.PatchSignals(data)
}
