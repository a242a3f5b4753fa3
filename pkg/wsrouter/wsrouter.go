package wsrouter

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/gorilla/websocket"
)

type Message struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

type HandlerFunc func(ctx context.Context, payload json.RawMessage) error

type Middleware func(next HandlerFunc) HandlerFunc

type WSRouter struct {
	routes      map[string]HandlerFunc
	middlewares []Middleware
}

func New() *WSRouter {
	return &WSRouter{routes: make(map[string]HandlerFunc)}
}

// Use appends middlewares applied around every handler, outermost first.
// Must be called before Handle.
func (r *WSRouter) Use(middlewares ...Middleware) {
	r.middlewares = append(r.middlewares, middlewares...)
}

func (r *WSRouter) Handle(messageType string, handler HandlerFunc) {
	for i := len(r.middlewares) - 1; i >= 0; i-- {
		handler = r.middlewares[i](handler)
	}

	r.routes[messageType] = handler
}

// ServeConn reads messages from conn and dispatches them until the
// connection fails or ctx is cancelled. The error from a handler aborts
// the loop; unknown message types are skipped. ServeConn never writes to
// conn, so a caller may run a dedicated writer alongside it.
func (r *WSRouter) ServeConn(ctx context.Context, conn *websocket.Conn) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		var msg Message
		if err := conn.ReadJSON(&msg); err != nil {
			return err
		}

		handler, ok := r.routes[msg.Type]
		if !ok {
			continue
		}

		if err := handler(context.WithValue(ctx, messageTypeKey, msg.Type), msg.Payload); err != nil {
			return fmt.Errorf("handler %q: %w", msg.Type, err)
		}
	}
}
