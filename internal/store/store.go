package store

import (
	"context"
)

// Query narrows a read or subscription to a slice of a path's children
type Query struct {
	// OrderBy names the child field to order by. The special value "$key"
	// orders by child key.
	OrderBy string
	// LimitToLast keeps only the last N children in the chosen order.
	// Zero means no limit.
	LimitToLast int
}

// Event carries the current value at a subscribed path after a server push
type Event struct {
	Value Value
}

// Subscription is a live listener on one store path. Events delivers the
// merged value at the path after every server push; Errors delivers at most
// one terminal error. Close detaches the listener.
type Subscription interface {
	Events() <-chan Event
	Errors() <-chan error
	Close()
}

// Gateway is the client-side surface of the hosted realtime document store.
// Implemented by *Client against the real service and by storetest.Fake in
// tests.
type Gateway interface {
	Get(ctx context.Context, path string, q Query) (Value, error)
	Set(ctx context.Context, path string, value interface{}) error
	Push(ctx context.Context, path string, value interface{}) (string, error)
	Delete(ctx context.Context, path string) error
	Subscribe(ctx context.Context, path string, q Query) (Subscription, error)
}
