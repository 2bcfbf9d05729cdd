// Package storetest provides an in-memory Gateway for tests.
package storetest

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/draintech/drainwatch/internal/store"
	"github.com/google/uuid"
)

// WriteCall records one write issued against the fake
type WriteCall struct {
	Path  string
	Value interface{}
}

// Fake is an in-memory store.Gateway backed by a document tree. Reads serve
// the tree, writes are recorded verbatim and applied, and subscriptions are
// driven by the test through Emit/EmitError.
type Fake struct {
	mu          sync.Mutex
	root        map[string]interface{}
	pathErrs    map[string]error
	subs        map[string][]*Sub
	SetCalls    []WriteCall
	PushCalls   []WriteCall
	DeleteCalls []string
}

// NewFake creates an empty fake gateway
func NewFake() *Fake {
	return &Fake{
		root:     make(map[string]interface{}),
		pathErrs: make(map[string]error),
		subs:     make(map[string][]*Sub),
	}
}

// Seed places a value at path without recording a write
func (f *Fake) Seed(path string, raw interface{}) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.setNode(path, raw)
}

// FailPath makes every operation on path return err
func (f *Fake) FailPath(path string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pathErrs[path] = err
}

// Subs returns the subscriptions opened on path, in order
func (f *Fake) Subs(path string) []*Sub {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]*Sub(nil), f.subs[path]...)
}

func (f *Fake) Get(_ context.Context, path string, _ store.Query) (store.Value, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.pathErrs[path]; err != nil {
		return store.Value{}, err
	}
	return store.NewValue(f.getNode(path)), nil
}

func (f *Fake) Set(_ context.Context, path string, value interface{}) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.pathErrs[path]; err != nil {
		return err
	}
	f.SetCalls = append(f.SetCalls, WriteCall{Path: path, Value: value})
	f.setNode(path, value)
	return nil
}

func (f *Fake) Push(_ context.Context, path string, value interface{}) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.pathErrs[path]; err != nil {
		return "", err
	}
	f.PushCalls = append(f.PushCalls, WriteCall{Path: path, Value: value})

	key := uuid.New().String()
	f.setNode(path+"/"+key, value)
	return key, nil
}

func (f *Fake) Delete(_ context.Context, path string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.pathErrs[path]; err != nil {
		return err
	}
	f.DeleteCalls = append(f.DeleteCalls, path)
	f.deleteNode(path)
	return nil
}

func (f *Fake) Subscribe(_ context.Context, path string, _ store.Query) (store.Subscription, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.pathErrs[path]; err != nil {
		return nil, err
	}
	sub := &Sub{
		events: make(chan store.Event, 16),
		errs:   make(chan error, 1),
	}
	f.subs[path] = append(f.subs[path], sub)
	return sub, nil
}

var _ store.Gateway = (*Fake)(nil)

func segments(path string) []string {
	return strings.Split(strings.Trim(path, "/"), "/")
}

func (f *Fake) getNode(path string) interface{} {
	var node interface{} = f.root
	for _, seg := range segments(path) {
		m, ok := node.(map[string]interface{})
		if !ok {
			return nil
		}
		node = m[seg]
	}
	return node
}

func (f *Fake) setNode(path string, value interface{}) {
	segs := segments(path)
	node := f.root
	for _, seg := range segs[:len(segs)-1] {
		child, ok := node[seg].(map[string]interface{})
		if !ok {
			child = map[string]interface{}{}
			node[seg] = child
		}
		node = child
	}
	node[segs[len(segs)-1]] = value
}

func (f *Fake) deleteNode(path string) {
	segs := segments(path)
	node := f.root
	for _, seg := range segs[:len(segs)-1] {
		child, ok := node[seg].(map[string]interface{})
		if !ok {
			return
		}
		node = child
	}
	delete(node, segs[len(segs)-1])
}

// Sub is a test-driven subscription
type Sub struct {
	events    chan store.Event
	errs      chan error
	closeOnce sync.Once
	mu        sync.Mutex
	closed    bool
}

func (s *Sub) Events() <-chan store.Event { return s.events }
func (s *Sub) Errors() <-chan error       { return s.errs }

func (s *Sub) Close() {
	s.closeOnce.Do(func() {
		s.mu.Lock()
		s.closed = true
		s.mu.Unlock()
		close(s.events)
	})
}

// Closed reports whether the consumer detached the subscription
func (s *Sub) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

// Emit delivers a raw value to the subscriber
func (s *Sub) Emit(raw interface{}) {
	s.events <- store.Event{Value: store.NewValue(raw)}
}

// EmitError delivers a subscription error
func (s *Sub) EmitError(err error) {
	select {
	case s.errs <- err:
	default:
		panic(fmt.Sprintf("storetest: error channel full: %v", err))
	}
}
