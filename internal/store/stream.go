package store

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"

	"go.uber.org/zap"
)

// Subscribe attaches a live listener on path. The store streams change
// events over a held-open response; each event updates a local mirror of the
// subscribed subtree and the merged value is delivered on the Events channel,
// so consumers always observe a full snapshot.
func (c *Client) Subscribe(ctx context.Context, path string, q Query) (Subscription, error) {
	ctx, cancel := context.WithCancel(ctx)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.nodeURL(path, q), nil)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "text/event-stream")

	resp, err := c.streamHTTP.Do(req)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("subscribing to %s: %w", path, err)
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		resp.Body.Close()
		cancel()
		return nil, fmt.Errorf("subscribing to %s: %s: %s", path, resp.Status, storeErrorMessage(body))
	}

	s := &stream{
		events: make(chan Event, 8),
		errs:   make(chan error, 1),
		cancel: cancel,
		logger: c.logger.With(zap.String("path", path)),
	}
	go s.read(ctx, resp.Body)
	return s, nil
}

type stream struct {
	events    chan Event
	errs      chan error
	cancel    context.CancelFunc
	closeOnce sync.Once
	logger    *zap.Logger
}

func (s *stream) Events() <-chan Event { return s.events }
func (s *stream) Errors() <-chan error { return s.errs }

// Close detaches the listener. Safe to call more than once.
func (s *stream) Close() {
	s.closeOnce.Do(s.cancel)
}

// changeEvent is the wire payload of a put or patch event
type changeEvent struct {
	Path string      `json:"path"`
	Data interface{} `json:"data"`
}

func (s *stream) read(ctx context.Context, body io.ReadCloser) {
	defer body.Close()
	defer close(s.events)

	var tree interface{}
	var eventName, eventData string

	scanner := bufio.NewScanner(body)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)

	for scanner.Scan() {
		line := scanner.Text()
		switch {
		case strings.HasPrefix(line, "event:"):
			eventName = strings.TrimSpace(strings.TrimPrefix(line, "event:"))
		case strings.HasPrefix(line, "data:"):
			eventData = strings.TrimSpace(strings.TrimPrefix(line, "data:"))
		case line == "":
			if eventName == "" {
				continue
			}
			done := s.dispatch(ctx, eventName, eventData, &tree)
			eventName, eventData = "", ""
			if done {
				return
			}
		}
	}

	if err := scanner.Err(); err != nil && ctx.Err() == nil {
		s.fail(fmt.Errorf("stream read: %w", err))
		return
	}
	if ctx.Err() == nil {
		s.fail(fmt.Errorf("stream closed by server"))
	}
}

// dispatch applies one server event; returns true when the stream is done
func (s *stream) dispatch(ctx context.Context, name, data string, tree *interface{}) bool {
	switch name {
	case "put", "patch":
		var change changeEvent
		if err := json.Unmarshal([]byte(data), &change); err != nil {
			s.fail(fmt.Errorf("decoding %s event: %w", name, err))
			return true
		}
		if name == "put" {
			*tree = setNode(*tree, change.Path, change.Data)
		} else {
			*tree = mergeNode(*tree, change.Path, change.Data)
		}
		select {
		case s.events <- Event{Value: NewValue(*tree)}:
		case <-ctx.Done():
			return true
		}
	case "keep-alive":
		// heartbeat, nothing to apply
	case "cancel", "auth_revoked":
		s.fail(fmt.Errorf("subscription revoked by server: %s", name))
		return true
	default:
		s.logger.Debug("ignoring unknown stream event", zap.String("event", name))
	}
	return false
}

func (s *stream) fail(err error) {
	select {
	case s.errs <- err:
	default:
	}
}

// setNode replaces the node at path (relative to the subscribed root) and
// returns the updated tree
func setNode(tree interface{}, path string, data interface{}) interface{} {
	segments := splitPath(path)
	if len(segments) == 0 {
		return data
	}

	root, ok := tree.(map[string]interface{})
	if !ok {
		root = map[string]interface{}{}
	}
	node := root
	for _, seg := range segments[:len(segments)-1] {
		child, ok := node[seg].(map[string]interface{})
		if !ok {
			child = map[string]interface{}{}
			node[seg] = child
		}
		node = child
	}

	last := segments[len(segments)-1]
	if data == nil {
		delete(node, last)
	} else {
		node[last] = data
	}
	return root
}

// mergeNode merges an object of child updates into the node at path
func mergeNode(tree interface{}, path string, data interface{}) interface{} {
	fields, ok := data.(map[string]interface{})
	if !ok {
		return setNode(tree, path, data)
	}
	for key, value := range fields {
		tree = setNode(tree, path+"/"+key, value)
	}
	return tree
}

func splitPath(path string) []string {
	trimmed := strings.Trim(path, "/")
	if trimmed == "" {
		return nil
	}
	return strings.Split(trimmed, "/")
}
