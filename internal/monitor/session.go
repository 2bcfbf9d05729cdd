package monitor

import (
	"context"
	"fmt"
	"sync"

	"github.com/draintech/drainwatch/internal/device"
	"github.com/draintech/drainwatch/internal/logging"
	"github.com/draintech/drainwatch/internal/store"
	"go.uber.org/zap"
)

// State is the derived view state of one monitored device
type State struct {
	Snapshot   device.SensorSnapshot
	Control    device.ControlState
	Loading    bool
	Refreshing bool
	Alert      bool
	Err        error
}

// Session projects a single device's live store state into typed view
// state. It holds two listeners for the device's visible lifetime: the most
// recent history entry (sensor readings) and the control record (recording
// mode). All state mutation happens on one event-loop goroutine; external
// calls either read a copy or enqueue a mutation onto that loop.
type Session struct {
	gw      store.Gateway
	writer  *Writer
	alerter *Alerter
	mac     string
	logger  *zap.Logger

	ctx        context.Context
	cancel     context.CancelFunc
	historySub store.Subscription
	controlSub store.Subscription

	updates  chan State
	commands chan func(*State)

	mu      sync.Mutex
	current State
}

// NewSession creates a session for one device. Start attaches the listeners.
func NewSession(gw store.Gateway, writer *Writer, alerter *Alerter, mac string, logger *zap.Logger) *Session {
	return &Session{
		gw:       gw,
		writer:   writer,
		alerter:  alerter,
		mac:      mac,
		logger:   logging.WithDevice(logger, mac),
		updates:  make(chan State, 16),
		commands: make(chan func(*State), 8),
		current:  State{Loading: true},
	}
}

// Start attaches the history and control listeners and begins projecting.
// The listeners stay attached until Close or ctx cancellation.
func (s *Session) Start(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	s.ctx = ctx
	s.cancel = cancel

	historySub, err := s.gw.Subscribe(ctx, device.HistoryPath(s.mac), store.Query{
		OrderBy:     "$key",
		LimitToLast: 1,
	})
	if err != nil {
		cancel()
		return fmt.Errorf("attaching history listener: %w", err)
	}

	controlSub, err := s.gw.Subscribe(ctx, device.ControlPath(s.mac), store.Query{})
	if err != nil {
		historySub.Close()
		cancel()
		return fmt.Errorf("attaching control listener: %w", err)
	}

	s.historySub = historySub
	s.controlSub = controlSub
	go s.loop(ctx)
	return nil
}

// Updates delivers a state copy after every change. The channel closes when
// the session ends.
func (s *Session) Updates() <-chan State {
	return s.updates
}

// Current returns a copy of the latest state
func (s *Session) Current() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// SetRecording toggles the device's recording mode using the last-known
// sensor snapshot for the accompanying history append
func (s *Session) SetRecording(ctx context.Context, open bool) error {
	return s.writer.SetRecording(ctx, s.mac, open, s.Current().Snapshot)
}

// Refresh raises the refresh spinner. The listeners are already live, so
// this is purely cosmetic; the next emission clears it.
func (s *Session) Refresh() {
	s.enqueue(func(st *State) {
		st.Refreshing = true
	})
}

// DismissAlert clears the fill warning. The warning is level-triggered: it
// may be raised again by the next input change while the condition holds.
func (s *Session) DismissAlert() {
	s.enqueue(func(st *State) {
		st.Alert = false
	})
}

// Close detaches both listeners and ends the session
func (s *Session) Close() {
	if s.cancel != nil {
		s.cancel()
	}
}

func (s *Session) enqueue(cmd func(*State)) {
	if s.ctx == nil {
		return
	}
	select {
	case s.commands <- cmd:
	case <-s.ctx.Done():
	}
}

func (s *Session) loop(ctx context.Context) {
	defer close(s.updates)
	defer s.historySub.Close()
	defer s.controlSub.Close()

	state := s.Current()
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-s.historySub.Events():
			if !ok {
				s.drainError(&state, s.historySub, "history listener")
				return
			}
			s.applyHistory(&state, ev.Value)
		case err := <-s.historySub.Errors():
			s.applyError(&state, fmt.Errorf("history listener: %w", err))
		case ev, ok := <-s.controlSub.Events():
			if !ok {
				s.drainError(&state, s.controlSub, "control listener")
				return
			}
			s.applyControl(&state, ev.Value)
		case err := <-s.controlSub.Errors():
			// The control listener has no content of its own to
			// replace; a drop here only loses mode updates.
			s.logger.Warn("control listener error", zap.Error(err))
		case cmd := <-s.commands:
			cmd(&state)
			s.publish(state)
		}
	}
}

// drainError surfaces a terminal error left behind a closed events channel.
// The stream buffers the error before closing, so both channels can be ready
// at once and the select may take the close first.
func (s *Session) drainError(state *State, sub store.Subscription, label string) {
	select {
	case err := <-sub.Errors():
		s.applyError(state, fmt.Errorf("%s: %w", label, err))
	default:
	}
}

// applyHistory projects the latest history entry into the sensor snapshot.
// The subscribed value is the one-entry window, so the loop below touches a
// single child.
func (s *Session) applyHistory(state *State, v store.Value) {
	if v.Exists() {
		for _, child := range v.Children() {
			state.Snapshot = device.SnapshotFromValue(child.Value)
		}
		state.Err = nil
	}
	state.Loading = false
	state.Refreshing = false
	s.evaluateAlert(state)
	s.publish(*state)
}

func (s *Session) applyControl(state *State, v store.Value) {
	if v.Exists() {
		state.Control.RecordingOpen = v.Field(device.KeyRecordingOpen).Bool()
	}
	s.evaluateAlert(state)
	s.publish(*state)
}

func (s *Session) applyError(state *State, err error) {
	s.logger.Error("subscription failed", zap.Error(err))
	state.Err = err
	state.Loading = false
	state.Refreshing = false
	s.publish(*state)
}

// evaluateAlert re-derives the fill warning after any change to its inputs.
// An open recording unconditionally clears it; a standing condition only
// raises it, never lowers it, so a raised warning survives until dismissed
// or overridden.
func (s *Session) evaluateAlert(state *State) {
	if s.alerter.Evaluate(state.Snapshot.BasketFillPercent, state.Control.RecordingOpen, state.Loading) {
		state.Alert = true
	}
	if state.Control.RecordingOpen {
		state.Alert = false
	}
}

// publish records the state copy and offers it to the consumer, dropping
// the oldest pending update when the consumer lags
func (s *Session) publish(state State) {
	s.mu.Lock()
	s.current = state
	s.mu.Unlock()

	select {
	case s.updates <- state:
	default:
		select {
		case <-s.updates:
		default:
		}
		select {
		case s.updates <- state:
		default:
		}
	}
}
