package monitor

import (
	"context"
	"fmt"
	"time"

	"github.com/draintech/drainwatch/internal/device"
	"github.com/draintech/drainwatch/internal/notify"
	"github.com/draintech/drainwatch/internal/store"
	"go.uber.org/zap"
)

// Writer issues recording-mode commands. Toggling recording performs two
// independent writes: the control-path write the remote device acts on, and
// a history append that carries forward the last-known sensor values so the
// per-sensor time series stay continuous. The pair is best effort, not
// atomic; the append only runs once the control write has succeeded.
type Writer struct {
	gw       store.Gateway
	notifier notify.Notifier
	logger   *zap.Logger
	now      func() time.Time
}

// NewWriter creates a control command writer
func NewWriter(gw store.Gateway, notifier notify.Notifier, logger *zap.Logger) *Writer {
	return &Writer{
		gw:       gw,
		notifier: notifier,
		logger:   logger,
		now:      time.Now,
	}
}

// SetRecording writes the desired recording mode for the device and appends
// a history snapshot combining the new mode with the given sensor readings.
// A control-write failure is reported and returned; a history-append failure
// is reported but non-fatal, since the command itself has already landed.
func (w *Writer) SetRecording(ctx context.Context, mac string, open bool, snapshot device.SensorSnapshot) error {
	controlPath := device.ControlPath(mac) + "/" + device.KeyRecordingOpen
	if err := w.gw.Set(ctx, controlPath, open); err != nil {
		w.logger.Error("failed to write recording control",
			zap.String("device_mac", mac),
			zap.Bool("open", open),
			zap.Error(err),
		)
		w.notify(ctx, "Recording control failed", fmt.Sprintf("Could not update recording state for %s", mac))
		return fmt.Errorf("writing recording control for %s: %w", mac, err)
	}

	now := w.now()
	timestampSeconds := float64(now.Unix()) + float64(now.Nanosecond())/float64(time.Second)
	entry := snapshot.HistoryEntry(open, timestampSeconds)
	if _, err := w.gw.Push(ctx, device.HistoryPath(mac), entry); err != nil {
		w.logger.Error("failed to append history entry",
			zap.String("device_mac", mac),
			zap.Error(err),
		)
		w.notify(ctx, "History not saved", fmt.Sprintf("Recording state changed but history for %s was not updated", mac))
	}
	return nil
}

func (w *Writer) notify(ctx context.Context, title, body string) {
	if err := w.notifier.Notify(ctx, title, body); err != nil {
		w.logger.Warn("failed to display notification", zap.Error(err))
	}
}
