// Package device holds the typed domain model shared by the monitoring,
// registry and presentation layers. Raw store values are projected into
// these types at the gateway boundary and nothing past it sees the store's
// loose typing.
package device

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/draintech/drainwatch/internal/store"
)

// Sensor field keys as stored on the wire
const (
	KeyRain          = "rain"
	KeyFlow          = "flow"
	KeyObstruction   = "obstruction"
	KeyBasketFill    = "basketFillPercent"
	KeyLidOpen       = "lidOpen"
	KeyRecordingOpen = "recordingOpen"
	KeyTimestamp     = "timestamp"
)

// Device is one registered drainage unit. The MAC is the stable routing key:
// it names the device's history and control paths and its notification
// topic.
type Device struct {
	Key  string
	Name string
	MAC  string
}

// SensorSnapshot is the latest reported state of a device's sensors
type SensorSnapshot struct {
	Rain              bool
	Flow              float64
	Obstruction       bool
	BasketFillPercent int
	LidOpen           bool
}

// ControlState is the desired operating mode sent to the device. The
// recording flag is the only field the client mutates directly.
type ControlState struct {
	RecordingOpen bool
}

// HistoryPoint is one normalized sample of a single sensor's time series
type HistoryPoint struct {
	Value           float64
	TimestampMillis int64
}

// HistoryPath is the append-only snapshot record for one device
func HistoryPath(mac string) string {
	return "historial/" + mac
}

// ControlPath is the mutable control record for one device
func ControlPath(mac string) string {
	return "control/" + mac
}

// UserDevicesPath lists a user's registered devices
func UserDevicesPath(uid string) string {
	return "usuarios/" + uid + "/dispositivos"
}

// UserPath is the root of one user's profile record
func UserPath(uid string) string {
	return "usuarios/" + uid
}

// Topic derives the notification topic for a device. Topic separators do
// not allow colons, so they are replaced with underscores.
func Topic(mac string) string {
	return strings.ReplaceAll(mac, ":", "_")
}

// IsBooleanKey reports whether a sensor key carries a boolean-valued series.
// Everything else is treated as continuous numeric.
func IsBooleanKey(key string) bool {
	switch key {
	case KeyRain, KeyObstruction, KeyLidOpen, KeyRecordingOpen:
		return true
	}
	return false
}

// SnapshotFromValue projects one raw history entry into a typed snapshot
func SnapshotFromValue(v store.Value) SensorSnapshot {
	return SensorSnapshot{
		Rain:              v.Field(KeyRain).Bool(),
		Flow:              v.Field(KeyFlow).Float(),
		Obstruction:       v.Field(KeyObstruction).Bool(),
		BasketFillPercent: v.Field(KeyBasketFill).Int(),
		LidOpen:           v.Field(KeyLidOpen).Bool(),
	}
}

// HistoryEntry builds the append payload for one control-toggle event.
// Every sensor field is carried forward from the snapshot, even unchanged
// ones, so per-sensor time series stay continuous; booleans are stored as
// 0/1 and the timestamp as fractional epoch seconds.
func (s SensorSnapshot) HistoryEntry(recordingOpen bool, timestampSeconds float64) map[string]interface{} {
	return map[string]interface{}{
		KeyTimestamp:     timestampSeconds,
		KeyRecordingOpen: boolToInt(recordingOpen),
		KeyRain:          boolToInt(s.Rain),
		KeyFlow:          s.Flow,
		KeyObstruction:   boolToInt(s.Obstruction),
		KeyBasketFill:    s.BasketFillPercent,
		KeyLidOpen:       boolToInt(s.LidOpen),
	}
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

var macPattern = regexp.MustCompile(`^([0-9A-Fa-f]{2}:){5}[0-9A-Fa-f]{2}$`)

// ValidateMAC checks the aa:bb:cc:dd:ee:ff shape. The MAC doubles as path
// segment and topic name, so malformed input is rejected before any write.
func ValidateMAC(mac string) error {
	if !macPattern.MatchString(mac) {
		return fmt.Errorf("invalid MAC address %q", mac)
	}
	return nil
}
