package monitor

import (
	"context"
	"fmt"
	"sort"

	"github.com/draintech/drainwatch/internal/device"
	"github.com/draintech/drainwatch/internal/store"
	"github.com/draintech/drainwatch/tools/timefmt"
	"go.uber.org/zap"
)

// HistoryService fetches the recent time series of one sensor key
type HistoryService struct {
	gw     store.Gateway
	limit  int
	logger *zap.Logger
}

// NewHistoryService creates a history service bounded to the most recent
// limit entries per fetch
func NewHistoryService(gw store.Gateway, limit int, logger *zap.Logger) *HistoryService {
	return &HistoryService{gw: gw, limit: limit, logger: logger}
}

// Fetch returns up to limit points for sensorKey on the given device,
// ordered oldest to newest by timestamp. A device with no history yields an
// empty slice, not an error; callers show a "not enough data" message for
// that case instead of a chart.
func (h *HistoryService) Fetch(ctx context.Context, mac, sensorKey string) ([]device.HistoryPoint, error) {
	v, err := h.gw.Get(ctx, device.HistoryPath(mac), store.Query{
		OrderBy:     device.KeyTimestamp,
		LimitToLast: h.limit,
	})
	if err != nil {
		return nil, fmt.Errorf("fetching history for %s: %w", mac, err)
	}

	children := v.Children()
	points := make([]device.HistoryPoint, 0, len(children))
	for _, child := range children {
		point := device.HistoryPoint{
			Value: child.Value.Field(sensorKey).Float(),
		}
		// Entries missing a timestamp sort to the epoch rather than
		// being dropped.
		if ts := child.Value.Field(device.KeyTimestamp); ts.Exists() {
			point.TimestampMillis = timefmt.SecondsToMillis(ts.Float())
		}
		points = append(points, point)
	}

	sort.SliceStable(points, func(i, j int) bool {
		return points[i].TimestampMillis < points[j].TimestampMillis
	})
	if len(points) > h.limit {
		points = points[len(points)-h.limit:]
	}

	h.logger.Debug("fetched sensor history",
		zap.String("device_mac", mac),
		zap.String("sensor_key", sensorKey),
		zap.Int("points", len(points)),
	)
	return points, nil
}
