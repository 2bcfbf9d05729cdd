package monitor_test

import (
	"testing"

	"github.com/draintech/drainwatch/internal/monitor"
)

const testFillThreshold = 70

func TestAlerterEvaluate(t *testing.T) {
	alerter := monitor.NewAlerter(testFillThreshold)

	cases := []struct {
		name          string
		fill          int
		recordingOpen bool
		loading       bool
		want          bool
	}{
		{"at threshold", 70, false, false, true},
		{"above threshold", 95, false, false, true},
		{"below threshold", 69, false, false, false},
		{"recording open overrides", 70, true, false, false},
		{"still loading", 70, false, true, false},
	}

	for _, tc := range cases {
		got := alerter.Evaluate(tc.fill, tc.recordingOpen, tc.loading)
		if got != tc.want {
			t.Errorf("%s: Evaluate(%d, %v, %v) = %v, want %v",
				tc.name, tc.fill, tc.recordingOpen, tc.loading, got, tc.want)
		}
	}
}
