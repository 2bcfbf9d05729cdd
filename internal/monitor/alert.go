package monitor

// Alerter decides when a basket fill level warrants a warning
type Alerter struct {
	fillThreshold int
}

// NewAlerter creates an alerter with the given fill-percent threshold
func NewAlerter(fillThreshold int) *Alerter {
	return &Alerter{fillThreshold: fillThreshold}
}

// Evaluate reports whether the fill warning should be raised. The warning
// only applies while data is settled and recording is closed; an open
// recording means the basket is already being drained.
func (a *Alerter) Evaluate(fillPercent int, recordingOpen, loading bool) bool {
	return fillPercent >= a.fillThreshold && !loading && !recordingOpen
}
