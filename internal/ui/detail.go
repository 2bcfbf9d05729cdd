package ui

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/draintech/drainwatch/internal/device"
	"github.com/draintech/drainwatch/internal/monitor"
)

var sensorMenu = []struct {
	Key   string
	Title string
}{
	{device.KeyRain, "Rain"},
	{device.KeyFlow, "Flow"},
	{device.KeyObstruction, "Obstruction"},
	{device.KeyBasketFill, "Basket fill"},
	{device.KeyLidOpen, "Lid open"},
	{device.KeyRecordingOpen, "Recording open"},
}

// detailScreen attaches a live session for one device and shows sensor
// updates until the user goes back. The listeners live exactly as long as
// the screen.
func (a *App) detailScreen(ctx context.Context, d device.Device) error {
	session := monitor.NewSession(a.deps.Gateway, a.deps.Writer, a.deps.Alerter, d.MAC, a.deps.Logger)
	if err := session.Start(ctx); err != nil {
		return err
	}
	defer session.Close()

	a.deps.Receiver.SubscribeDevice(d.MAC)

	printerDone := make(chan struct{})
	go func() {
		defer close(printerDone)
		for state := range session.Updates() {
			a.renderState(d, state)
		}
	}()

	a.printf("\n== %s (MAC: %s) ==\n", d.Name, d.MAC)
	a.printf("[o] open recording  [c] close recording  [h] history chart  [r] refresh  [x] dismiss alert  [q] back\n")

	for {
		choice, ok := a.prompt("> ")
		if !ok {
			break
		}

		switch choice {
		case "o":
			if a.confirm("Open recording?") {
				if err := session.SetRecording(ctx, true); err != nil {
					a.printf("Error: %v\n", err)
				}
			}
		case "c":
			if a.confirm("Close recording?") {
				if err := session.SetRecording(ctx, false); err != nil {
					a.printf("Error: %v\n", err)
				}
			}
		case "h":
			a.historyChart(ctx, d)
		case "r":
			session.Refresh()
			a.printf("Refreshing...\n")
		case "x":
			session.DismissAlert()
		case "q":
			session.Close()
			<-printerDone
			return nil
		}
	}

	session.Close()
	<-printerDone
	return nil
}

func (a *App) renderState(d device.Device, state monitor.State) {
	if state.Loading {
		a.printf("Loading %s...\n", d.Name)
		return
	}
	if state.Err != nil {
		a.printf("Error: %v\n", state.Err)
		return
	}

	recording := "closed"
	if state.Control.RecordingOpen {
		recording = "open"
	}
	a.printf("\n%s | recording %s%s\n", d.Name, recording, refreshSuffix(state))
	a.printf("  Rain: %s | Flow: %.2f L/s | Obstruction: %s | Basket: %d%% | Lid open: %s\n",
		yesNo(state.Snapshot.Rain),
		state.Snapshot.Flow,
		yesNo(state.Snapshot.Obstruction),
		state.Snapshot.BasketFillPercent,
		yesNo(state.Snapshot.LidOpen),
	)
	if state.Alert {
		a.printf("  !! Basket almost full. Open recording? ('o' to open, 'x' to dismiss)\n")
	}
}

func refreshSuffix(state monitor.State) string {
	if state.Refreshing {
		return " (refreshing)"
	}
	return ""
}

func yesNo(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}

// historyChart fetches one sensor's recent series and renders it to a PNG
func (a *App) historyChart(ctx context.Context, d device.Device) {
	a.printf("Sensors:\n")
	for _, s := range sensorMenu {
		a.printf("  %s (%s)\n", s.Title, s.Key)
	}
	key, ok := a.prompt("sensor key: ")
	if !ok || key == "" {
		return
	}

	points, err := a.deps.History.Fetch(ctx, d.MAC, key)
	if err != nil {
		a.printf("Error fetching history: %v\n", err)
		return
	}
	if len(points) == 0 {
		a.printf("Not enough data\n")
		return
	}

	path := filepath.Join(a.deps.ChartDir, fmt.Sprintf("%s_%s.png", device.Topic(d.MAC), key))
	if err := a.deps.Renderer.RenderFile(path, points, device.IsBooleanKey(key)); err != nil {
		a.printf("Error rendering chart: %v\n", err)
		return
	}
	a.printf("Chart with last %d entries written to %s\n", len(points), path)
}
