package ui_test

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/draintech/drainwatch/internal/auth"
	"github.com/draintech/drainwatch/internal/chart"
	"github.com/draintech/drainwatch/internal/config"
	"github.com/draintech/drainwatch/internal/monitor"
	"github.com/draintech/drainwatch/internal/notify"
	"github.com/draintech/drainwatch/internal/registry"
	"github.com/draintech/drainwatch/internal/store/storetest"
	"github.com/draintech/drainwatch/internal/ui"
	"go.uber.org/zap"
)

func testApp(t *testing.T, input string) (*ui.App, *bytes.Buffer) {
	t.Helper()

	authServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"localId":"uid-1","email":"ana@example.com","idToken":"t","refreshToken":"r","expiresIn":"3600"}`))
	}))
	t.Cleanup(authServer.Close)

	fake := storetest.NewFake()
	logger := zap.NewNop()
	var out bytes.Buffer

	app := ui.NewApp(ui.Deps{
		Auth:     auth.NewClient(authServer.URL, ""),
		Registry: registry.NewRegistry(fake, logger),
		Gateway:  fake,
		History:  monitor.NewHistoryService(fake, 10, logger),
		Writer:   monitor.NewWriter(fake, notify.Noop{}, logger),
		Alerter:  monitor.NewAlerter(70),
		Renderer: chart.NewRenderer(100, 100),
		Receiver: notify.NewReceiver(config.MQTTConfig{}, notify.Noop{}, logger),
		ChartDir: t.TempDir(),
		Logger:   logger,
		In:       strings.NewReader(input),
		Out:      &out,
	})
	return app, &out
}

func TestRun_SignOutReturnsToLoginScreen(t *testing.T) {
	app, out := testApp(t, "l\nana@example.com\npw\nq\nq\n")

	if err := app.Run(context.Background()); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	output := out.String()
	if !strings.Contains(output, "Signed out") {
		t.Error("expected sign-out confirmation")
	}
	if got := strings.Count(output, "== Sign in =="); got != 2 {
		t.Errorf("sign-in screen shown %d times, want 2 (initial and after sign-out)", got)
	}
}

func TestRun_QuitAtLoginScreen(t *testing.T) {
	app, _ := testApp(t, "q\n")

	if err := app.Run(context.Background()); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
}
