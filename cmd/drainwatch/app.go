package main

import (
	"context"
	"os"

	"github.com/draintech/drainwatch/internal/api"
	"github.com/draintech/drainwatch/internal/auth"
	"github.com/draintech/drainwatch/internal/chart"
	"github.com/draintech/drainwatch/internal/config"
	"github.com/draintech/drainwatch/internal/monitor"
	"github.com/draintech/drainwatch/internal/notify"
	"github.com/draintech/drainwatch/internal/registry"
	"github.com/draintech/drainwatch/internal/store"
	"github.com/draintech/drainwatch/internal/ui"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// ProvideStoreClient creates the realtime store gateway
func ProvideStoreClient(cfg *config.Config, logger *zap.Logger) store.Gateway {
	return store.NewClient(cfg.Store.BaseURL, cfg.Store.AuthToken, logger)
}

// ProvideAuthClient creates the hosted auth service client
func ProvideAuthClient(cfg *config.Config) *auth.Client {
	return auth.NewClient(cfg.Auth.BaseURL, cfg.Auth.APIKey)
}

// ProvideAPIClient creates the account API client
func ProvideAPIClient(cfg *config.Config) *api.Client {
	return api.NewClient(cfg.API.BaseURL)
}

// ProvideRegistry creates the user device registry
func ProvideRegistry(gw store.Gateway, logger *zap.Logger) *registry.Registry {
	return registry.NewRegistry(gw, logger)
}

// ProvideNotifier creates the local notification display
func ProvideNotifier(cfg *config.Config, logger *zap.Logger) notify.Notifier {
	if !cfg.MQTT.NotificationsEnabled {
		return notify.Noop{}
	}
	return notify.NewLogNotifier(logger)
}

// ProvideReceiver creates the broker-fed notification receiver and ties its
// connection to the app lifecycle
func ProvideReceiver(lc fx.Lifecycle, cfg *config.Config, notifier notify.Notifier, logger *zap.Logger) *notify.Receiver {
	receiver := notify.NewReceiver(cfg.MQTT, notifier, logger)
	lc.Append(fx.Hook{
		OnStart: func(_ context.Context) error {
			return receiver.Connect()
		},
		OnStop: func(_ context.Context) error {
			receiver.Disconnect()
			return nil
		},
	})
	return receiver
}

// ProvideWriter creates the recording control writer
func ProvideWriter(gw store.Gateway, notifier notify.Notifier, logger *zap.Logger) *monitor.Writer {
	return monitor.NewWriter(gw, notifier, logger)
}

// ProvideAlerter creates the basket fill alerter
func ProvideAlerter(cfg *config.Config) *monitor.Alerter {
	return monitor.NewAlerter(cfg.Monitor.FillAlertThreshold)
}

// ProvideHistoryService creates the sensor history service
func ProvideHistoryService(gw store.Gateway, cfg *config.Config, logger *zap.Logger) *monitor.HistoryService {
	return monitor.NewHistoryService(gw, cfg.Monitor.HistoryLimit, logger)
}

// ProvideRenderer creates the chart renderer
func ProvideRenderer(cfg *config.Config) *chart.Renderer {
	return chart.NewRenderer(cfg.Chart.Width, cfg.Chart.Height)
}

// ProvideApp assembles the terminal app
func ProvideApp(
	authClient *auth.Client,
	reg *registry.Registry,
	gw store.Gateway,
	history *monitor.HistoryService,
	writer *monitor.Writer,
	alerter *monitor.Alerter,
	renderer *chart.Renderer,
	receiver *notify.Receiver,
	cfg *config.Config,
	logger *zap.Logger,
) *ui.App {
	return ui.NewApp(ui.Deps{
		Auth:     authClient,
		Registry: reg,
		Gateway:  gw,
		History:  history,
		Writer:   writer,
		Alerter:  alerter,
		Renderer: renderer,
		Receiver: receiver,
		ChartDir: cfg.Chart.OutputDir,
		Logger:   logger,
		In:       os.Stdin,
		Out:      os.Stdout,
	})
}

// startApp runs the screens and shuts the process down when they exit
func startApp(lc fx.Lifecycle, shutdowner fx.Shutdowner, app *ui.App, logger *zap.Logger) {
	ctx, cancel := context.WithCancel(context.Background())

	lc.Append(fx.Hook{
		OnStart: func(_ context.Context) error {
			go func() {
				if err := app.Run(ctx); err != nil {
					logger.Error("app exited with error", zap.Error(err))
				}
				_ = shutdowner.Shutdown()
			}()
			return nil
		},
		OnStop: func(_ context.Context) error {
			cancel()
			return nil
		},
	})
}
