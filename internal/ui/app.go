// Package ui is the terminal presentation layer. Screens only prompt,
// print and compose the injected services; all data access and decision
// logic lives behind them.
package ui

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/draintech/drainwatch/internal/auth"
	"github.com/draintech/drainwatch/internal/chart"
	"github.com/draintech/drainwatch/internal/monitor"
	"github.com/draintech/drainwatch/internal/notify"
	"github.com/draintech/drainwatch/internal/registry"
	"github.com/draintech/drainwatch/internal/store"
	"go.uber.org/zap"
)

// Deps are the services the screens compose
type Deps struct {
	Auth     *auth.Client
	Registry *registry.Registry
	Gateway  store.Gateway
	History  *monitor.HistoryService
	Writer   *monitor.Writer
	Alerter  *monitor.Alerter
	Renderer *chart.Renderer
	Receiver *notify.Receiver
	ChartDir string
	Logger   *zap.Logger
	In       io.Reader
	Out      io.Writer
}

// App drives the screen flow: login/register, device list, device detail
type App struct {
	deps  Deps
	lines *bufio.Scanner
}

// NewApp creates the terminal app
func NewApp(deps Deps) *App {
	return &App{
		deps:  deps,
		lines: bufio.NewScanner(deps.In),
	}
}

// Run starts at the login screen, or straight at the device list when a
// session is already active, and returns when the user quits or input ends.
// Signing out navigates back to the login screen.
func (a *App) Run(ctx context.Context) error {
	for {
		session, ok := a.deps.Auth.Current()
		if !ok {
			var err error
			session, err = a.loginScreen(ctx)
			if err != nil {
				return err
			}
			if session == nil {
				return nil
			}
		}

		username, err := a.deps.Registry.Username(ctx, session.UID)
		if err != nil {
			a.deps.Logger.Warn("failed to read username", zap.Error(err))
			username = "User"
		}
		a.printf("\nWelcome, %s\n", username)

		if err := a.deviceListScreen(ctx, session.UID); err != nil {
			return err
		}
		if _, ok := a.deps.Auth.Current(); ok {
			// input ended with the session still active
			return nil
		}
	}
}

func (a *App) printf(format string, args ...interface{}) {
	fmt.Fprintf(a.deps.Out, format, args...)
}

// prompt prints a label and reads one input line; ok is false when input
// has ended
func (a *App) prompt(label string) (string, bool) {
	a.printf("%s", label)
	if !a.lines.Scan() {
		return "", false
	}
	return strings.TrimSpace(a.lines.Text()), true
}

// confirm asks a yes/no question, defaulting to no
func (a *App) confirm(question string) bool {
	answer, ok := a.prompt(question + " [y/N]: ")
	if !ok {
		return false
	}
	answer = strings.ToLower(answer)
	return answer == "y" || answer == "yes"
}
