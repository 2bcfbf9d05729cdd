package ui

import (
	"context"

	"github.com/draintech/drainwatch/internal/auth"
	"go.uber.org/zap"
)

// loginScreen runs the login/register flow until a session is established
// or the user quits. A nil session with nil error means the user quit.
func (a *App) loginScreen(ctx context.Context) (*auth.Session, error) {
	for {
		a.printf("\n== Sign in ==\n")
		a.printf("[l] log in  [r] register  [q] quit\n")
		choice, ok := a.prompt("> ")
		if !ok {
			return nil, nil
		}

		switch choice {
		case "l":
			session := a.signIn(ctx)
			if session != nil {
				return session, nil
			}
		case "r":
			session := a.register(ctx)
			if session != nil {
				return session, nil
			}
		case "q":
			return nil, nil
		}
	}
}

func (a *App) signIn(ctx context.Context) *auth.Session {
	email, ok := a.prompt("email: ")
	if !ok {
		return nil
	}
	password, ok := a.prompt("password: ")
	if !ok {
		return nil
	}

	session, err := a.deps.Auth.SignIn(ctx, email, password)
	if err != nil {
		a.printf("Error: %v\n", err)
		return nil
	}
	return session
}

func (a *App) register(ctx context.Context) *auth.Session {
	username, ok := a.prompt("username: ")
	if !ok {
		return nil
	}
	email, ok := a.prompt("email: ")
	if !ok {
		return nil
	}
	password, ok := a.prompt("password: ")
	if !ok {
		return nil
	}

	session, err := a.deps.Auth.SignUp(ctx, email, password)
	if err != nil {
		a.printf("Error: %v\n", err)
		return nil
	}

	if err := a.deps.Registry.SaveProfile(ctx, session.UID, username, email); err != nil {
		// The account exists either way; the profile record is
		// best effort.
		a.deps.Logger.Warn("failed to save profile", zap.Error(err))
		a.printf("Error saving profile: %v\n", err)
	} else {
		a.printf("Registration successful\n")
	}
	return session
}
