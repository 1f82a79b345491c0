// Package app provides the main application structure and lifecycle management.
package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/fx"
)

// StopTimeout bounds graceful shutdown.
const StopTimeout = 30 * time.Second

// ErrBuild is returned when the dependency graph cannot be built.
var ErrBuild = errors.New("failed to build application")

// Application represents the main application with its lifecycle.
type Application struct {
	app         *fx.App
	stopTimeout time.Duration
}

// New creates a new Application with the provided modules and options.
func New(modules ...fx.Option) *Application {
	return &Application{
		app:         fx.New(modules...),
		stopTimeout: StopTimeout,
	}
}

// Err reports a dependency graph error, if any.
func (a *Application) Err() error {
	return a.app.Err()
}

// Run starts the application and blocks until SIGINT, SIGTERM, an
// fx.Shutdowner request or ctx cancellation. It then stops the application
// within StopTimeout.
func (a *Application) Run(ctx context.Context) error {
	if err := a.app.Err(); err != nil {
		return fmt.Errorf("%w: %w", ErrBuild, err)
	}

	startCtx, cancel := context.WithTimeout(ctx, a.app.StartTimeout())
	defer cancel()
	if err := a.app.Start(startCtx); err != nil {
		return fmt.Errorf("failed to start application: %w", err)
	}

	exitCode := 0
	select {
	case sig := <-a.app.Wait():
		exitCode = sig.ExitCode
	case <-ctx.Done():
	}

	return a.stop(exitCode)
}

// Stop gracefully stops the application.
func (a *Application) Stop(ctx context.Context) error {
	return a.app.Stop(ctx)
}

func (a *Application) stop(exitCode int) error {
	stopCtx, cancel := context.WithTimeout(context.Background(), a.stopTimeout)
	defer cancel()

	if err := a.app.Stop(stopCtx); err != nil {
		return fmt.Errorf("failed to stop application: %w", err)
	}
	if exitCode != 0 {
		return fmt.Errorf("application exited with code %d", exitCode)
	}

	return nil
}
