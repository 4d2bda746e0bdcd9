package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"
	"time"

	"github.com/common-nighthawk/go-figure"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/plateful/partner-portal/devbackend"
	"github.com/plateful/partner-portal/internal/config"
	"github.com/plateful/partner-portal/portal"
)

func main() {
	if err := run(); err != nil {
		log.Fatal().Err(err).Msg("error running server")
	}
	log.Info().Msg("server stopped")
}

func run() (returnError error) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Msg("recovered from panic")
			debug.PrintStack()
			returnError = errors.New("panic recovered")
		}
	}()

	c := config.New()
	logger := newLogger(c)
	displayAppname(c.GetAppName())

	servers := make([]*http.Server, 0, 2)

	if c.EmbeddedBackend() {
		dev := devbackend.New(
			devbackend.WithSecret(c.GetBackendSecret()),
			devbackend.WithLogger(logger),
		)
		seedDevAccounts(dev, logger)
		servers = append(servers, &http.Server{Addr: c.GetBackendPort(), Handler: dev})
	}

	p, err := portal.New(c, logger)
	if err != nil {
		return fmt.Errorf("portal.New: %w", err)
	}
	servers = append(servers, &http.Server{Addr: c.GetPort(), Handler: p})

	group, ctx := errgroup.WithContext(context.Background())
	for _, srv := range servers {
		group.Go(func() error {
			logger.Info().Str("addr", srv.Addr).Msg("listening")
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				return fmt.Errorf("server.ListenAndServe %s: %w", srv.Addr, err)
			}
			return nil
		})
	}
	group.Go(func() error {
		waitForStopSignal(ctx)
		for _, srv := range servers {
			if err := shutdown(srv); err != nil {
				return err
			}
		}
		return nil
	})

	return group.Wait()
}

func waitForStopSignal(ctx context.Context) {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	select {
	case <-stop:
	case <-ctx.Done():
	}
}

func shutdown(server *http.Server) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server.Shutdown: %w", err)
	}
	return nil
}

func newLogger(c config.Config) zerolog.Logger {
	logger := zerolog.New(os.Stderr).With().Timestamp().Logger()
	if c.GetEnv() == "DEV" {
		logger = logger.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}
	return logger
}

// seedDevAccounts gives the embedded backend something to log in with.
func seedDevAccounts(dev *devbackend.Server, logger zerolog.Logger) {
	accounts := []struct {
		name, email, password, role string
	}{
		{"Dev Admin", "admin@plateful.local", "admin1234", devbackend.RoleAdmin},
		{"Dev Partner", "partner@plateful.local", "partner1234", devbackend.RolePartner},
	}
	for _, a := range accounts {
		if err := dev.SeedUser(a.name, a.email, a.password, a.role); err != nil {
			logger.Error().Err(err).Str("email", a.email).Msg("failed to seed dev account")
			continue
		}
		logger.Info().Str("email", a.email).Str("role", a.role).Msg("dev account ready")
	}
}

func displayAppname(appname string) {
	myFigure := figure.NewFigure(appname, "cybermedium", true)
	myFigure.Print()
	fmt.Println()
}
