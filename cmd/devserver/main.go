package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"
	"time"

	"github.com/common-nighthawk/go-figure"
	"github.com/jrsteele09/go-auth-client/internal/config"
	"github.com/jrsteele09/go-auth-client/internal/devserver"
	"github.com/jrsteele09/go-auth-client/internal/logging"
	"github.com/rs/zerolog"
)

func main() {
	users := flag.String("users", "dev@example.com:password", "comma separated email:password logins")
	flag.Parse()

	config.LoadDotEnv()
	c := config.New()
	logger := logging.New(c, os.Stderr)

	if err := run(c, logger, *users); err != nil {
		logger.Fatal().Err(err).Msg("Error running server")
	}
	logger.Info().Msg("Server stopped")
}

func run(c config.Config, logger zerolog.Logger, users string) (returnError error) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error().Interface("panic", r).Msg("Recovered from panic")
			debug.PrintStack()
			returnError = errors.New("panic recovered")
		}
	}()

	displayAppname(c.GetAppName() + " dev")

	dev := devserver.New(devserver.Options{
		SigningSecret:   c.GetDevSigningSecret(),
		AccessTokenTTL:  c.GetDevAccessTokenTTL(),
		RefreshTokenTTL: c.GetDevRefreshTokenTTL(),
		Logger:          &logger,
	})
	logins, err := parseUsers(users)
	if err != nil {
		return err
	}
	for email, password := range logins {
		dev.AddUser(email, password)
	}

	server := &http.Server{Addr: c.GetDevPort(), Handler: dev, ReadHeaderTimeout: 5 * time.Second}
	serveErr := make(chan error, 1)
	go func() {
		serveErr <- listenAndServe(server, logger)
	}()

	select {
	case err := <-serveErr:
		return err
	case <-waitForStopSignal():
	}
	return shutdown(server)
}

func listenAndServe(server *http.Server, logger zerolog.Logger) error {
	logger.Info().Str("addr", server.Addr).Msg("Server listening")
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server.ListenAndServe %w", err)
	}
	return nil
}

func waitForStopSignal() <-chan os.Signal {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	return stop
}

func shutdown(server *http.Server) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server.Shutdown: %w", err)
	}
	return nil
}

func displayAppname(appname string) {
	myFigure := figure.NewFigure(appname, "cybermedium", true)
	myFigure.Print()
	fmt.Println()
}
