package main

import (
	"context"
	"os"

	"github.com/jrsteele09/go-auth-client/apiclient"
	"github.com/jrsteele09/go-auth-client/credentials"
	"github.com/jrsteele09/go-auth-client/internal/config"
	"github.com/jrsteele09/go-auth-client/internal/logging"
	"github.com/jrsteele09/go-auth-client/internal/setup"
	"github.com/rs/zerolog"
)

// app holds what every subcommand needs; open builds it once flags are parsed
type app struct {
	envFile string

	cfg        config.Config
	logger     zerolog.Logger
	store      credentials.Store
	closeStore setup.CloseFunc
	client     *apiclient.Client
}

func newApp() *app {
	return &app{}
}

func (a *app) open(ctx context.Context) error {
	if a.envFile != "" {
		config.LoadDotEnv(a.envFile)
	} else {
		config.LoadDotEnv()
	}

	a.cfg = config.New()
	a.logger = logging.New(a.cfg, os.Stderr)

	store, closeStore, err := setup.NewStore(ctx, a.cfg)
	if err != nil {
		return err
	}
	a.store, a.closeStore = store, closeStore

	a.client, err = setup.NewClient(a.cfg, store, a.logger)
	return err
}

func (a *app) close() {
	if a.closeStore == nil {
		return
	}
	if err := a.closeStore(); err != nil {
		a.logger.Err(err).Msg("failed to close credential store")
	}
}
