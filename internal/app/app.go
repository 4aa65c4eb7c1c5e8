package app

import (
	"context"
	"fmt"
	stdhttp "net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/flashsend/relay/internal/config"
	"github.com/flashsend/relay/internal/push"
	"github.com/flashsend/relay/internal/push/expo"
	"github.com/flashsend/relay/internal/push/fcm"
	"github.com/flashsend/relay/internal/service/reply"
	"github.com/flashsend/relay/internal/store"
	"github.com/flashsend/relay/internal/store/sqlite"
	transporthttp "github.com/flashsend/relay/internal/transport/http"
)

// App wires together storage, push channels and transport.
type App struct {
	server          *stdhttp.Server
	shutdownTimeout time.Duration
	store           store.Store
	log             *zerolog.Logger
}

// New constructs the application with provided configuration.
func New(ctx context.Context, cfg *config.Config, logger *zerolog.Logger) (*App, error) {
	// Initialize database store
	st, err := sqlite.New(cfg.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("init store: %w", err)
	}

	logger.Info().Str("db_path", cfg.DatabasePath).Msg("database initialized")

	relayChannel := expo.New(cfg.ExpoPushURL, cfg.ExpoChannelID, nil)

	// FCM needs service account credentials; without them only the relay
	// channel is available and provider tokens are dropped with a log line.
	var providerChannel push.Channel
	if cfg.FCMCredentialsPath != "" {
		fcmChannel, err := fcm.NewFromCredentials(ctx, cfg.FCMCredentialsPath)
		if err != nil {
			st.Close()
			return nil, fmt.Errorf("init fcm channel: %w", err)
		}
		providerChannel = fcmChannel
		logger.Info().Str("credentials", cfg.FCMCredentialsPath).Msg("fcm channel initialized")
	} else {
		logger.Warn().Msg("no fcm credentials configured, provider tokens will not be delivered")
	}

	dispatcher := push.NewDispatcher(relayChannel, providerChannel, cfg.DispatchTimeout, logger)
	svc := reply.NewService(st, dispatcher, logger)
	server := transporthttp.NewServer(svc, cfg, logger)

	return &App{
		server:          server,
		shutdownTimeout: cfg.ShutdownTimeout,
		store:           st,
		log:             logger,
	}, nil
}

// Run starts the HTTP server and blocks until context cancellation or fatal error.
func (a *App) Run(ctx context.Context) error {
	serverErr := make(chan error, 1)

	go func() {
		if err := a.server.ListenAndServe(); err != nil && err != stdhttp.ErrServerClosed {
			serverErr <- err
			return
		}
		serverErr <- nil
	}()

	select {
	case err := <-serverErr:
		a.cleanup()
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), a.shutdownTimeout)
		defer cancel()

		a.log.Info().Msg("shutting down http server")
		if err := a.server.Shutdown(shutdownCtx); err != nil {
			a.cleanup()
			return err
		}

		a.cleanup()
		return <-serverErr
	}
}

// cleanup closes database and other resources.
func (a *App) cleanup() {
	if a.store != nil {
		if err := a.store.Close(); err != nil {
			a.log.Warn().Err(err).Msg("failed to close store")
		} else {
			a.log.Info().Msg("store closed")
		}
	}
}
