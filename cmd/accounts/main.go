package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	adapthttp "accounts/internal/adapter/http"
	"accounts/internal/adapter/memory"
	"accounts/internal/adapter/mongo"
	"accounts/internal/adapter/postgres"
	"accounts/internal/app"
	"accounts/internal/config"
	"accounts/internal/domain"
	"accounts/internal/logging"

	"github.com/spf13/cobra"
)

const shutdownTimeout = 10 * time.Second

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var addr, store string

	cmd := &cobra.Command{
		Use:           "accounts",
		Short:         "Account registration and token authentication service",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("addr") {
				cfg.Addr = addr
			}
			if cmd.Flags().Changed("store") {
				cfg.Store = strings.ToLower(store)
				if err := cfg.Validate(); err != nil {
					return err
				}
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return run(ctx, cfg)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", ":8080", "listen address (overrides ADDR)")
	cmd.Flags().StringVar(&store, "store", config.StoreMemory, "account store: memory, postgres or mongo (overrides STORE)")
	return cmd
}

func run(ctx context.Context, cfg *config.Config) error {
	log := logging.New(cfg.LogLevel, cfg.LogFormat, os.Stdout)
	if cfg.InsecureSecret() {
		log.Warn(ctx, "JWT_SECRET is unset, using the development secret")
	}

	repo, closeRepo, err := openStore(ctx, cfg)
	if err != nil {
		return fmt.Errorf("open %s store: %w", cfg.Store, err)
	}
	defer closeRepo()

	tokens := app.NewJWTCodec([]byte(cfg.JWTSecret), cfg.TokenTTL)
	accounts := app.NewAccountService(repo, app.NewBcryptHasher(cfg.BcryptCost), tokens)
	users := app.NewUserService(repo)

	sso, err := adapthttp.NewSSO(ctx, cfg.OIDC)
	if err != nil {
		return fmt.Errorf("oidc setup: %w", err)
	}

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           adapthttp.New(accounts, users, tokens, log).WithSSO(sso).Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info(ctx, "listening", "addr", cfg.Addr, "store", cfg.Store, "sso", sso != nil)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	log.Info(context.Background(), "shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// openStore selects the account repository named by cfg.Store.
func openStore(ctx context.Context, cfg *config.Config) (domain.AccountRepository, func(), error) {
	switch cfg.Store {
	case config.StorePostgres:
		db, err := postgres.Open(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		return db, func() { _ = db.Close() }, nil
	case config.StoreMongo:
		repo, err := mongo.Open(ctx, cfg.DatabaseURL, cfg.MongoDatabase)
		if err != nil {
			return nil, nil, err
		}
		return repo, func() {
			closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = repo.Close(closeCtx)
		}, nil
	default:
		return memory.New(), func() {}, nil
	}
}
