package commands

import (
	"context"
	"crypto/x509"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/sirosfoundation/go-ebics/internal/config"
	"github.com/sirosfoundation/go-ebics/internal/keystore"
	"github.com/sirosfoundation/go-ebics/internal/storage"
	"github.com/sirosfoundation/go-ebics/internal/storage/mongodb"
	"github.com/sirosfoundation/go-ebics/internal/subscriber"
	"github.com/sirosfoundation/go-ebics/pkg/client"
	"github.com/sirosfoundation/go-ebics/pkg/reliability"
	"github.com/sirosfoundation/go-ebics/pkg/transport"
)

var (
	configPath string
	verbose    bool
	dryRun     bool
	logger     *slog.Logger
)

// Execute runs the root command
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return newRootCmd(os.Stdout, os.Stderr).ExecuteContext(ctx)
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	root := &cobra.Command{
		Use:           "ebics",
		Short:         "Build and send EBICS H004 requests",
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			level := slog.LevelInfo
			if verbose {
				level = slog.LevelDebug
			}
			logger = slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))
			return nil
		},
	}
	root.SetOut(stdout)
	root.SetErr(stderr)

	root.PersistentFlags().StringVarP(&configPath, "config", "c", "ebics.yaml", "configuration file")
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")
	root.PersistentFlags().BoolVar(&dryRun, "dry-run", false, "print the request instead of sending it")

	root.AddCommand(sprCmd(), uploadCmd(), transferCmd(), digestCmd(), keygenCmd(), sealKeyCmd())
	return root
}

// app holds everything a sending command needs
type app struct {
	cfg    *config.Config
	store  storage.Store
	keys   keystore.Provider
	nonces *reliability.NonceTracker
	client *client.Client
}

func loadApp(ctx context.Context) (*app, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}

	keys, err := keystore.NewProvider(&cfg.Keystore)
	if err != nil {
		return nil, fmt.Errorf("opening keystore: %w", err)
	}

	var store storage.Store = storage.NewMemoryStore()
	if cfg.Storage.MongoDB.URI != "" {
		store, err = mongodb.NewStore(ctx, &mongodb.Config{
			URI:       cfg.Storage.MongoDB.URI,
			Database:  cfg.Storage.MongoDB.Database,
			Namespace: cfg.EBICS.HostID,
			Timeout:   cfg.Storage.MongoDB.Timeout,
		})
		if err != nil {
			_ = keys.Close()
			return nil, err
		}
	}

	a := &app{cfg: cfg, store: store, keys: keys}
	registry, err := subscriber.New(cfg, keys, store, logger)
	if err != nil {
		a.Close()
		return nil, err
	}

	httpsConfig, err := httpsConfig(cfg)
	if err != nil {
		a.Close()
		return nil, err
	}

	a.nonces = reliability.NewNonceTracker(24*time.Hour, time.Hour)
	a.client, err = client.New(client.Config{
		URL:         cfg.EBICS.URL,
		Session:     cfg.Session(),
		Registry:    registry,
		HTTPSConfig: httpsConfig,
		Journal:     storage.NewJournal(store),
		Nonces:      a.nonces,
		Logger:      logger,
	})
	if err != nil {
		a.Close()
		return nil, err
	}
	return a, nil
}

// Close releases the store, the keystore and the nonce sweeper
func (a *app) Close() {
	if a.nonces != nil {
		a.nonces.Close()
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := a.store.Close(ctx); err != nil {
		logger.Warn("closing store", slog.String("error", err.Error()))
	}
	_ = a.keys.Close()
}

func httpsConfig(cfg *config.Config) (*transport.HTTPSConfig, error) {
	hc := transport.DefaultHTTPSConfig()
	hc.MinTLSVersion = cfg.MinTLSVersion()
	hc.Timeout = cfg.Transport.Timeout
	if cfg.Transport.UserAgent != "" {
		hc.UserAgent = cfg.Transport.UserAgent
	}
	if cfg.Transport.CAFile != "" {
		pem, err := os.ReadFile(cfg.Transport.CAFile)
		if err != nil {
			return nil, fmt.Errorf("reading CA file: %w", err)
		}
		pool := x509.NewCertPool()
		if !pool.AppendCertsFromPEM(pem) {
			return nil, fmt.Errorf("no certificates in %s", cfg.Transport.CAFile)
		}
		hc.RootCAs = pool
	}
	return hc, nil
}

func printResult(cmd *cobra.Command, result *client.Result) {
	fmt.Fprintf(cmd.ErrOrStderr(), "request %s order %s\n", result.ID, result.OrderID)
	fmt.Fprintln(cmd.OutOrStdout(), string(result.Response))
}
