package cmd

import (
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/onionrsv/console-session/backend"
	"github.com/onionrsv/console-session/internal/config"
	"github.com/onionrsv/console-session/session"
	"github.com/onionrsv/console-session/tokenstore/boltstore"
)

var (
	cfg     config.Config
	store   *boltstore.Store
	manager *session.Manager
)

var rootCmd = &cobra.Command{
	Use:   "console",
	Short: "OnionRSV console session manager",
	Long: `Owns the console's authenticated session: sign-in, durable token custody,
silent background renewal, profile updates and sign-out.`,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
	PersistentPostRun: teardown,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func setup(cmd *cobra.Command, _ []string) error {
	_ = godotenv.Load()
	cfg = config.New()

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	if cfg.GetEnv() == "development" {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}

	storePath := cfg.GetTokenStorePath()
	if err := os.MkdirAll(filepath.Dir(storePath), 0700); err != nil {
		return err
	}
	var err error
	store, err = boltstore.NewFromFile(storePath, nil)
	if err != nil {
		return err
	}

	client, err := backend.NewClient(cfg.GetAuthBaseURL(), backend.WithRequestTimeout(cfg.GetRequestTimeout()))
	if err != nil {
		return err
	}

	manager, err = session.NewManager(client, store,
		session.WithLogger(log.Logger),
		session.WithRenewalInterval(cfg.GetRenewalInterval()),
	)
	if err != nil {
		return err
	}

	manager.Initialize(cmd.Context())
	return nil
}

func teardown(*cobra.Command, []string) {
	if store != nil {
		_ = store.Close()
	}
}
