package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/novax/sochratic/internal/api"
	"github.com/novax/sochratic/internal/app"
	"github.com/novax/sochratic/internal/auth"
	"github.com/novax/sochratic/internal/config"
	"github.com/novax/sochratic/internal/logging"
	"github.com/novax/sochratic/internal/store"
)

var rootCmd = &cobra.Command{
	Use:   "sochratic",
	Short: "Socratic learning in your terminal",
	Long:  "Sochratic is a terminal client for the Sochratic learning platform. Study topics through guided questioning instead of passive reading.",
	RunE: func(cmd *cobra.Command, args []string) error {
		return app.Run()
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(registerCmd)
	rootCmd.AddCommand(logoutCmd)
	rootCmd.AddCommand(whoamiCmd)
	rootCmd.AddCommand(topicsCmd)
	rootCmd.AddCommand(studyCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(versionCmd)
}

// deps bundles what the headless subcommands need.
type deps struct {
	cfg           config.Config
	log           *zap.Logger
	store         *store.Store
	client        *api.Client
	authenticator *auth.Authenticator
}

// buildDeps loads config and opens the shared dependencies. The returned
// cleanup must run before the command exits.
func buildDeps() (*deps, func(), error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}

	log := logging.New(cfg.LogPath, os.Getenv("SOCHRATIC_DEBUG") != "")

	st, err := store.Open(cfg.DBPath)
	if err != nil {
		_ = log.Sync()
		return nil, nil, fmt.Errorf("open local store: %w", err)
	}

	client := api.New(api.Options{
		BaseURL: cfg.APIURL,
		Tokens:  tokenSource{store: st},
		Timeout: cfg.RequestTimeout,
		Logger:  log,
		OnUnauthorized: func() {
			_ = st.ClearCredentials(context.Background())
		},
	})

	d := &deps{
		cfg:           cfg,
		log:           log,
		store:         st,
		client:        client,
		authenticator: auth.New(client, st, log),
	}
	cleanup := func() {
		_ = st.Close()
		_ = log.Sync()
	}
	return d, cleanup, nil
}

type tokenSource struct {
	store *store.Store
}

func (t tokenSource) Token() string {
	tok, err := t.store.Token(context.Background())
	if err != nil {
		return ""
	}
	return tok
}
