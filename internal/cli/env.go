package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/nhle/automation-sync/internal/credential"
	"github.com/nhle/automation-sync/internal/logging"
	"github.com/nhle/automation-sync/internal/model"
	"github.com/nhle/automation-sync/internal/reporter"
	"github.com/nhle/automation-sync/internal/store"
)

// env bundles what most commands need: loaded config and a logger.
type env struct {
	cfgPath string
	cfg     *model.AppConfig
	logger  *logging.Logger
}

// loadEnv reads the config named by the --config flag.
func loadEnv(cmd *cobra.Command) (*env, error) {
	cfgPath, _ := cmd.Flags().GetString("config")
	if cfgPath == "" {
		cfgPath = model.DefaultConfigPath()
	}

	cfg, err := model.LoadConfig(cfgPath)
	if err != nil {
		return nil, err
	}

	logger := logging.New(cmd.OutOrStdout(), cfg.Log.Tag)
	if cfg.Log.Color {
		logger = logger.WithColor()
	}

	return &env{cfgPath: cfgPath, cfg: cfg, logger: logger}, nil
}

// token resolves the PAT from config/environment, then the keyring.
func (e *env) token() (string, error) {
	if e.cfg.Azure.Token != "" {
		return e.cfg.Azure.Token, nil
	}
	if e.cfg.Azure.OrgURL == "" {
		return "", reporter.ErrMissingOrgURL
	}

	token, err := credential.Get(credential.TokenKey(e.cfg.Azure.OrgURL))
	if errors.Is(err, credential.ErrNotFound) {
		return "", fmt.Errorf(
			"%w: run 'automation-sync auth login' or set AUTOMATION_SYNC_AZURE_TOKEN",
			reporter.ErrMissingToken,
		)
	}
	if err != nil {
		return "", err
	}
	return token, nil
}

// newReporter builds a validated reporter from the loaded config.
func (e *env) newReporter() (*reporter.Reporter, error) {
	token, err := e.token()
	if err != nil {
		return nil, err
	}
	return reporter.New(reporter.Config{
		OrgURL: e.cfg.Azure.OrgURL,
		Token:  token,
	}, e.logger)
}

// openLedger opens the sync ledger, or returns nil when history is disabled.
func (e *env) openLedger() (*store.SQLiteStore, error) {
	if !e.cfg.History.Enabled {
		return nil, nil
	}

	dir := filepath.Dir(e.cfg.History.DBPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating history directory %s: %w", dir, err)
	}

	s, err := store.NewSQLiteStore(e.cfg.History.DBPath)
	if err != nil {
		return nil, fmt.Errorf("opening history %s: %w", e.cfg.History.DBPath, err)
	}
	return s, nil
}
