package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/abhisek/tangocho/internal/app"
	"github.com/abhisek/tangocho/internal/screens/nav"
)

// runApp opens the store, builds dependencies, and launches the TUI.
func runApp(cmd *cobra.Command) error {
	ctx := cmd.Context()
	st, cfg, err := openStore(cmd)
	if err != nil {
		return err
	}
	defer st.Close()

	log, err := newLogger(cfg)
	if err != nil {
		return fmt.Errorf("create logger: %w", err)
	}
	defer log.Sync()

	log.Info("starting", "version", version, "write_mode", cfg.WriteMode)

	return app.Run(app.Options{
		Deps: nav.Deps{
			Ctx:      ctx,
			Engine:   newEngine(st, cfg, log),
			Log:      log,
			Defaults: defaultSessionConfig(cfg),
		},
		Status: cfg.WriteMode + " save",
	})
}
