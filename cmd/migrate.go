package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/abhisek/tangocho/internal/migrate"
	"github.com/abhisek/tangocho/internal/store"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Import words from a legacy database",
	Long: "Copies words(id, jp, en, progression, my) from a legacy database. " +
		"The legacy progression becomes the recall level; recognition starts at zero.",
	RunE: func(cmd *cobra.Command, args []string) error {
		from, _ := cmd.Flags().GetString("from")
		batch, _ := cmd.Flags().GetInt("batch")
		dryRun, _ := cmd.Flags().GetBool("dry-run")

		src, err := store.OpenLegacy(from)
		if err != nil {
			return err
		}
		defer src.Close()

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

		report, err := migrate.Run(cmd.Context(), src, st.WordRepo(), migrate.Options{
			Batch:  batch,
			DryRun: dryRun,
			Log:    log,
		})
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		verb := "Migrated"
		if dryRun {
			verb = "Would migrate"
		}
		fmt.Fprintf(out, "%s %d of %d words.\n", verb, report.Migrated, report.Read)
		if len(report.Skipped) > 0 {
			fmt.Fprintf(out, "Skipped %d:\n", len(report.Skipped))
			for _, s := range report.Skipped {
				fmt.Fprintf(out, "  word %d: %v\n", s.ID, s.Err)
			}
		}
		return nil
	},
}

func init() {
	migrateCmd.Flags().String("from", "", "Path to the legacy SQLite database")
	migrateCmd.Flags().Int("batch", migrate.DefaultBatch, "Words upserted per transaction")
	migrateCmd.Flags().Bool("dry-run", false, "Convert and report without writing")
	_ = migrateCmd.MarkFlagRequired("from")
}
