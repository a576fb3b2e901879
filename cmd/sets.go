package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/abhisek/tangocho/internal/logger"
)

var setsCmd = &cobra.Command{
	Use:   "sets",
	Short: "List the 100-word sets and their sizes",
	RunE: func(cmd *cobra.Command, args []string) error {
		st, cfg, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer st.Close()

		sets, err := newEngine(st, cfg, logger.Nop()).Sets(cmd.Context())
		if err != nil {
			return err
		}
		if len(sets) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No sets yet.")
			return nil
		}
		fmt.Fprintln(cmd.OutOrStdout(), renderSetTable(sets, false))
		return nil
	},
}
