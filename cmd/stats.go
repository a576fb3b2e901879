package cmd

import (
	"fmt"

	"charm.land/lipgloss/v2"
	"charm.land/lipgloss/v2/table"
	"github.com/spf13/cobra"

	"github.com/abhisek/tangocho/internal/logger"
	"github.com/abhisek/tangocho/internal/mastery"
	"github.com/abhisek/tangocho/internal/session"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show mastery progress per set and overall",
	RunE: func(cmd *cobra.Command, args []string) error {
		st, cfg, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer st.Close()

		e := newEngine(st, cfg, logger.Nop())
		ctx := cmd.Context()

		sets, err := e.Sets(ctx)
		if err != nil {
			return err
		}
		if len(sets) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No words yet. Import some with `tangocho migrate --from <legacy.db>`.")
			return nil
		}

		var states []session.StateCounts
		for _, dir := range []mastery.Direction{mastery.Recall, mastery.Recognize} {
			sc, err := e.States(ctx, dir)
			if err != nil {
				return err
			}
			states = append(states, sc)
		}

		fmt.Fprintln(cmd.OutOrStdout(), renderSetTable(sets, true))
		fmt.Fprintln(cmd.OutOrStdout(), renderStateTable(states))
		return nil
	},
}

func percent(mastered, total int) string {
	return fmt.Sprintf("%.1f%%", mastery.ProgressRate(mastered, total)*100)
}

// renderSetTable lists sets with word counts and, when withRates is set,
// the mastered share per direction plus an overall row.
func renderSetTable(sets []session.SetInfo, withRates bool) string {
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		StyleFunc(func(row, col int) lipgloss.Style {
			s := lipgloss.NewStyle().Padding(0, 1)
			if row == table.HeaderRow {
				return s.Bold(true)
			}
			return s
		})

	if !withRates {
		t.Headers("Set", "Words")
		for _, si := range sets {
			t.Row(fmt.Sprint(si.Label()), fmt.Sprint(si.Words))
		}
		return t.String()
	}

	t.Headers("Set", "Words", "Recall", "Recognize")
	var total session.SetInfo
	for _, si := range sets {
		t.Row(
			fmt.Sprint(si.Label()),
			fmt.Sprint(si.Words),
			percent(si.RecallMastered, si.Words),
			percent(si.RecognizeMastered, si.Words),
		)
		total.Words += si.Words
		total.RecallMastered += si.RecallMastered
		total.RecognizeMastered += si.RecognizeMastered
	}
	t.Row("All", fmt.Sprint(total.Words),
		percent(total.RecallMastered, total.Words),
		percent(total.RecognizeMastered, total.Words))
	return t.String()
}

func renderStateTable(states []session.StateCounts) string {
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		Headers("Direction", string(mastery.StateNew), string(mastery.StateLearning), string(mastery.StateMastered))
	for _, sc := range states {
		t.Row(
			sc.Direction.String(),
			fmt.Sprint(sc.Count(mastery.StateNew)),
			fmt.Sprint(sc.Count(mastery.StateLearning)),
			fmt.Sprint(sc.Count(mastery.StateMastered)),
		)
	}
	return t.String()
}
