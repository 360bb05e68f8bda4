package cmd

import (
	"fmt"
	"strconv"

	"charm.land/lipgloss/v2"
	"charm.land/lipgloss/v2/table"
	"github.com/spf13/cobra"

	"github.com/kakomon/kakomon/internal/mastery"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show per-section progress",
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := openLocal(cmd)
		if err != nil {
			return err
		}
		defer env.Close()

		exams, err := mastery.NewService(env.store, env.log).Overview(cmd.Context(), env.userID)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if len(exams) == 0 {
			fmt.Fprintln(out, "No exams.")
			return nil
		}

		for _, ep := range exams {
			correct, total := ep.Totals()
			fmt.Fprintf(out, "%s  %d/%d  avg %.0f%%\n", ep.Exam.Title, correct, total, ep.Average()*100)
			fmt.Fprintln(out, sectionTable(ep.Sections))
		}
		return nil
	},
}

func sectionTable(sections []mastery.SectionProgress) *table.Table {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("ID", "SECTION", "CORRECT", "TOTAL", "STATE", "LAST STUDIED")
	for _, sp := range sections {
		last := "-"
		if sp.LastStudiedAt != nil {
			last = sp.LastStudiedAt.Local().Format("2006-01-02 15:04")
		}
		t.Row(
			strconv.Itoa(sp.Section.ID),
			sp.Section.Title,
			strconv.Itoa(sp.CorrectCount),
			strconv.Itoa(sp.TotalCount),
			sp.State.Label(),
			last,
		)
	}
	return t
}
