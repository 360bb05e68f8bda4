package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kakomon/kakomon/internal/mocktest"
)

var mockCmd = &cobra.Command{
	Use:   "mock",
	Short: "Inspect stored mock exam attempts",
}

var mockHistoryCmd = &cobra.Command{
	Use:   "history",
	Short: "List recent mock attempts, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")

		env, err := openLocal(cmd)
		if err != nil {
			return err
		}
		defer env.Close()

		attempts, err := mocktest.NewScorer(env.store, env.log).History(cmd.Context(), env.userID, limit)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if len(attempts) == 0 {
			fmt.Fprintln(out, "No mock attempts yet.")
			return nil
		}
		for _, a := range attempts {
			fmt.Fprintf(out, "%s  %s  %d/%d (%d%%)\n",
				a.ID, a.TakenAt.Local().Format("2006-01-02 15:04"), a.Score, a.TotalQuestions, a.Percent())
		}
		return nil
	},
}

var mockShowCmd = &cobra.Command{
	Use:   "show ATTEMPT",
	Short: "Show the answers of one mock attempt",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := openLocal(cmd)
		if err != nil {
			return err
		}
		defer env.Close()

		a, err := mocktest.NewScorer(env.store, env.log).Details(cmd.Context(), env.userID, args[0])
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Attempt %s: %d/%d (%d%%)\n", a.ID, a.Score, a.TotalQuestions, a.Percent())
		for _, r := range a.Results {
			mark := "x"
			if r.IsCorrect {
				mark = "o"
			}
			fmt.Fprintf(out, "  %s question %d: answered %q, correct %s\n", mark, r.QuestionID, r.UserAnswer, r.CorrectAnswer)
		}
		return nil
	},
}

func init() {
	mockHistoryCmd.Flags().Int("limit", mocktest.DefaultHistory, "Number of attempts to list")

	mockCmd.AddCommand(mockHistoryCmd)
	mockCmd.AddCommand(mockShowCmd)
}
