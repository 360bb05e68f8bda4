package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/kakomon/kakomon/internal/apperr"
	"github.com/kakomon/kakomon/internal/mastery"
)

var resetCmd = &cobra.Command{
	Use:   "reset SECTION",
	Short: "Clear progress in a section",
	Long: "Clear progress in a section. --scope full removes every answer and the section summary, " +
		"incorrect removes only the wrong answers, question removes one answer (--question).",
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		sectionID, err := parseID("section", args[0])
		if err != nil {
			return err
		}
		scope, _ := cmd.Flags().GetString("scope")
		questionID, _ := cmd.Flags().GetInt("question")
		if scope == "question" && questionID <= 0 {
			return apperr.Invalid("question", "--question is required with --scope question")
		}

		env, err := openLocal(cmd)
		if err != nil {
			return err
		}
		defer env.Close()

		svc := mastery.NewService(env.store, env.log)
		ctx := cmd.Context()
		switch scope {
		case "full":
			err = svc.FullReset(ctx, env.userID, sectionID)
		case "incorrect":
			err = svc.IncorrectOnlyReset(ctx, env.userID, sectionID)
		case "question":
			err = svc.ResetQuestion(ctx, env.userID, sectionID, questionID)
		default:
			return apperr.Invalid("scope", "%q is not full, incorrect or question", scope)
		}
		if err != nil {
			return err
		}

		p, err := svc.SectionProgress(ctx, env.userID, sectionID)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Reset %s: %d/%d (%s)\n",
			p.Section.Title, p.CorrectCount, p.TotalCount, p.State.Label())
		return nil
	},
}

func init() {
	resetCmd.Flags().String("scope", "full", "full, incorrect or question")
	resetCmd.Flags().Int("question", 0, "Question id for --scope question")
}

func parseID(field, s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return 0, apperr.Invalid(field, "%q is not a positive id", s)
	}
	return n, nil
}
