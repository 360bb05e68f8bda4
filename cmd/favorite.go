package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kakomon/kakomon/internal/apperr"
	"github.com/kakomon/kakomon/internal/favorite"
	"github.com/kakomon/kakomon/internal/mastery"
)

var favoriteCmd = &cobra.Command{
	Use:   "favorite QUESTION [LEVEL]",
	Short: "Show or toggle the favorite tags of a question",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		questionID, err := parseID("question", args[0])
		if err != nil {
			return err
		}
		level := 0
		if len(args) == 2 {
			level, err = strconv.Atoi(args[1])
			if err != nil {
				return apperr.Invalid("level", "%q is not 1, 2 or 3", args[1])
			}
		}

		env, err := openLocal(cmd)
		if err != nil {
			return err
		}
		defer env.Close()

		svc := mastery.NewService(env.store, env.log)
		var flags favorite.Flags
		if level == 0 {
			flags, err = svc.FavoriteStatus(cmd.Context(), env.userID, questionID)
		} else {
			flags, err = svc.ToggleFavorite(cmd.Context(), env.userID, questionID, level)
		}
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Question %d: %s\n", questionID, formatFlags(flags))
		return nil
	},
}

func formatFlags(f favorite.Flags) string {
	var parts []string
	for _, l := range favorite.Levels {
		mark := "-"
		if f.Get(l) {
			mark = "x"
		}
		parts = append(parts, fmt.Sprintf("L%d[%s]", l, mark))
	}
	return strings.Join(parts, " ")
}
