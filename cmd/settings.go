package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/kakomon/kakomon/internal/favorite"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Show or change the favorite filter",
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the favorite filter",
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := openLocal(cmd)
		if err != nil {
			return err
		}
		defer env.Close()

		st, err := favorite.NewService(env.store.SettingsRepo()).GetOrDefault(cmd.Context(), env.userID)
		if err != nil {
			return err
		}
		printSettings(cmd.OutOrStdout(), st)
		return nil
	},
}

var settingsSetCmd = &cobra.Command{
	Use:   "set",
	Short: "Change the favorite filter",
	Long:  "Change the favorite filter. Flags that are not given keep their current value.",
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := openLocal(cmd)
		if err != nil {
			return err
		}
		defer env.Close()

		svc := favorite.NewService(env.store.SettingsRepo())
		cur, err := svc.GetOrDefault(cmd.Context(), env.userID)
		if err != nil {
			return err
		}

		flags := cmd.Flags()
		l1, l2, l3 := cur.Level1Enabled, cur.Level2Enabled, cur.Level3Enabled
		mode := string(cur.CombineMode)
		if flags.Changed("level1") {
			l1, _ = flags.GetBool("level1")
		}
		if flags.Changed("level2") {
			l2, _ = flags.GetBool("level2")
		}
		if flags.Changed("level3") {
			l3, _ = flags.GetBool("level3")
		}
		if flags.Changed("mode") {
			mode, _ = flags.GetString("mode")
		}

		st, err := svc.Upsert(cmd.Context(), env.userID, l1, l2, l3, mode)
		if err != nil {
			return err
		}
		printSettings(cmd.OutOrStdout(), st)
		return nil
	},
}

func init() {
	settingsSetCmd.Flags().Bool("level1", true, "Include level 1 tags")
	settingsSetCmd.Flags().Bool("level2", true, "Include level 2 tags")
	settingsSetCmd.Flags().Bool("level3", true, "Include level 3 tags")
	settingsSetCmd.Flags().String("mode", "OR", "OR (any enabled level) or AND (every enabled level)")

	settingsCmd.AddCommand(settingsShowCmd)
	settingsCmd.AddCommand(settingsSetCmd)
}

func printSettings(w io.Writer, st favorite.Settings) {
	fmt.Fprintf(w, "level1=%t level2=%t level3=%t mode=%s\n",
		st.Level1Enabled, st.Level2Enabled, st.Level3Enabled, st.CombineMode)
}
