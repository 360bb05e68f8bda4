package cmd

import (
	"github.com/spf13/cobra"

	"github.com/kakomon/kakomon/internal/app"
	"github.com/kakomon/kakomon/internal/screens"
)

// runApp opens the store, builds services, and launches the TUI.
func runApp(cmd *cobra.Command) error {
	env, err := openLocal(cmd)
	if err != nil {
		return err
	}
	defer env.Close()

	noSplash, _ := cmd.Flags().GetBool("no-splash")
	svc := screens.NewServices(env.store, env.userID, env.log)
	svc.Log.Info("tui started")
	return app.Run(svc, app.Options{Splash: !noSplash})
}
