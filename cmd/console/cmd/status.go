package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/common-nighthawk/go-figure"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the current session state",
	Args:  cobra.NoArgs,
	Run: func(*cobra.Command, []string) {
		figure.NewFigure(cfg.GetAppName(), "cybermedium", true).Print()
		fmt.Println()

		if !manager.IsAuthenticated() {
			fmt.Println("Session: anonymous")
			return
		}
		user := manager.User()
		fmt.Printf("Session: authenticated as %s (%s)\n", user.DisplayName, user.Email)
		fmt.Printf("Auto-renewal: %v\n", manager.RenewalArmed())
	},
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Print the authenticated identity as JSON",
	Args:  cobra.NoArgs,
	RunE: func(*cobra.Command, []string) error {
		user := manager.User()
		if user == nil {
			return fmt.Errorf("not signed in")
		}
		return json.NewEncoder(os.Stdout).Encode(user)
	},
}

var refreshCmd = &cobra.Command{
	Use:   "refresh",
	Short: "Force a token renewal now",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		if err := manager.RefreshNow(cmd.Context()); err != nil {
			return err
		}
		fmt.Println("Tokens renewed")
		return nil
	},
}

// watch keeps the process resident so the renewal scheduler stays live,
// the way the browser console keeps its session fresh in the background.
var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Stay resident and keep the session renewed until interrupted",
	Args:  cobra.NoArgs,
	RunE: func(*cobra.Command, []string) error {
		if !manager.IsAuthenticated() {
			return fmt.Errorf("not signed in")
		}
		log.Info().Bool("auto_renewal", manager.RenewalArmed()).Msg("watching session")

		stop := make(chan os.Signal, 1)
		signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
		<-stop

		log.Info().Msg("stopping")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(whoamiCmd)
	rootCmd.AddCommand(refreshCmd)
	rootCmd.AddCommand(watchCmd)
}
