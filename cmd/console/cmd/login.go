package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var loginCmd = &cobra.Command{
	Use:   "login <email> <password>",
	Short: "Authenticate and persist the session",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := manager.Login(cmd.Context(), args[0], args[1]); err != nil {
			return err
		}
		user := manager.User()
		fmt.Printf("Signed in as %s (%s)\n", user.DisplayName, user.Email)
		return nil
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "End the session and wipe stored tokens",
	Args:  cobra.NoArgs,
	Run: func(*cobra.Command, []string) {
		manager.Logout()
		fmt.Println("Signed out")
	},
}

var registerCmd = &cobra.Command{
	Use:   "register <email> <display-name> <password>",
	Short: "Create a new console account (sign in separately afterwards)",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := manager.Register(cmd.Context(), args[0], args[1], args[2]); err != nil {
			return err
		}
		fmt.Printf("Registered %s; run 'console login' to sign in\n", args[0])
		return nil
	},
}

func init() {
	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(logoutCmd)
	rootCmd.AddCommand(registerCmd)
}
