package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/onionrsv/console-session/identity"
)

var (
	profileDisplayName string
	profileFirstName   string
	profileLastName    string
)

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Update the authenticated user's profile",
	RunE: func(cmd *cobra.Command, _ []string) error {
		if manager.User() == nil {
			return fmt.Errorf("not signed in")
		}

		var partial identity.Partial
		if cmd.Flags().Changed("name") {
			partial.DisplayName = &profileDisplayName
		}
		if cmd.Flags().Changed("first") {
			partial.FirstName = &profileFirstName
		}
		if cmd.Flags().Changed("last") {
			partial.LastName = &profileLastName
		}

		if err := manager.UpdateProfile(cmd.Context(), partial); err != nil {
			return err
		}
		fmt.Printf("Profile updated: %s\n", manager.User().DisplayName)
		return nil
	},
}

var changePasswordCmd = &cobra.Command{
	Use:   "change-password <current> <new>",
	Short: "Change the authenticated user's password",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := manager.ChangePassword(cmd.Context(), args[0], args[1]); err != nil {
			return err
		}
		fmt.Println("Password changed")
		return nil
	},
}

func init() {
	profileCmd.Flags().StringVar(&profileDisplayName, "name", "", "display name")
	profileCmd.Flags().StringVar(&profileFirstName, "first", "", "first name")
	profileCmd.Flags().StringVar(&profileLastName, "last", "", "last name")
	rootCmd.AddCommand(profileCmd)
	rootCmd.AddCommand(changePasswordCmd)
}
