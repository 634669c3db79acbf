package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in and save credentials",
	RunE: func(cmd *cobra.Command, args []string) error {
		username, _ := cmd.Flags().GetString("username")
		password, _ := cmd.Flags().GetString("password")
		if username == "" || password == "" {
			return fmt.Errorf("both --username and --password are required")
		}

		d, cleanup, err := buildDeps()
		if err != nil {
			return err
		}
		defer cleanup()

		user, err := d.authenticator.Login(cmd.Context(), username, password)
		if err != nil {
			return err
		}
		fmt.Printf("Signed in as %s\n", user.Username)
		return nil
	},
}

func init() {
	loginCmd.Flags().String("username", "", "Account username")
	loginCmd.Flags().String("password", "", "Account password")
}
