package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/novax/sochratic/internal/api"
)

var registerCmd = &cobra.Command{
	Use:   "register",
	Short: "Create an account and sign in",
	RunE: func(cmd *cobra.Command, args []string) error {
		req := api.RegisterRequest{}
		req.Username, _ = cmd.Flags().GetString("username")
		req.Email, _ = cmd.Flags().GetString("email")
		req.Name, _ = cmd.Flags().GetString("name")
		req.Password, _ = cmd.Flags().GetString("password")
		req.Age, _ = cmd.Flags().GetInt("age")

		if req.Username == "" || req.Email == "" || req.Password == "" {
			return fmt.Errorf("--username, --email and --password are required")
		}

		d, cleanup, err := buildDeps()
		if err != nil {
			return err
		}
		defer cleanup()

		user, err := d.authenticator.Register(cmd.Context(), req)
		if err != nil {
			return err
		}
		fmt.Printf("Welcome, %s! You are signed in.\n", user.Username)
		return nil
	},
}

func init() {
	registerCmd.Flags().String("username", "", "Account username")
	registerCmd.Flags().String("email", "", "Account email")
	registerCmd.Flags().String("name", "", "Display name")
	registerCmd.Flags().String("password", "", "Account password")
	registerCmd.Flags().Int("age", 0, "Age (optional)")
}
