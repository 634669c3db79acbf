package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/novax/sochratic/internal/auth"
)

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the signed-in user",
	RunE: func(cmd *cobra.Command, args []string) error {
		d, cleanup, err := buildDeps()
		if err != nil {
			return err
		}
		defer cleanup()

		user, err := d.authenticator.Current(cmd.Context())
		if errors.Is(err, auth.ErrNotSignedIn) {
			fmt.Println("Not signed in. Run: sochratic login")
			return nil
		}
		if err != nil {
			return err
		}

		fmt.Printf("%s <%s>\n", user.Username, user.Email)

		// Profile enriches the output when the backend is reachable.
		if profile, perr := d.client.Profile(cmd.Context()); perr == nil {
			fmt.Printf("Level %d, %d EXP\n", profile.Level, profile.TotalExp)
		}
		return nil
	},
}
