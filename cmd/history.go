package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/novax/sochratic/internal/auth"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recent study sessions",
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

		entries, err := d.store.History(cmd.Context(), user.ID, 20)
		if err != nil {
			return err
		}
		if len(entries) == 0 {
			fmt.Println("No sessions yet.")
			return nil
		}
		for _, e := range entries {
			line := fmt.Sprintf("%s  topic %-4d %-10s", e.CreatedAt.Format("2006-01-02 15:04"), e.TopicID, e.Outcome)
			if e.TotalExp > 0 {
				line += fmt.Sprintf("  +%d EXP", e.TotalExp)
			}
			fmt.Println(line)
		}
		return nil
	},
}
