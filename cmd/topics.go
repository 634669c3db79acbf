package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var topicsCmd = &cobra.Command{
	Use:   "topics",
	Short: "List studyable topics",
	RunE: func(cmd *cobra.Command, args []string) error {
		d, cleanup, err := buildDeps()
		if err != nil {
			return err
		}
		defer cleanup()

		topics, err := d.client.Topics(cmd.Context())
		if err != nil {
			return err
		}
		if len(topics) == 0 {
			fmt.Println("No topics available.")
			return nil
		}
		for _, t := range topics {
			fmt.Printf("%4d  %s\n", t.ID, t.Title)
			if t.Description != "" {
				fmt.Printf("      %s\n", t.Description)
			}
		}
		return nil
	},
}
