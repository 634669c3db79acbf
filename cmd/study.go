package cmd

import (
	"github.com/spf13/cobra"

	"github.com/novax/sochratic/internal/app"
)

var studyCmd = &cobra.Command{
	Use:   "study",
	Short: "Open the study interface",
	RunE: func(cmd *cobra.Command, args []string) error {
		return app.Run()
	},
}
