package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/ayusman/formcheck/internal/exercise"
)

var exercisesCmd = &cobra.Command{
	Use:   "exercises",
	Short: "List the supported exercises",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		boldCyan := color.New(color.FgCyan, color.Bold).SprintFunc()
		faint := color.New(color.Faint).SprintFunc()
		yellow := color.New(color.FgYellow).SprintFunc()

		for _, info := range exercise.All() {
			reps := ""
			if !info.CountsReps {
				reps = faint(" (form only)")
			}
			fmt.Printf("%s %s%s\n", boldCyan(info.Name), faint("["+string(info.ID)+"]"), reps)
			fmt.Printf("  %s\n", info.Description)
			if info.Tip != "" {
				fmt.Printf("  %s %s\n", yellow("tip:"), info.Tip)
			}
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(exercisesCmd)
}
