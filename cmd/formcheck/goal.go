package main

import (
	"fmt"
	"strconv"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/ayusman/formcheck/internal/exercise"
)

var goalCmd = &cobra.Command{
	Use:   "goal",
	Short: "Show or change rep goals",
}

var goalGetCmd = &cobra.Command{
	Use:   "get [exercise]",
	Short: "Show the rep goal of one or every exercise",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := openStore()
		if err != nil {
			return err
		}
		defer st.Close()

		var targets []exercise.Exercise
		if len(args) == 1 {
			ex, err := repExercise(args[0])
			if err != nil {
				return err
			}
			targets = append(targets, ex)
		} else {
			for _, info := range exercise.All() {
				if info.CountsReps {
					targets = append(targets, info.ID)
				}
			}
		}

		bold := color.New(color.Bold).SprintFunc()
		for _, ex := range targets {
			n, err := st.Goals().Get(ex)
			if err != nil {
				return fmt.Errorf("failed to load goal: %w", err)
			}
			fmt.Printf("%-16s %s reps\n", exercise.Describe(ex).Name, bold(n))
		}
		return nil
	},
}

var goalSetCmd = &cobra.Command{
	Use:   "set <exercise> <reps>",
	Short: "Set the rep goal of an exercise",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ex, err := repExercise(args[0])
		if err != nil {
			return err
		}
		n, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("reps must be a number: %w", err)
		}

		st, err := openStore()
		if err != nil {
			return err
		}
		defer st.Close()

		if err := st.Goals().Set(ex, n); err != nil {
			return err
		}
		color.Green("%s goal set to %d reps", exercise.Describe(ex).Name, n)
		return nil
	},
}

func init() {
	goalCmd.AddCommand(goalGetCmd, goalSetCmd)
	rootCmd.AddCommand(goalCmd)
}

func repExercise(id string) (exercise.Exercise, error) {
	ex, ok := exercise.Lookup(id)
	if !ok {
		return "", fmt.Errorf("unknown exercise %q", id)
	}
	if !ex.CountsReps() {
		return "", fmt.Errorf("%s has no repetitions", exercise.Describe(ex).Name)
	}
	return ex, nil
}
