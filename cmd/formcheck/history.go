package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/ayusman/formcheck/internal/exercise"
	"github.com/ayusman/formcheck/internal/session"
)

var (
	historyExercise string
	historyLimit    int
)

// historyCmd prints saved workouts, newest first.
var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show saved workout sessions",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := openStore()
		if err != nil {
			return err
		}
		defer st.Close()

		var sessions []*session.WorkoutSession
		if historyExercise != "" {
			ex, ok := exercise.Lookup(historyExercise)
			if !ok {
				return fmt.Errorf("unknown exercise %q", historyExercise)
			}
			sessions, err = st.Sessions().ListByExercise(ex, historyLimit)
		} else {
			sessions, err = st.Sessions().List(historyLimit)
		}
		if err != nil {
			return fmt.Errorf("failed to retrieve sessions: %w", err)
		}

		if len(sessions) == 0 {
			fmt.Println("No sessions saved yet.")
			return nil
		}

		header := color.New(color.FgGreen, color.Bold).SprintfFunc()
		fmt.Println(header("%-17s %-16s %5s %6s %8s", "DATE", "EXERCISE", "REPS", "FORM", "TIME"))
		for _, ws := range sessions {
			fmt.Printf("%-17s %-16s %5d %s %8s\n",
				ws.Date.Local().Format("2006-01-02 15:04"),
				exercise.Describe(ws.Exercise).Name,
				ws.Reps,
				scoreColor(ws.FormScore)("%5d%%", ws.FormScore),
				formatDuration(ws.DurationSeconds),
			)
		}
		return nil
	},
}

func init() {
	historyCmd.Flags().StringVarP(&historyExercise, "exercise", "e", "", "only show this exercise")
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "number of sessions to show (0 for all)")
	rootCmd.AddCommand(historyCmd)
}

// scoreColor matches the dashboard: green from 80, yellow from 50.
func scoreColor(score int) func(format string, a ...interface{}) string {
	switch {
	case score >= 80:
		return color.New(color.FgGreen).SprintfFunc()
	case score >= 50:
		return color.New(color.FgYellow).SprintfFunc()
	default:
		return color.New(color.FgRed).SprintfFunc()
	}
}

func formatDuration(seconds int) string {
	return fmt.Sprintf("%d:%02d", seconds/60, seconds%60)
}
