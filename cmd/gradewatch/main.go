package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var (
	configPath string
	prefsPath  string
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "gradewatch",
		Short:         "Watch timetable generation jobs",
		Long:          "gradewatch tracks automatic timetable (grade horária) generation and reports when each job finishes.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&configPath, "config", "", "override config path (optional)")
	root.PersistentFlags().StringVar(&prefsPath, "prefs", "", "override preferences path (optional)")

	watch := newWatchCmd()
	root.AddCommand(watch, newStatusCmd(), newGenerateCmd(), newLogsCmd())
	root.RunE = watch.RunE
	root.Flags().AddFlagSet(watch.Flags())
	return root
}

func main() {
	os.Exit(run())
}

func run() int {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "gradewatch: %v\n", err)
		return 1
	}
	return 0
}
