package main

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/gradehoraria/gradewatch/internal/app"
)

func newWatchCmd() *cobra.Command {
	var poll time.Duration
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Open the dashboard (default)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return app.Run(cmd.Context(), app.Options{
				ConfigPath: configPath,
				PrefsPath:  prefsPath,
				PollEvery:  poll,
			})
		},
	}
	cmd.Flags().DurationVar(&poll, "poll", 0, "status poll interval (optional, defaults to the configured 30s)")
	return cmd
}

func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status [grade-id]",
		Short: "Print the grade list or the status of one grade",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := app.StatusOptions{ConfigPath: configPath, Out: cmd.OutOrStdout()}
			if len(args) == 1 {
				opts.GradeID = args[0]
			}
			return app.Status(cmd.Context(), opts)
		},
	}
}

func newGenerateCmd() *cobra.Command {
	var (
		name   string
		turmas []string
		poll   time.Duration
	)
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Request an automatic generation and wait for it to finish",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return app.Generate(cmd.Context(), app.GenerateOptions{
				ConfigPath: configPath,
				Name:       name,
				TurmaIDs:   turmas,
				PollEvery:  poll,
				Out:        cmd.OutOrStdout(),
			})
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "name of the new grade")
	cmd.Flags().StringSliceVar(&turmas, "turma", nil, "class id to include (repeatable)")
	cmd.Flags().DurationVar(&poll, "poll", 0, "status poll interval")
	_ = cmd.MarkFlagRequired("name")
	return cmd
}

func newLogsCmd() *cobra.Command {
	var (
		gradeID string
		lines   int
	)
	cmd := &cobra.Command{
		Use:   "logs",
		Short: "Print the tail of the log file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return app.Logs(app.LogsOptions{
				ConfigPath: configPath,
				GradeID:    gradeID,
				Lines:      lines,
				Out:        cmd.OutOrStdout(),
			})
		},
	}
	cmd.Flags().StringVar(&gradeID, "grade", "", "only lines for this grade id")
	cmd.Flags().IntVarP(&lines, "lines", "n", 50, "number of lines (0 for all)")
	return cmd
}
