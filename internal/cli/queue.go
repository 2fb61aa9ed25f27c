package cli

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"quiz-intake-service/internal/config"
)

// NewQueueCmd groups the local submission queue maintenance commands.
func NewQueueCmd(configPath *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "queue",
		Short: "Inspect or clear locally queued submissions",
	}

	var all bool
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List queued submissions",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runQueueList(cmd.Context(), *configPath, all, cmd.OutOrStdout())
		},
	}
	listCmd.Flags().BoolVar(&all, "all", false, "include submissions that were already synced")

	clearCmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete every locally stored submission",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runQueueClear(cmd.Context(), *configPath, cmd.OutOrStdout())
		},
	}

	cmd.AddCommand(listCmd, clearCmd)
	return cmd
}

func runQueueList(ctx context.Context, configPath string, all bool, out io.Writer) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	services, _, err := buildServices(ctx, cfg)
	if err != nil {
		return err
	}
	defer services.Close()

	records, err := services.Submissions.List(ctx)
	if err != nil {
		return err
	}
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tQUIZ\tRESPONDENT\tCREATED\tSYNCED")
	for _, r := range records {
		if r.Synced && !all {
			continue
		}
		fmt.Fprintf(w, "%s\t%s\t%s %s\t%s\t%v\n",
			r.ID, r.QuizTitle, r.Respondent.FirstName, r.Respondent.LastName,
			r.CreatedAt.Format(time.RFC3339), r.Synced)
	}
	return w.Flush()
}

func runQueueClear(ctx context.Context, configPath string, out io.Writer) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	services, _, err := buildServices(ctx, cfg)
	if err != nil {
		return err
	}
	defer services.Close()

	if err := services.Submissions.ClearAll(ctx); err != nil {
		return err
	}
	fmt.Fprintln(out, "local submission queue cleared")
	return nil
}
