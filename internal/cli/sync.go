package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"
	"quiz-intake-service/internal/config"
	"quiz-intake-service/internal/domain"
)

// NewSyncCmd runs a single sync pass against the configured stores and exits.
func NewSyncCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "sync",
		Short: "Deliver locally queued submissions once",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSync(cmd.Context(), *configPath, cmd.OutOrStdout())
		},
	}
}

func runSync(ctx context.Context, configPath string, out io.Writer) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	services, probe, err := buildServices(ctx, cfg)
	if err != nil {
		return err
	}
	defer services.Close()

	if probe != nil {
		probeCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		err := probe(probeCtx)
		cancel()
		if err != nil {
			return fmt.Errorf("%w: %v", domain.ErrRemoteUnavailable, err)
		}
	}

	report, err := services.Sync.SyncAll(ctx)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(report)
}
