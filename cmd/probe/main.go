package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bilgisen/pubserve/internal/logger"
	"github.com/bilgisen/pubserve/internal/probe"
	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	var (
		base    string
		timeout time.Duration
		expect  int
	)

	cmd := &cobra.Command{
		Use:          "probe [flags] [path...]",
		Short:        "Check that a running pubserve answers the given paths",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				args = []string{"/"}
			}

			if err := logger.Init(logger.Config{
				Level:  "info",
				Output: "stderr",
				Pretty: true,
			}); err != nil {
				return err
			}
			log := logger.Get()

			results := probe.NewProber(base, timeout).CheckAll(cmd.Context(), args)
			for _, r := range results {
				event := log.Info()
				if r.Err != nil || r.Status != expect {
					event = log.Error().Err(r.Err)
				}
				event.
					Str("path", r.Path).
					Int("status", r.Status).
					Str("content_type", r.ContentType).
					Int("bytes", r.Bytes).
					Dur("latency", r.Latency).
					Msg("probe")
			}

			if failed := probe.Failed(results, expect); len(failed) > 0 {
				return fmt.Errorf("%d of %d paths failed", len(failed), len(results))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&base, "base", "http://127.0.0.1:8000", "base URL of the server")
	cmd.Flags().DurationVar(&timeout, "timeout", 10*time.Second, "per-request timeout")
	cmd.Flags().IntVar(&expect, "expect", http.StatusOK, "expected status code")

	return cmd
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}
