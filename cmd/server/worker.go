package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/iliyamo/invoice-dashboard/internal/config"
	"github.com/iliyamo/invoice-dashboard/internal/queue"
)

func newWorkerCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "worker",
		Short: "Consume invoice change events into the audit log",
		RunE:  workerCommand,
	}
}

func workerCommand(cmd *cobra.Command, _ []string) error {
	amqpCfg, err := config.LoadAMQPConfig()
	if err != nil {
		return fmt.Errorf("load amqp config: %w", err)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	slog.Info("invoice worker starting", "exchange", amqpCfg.Exchange, "queue", amqpCfg.Queue)
	if err := queue.StartInvoiceConsumer(ctx, amqpCfg); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	slog.Info("invoice worker stopped")
	return nil
}
