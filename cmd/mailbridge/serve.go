package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/mailbridge-io/mailbridge/internal/credential"
	"github.com/mailbridge-io/mailbridge/internal/logging"
	"github.com/mailbridge-io/mailbridge/internal/mail"
	"github.com/mailbridge-io/mailbridge/internal/mcp"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the MCP server on stdio",
	Long: `Serve speaks the Model Context Protocol on stdin/stdout so an agent host
can spawn mailbridge directly. All logs go to stderr.`,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	logger := logging.Setup(cfg.Logging.Level, cfg.Logging.Format)

	client, err := mail.NewClient(cfg.Credentials(credential.PasswordFor), logger)
	if err != nil {
		return fmt.Errorf("configuring mail client: %w", err)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := mcp.NewServer(client, logger, version)
	if err := srv.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("mcp server: %w", err)
	}

	logger.Info("server stopped")
	return nil
}
