package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	sdk "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/spf13/cobra"

	"rolecraft/internal/mcp"
	"rolecraft/internal/notify"
)

func serveCmd() *cobra.Command {
	var eventsOut string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the MCP server over stdio",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(eventsOut)
		},
	}
	cmd.Flags().StringVar(&eventsOut, "events-out", "", "Append notifications to this file as JSON lines")
	return cmd
}

func runServe(eventsOut string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close(context.Background())

	if eventsOut != "" {
		f, err := os.OpenFile(eventsOut, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return fmt.Errorf("opening events file: %w", err)
		}
		defer f.Close()
		a.bus.Subscribe("events-out", notify.JSONLines(f))
	}

	server := mcp.NewServer(mcp.Services{
		Catalog:   a.catalog,
		Evolution: a.evolution,
		Emergence: a.emergence,
		Scenes:    a.scenes,
		Logger:    a.log,
	}, version)
	return server.Run(ctx, &sdk.StdioTransport{})
}
