package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/ThermCoin-Protocol/thermcoin-smart-contracts/internal/config"
	"github.com/ThermCoin-Protocol/thermcoin-smart-contracts/internal/logging"
	"github.com/ThermCoin-Protocol/thermcoin-smart-contracts/internal/node"
)

// serverCmd represents the server command (default action)
var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Start the thermd node",
	Long: `Start the thermd node which provides:
- HTTP JSON-RPC API endpoints
- WebSocket server for transfer, approval and rebase subscriptions
- gRPC health service

This is the default command when no subcommand is specified.`,
	RunE: runServer,
}

func init() {
	rootCmd.AddCommand(serverCmd)

	// Set server as the default command
	rootCmd.RunE = runServer
}

// loadConfig reads the configuration file and applies command-line overrides.
func loadConfig() (*config.Config, error) {
	cfg, err := config.LoadConfig(configFile)
	if err != nil {
		return nil, err
	}
	if rpcAddress != "" {
		cfg.RPC.Address = rpcAddress
	}
	if grpcAddress != "" {
		cfg.GRPC.Address = grpcAddress
	}
	if level := flagLogLevel(); level != "" {
		cfg.Log.Level = level
	}
	if err := config.ValidateConfig(cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

// flagLogLevel maps --debug, --verbose and --quiet onto a log level. The most
// verbose flag wins.
func flagLogLevel() string {
	switch {
	case debug:
		return "debug"
	case verbose:
		return "info"
	case quiet:
		return "error"
	}
	return ""
}

func runServer(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	logger, err := logging.New(cfg.Log.Logging())
	if err != nil {
		return err
	}
	defer logger.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	n, err := node.New(ctx, cfg, node.WithLogger(logger.Logger))
	if err != nil {
		return err
	}
	defer func() {
		if err := n.Close(); err != nil {
			logger.Error("close node", "error", err)
		}
	}()

	if !quiet {
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Starting thermd %s\n", rootCmd.Version)
		fmt.Fprintf(out, "  Token:      %s (%s), owner %s\n", n.Token().Name(), n.Token().Symbol(), n.Token().Owner())
		fmt.Fprintf(out, "  Storage:    %s at %s\n", cfg.Storage.Backend, cfg.Storage.Path)
		fmt.Fprintf(out, "  Journal:    %s\n", cfg.Journal.Driver)
		if cfg.RPC.Enabled {
			fmt.Fprintf(out, "  JSON-RPC:   http://%s/\n", cfg.RPC.Address)
			fmt.Fprintf(out, "  WebSocket:  ws://%s%s\n", cfg.RPC.Address, cfg.RPC.WSPath)
		}
		if cfg.GRPC.Enabled {
			fmt.Fprintf(out, "  gRPC:       %s\n", cfg.GRPC.Address)
		}
	}

	return n.Run(ctx)
}
