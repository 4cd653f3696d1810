package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	// Global flags
	configFile  string
	debug       bool
	verbose     bool
	quiet       bool
	rpcAddress  string
	grpcAddress string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "thermd",
	Short: "thermd - ThermCoin token node",
	Long: `thermd hosts the ThermCoin rebasing token: balances, allowances, the
volume-tiered transfer fee and signed meta-transfers, served over JSON-RPC,
WebSocket subscriptions and a gRPC health endpoint.`,
	Version:       "0.1.0-dev",
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "conf", "", "configuration file path")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable normally suppressed debug logging")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose logging")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "only log errors and suppress the startup banner")
	rootCmd.PersistentFlags().StringVar(&rpcAddress, "rpc.address", "", "JSON-RPC listen address (overrides rpc.address)")
	rootCmd.PersistentFlags().StringVar(&grpcAddress, "grpc.address", "", "gRPC listen address (overrides grpc.address)")
}
