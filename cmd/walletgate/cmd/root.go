package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

// Version is stamped at build time via -ldflags.
var Version = "dev"

var rootCmd = &cobra.Command{
	Use:   "walletgate",
	Short: "WalletGate is a wallet session gateway",
	Long: `A local gateway between the wallet dashboard and the custody backend.
It owns the HTTP-only session cookie, refreshes access tokens transparently
and manages device-local auto-unlock sessions.`,
}

func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}
