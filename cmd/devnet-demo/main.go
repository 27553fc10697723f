// @title        Solana devnet demo API
// @version      1.0
// @description  Generate a funded devnet account, connect a wallet and transfer SOL to it.
// @BasePath     /
package main

import (
	"fmt"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"

	app = &cobra.Command{
		Use:           "devnet-demo",
		Short:         "solana devnet transfer demo",
		Long:          "generate a funded devnet account, connect a wallet and transfer SOL from the account to the wallet",
		Version:       formatVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// .env is optional, real environment variables win
			if err := godotenv.Load(); err == nil {
				log.Debug("loaded .env")
			}
		},
	}
)

func init() {
	app.AddCommand(serveCmd, keygenCmd, addressCmd, rekeyCmd)
}

func main() {
	if err := app.Execute(); err != nil {
		log.Fatal(err)
	}
}

func formatVersion() string {
	return fmt.Sprintf(
		"Version: %s\nCommit: %s\nDate: %s",
		version, commit, date,
	)
}
