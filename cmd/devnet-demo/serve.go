package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/AlexZinkM/devnet-demo/internal/api"
	"github.com/AlexZinkM/devnet-demo/internal/client"
	"github.com/AlexZinkM/devnet-demo/internal/config"
	"github.com/AlexZinkM/devnet-demo/internal/provider"
	"github.com/AlexZinkM/devnet-demo/solana"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	confirmConnect bool

	serveCmd = &cobra.Command{
		Use:   "serve",
		Short: "serve the demo page and API",
		RunE:  serveAction,
	}
)

func init() {
	serveCmd.Flags().BoolVar(&confirmConnect, "confirm-connect", false, "ask on the terminal before the wallet accepts a connect request")
}

func serveAction(cmd *cobra.Command, args []string) error {
	if err := config.Init(); err != nil {
		return err
	}

	level, err := log.ParseLevel(config.GetLogLevel())
	if err != nil {
		return fmt.Errorf("invalid LOG_LEVEL: %w", err)
	}
	log.SetLevel(level)

	env := provider.Environment{}
	if path := config.GetProviderFilePath(); path != "" {
		wallet, err := openWallet(path)
		if err != nil {
			return err
		}
		defer wallet.Close()
		env[provider.InjectionKey] = wallet
	}

	solanaClient := client.NewSolanaClient(
		config.GetSolanaRPCURL(),
		config.GetCommitment(),
		config.GetConfirmPollInterval(),
		config.GetRPCRateLimit(),
	)
	defer solanaClient.Close()

	session := solana.NewSession(env, solanaClient, solana.Options{
		AirdropLamports:  config.GetAirdropLamports(),
		TransferLamports: config.GetTransferLamports(),
		Rates:            client.NewCoinGeckoClient(config.GetCoinGeckoURL()),
	})
	defer session.Close()

	srv := &http.Server{
		Addr:              ":" + config.GetPort(),
		Handler:           api.SetupRouter(session),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		log.WithFields(log.Fields{
			"addr":    srv.Addr,
			"rpc":     config.GetSolanaRPCURL(),
			"session": session.ID(),
		}).Info("devnet demo listening")
		errc <- srv.ListenAndServe()
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGTERM, syscall.SIGINT)

	select {
	case err := <-errc:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-sigChan:
	}

	log.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(ctx)
}

// openWallet decrypts the keyfile backing the injected wallet provider
func openWallet(path string) (*provider.Keyfile, error) {
	if err := config.PromptForPassword(); err != nil {
		return nil, err
	}
	defer config.ClearPassword()

	password, err := config.GetProviderPasswordBytes()
	if err != nil {
		return nil, err
	}
	defer clear(password)

	var opts []provider.Option
	if confirmConnect {
		opts = append(opts, provider.WithApprover(terminalApprover()))
	}

	wallet, err := provider.NewKeyfile(path, password, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to open wallet %s: %w", path, err)
	}
	return wallet, nil
}

// terminalApprover asks the operator to approve connect requests
func terminalApprover() provider.Approver {
	in := bufio.NewReader(os.Stdin)
	return func(ctx context.Context) bool {
		fmt.Fprint(os.Stderr, "Allow the demo page to connect to the wallet? [y/N] ")
		answer, err := in.ReadString('\n')
		if err != nil {
			return false
		}
		answer = strings.ToLower(strings.TrimSpace(answer))
		return answer == "y" || answer == "yes"
	}
}
