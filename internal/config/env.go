package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/AlexZinkM/devnet-demo/internal/common"

	"github.com/gagliardetto/solana-go/rpc"
	"github.com/kelseyhightower/envconfig"
	"golang.org/x/term"
)

// Config contains all configuration parameters for the application.
// Note: the provider keyfile password is prompted at runtime or taken from
// PROVIDER_PASSWORD - use GetProviderPasswordBytes()
type Config struct {
	Port                string        `envconfig:"PORT" default:"8080"`
	SolanaRPCURL        string        `envconfig:"SOLANA_RPC_URL" default:"https://api.devnet.solana.com"`
	Commitment          string        `envconfig:"COMMITMENT" default:"confirmed"`
	AirdropSOL          string        `envconfig:"AIRDROP_SOL" default:"2"`
	TransferSOL         string        `envconfig:"TRANSFER_SOL" default:"1.999"`
	ConfirmPollInterval time.Duration `envconfig:"CONFIRM_POLL_INTERVAL" default:"500ms"`
	RPCRateLimit        int           `envconfig:"RPC_RATE_LIMIT" default:"10"`
	ProviderFilePath    string        `envconfig:"PROVIDER_FILE_PATH"`
	ProviderPassword    string        `envconfig:"PROVIDER_PASSWORD"`
	LogLevel            string        `envconfig:"LOG_LEVEL" default:"info"`
	CoinGeckoURL        string        `envconfig:"COINGECKO_URL" default:"https://api.coingecko.com/api/v3"`
}

// cfg is the global configuration instance
var cfg *Config

// Init loads configuration from environment variables.
func Init() error {
	c := &Config{}
	if err := envconfig.Process("", c); err != nil {
		return fmt.Errorf("failed to process config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return err
	}
	cfg = c
	return nil
}

// Validate checks values envconfig cannot check by itself.
func (c *Config) Validate() error {
	switch rpc.CommitmentType(c.Commitment) {
	case rpc.CommitmentProcessed, rpc.CommitmentConfirmed, rpc.CommitmentFinalized:
	default:
		return fmt.Errorf("COMMITMENT must be processed, confirmed or finalized, got %q", c.Commitment)
	}
	// Check amounts are representable in lamports and not zero
	if n, err := common.SOLToLamports(c.AirdropSOL); err != nil {
		return fmt.Errorf("invalid AIRDROP_SOL: %w", err)
	} else if n == 0 {
		return errors.New("AIRDROP_SOL must be greater than zero")
	}
	if n, err := common.SOLToLamports(c.TransferSOL); err != nil {
		return fmt.Errorf("invalid TRANSFER_SOL: %w", err)
	} else if n == 0 {
		return errors.New("TRANSFER_SOL must be greater than zero")
	}
	if c.ConfirmPollInterval <= 0 {
		return errors.New("CONFIRM_POLL_INTERVAL must be positive")
	}
	if c.RPCRateLimit < 0 {
		return errors.New("RPC_RATE_LIMIT cannot be negative")
	}
	return nil
}

// Get returns the global configuration instance.
// Panics if Init() was not called.
func Get() *Config {
	if cfg == nil {
		panic("config not initialized, call Init() first")
	}
	return cfg
}

// GetPort returns port from configuration
func GetPort() string {
	return Get().Port
}

// GetSolanaRPCURL returns Solana RPC URL from configuration
func GetSolanaRPCURL() string {
	return Get().SolanaRPCURL
}

// GetCommitment returns the commitment used for airdrop and transfer confirmation
func GetCommitment() rpc.CommitmentType {
	return rpc.CommitmentType(Get().Commitment)
}

// GetAirdropLamports returns the faucet amount in lamports. Validated in Init.
func GetAirdropLamports() uint64 {
	n, _ := common.SOLToLamports(Get().AirdropSOL)
	return n
}

// GetTransferLamports returns the transfer amount in lamports. Validated in Init.
func GetTransferLamports() uint64 {
	n, _ := common.SOLToLamports(Get().TransferSOL)
	return n
}

// GetConfirmPollInterval returns how often signature statuses are polled
func GetConfirmPollInterval() time.Duration {
	return Get().ConfirmPollInterval
}

// GetRPCRateLimit returns the max RPC requests per second, 0 means unlimited
func GetRPCRateLimit() int {
	return Get().RPCRateLimit
}

// GetProviderFilePath returns path to the .cwt file backing the wallet provider.
// Empty means no provider is injected.
func GetProviderFilePath() string {
	return Get().ProviderFilePath
}

// GetLogLevel returns the logrus level name
func GetLogLevel() string {
	return Get().LogLevel
}

// GetCoinGeckoURL returns the CoinGecko API base URL
func GetCoinGeckoURL() string {
	return Get().CoinGeckoURL
}

var passwordBytes []byte

// PromptForPassword prompts the user for the provider keyfile password in the terminal.
// The password is read without echoing (hidden input) and stored in memory.
// If PROVIDER_PASSWORD is set it is used instead and no prompt is shown.
func PromptForPassword() error {
	if pw := Get().ProviderPassword; pw != "" {
		passwordBytes = []byte(pw)
		return nil
	}
	raw, err := readHidden("Enter wallet password: ")
	if err != nil {
		return err
	}
	passwordBytes = raw
	return nil
}

// PromptForNewPassword asks for a new password twice and returns it.
// Caller must zero the returned slice after use.
func PromptForNewPassword() ([]byte, error) {
	first, err := readHidden("New wallet password: ")
	if err != nil {
		return nil, err
	}
	second, err := readHidden("Repeat new password: ")
	if err != nil {
		clear(first)
		return nil, err
	}
	defer clear(second)

	if !bytes.Equal(first, second) {
		clear(first)
		return nil, errors.New("passwords do not match")
	}
	return first, nil
}

// readHidden prints prompt and reads a line from the terminal without echo
func readHidden(prompt string) ([]byte, error) {
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		return nil, errors.New("stdin is not a terminal: run the app interactively or set PROVIDER_PASSWORD")
	}
	fmt.Fprint(os.Stderr, prompt)
	defer fmt.Fprintln(os.Stderr)

	raw, err := term.ReadPassword(int(os.Stdin.Fd()))
	if err != nil {
		return nil, fmt.Errorf("failed to read password: %w", err)
	}
	if len(raw) == 0 {
		return nil, errors.New("password cannot be empty")
	}

	out := make([]byte, len(raw))
	copy(out, raw)
	clear(raw)
	return out, nil
}

// GetProviderPasswordBytes returns the password stored in memory (from PromptForPassword).
// Caller must zero the returned slice after use for security.
func GetProviderPasswordBytes() ([]byte, error) {
	if len(passwordBytes) == 0 {
		return nil, errors.New("password not set: call PromptForPassword at startup")
	}
	out := make([]byte, len(passwordBytes))
	copy(out, passwordBytes)
	return out, nil
}

// ClearPassword wipes the stored password
func ClearPassword() {
	clear(passwordBytes)
	passwordBytes = nil
}
