package solana

import (
	"context"
	"fmt"

	"github.com/AlexZinkM/devnet-demo/internal/common"
	"github.com/AlexZinkM/devnet-demo/internal/metrics"

	"github.com/gagliardetto/solana-go"
	log "github.com/sirupsen/logrus"
)

const opGenerate = "generate"

// GenerateResult describes a freshly generated and funded account
type GenerateResult struct {
	Address          solana.PublicKey
	QRCode           string // base64 PNG of the address
	AirdropSignature solana.Signature
	Lamports         uint64
}

// GenerateAccount replaces the session account with a new keypair and funds
// it from the devnet faucet. The new account is kept even when funding
// fails, in which case the error wraps ErrFunding.
func (s *Session) GenerateAccount(ctx context.Context) (*GenerateResult, error) {
	done, err := s.begin(opGenerate)
	if err != nil {
		return nil, err
	}
	defer done()

	// Generate new Solana keypair
	key, err := solana.NewRandomPrivateKey()
	if err != nil {
		return nil, s.fail(opGenerate, fmt.Errorf("failed to generate keypair: %w", err))
	}
	account := &Account{PublicKey: key.PublicKey(), PrivateKey: key}

	// Replace the account, wiping the previous secret
	s.mu.Lock()
	if s.account != nil {
		clear(s.account.PrivateKey)
	}
	s.account = account
	s.transferred = false
	s.lastSignature = solana.Signature{}
	s.mu.Unlock()

	logger := s.logger().WithField("account", account.PublicKey.String())
	logger.Info("generated account")

	res := &GenerateResult{
		Address:  account.PublicKey,
		Lamports: s.airdropLamports,
	}

	// the QR code is only a display aid
	if res.QRCode, err = common.QRCodeBase64(account.PublicKey.String()); err != nil {
		logger.WithError(err).Warn("failed to render address QR code")
	}

	logger.WithField("sol", common.LamportsToSOL(s.airdropLamports)).Info("Airdropping some SOL to sender account")

	// Request funds from the faucet
	sig, err := s.network.RequestAirdrop(ctx, account.PublicKey, s.airdropLamports)
	if err != nil {
		logger.WithError(err).Warn("airdrop request failed")
		return nil, s.fail(opGenerate, fmt.Errorf("%w: %w", ErrFunding, err))
	}
	res.AirdropSignature = sig

	// Wait for the airdrop to land
	if err := s.network.ConfirmTransaction(ctx, sig); err != nil {
		logger.WithError(err).Warn("airdrop was not confirmed")
		return nil, s.fail(opGenerate, fmt.Errorf("%w: %w", ErrFunding, err))
	}

	metrics.Lamports.WithLabelValues("airdrop").Add(float64(s.airdropLamports))
	s.succeed(opGenerate)

	logger.WithFields(log.Fields{
		"signature": sig.String(),
	}).Info("airdrop confirmed")
	return res, nil
}
