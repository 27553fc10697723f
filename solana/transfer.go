package solana

import (
	"context"
	"fmt"

	"github.com/AlexZinkM/devnet-demo/internal/common"
	"github.com/AlexZinkM/devnet-demo/internal/metrics"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/programs/system"
	log "github.com/sirupsen/logrus"
)

const opTransfer = "transfer"

// TransferResult describes a confirmed transfer
type TransferResult struct {
	Signature solana.Signature
	From      solana.PublicKey
	To        solana.PublicKey
	Lamports  uint64
}

// Transfer sends the configured amount from the generated account to the
// connected wallet. It only runs in StateReady; failures wrap ErrTransfer
// and leave the state unchanged.
func (s *Session) Transfer(ctx context.Context) (*TransferResult, error) {
	done, err := s.begin(opTransfer)
	if err != nil {
		return nil, err
	}
	defer done()

	s.mu.Lock()
	state := s.stateLocked()
	if state != StateReady {
		s.mu.Unlock()
		metrics.Operations.WithLabelValues(opTransfer, metrics.OutcomeRejected).Inc()
		return nil, fmt.Errorf("%w: cannot transfer in state %s", ErrNotReady, state)
	}
	current := s.account
	account := copyAccount(s.account)
	to := s.wallet
	s.mu.Unlock()
	defer clear(account.PrivateKey)

	logger := s.logger().WithFields(log.Fields{
		"from": account.PublicKey.String(),
		"to":   to.String(),
		"sol":  common.LamportsToSOL(s.transferLamports),
	})

	tx, err := s.buildTransfer(ctx, account, to)
	if err != nil {
		logger.WithError(err).Error("Error transferring SOL")
		return nil, s.fail(opTransfer, fmt.Errorf("%w: %w", ErrTransfer, err))
	}

	sig, err := s.network.SendAndConfirmTransaction(ctx, tx)
	if err != nil {
		logger.WithError(err).Error("Error transferring SOL")
		return nil, s.fail(opTransfer, fmt.Errorf("%w: %w", ErrTransfer, err))
	}

	s.mu.Lock()
	// the account cannot change while the transfer holds the in-flight lock
	if s.account == current {
		s.transferred = true
		s.lastSignature = sig
	}
	s.mu.Unlock()

	metrics.Lamports.WithLabelValues("transfer").Add(float64(s.transferLamports))
	s.succeed(opTransfer)

	logger.WithField("signature", sig.String()).Info("transaction signature")

	return &TransferResult{
		Signature: sig,
		From:      account.PublicKey,
		To:        to,
		Lamports:  s.transferLamports,
	}, nil
}

// buildTransfer returns a signed transaction holding one system transfer,
// paid for by the generated account.
func (s *Session) buildTransfer(ctx context.Context, from Account, to solana.PublicKey) (*solana.Transaction, error) {
	blockhash, err := s.network.LatestBlockhash(ctx)
	if err != nil {
		return nil, err
	}

	tx, err := solana.NewTransaction(
		[]solana.Instruction{
			system.NewTransferInstruction(
				s.transferLamports,
				from.PublicKey,
				to,
			).Build(),
		},
		blockhash,
		solana.TransactionPayer(from.PublicKey),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create transaction: %w", err)
	}

	_, err = tx.Sign(func(key solana.PublicKey) *solana.PrivateKey {
		if key.Equals(from.PublicKey) {
			return &from.PrivateKey
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to sign transaction: %w", err)
	}
	return tx, nil
}
