package client

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/AlexZinkM/devnet-demo/internal/metrics"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	log "github.com/sirupsen/logrus"
	"go.uber.org/ratelimit"
)

// TransactionError is returned when the cluster reports a failed transaction
type TransactionError struct {
	Signature solana.Signature
	Err       interface{}
}

func (e *TransactionError) Error() string {
	return fmt.Sprintf("transaction %s failed: %v", e.Signature, e.Err)
}

// SolanaClient is a client for working with Solana RPC
type SolanaClient struct {
	rpcClient    *rpc.Client
	rpcURL       string
	commitment   rpc.CommitmentType
	pollInterval time.Duration
	limiter      ratelimit.Limiter
}

// NewSolanaClient creates a new Solana client.
// rateLimit is the max number of RPC requests per second, 0 means unlimited.
func NewSolanaClient(rpcURL string, commitment rpc.CommitmentType, pollInterval time.Duration, rateLimit int) *SolanaClient {
	limiter := ratelimit.NewUnlimited()
	if rateLimit > 0 {
		limiter = ratelimit.New(rateLimit)
	}

	return &SolanaClient{
		rpcClient:    rpc.New(rpcURL),
		rpcURL:       rpcURL,
		commitment:   commitment,
		pollInterval: pollInterval,
		limiter:      limiter,
	}
}

// Close releases the underlying RPC client
func (c *SolanaClient) Close() error {
	return c.rpcClient.Close()
}

// RequestAirdrop asks the faucet to credit lamports to the account.
// Returns the airdrop transaction signature.
func (c *SolanaClient) RequestAirdrop(ctx context.Context, account solana.PublicKey, lamports uint64) (solana.Signature, error) {
	c.take("requestAirdrop")
	sig, err := c.rpcClient.RequestAirdrop(ctx, account, lamports, c.commitment)
	if err != nil {
		return solana.Signature{}, c.fail("requestAirdrop", fmt.Errorf("failed to request airdrop: %w", err))
	}
	return sig, nil
}

// ConfirmTransaction blocks until the signature reaches the client commitment,
// the cluster reports the transaction as failed, or ctx is done.
func (c *SolanaClient) ConfirmTransaction(ctx context.Context, sig solana.Signature) error {
	ticker := time.NewTicker(c.pollInterval)
	defer ticker.Stop()

	for {
		done, err := c.signatureDone(ctx, sig)
		if err != nil || done {
			return err
		}

		select {
		case <-ctx.Done():
			return fmt.Errorf("failed to confirm transaction %s: %w", sig, ctx.Err())
		case <-ticker.C:
		}
	}
}

// signatureDone reports whether sig reached the commitment. Unknown signatures
// are not an error yet: the node may not have seen the transaction.
func (c *SolanaClient) signatureDone(ctx context.Context, sig solana.Signature) (bool, error) {
	c.take("getSignatureStatuses")
	out, err := c.rpcClient.GetSignatureStatuses(ctx, false, sig)
	if err != nil {
		if errors.Is(err, rpc.ErrNotFound) {
			return false, nil
		}
		return false, c.fail("getSignatureStatuses", fmt.Errorf("failed to get signature status: %w", err))
	}
	if len(out.Value) == 0 || out.Value[0] == nil {
		return false, nil
	}

	status := out.Value[0]
	if status.Err != nil {
		return false, &TransactionError{Signature: sig, Err: status.Err}
	}

	// Nodes without confirmationStatus report rooted transactions with null confirmations
	confirmation := status.ConfirmationStatus
	if confirmation == "" && status.Confirmations == nil {
		confirmation = rpc.ConfirmationStatusFinalized
	}

	log.WithFields(log.Fields{
		"signature": sig.String(),
		"status":    confirmation,
	}).Debug("signature status")

	return reached(confirmation, c.commitment), nil
}

var (
	statusRank = map[rpc.ConfirmationStatusType]int{
		rpc.ConfirmationStatusProcessed: 1,
		rpc.ConfirmationStatusConfirmed: 2,
		rpc.ConfirmationStatusFinalized: 3,
	}
	commitmentRank = map[rpc.CommitmentType]int{
		rpc.CommitmentProcessed: 1,
		rpc.CommitmentConfirmed: 2,
		rpc.CommitmentFinalized: 3,
	}
)

// reached reports whether status is at least as final as commitment
func reached(status rpc.ConfirmationStatusType, commitment rpc.CommitmentType) bool {
	want := commitmentRank[commitment]
	if want == 0 {
		want = commitmentRank[rpc.CommitmentConfirmed]
	}
	return statusRank[status] >= want
}

// LatestBlockhash returns the blockhash new transactions should reference
func (c *SolanaClient) LatestBlockhash(ctx context.Context) (solana.Hash, error) {
	c.take("getLatestBlockhash")
	recent, err := c.rpcClient.GetLatestBlockhash(ctx, rpc.CommitmentFinalized)
	if err != nil {
		return solana.Hash{}, c.fail("getLatestBlockhash", fmt.Errorf("failed to get recent blockhash: %w", err))
	}
	if recent == nil || recent.Value == nil {
		return solana.Hash{}, c.fail("getLatestBlockhash", errors.New("failed to get recent blockhash: empty response"))
	}
	return recent.Value.Blockhash, nil
}

// SendAndConfirmTransaction submits a signed transaction with preflight checks
// and waits for its confirmation.
func (c *SolanaClient) SendAndConfirmTransaction(ctx context.Context, tx *solana.Transaction) (solana.Signature, error) {
	c.take("sendTransaction")
	sig, err := c.rpcClient.SendTransactionWithOpts(
		ctx,
		tx,
		rpc.TransactionOpts{
			SkipPreflight:       false, // Transaction validation before node
			PreflightCommitment: c.commitment,
		},
	)
	if err != nil {
		return solana.Signature{}, c.fail("sendTransaction", fmt.Errorf("failed to send transaction: %w", err))
	}

	if err := c.ConfirmTransaction(ctx, sig); err != nil {
		return sig, err
	}
	return sig, nil
}

// Balance returns the account balance in lamports
func (c *SolanaClient) Balance(ctx context.Context, account solana.PublicKey) (uint64, error) {
	c.take("getBalance")
	balance, err := c.rpcClient.GetBalance(ctx, account, c.commitment)
	if err != nil {
		return 0, c.fail("getBalance", fmt.Errorf("failed to get SOL balance: %w", err))
	}
	return balance.Value, nil
}

func (c *SolanaClient) take(method string) {
	c.limiter.Take()
	metrics.RPCCalls.WithLabelValues(method).Inc()
}

func (c *SolanaClient) fail(method string, err error) error {
	metrics.RPCErrors.WithLabelValues(method).Inc()
	return err
}
