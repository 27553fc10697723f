package solana

import (
	"context"
	"fmt"

	"github.com/AlexZinkM/devnet-demo/internal/common"

	"github.com/gagliardetto/solana-go"
	"github.com/shopspring/decimal"
)

// BalanceResult is the generated account balance
type BalanceResult struct {
	Address  solana.PublicKey
	Lamports uint64
	SOL      string
	Rate     string // SOL/USD, empty when the rate is unknown
	USD      string
}

// Balance returns the generated account balance. When a rate source is set
// the USD value is added; a failing rate source only leaves it empty.
func (s *Session) Balance(ctx context.Context) (*BalanceResult, error) {
	s.mu.Lock()
	var address solana.PublicKey
	if s.account != nil {
		address = s.account.PublicKey
	}
	s.mu.Unlock()

	if address.IsZero() {
		return nil, fmt.Errorf("%w: no account generated", ErrNotReady)
	}

	lamports, err := s.network.Balance(ctx, address)
	if err != nil {
		return nil, fmt.Errorf("failed to get balance: %w", err)
	}

	res := &BalanceResult{
		Address:  address,
		Lamports: lamports,
		SOL:      common.LamportsToSOL(lamports),
	}
	if s.rates == nil {
		return res, nil
	}

	rate, err := s.rates.GetSOLtoUSDRate(ctx)
	if err != nil {
		s.logger().WithError(err).Warn("failed to get SOL/USD rate")
		return res, nil
	}

	// Calculate USD exactly, lamports are integral
	sol := decimal.New(int64(lamports), -common.SOLDecimals)
	res.Rate = rate.String()
	res.USD = sol.Mul(rate).StringFixed(2)
	return res, nil
}
