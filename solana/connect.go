package solana

import (
	"context"
	"fmt"

	"github.com/AlexZinkM/devnet-demo/internal/metrics"
	"github.com/AlexZinkM/devnet-demo/internal/provider"

	"github.com/gagliardetto/solana-go"
	log "github.com/sirupsen/logrus"
)

const (
	opConnect     = "connect"
	opDisconnect  = "disconnect"
	opSignMessage = "sign_message"
)

// Connect asks the wallet provider for access and records the account it
// returns. A rejected request leaves the session unchanged.
func (s *Session) Connect(ctx context.Context, opts provider.ConnectOpts) (solana.PublicKey, error) {
	if s.provider == nil {
		metrics.Operations.WithLabelValues(opConnect, metrics.OutcomeSkipped).Inc()
		return solana.PublicKey{}, ErrProviderUnavailable
	}

	done, err := s.begin(opConnect)
	if err != nil {
		return solana.PublicKey{}, err
	}
	defer done()

	pub, err := s.provider.Connect(ctx, opts)
	if err != nil {
		s.logger().WithError(err).WithField("onlyIfTrusted", opts.OnlyIfTrusted).Debug("wallet connection rejected")
		metrics.Operations.WithLabelValues(opConnect, metrics.OutcomeRejected).Inc()
		return solana.PublicKey{}, fmt.Errorf("%w: %w", ErrUserRejected, err)
	}
	if pub.IsZero() {
		metrics.Operations.WithLabelValues(opConnect, metrics.OutcomeFailed).Inc()
		return solana.PublicKey{}, fmt.Errorf("%w: provider returned no account", ErrUserRejected)
	}

	s.setWallet(pub)
	s.succeed(opConnect)

	s.logger().WithField("wallet", pub.String()).Info("wallet account")
	return pub, nil
}

// Disconnect ends the wallet session. It is a no-op when nothing is connected.
func (s *Session) Disconnect(ctx context.Context) error {
	s.mu.Lock()
	connected := !s.wallet.IsZero()
	s.mu.Unlock()

	if s.provider == nil || !connected {
		metrics.Operations.WithLabelValues(opDisconnect, metrics.OutcomeSkipped).Inc()
		return nil
	}

	done, err := s.begin(opDisconnect)
	if err != nil {
		return err
	}
	defer done()

	if err := s.provider.Disconnect(ctx); err != nil {
		return s.fail(opDisconnect, fmt.Errorf("failed to disconnect wallet: %w", err))
	}

	s.setWallet(solana.PublicKey{})
	s.succeed(opDisconnect)

	s.logger().Info("wallet disconnected")
	return nil
}

// SignMessage asks the connected wallet to sign message.
func (s *Session) SignMessage(ctx context.Context, message []byte, display provider.DisplayEncoding) (*provider.SignedMessage, error) {
	if s.provider == nil {
		return nil, ErrProviderUnavailable
	}

	s.mu.Lock()
	connected := !s.wallet.IsZero()
	s.mu.Unlock()
	if !connected {
		return nil, ErrNotConnected
	}

	done, err := s.begin(opSignMessage)
	if err != nil {
		return nil, err
	}
	defer done()

	signed, err := s.provider.SignMessage(ctx, message, display)
	if err != nil {
		s.logger().WithError(err).Debug("message signing rejected")
		metrics.Operations.WithLabelValues(opSignMessage, metrics.OutcomeRejected).Inc()
		if provider.IsUserRejected(err) {
			return nil, fmt.Errorf("%w: %w", ErrUserRejected, err)
		}
		return nil, fmt.Errorf("failed to sign message: %w", err)
	}
	metrics.Operations.WithLabelValues(opSignMessage, metrics.OutcomeSuccess).Inc()

	s.logger().WithFields(log.Fields{
		"wallet":    signed.PublicKey.String(),
		"signature": signed.Signature.String(),
	}).Debug("message signed")
	return signed, nil
}
