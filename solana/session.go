// Package solana implements the demo session: generating a funded devnet
// account, connecting the injected wallet and transferring SOL to it.
package solana

import (
	"context"
	"fmt"
	"sync"

	"github.com/AlexZinkM/devnet-demo/internal/metrics"
	"github.com/AlexZinkM/devnet-demo/internal/provider"

	"github.com/gagliardetto/solana-go"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
)

// Network is the part of the Solana cluster the session talks to.
type Network interface {
	RequestAirdrop(ctx context.Context, account solana.PublicKey, lamports uint64) (solana.Signature, error)
	ConfirmTransaction(ctx context.Context, sig solana.Signature) error
	LatestBlockhash(ctx context.Context) (solana.Hash, error)
	SendAndConfirmTransaction(ctx context.Context, tx *solana.Transaction) (solana.Signature, error)
	Balance(ctx context.Context, account solana.PublicKey) (uint64, error)
}

// RateSource returns the SOL price in USD.
type RateSource interface {
	GetSOLtoUSDRate(ctx context.Context) (decimal.Decimal, error)
}

// State is the session progress towards a transfer.
type State int

const (
	StateIdle State = iota
	StateAccountReady
	StateWalletConnected
	StateReady
	StateTransferred
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "Idle"
	case StateAccountReady:
		return "AccountReady"
	case StateWalletConnected:
		return "WalletConnected"
	case StateReady:
		return "Ready"
	case StateTransferred:
		return "Transferred"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Account is a locally generated keypair.
type Account struct {
	PublicKey  solana.PublicKey
	PrivateKey solana.PrivateKey // 64 bytes
}

// Options configures a Session.
type Options struct {
	AirdropLamports  uint64
	TransferLamports uint64
	// Rates is optional; without it balances carry no USD value.
	Rates RateSource
}

// Snapshot is a copy of the session state for rendering.
type Snapshot struct {
	SessionID         string
	State             State
	ProviderAvailable bool
	Account           solana.PublicKey
	Wallet            solana.PublicKey
	LastSignature     solana.Signature
	LastError         string
	AirdropLamports   uint64
	TransferLamports  uint64
}

// Session holds the generated account and the connected wallet of one user.
// It is safe for concurrent use; operations that talk to the network or the
// wallet run one at a time and fail with ErrBusy while another is in flight.
type Session struct {
	id       string
	network  Network
	provider provider.Provider
	rates    RateSource

	airdropLamports  uint64
	transferLamports uint64

	inflight sync.Mutex

	mu            sync.Mutex
	account       *Account
	wallet        solana.PublicKey
	transferred   bool
	lastSignature solana.Signature
	lastError     string
}

// NewSession detects the wallet provider in env once and subscribes to its
// lifecycle events.
func NewSession(env provider.Environment, network Network, opts Options) *Session {
	s := &Session{
		id:               uuid.NewString(),
		network:          network,
		rates:            opts.Rates,
		airdropLamports:  opts.AirdropLamports,
		transferLamports: opts.TransferLamports,
	}

	p, ok := provider.Detect(env)
	if !ok {
		s.logger().Info("No provider found, wallet connection disabled")
		return s
	}
	s.provider = p

	p.On(provider.EventConnect, s.setWallet)
	p.On(provider.EventAccountChanged, s.setWallet)
	p.On(provider.EventDisconnect, func(solana.PublicKey) {
		s.setWallet(solana.PublicKey{})
	})

	// the wallet may already have an open session with us
	if p.IsConnected() {
		s.setWallet(p.PublicKey())
	}
	return s
}

// ID returns the session identifier
func (s *Session) ID() string {
	return s.id
}

// ProviderAvailable reports whether a usable wallet provider was detected
func (s *Session) ProviderAvailable() bool {
	return s.provider != nil
}

// State returns the current state
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stateLocked()
}

func (s *Session) stateLocked() State {
	hasAccount := s.account != nil
	hasWallet := !s.wallet.IsZero()

	switch {
	case hasAccount && hasWallet && s.transferred:
		return StateTransferred
	case hasAccount && hasWallet:
		return StateReady
	case hasAccount:
		return StateAccountReady
	case hasWallet:
		return StateWalletConnected
	default:
		return StateIdle
	}
}

// Snapshot returns a copy of the session state
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := Snapshot{
		SessionID:         s.id,
		State:             s.stateLocked(),
		ProviderAvailable: s.provider != nil,
		Wallet:            s.wallet,
		LastSignature:     s.lastSignature,
		LastError:         s.lastError,
		AirdropLamports:   s.airdropLamports,
		TransferLamports:  s.transferLamports,
	}
	if s.account != nil {
		snap.Account = s.account.PublicKey
	}
	return snap
}

// Account returns a copy of the generated account, including its secret.
func (s *Session) Account() (Account, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.account == nil {
		return Account{}, false
	}
	return copyAccount(s.account), true
}

func copyAccount(a *Account) Account {
	key := make(solana.PrivateKey, len(a.PrivateKey))
	copy(key, a.PrivateKey)
	return Account{PublicKey: a.PublicKey, PrivateKey: key}
}

// Close wipes the generated account secret
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.account != nil {
		clear(s.account.PrivateKey)
		s.account = nil
	}
}

func (s *Session) setWallet(pub solana.PublicKey) {
	s.mu.Lock()
	changed := !s.wallet.Equals(pub)
	s.wallet = pub
	s.mu.Unlock()

	if changed {
		s.logger().WithField("wallet", walletField(pub)).Debug("wallet account changed")
	}
}

// begin makes sure only one operation runs at a time.
func (s *Session) begin(op string) (func(), error) {
	if !s.inflight.TryLock() {
		metrics.Operations.WithLabelValues(op, metrics.OutcomeRejected).Inc()
		return nil, ErrBusy
	}
	return s.inflight.Unlock, nil
}

// fail records err as the last error shown to the user and returns it.
func (s *Session) fail(op string, err error) error {
	s.mu.Lock()
	s.lastError = err.Error()
	s.mu.Unlock()
	metrics.Operations.WithLabelValues(op, metrics.OutcomeFailed).Inc()
	return err
}

func (s *Session) succeed(op string) {
	s.mu.Lock()
	s.lastError = ""
	s.mu.Unlock()
	metrics.Operations.WithLabelValues(op, metrics.OutcomeSuccess).Inc()
}

func (s *Session) logger() *log.Entry {
	return log.WithField("session", s.id)
}

func walletField(pub solana.PublicKey) string {
	if pub.IsZero() {
		return ""
	}
	return pub.String()
}
