package provider

import (
	"context"
	"encoding/hex"
	"fmt"
	"sync"

	"github.com/AlexZinkM/devnet-demo/internal/crypto"

	"github.com/gagliardetto/solana-go"
)

// Approver decides whether a connect request is allowed.
type Approver func(ctx context.Context) bool

// Option configures a Keyfile.
type Option func(*Keyfile)

// WithApprover sets the function asked to approve untrusted connect requests.
func WithApprover(a Approver) Option {
	return func(k *Keyfile) {
		k.approve = a
	}
}

// Keyfile is a Provider backed by a keypair kept in an encrypted .cwt file.
// The key is decrypted once and kept in memory until Close.
type Keyfile struct {
	mu        sync.Mutex
	key       solana.PrivateKey
	pub       solana.PublicKey
	connected bool
	trusted   bool
	approve   Approver
	handlers  map[Event][]Handler
}

var _ Provider = (*Keyfile)(nil)

// NewKeyfile decrypts the .cwt file at filePath and returns a provider for it.
// password must be []byte for security (caller should zero it after use)
func NewKeyfile(filePath string, password []byte, opts ...Option) (*Keyfile, error) {
	cwtFile, walletData, err := crypto.DecryptWallet(filePath, password)
	if err != nil {
		return nil, fmt.Errorf("failed to decrypt wallet: %w", err)
	}

	// we store the full 64-byte key
	if len(walletData.PrivateKey) != 64 {
		clear(walletData.PrivateKey)
		return nil, fmt.Errorf("invalid private key length %d, run rekey to upgrade the file", len(walletData.PrivateKey))
	}

	key := solana.PrivateKey(walletData.PrivateKey)
	if key.PublicKey().String() != cwtFile.Address {
		clear(walletData.PrivateKey)
		return nil, fmt.Errorf("private key does not match address")
	}

	return NewKeyfileFromKey(key, opts...), nil
}

// NewKeyfileFromKey returns a provider holding key. The provider takes
// ownership of key and zeroes it on Close.
func NewKeyfileFromKey(key solana.PrivateKey, opts ...Option) *Keyfile {
	k := &Keyfile{
		key:      key,
		pub:      key.PublicKey(),
		approve:  func(context.Context) bool { return true },
		handlers: make(map[Event][]Handler),
	}
	for _, opt := range opts {
		opt(k)
	}
	return k
}

// IsCWT implements Provider.
func (k *Keyfile) IsCWT() bool { return true }

// PublicKey returns the wallet key while connected, zero otherwise.
func (k *Keyfile) PublicKey() solana.PublicKey {
	k.mu.Lock()
	defer k.mu.Unlock()
	if !k.connected {
		return solana.PublicKey{}
	}
	return k.pub
}

// IsConnected implements Provider.
func (k *Keyfile) IsConnected() bool {
	k.mu.Lock()
	defer k.mu.Unlock()
	return k.connected
}

// Connect opens a session. An app that was approved once stays trusted for
// the lifetime of the provider, also across Disconnect.
func (k *Keyfile) Connect(ctx context.Context, opts ConnectOpts) (solana.PublicKey, error) {
	k.mu.Lock()
	if k.connected {
		pub := k.pub
		k.mu.Unlock()
		return pub, nil
	}
	trusted := k.trusted
	k.mu.Unlock()

	if !trusted {
		if opts.OnlyIfTrusted || !k.approve(ctx) {
			return solana.PublicKey{}, ErrUserRejected
		}
	}

	k.mu.Lock()
	k.connected = true
	k.trusted = true
	pub := k.pub
	k.mu.Unlock()

	k.emit(EventConnect, pub)
	return pub, nil
}

// Disconnect ends the session. It is a no-op when not connected.
func (k *Keyfile) Disconnect(ctx context.Context) error {
	k.mu.Lock()
	was := k.connected
	k.connected = false
	k.mu.Unlock()

	if was {
		k.emit(EventDisconnect, solana.PublicKey{})
	}
	return nil
}

// SignTransaction adds the wallet signature to tx. Other signatures already
// present are kept.
func (k *Keyfile) SignTransaction(ctx context.Context, tx *solana.Transaction) (*solana.Transaction, error) {
	key, pub, err := k.sessionKey()
	if err != nil {
		return nil, err
	}
	if !tx.Message.IsSigner(pub) {
		return nil, fmt.Errorf("wallet %s is not a signer of the transaction", pub)
	}

	_, err = tx.PartialSign(func(pk solana.PublicKey) *solana.PrivateKey {
		if pk.Equals(pub) {
			return &key
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to sign transaction: %w", err)
	}
	return tx, nil
}

// SignAllTransactions signs every transaction, failing on the first error.
func (k *Keyfile) SignAllTransactions(ctx context.Context, txs []*solana.Transaction) ([]*solana.Transaction, error) {
	out := make([]*solana.Transaction, 0, len(txs))
	for i, tx := range txs {
		signed, err := k.SignTransaction(ctx, tx)
		if err != nil {
			return nil, fmt.Errorf("transaction %d: %w", i, err)
		}
		out = append(out, signed)
	}
	return out, nil
}

// SignMessage signs an arbitrary message. With DisplayHex the message is a
// hex string and the decoded bytes are signed.
func (k *Keyfile) SignMessage(ctx context.Context, message []byte, display DisplayEncoding) (*SignedMessage, error) {
	key, pub, err := k.sessionKey()
	if err != nil {
		return nil, err
	}

	payload := message
	switch display {
	case DisplayHex:
		payload, err = hex.DecodeString(string(message))
		if err != nil {
			return nil, fmt.Errorf("invalid hex message: %w", err)
		}
	case DisplayUTF8, "":
	default:
		return nil, fmt.Errorf("unknown display encoding %q", display)
	}

	sig, err := key.Sign(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to sign message: %w", err)
	}
	return &SignedMessage{PublicKey: pub, Signature: sig}, nil
}

// On registers handler for event.
func (k *Keyfile) On(event Event, handler Handler) {
	k.mu.Lock()
	defer k.mu.Unlock()
	k.handlers[event] = append(k.handlers[event], handler)
}

// SwitchAccount replaces the wallet key, as when the user picks another
// account in the wallet. Connected listeners get accountChanged.
func (k *Keyfile) SwitchAccount(key solana.PrivateKey) {
	k.mu.Lock()
	clear(k.key)
	k.key = key
	k.pub = key.PublicKey()
	connected := k.connected
	pub := k.pub
	k.mu.Unlock()

	if connected {
		k.emit(EventAccountChanged, pub)
	}
}

// Close disconnects and wipes the private key from memory.
func (k *Keyfile) Close() error {
	_ = k.Disconnect(context.Background())

	k.mu.Lock()
	defer k.mu.Unlock()
	clear(k.key)
	k.key = nil
	return nil
}

func (k *Keyfile) sessionKey() (solana.PrivateKey, solana.PublicKey, error) {
	k.mu.Lock()
	defer k.mu.Unlock()
	if !k.connected || k.key == nil {
		return nil, solana.PublicKey{}, ErrUnauthorized
	}
	return k.key, k.pub, nil
}

func (k *Keyfile) emit(event Event, pub solana.PublicKey) {
	k.mu.Lock()
	handlers := append([]Handler(nil), k.handlers[event]...)
	k.mu.Unlock()

	for _, h := range handlers {
		h(pub)
	}
}
