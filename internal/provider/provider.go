// Package provider defines the wallet capability injected into the app at
// startup and the detector that decides whether it can be used.
package provider

import (
	"context"
	"errors"
	"fmt"

	"github.com/gagliardetto/solana-go"
)

// InjectionKey is the Environment key a wallet provider is injected under.
const InjectionKey = "solana"

// Event is a connection lifecycle event emitted by a Provider.
type Event string

const (
	EventConnect        Event = "connect"
	EventDisconnect     Event = "disconnect"
	EventAccountChanged Event = "accountChanged"
)

// Handler receives the public key associated with an event. For disconnect,
// and for accountChanged when the wallet has no account, the key is zero.
type Handler func(publicKey solana.PublicKey)

// DisplayEncoding tells SignMessage how to interpret the message bytes.
type DisplayEncoding string

const (
	DisplayUTF8 DisplayEncoding = "utf8"
	DisplayHex  DisplayEncoding = "hex"
)

// ConnectOpts are the options of a connect request.
type ConnectOpts struct {
	// OnlyIfTrusted makes the request fail instead of asking for approval
	// when the app was never approved before.
	OnlyIfTrusted bool
}

// SignedMessage is the result of SignMessage.
type SignedMessage struct {
	PublicKey solana.PublicKey
	Signature solana.Signature
}

// Provider is the wallet capability the app talks to. Implementations own
// their keys; the app only ever sees public keys and signatures.
type Provider interface {
	// IsCWT is the self-identification flag checked by Detect.
	IsCWT() bool
	PublicKey() solana.PublicKey
	IsConnected() bool
	Connect(ctx context.Context, opts ConnectOpts) (solana.PublicKey, error)
	Disconnect(ctx context.Context) error
	SignTransaction(ctx context.Context, tx *solana.Transaction) (*solana.Transaction, error)
	SignAllTransactions(ctx context.Context, txs []*solana.Transaction) ([]*solana.Transaction, error)
	SignMessage(ctx context.Context, message []byte, display DisplayEncoding) (*SignedMessage, error)
	On(event Event, handler Handler)
}

// Environment holds the objects injected into the app, keyed by name.
type Environment map[string]any

// Detect looks up the injected provider. It reports false when nothing is
// injected, when the injected value is not a Provider, or when it does not
// identify itself as a CWT wallet.
func Detect(env Environment) (Provider, bool) {
	v, ok := env[InjectionKey]
	if !ok || v == nil {
		return nil, false
	}
	p, ok := v.(Provider)
	if !ok || p == nil || !p.IsCWT() {
		return nil, false
	}
	return p, true
}

// Request error codes, EIP-1193 style.
const (
	CodeUserRejected = 4001
	CodeUnauthorized = 4100
)

// RequestError is returned by a Provider when a request is refused.
type RequestError struct {
	Code    int
	Message string
}

func (e *RequestError) Error() string {
	return fmt.Sprintf("%s (code %d)", e.Message, e.Code)
}

// ErrUserRejected is the error of a declined request.
var ErrUserRejected = &RequestError{Code: CodeUserRejected, Message: "User rejected the request."}

// ErrUnauthorized is the error of a signing request without a session.
var ErrUnauthorized = &RequestError{Code: CodeUnauthorized, Message: "The requested method and/or account has not been authorized by the user."}

// IsUserRejected checks if err is a RequestError with the user rejected code
func IsUserRejected(err error) bool {
	var reqErr *RequestError
	return errors.As(err, &reqErr) && reqErr.Code == CodeUserRejected
}
