package solana

import "errors"

// Error kinds returned by Session operations. Match them with errors.Is;
// the underlying cause is wrapped alongside.
var (
	ErrProviderUnavailable = errors.New("wallet provider unavailable")
	ErrUserRejected        = errors.New("wallet request rejected")
	ErrNotReady            = errors.New("session is not ready")
	ErrNotConnected        = errors.New("no wallet connected")
	ErrBusy                = errors.New("another operation is in progress")
	ErrFunding             = errors.New("airdrop failed")
	ErrTransfer            = errors.New("transfer failed")
)
