package model

// StateResponse represents response for GET /solana/state
type StateResponse struct {
	SessionID         string `json:"sessionId"`
	State             string `json:"state"`
	ProviderAvailable bool   `json:"providerAvailable"`
	Account           string `json:"account,omitempty"`
	Wallet            string `json:"wallet,omitempty"`
	LastSignature     string `json:"lastSignature,omitempty"`
	LastError         string `json:"lastError,omitempty"`
	AirdropSOL        string `json:"airdropSOL"`
	TransferSOL       string `json:"transferSOL"`
}

// GenerateResponse represents response for POST /solana/generate
type GenerateResponse struct {
	Success          bool   `json:"success"`
	Message          string `json:"message"`
	Address          string `json:"address,omitempty"`
	QR               string `json:"QR,omitempty"`
	AirdropSignature string `json:"airdropSignature,omitempty"`
	AirdropSOL       string `json:"airdropSOL,omitempty"`
}

// ConnectRequest represents request for POST /wallet/connect
type ConnectRequest struct {
	OnlyIfTrusted bool `json:"onlyIfTrusted"`
}

// ConnectResponse represents response for POST /wallet/connect
type ConnectResponse struct {
	PublicKey string `json:"publicKey"`
}

// DisconnectResponse represents response for POST /wallet/disconnect
type DisconnectResponse struct {
	Disconnected bool `json:"disconnected"`
}

// TransferResponse represents response for POST /solana/transfer
type TransferResponse struct {
	TxID     string `json:"txId"`
	From     string `json:"from"`
	To       string `json:"to"`
	Amount   string `json:"amount"`
	Currency string `json:"currency"`
}

// SignMessageRequest represents request for POST /wallet/sign-message
type SignMessageRequest struct {
	Message string `json:"message"`
	Display string `json:"display"` // "utf8" (default) or "hex"
}

// SignMessageResponse represents response for POST /wallet/sign-message
type SignMessageResponse struct {
	PublicKey string `json:"publicKey"`
	Signature string `json:"signature"`
}

// BalanceResponse represents response for GET /solana/balance
type BalanceResponse struct {
	Address  string `json:"address"`
	Lamports uint64 `json:"lamports"`
	SOL      string `json:"sol"`
	Rate     string `json:"rate,omitempty"`
	USD      string `json:"usd,omitempty"`
}
