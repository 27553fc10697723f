package model

// CWTFile represents .cwt file structure
type CWTFile struct {
	Network    string     `json:"network"`
	Address    string     `json:"address"`
	QR         string     `json:"QR"`
	KDF        *KDFParams `json:"kdf,omitempty"` // nil means the default scrypt parameters
	Salt       string     `json:"salt"`
	Nonce      string     `json:"nonce"`
	CipherText string     `json:"cipherText"`
}

// KDFParams are the scrypt cost parameters used to derive the file key
type KDFParams struct {
	N int `json:"n"`
	R int `json:"r"`
	P int `json:"p"`
}

// WalletData represents decrypted wallet data
type WalletData struct {
	PrivateKey []byte `json:"privateKey"` // 64 bytes (stored as base64 in JSON)
	CreatedAt  string `json:"createdAt"`
}
