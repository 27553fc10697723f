package crypto

import (
	"crypto/ed25519"
	"fmt"
	"os"
	"strings"

	"github.com/AlexZinkM/devnet-demo/internal/model"
)

// ReencryptWallet opens the .cwt file with oldPassword and rewrites it under
// newPassword with a fresh salt, nonce and the given scrypt parameters.
// Files holding only the 32-byte seed are upgraded to the full 64-byte key.
func ReencryptWallet(filePath string, oldPassword, newPassword []byte, kdf model.KDFParams) error {
	cwtFile, walletData, err := DecryptWallet(filePath, oldPassword)
	if err != nil {
		return err
	}
	defer func() { clear(walletData.PrivateKey) }()

	switch len(walletData.PrivateKey) {
	case ed25519.PrivateKeySize:
	case ed25519.SeedSize:
		seed := walletData.PrivateKey
		walletData.PrivateKey = ed25519.NewKeyFromSeed(seed)
		clear(seed)
	default:
		return fmt.Errorf("invalid private key length %d", len(walletData.PrivateKey))
	}

	tmpPath := strings.TrimSuffix(filePath, ".cwt") + ".rekey.cwt"
	if err := EncryptWallet(tmpPath, cwtFile.Network, cwtFile.Address, cwtFile.QR, walletData, newPassword, kdf); err != nil {
		return err
	}

	if err := os.Rename(tmpPath, filePath); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to replace wallet file: %w", err)
	}
	return nil
}
