package provider

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/AlexZinkM/devnet-demo/internal/common"
	"github.com/AlexZinkM/devnet-demo/internal/crypto"
	"github.com/AlexZinkM/devnet-demo/internal/model"

	"github.com/gagliardetto/solana-go"
)

const networkSolana = "solana"

// FileExistsError is an error when file already exists and is not empty
type FileExistsError struct {
	Message string
}

func (e *FileExistsError) Error() string {
	return e.Message
}

// IsFileExistsError checks if error is FileExistsError
func IsFileExistsError(err error) bool {
	var fe *FileExistsError
	return errors.As(err, &fe)
}

// GenerateKeyfile creates a new wallet keypair and saves it to a .cwt file
// that NewKeyfile can open. Returns the public address.
// password must be []byte for security (caller should zero it after use)
func GenerateKeyfile(filePath string, password []byte, kdf model.KDFParams) (address string, err error) {
	// Check file extension (.cwt)
	if filepath.Ext(filePath) != ".cwt" {
		return "", fmt.Errorf("file must have .cwt extension")
	}

	// Check file existence
	if fileInfo, err := os.Stat(filePath); err == nil && fileInfo.Size() > 0 {
		return "", &FileExistsError{Message: "file is not empty"}
	}

	// Generate new Solana keypair
	wallet := solana.NewWallet()
	defer clear(wallet.PrivateKey)

	// Get address (public key)
	address = wallet.PublicKey().String()

	// Generate QR code
	qrCode, err := common.QRCodeBase64(address)
	if err != nil {
		return "", err
	}

	// Prepare wallet data, the key is base64 encoded in JSON
	walletData := &model.WalletData{
		PrivateKey: wallet.PrivateKey,
		CreatedAt:  time.Now().Format(time.RFC3339),
	}

	// Encrypt and write to file
	if err := crypto.EncryptWallet(filePath, networkSolana, address, qrCode, walletData, password, kdf); err != nil {
		return "", fmt.Errorf("failed to encrypt wallet: %w", err)
	}

	return address, nil
}
