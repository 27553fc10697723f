package crypto

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/AlexZinkM/devnet-demo/internal/model"
)

// ErrInvalidPassword is returned when the file cannot be opened with the given password
var ErrInvalidPassword = errors.New("invalid password")

// Upper bounds for scrypt parameters read from a file.
// scrypt needs about 128*N*R bytes, maxKDFCost keeps that under 1GiB.
const (
	maxKDFCost = 1 << 23 // N*R
	maxKDFP    = 16
)

// DecryptWallet reads and decrypts .cwt file
// password must be []byte for security (caller should zero it after use)
func DecryptWallet(filePath string, password []byte) (*model.CWTFile, *model.WalletData, error) {
	cwtFile, err := readCWTFile(filePath)
	if err != nil {
		return nil, nil, err
	}

	salt, err := base64.StdEncoding.DecodeString(cwtFile.Salt)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to decode salt: %w", err)
	}

	nonce, err := base64.StdEncoding.DecodeString(cwtFile.Nonce)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to decode nonce: %w", err)
	}

	ciphertext, err := base64.StdEncoding.DecodeString(cwtFile.CipherText)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to decode ciphertext: %w", err)
	}

	kdf := DefaultKDF
	if cwtFile.KDF != nil {
		kdf = *cwtFile.KDF
	}
	if err := checkKDF(kdf); err != nil {
		return nil, nil, err
	}

	aesGCM, err := newGCM(password, salt, kdf)
	if err != nil {
		return nil, nil, err
	}

	plaintext, err := aesGCM.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, nil, ErrInvalidPassword
	}
	defer clear(plaintext) // wipe decrypted bytes from memory

	var walletData model.WalletData
	if err := json.Unmarshal(plaintext, &walletData); err != nil {
		return nil, nil, fmt.Errorf("failed to unmarshal wallet data: %w", err)
	}

	return cwtFile, &walletData, nil
}

// checkKDF rejects scrypt parameters that are invalid or too expensive to derive
func checkKDF(kdf model.KDFParams) error {
	if kdf.N <= 1 || kdf.N&(kdf.N-1) != 0 {
		return fmt.Errorf("invalid kdf: n must be a power of two greater than 1, got %d", kdf.N)
	}
	if kdf.R < 1 || kdf.P < 1 || kdf.P > maxKDFP {
		return fmt.Errorf("invalid kdf: r=%d p=%d", kdf.R, kdf.P)
	}
	if kdf.R > maxKDFCost/kdf.N {
		return fmt.Errorf("invalid kdf: n=%d r=%d exceeds the memory limit", kdf.N, kdf.R)
	}
	return nil
}

// ReadWalletAddress reads only the address from .cwt file (without decryption)
func ReadWalletAddress(filePath string) (string, error) {
	cwtFile, err := readCWTFile(filePath)
	if err != nil {
		return "", err
	}
	return cwtFile.Address, nil
}

func readCWTFile(filePath string) (*model.CWTFile, error) {
	fileInfo, err := os.Stat(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.New("file does not exist")
		}
		return nil, fmt.Errorf("failed to stat file: %w", err)
	}

	if fileInfo.Size() == 0 {
		return nil, errors.New("file is empty")
	}

	fileData, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	// Skip UTF-8 BOM if present
	if len(fileData) >= 3 && fileData[0] == 0xEF && fileData[1] == 0xBB && fileData[2] == 0xBF {
		fileData = fileData[3:]
	}

	var cwtFile model.CWTFile
	if err := json.Unmarshal(fileData, &cwtFile); err != nil {
		return nil, fmt.Errorf("failed to unmarshal cwt file: %w", err)
	}
	return &cwtFile, nil
}
