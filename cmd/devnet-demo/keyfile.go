package main

import (
	"fmt"

	"github.com/AlexZinkM/devnet-demo/internal/config"
	"github.com/AlexZinkM/devnet-demo/internal/crypto"
	"github.com/AlexZinkM/devnet-demo/internal/provider"

	"github.com/spf13/cobra"
)

var (
	keyfilePath string

	keygenCmd = &cobra.Command{
		Use:   "keygen",
		Short: "create an encrypted wallet keyfile for the provider",
		RunE:  keygenAction,
	}

	addressCmd = &cobra.Command{
		Use:   "address",
		Short: "print the address stored in a wallet keyfile",
		RunE:  addressAction,
	}

	rekeyCmd = &cobra.Command{
		Use:   "rekey",
		Short: "re-encrypt a wallet keyfile with a new password",
		RunE:  rekeyAction,
	}
)

func init() {
	for _, cmd := range []*cobra.Command{keygenCmd, addressCmd, rekeyCmd} {
		cmd.Flags().StringVarP(&keyfilePath, "file", "f", "", "path to the .cwt keyfile (default PROVIDER_FILE_PATH)")
	}
}

func keygenAction(cmd *cobra.Command, args []string) error {
	path, err := resolveKeyfile()
	if err != nil {
		return err
	}

	if err := config.PromptForPassword(); err != nil {
		return err
	}
	defer config.ClearPassword()

	password, err := config.GetProviderPasswordBytes()
	if err != nil {
		return err
	}
	defer clear(password)

	address, err := provider.GenerateKeyfile(path, password, crypto.DefaultKDF)
	if err != nil {
		if provider.IsFileExistsError(err) {
			return fmt.Errorf("%s already holds a wallet, refusing to overwrite it", path)
		}
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), address)
	return nil
}

func addressAction(cmd *cobra.Command, args []string) error {
	path, err := resolveKeyfile()
	if err != nil {
		return err
	}

	address, err := crypto.ReadWalletAddress(path)
	if err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), address)
	return nil
}

func rekeyAction(cmd *cobra.Command, args []string) error {
	path, err := resolveKeyfile()
	if err != nil {
		return err
	}

	if err := config.PromptForPassword(); err != nil {
		return err
	}
	defer config.ClearPassword()

	oldPassword, err := config.GetProviderPasswordBytes()
	if err != nil {
		return err
	}
	defer clear(oldPassword)

	newPassword, err := config.PromptForNewPassword()
	if err != nil {
		return err
	}
	defer clear(newPassword)

	if err := crypto.ReencryptWallet(path, oldPassword, newPassword, crypto.DefaultKDF); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "re-encrypted %s\n", path)
	return nil
}

// resolveKeyfile loads the config and returns the keyfile path from the
// --file flag or PROVIDER_FILE_PATH.
func resolveKeyfile() (string, error) {
	if err := config.Init(); err != nil {
		return "", err
	}

	path := keyfilePath
	if path == "" {
		path = config.GetProviderFilePath()
	}
	if path == "" {
		return "", fmt.Errorf("no keyfile given: use --file or set PROVIDER_FILE_PATH")
	}
	return path, nil
}
