package commands

import (
	"crypto/rand"
	"crypto/rsa"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sirosfoundation/go-ebics/internal/keystore"
	"github.com/sirosfoundation/go-ebics/pkg/security"
)

const passphraseEnv = "EBICS_KEY_PASSPHRASE"

// digest <pem>...: print the SHA-256 key hash as found on initialisation letters
func digestCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "digest <public-key.pem>...",
		Short: "Print the hash of RSA public keys",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, path := range args {
				keys, err := keystore.LoadBankKeys(path)
				if err != nil {
					return err
				}
				for _, key := range keys {
					fmt.Fprintf(cmd.OutOrStdout(), "%s  %s\n", formatDigest(security.PublicKeyDigest(key)), path)
				}
			}
			return nil
		},
	}
}

// formatDigest groups a digest in hex pairs separated by blanks
func formatDigest(digest []byte) string {
	hex := security.EncodeHex(digest)
	pairs := make([]string, 0, len(digest))
	for i := 0; i < len(hex); i += 2 {
		pairs = append(pairs, hex[i:i+2])
	}
	return strings.Join(pairs, " ")
}

// keygen <user-id> <role>: create a subscriber key in the key directory
func keygenCmd() *cobra.Command {
	var (
		keyDir string
		bits   int
	)

	cmd := &cobra.Command{
		Use:   "keygen <user-id> <role>",
		Short: "Generate a subscriber RSA key",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			role, err := keystore.ParseRole(args[1])
			if err != nil {
				return err
			}
			if bits < 2048 {
				return fmt.Errorf("key size must be at least 2048 bits")
			}

			path := filepath.Join(keyDir, args[0], string(role)+".pem")
			if _, err := os.Stat(path); err == nil {
				return fmt.Errorf("%s already exists", path)
			}

			key, err := rsa.GenerateKey(rand.Reader, bits)
			if err != nil {
				return err
			}
			if err := keystore.WritePrivateKey(path, key, []byte(os.Getenv(passphraseEnv))); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%s  %s\n", formatDigest(security.PublicKeyDigest(&key.PublicKey)), path)
			return nil
		},
	}

	cmd.Flags().StringVar(&keyDir, "key-dir", "./keys", "key directory")
	cmd.Flags().IntVar(&bits, "bits", 2048, "RSA key size")
	return cmd
}

// seal-key <in> <out>: protect a PEM private key with $EBICS_KEY_PASSPHRASE
func sealKeyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seal-key <in.pem> <out.pem>",
		Short: "Seal a private key with the passphrase in " + passphraseEnv,
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			passphrase := []byte(os.Getenv(passphraseEnv))
			if len(passphrase) == 0 {
				return fmt.Errorf("%s is not set", passphraseEnv)
			}

			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			signer, err := keystore.ParsePrivateKey(data, nil)
			if err != nil {
				return err
			}
			key, ok := signer.(*rsa.PrivateKey)
			if !ok {
				return fmt.Errorf("%s: not an RSA key", args[0])
			}
			return keystore.WritePrivateKey(args[1], key, passphrase)
		},
	}
}
