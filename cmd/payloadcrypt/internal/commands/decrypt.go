package commands

import (
	"errors"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"payloadcrypt/internal/core/domain"
)

// InitDecryptCommands registers decrypt and seal.
func InitDecryptCommands(rootCmd *cobra.Command) {
	decryptCmd := &cobra.Command{
		Use:   "decrypt",
		Short: "Decrypt a hex IV and ciphertext, or a saved response body",
		Example: `  payloadcrypt decrypt --iv 3c86...61a8 --data-file payload.hex
  payloadcrypt decrypt --in response.json`,
		Args: cobra.NoArgs,
		RunE: runDecrypt,
	}
	decryptCmd.Flags().String("iv", "", "hex encoded 16 byte IV")
	decryptCmd.Flags().String("data", "", "hex encoded ciphertext")
	decryptCmd.Flags().String("data-file", "", "file holding the hex encoded ciphertext")
	decryptCmd.Flags().String("in", "", "response body to route: envelopes are decrypted, anything else is printed as is")
	decryptCmd.MarkFlagsMutuallyExclusive("data", "data-file", "in")
	decryptCmd.MarkFlagsMutuallyExclusive("iv", "in")
	rootCmd.AddCommand(decryptCmd)

	sealCmd := &cobra.Command{
		Use:   "seal",
		Short: "Encrypt a file into an {\"iv\",\"data\"} envelope",
		Args:  cobra.NoArgs,
		RunE:  runSeal,
	}
	sealCmd.Flags().String("in", "", "plaintext file to seal")
	sealCmd.Flags().Bool("upload", false, "store the envelope in S3 instead of printing it")
	_ = sealCmd.MarkFlagRequired("in")
	rootCmd.AddCommand(sealCmd)
}

func runDecrypt(cmd *cobra.Command, _ []string) error {
	a, err := setup(cmd)
	if err != nil {
		return err
	}
	ctx := cmd.Context()

	if in, _ := cmd.Flags().GetString("in"); in != "" {
		body, err := os.ReadFile(filepath.Clean(in))
		if err != nil {
			return err
		}
		res, err := a.svc.Route(ctx, body)
		if err != nil {
			return surfaceRaw(cmd, err)
		}
		return a.print(cmd, res)
	}

	iv, _ := cmd.Flags().GetString("iv")
	data, _ := cmd.Flags().GetString("data")
	if file, _ := cmd.Flags().GetString("data-file"); file != "" {
		raw, err := os.ReadFile(filepath.Clean(file))
		if err != nil {
			return err
		}
		data = string(raw)
	}
	if iv == "" || data == "" {
		return errors.New("either --in, or --iv with --data or --data-file, is required")
	}

	pt, err := a.svc.Open(ctx, domain.Envelope{IV: iv, Data: data})
	if err != nil {
		return surfaceRaw(cmd, err)
	}
	return a.print(cmd, &domain.Result{Encrypted: true, Plaintext: pt})
}
