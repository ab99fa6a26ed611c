package commands

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"payloadcrypt/internal/core/domain"
)

func runSeal(cmd *cobra.Command, _ []string) error {
	a, err := setup(cmd)
	if err != nil {
		return err
	}
	ctx := cmd.Context()

	in, _ := cmd.Flags().GetString("in")
	plaintext, err := os.ReadFile(filepath.Clean(in))
	if err != nil {
		return err
	}

	env, err := a.svc.Seal(ctx, plaintext)
	if err != nil {
		return err
	}

	if upload, _ := cmd.Flags().GetBool("upload"); upload {
		store, err := a.newStore(ctx)
		if err != nil {
			return err
		}
		id, err := store.PutPayload(ctx, *env, domain.PayloadMetadata{
			Name:        filepath.Base(in),
			ContentType: http.DetectContentType(plaintext),
			Size:        int64(len(plaintext)),
			Algorithm:   "AES-256-CBC",
			CreatedAt:   time.Now().UTC(),
		})
		if err != nil {
			return fmt.Errorf("failed to upload payload: %w", err)
		}
		_, err = fmt.Fprintln(cmd.OutOrStdout(), id)
		return err
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	return enc.Encode(env)
}
