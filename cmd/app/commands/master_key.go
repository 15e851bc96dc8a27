package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	cryptoService "github.com/Coops0/jrnlapp/internal/crypto/service"
)

type masterKeyOutput struct {
	MasterKey string `json:"master_key"`
	KMSKeyURI string `json:"kms_key_uri,omitempty"`
}

// RunCreateMasterKey generates a master key and prints the environment
// variables that load it. With kmsKeyURI set the printed key is the KMS
// ciphertext and the raw key never leaves the process.
func RunCreateMasterKey(
	ctx context.Context,
	kms cryptoService.KMSService,
	logger *slog.Logger,
	writer io.Writer,
	kmsKeyURI string,
	format string,
) error {
	encoded, err := cryptoService.GenerateMasterKey(ctx, kmsKeyURI, kms)
	if err != nil {
		return err
	}

	if kmsKeyURI == "" {
		logger.Warn("master key printed in plaintext; set --kms-key-uri to wrap it with a KMS")
	}

	out := masterKeyOutput{MasterKey: encoded, KMSKeyURI: kmsKeyURI}
	return writeOutput(writer, format, out, func(w io.Writer) error {
		_, _ = fmt.Fprintln(w, "# Copy these environment variables to your .env file or secrets manager")
		_, _ = fmt.Fprintln(w, "# Entries encrypted under one master key cannot be read with another")
		if kmsKeyURI != "" {
			_, _ = fmt.Fprintf(w, "KMS_KEY_URI=%q\n", kmsKeyURI)
		}
		_, err := fmt.Fprintf(w, "MASTER_KEY=%q\n", encoded)
		return err
	})
}
