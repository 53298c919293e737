package main

import (
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"transpipe/internal/cliconfig"
	"transpipe/internal/hecrypto"
)

// newKeygenCmd creates the key material every role of a run shares: the
// symmetric stream key, the homomorphic secret key, and the parameter
// context. Fingerprints are logged so operators can confirm all three
// processes hold the same keys.
func newKeygenCmd(cfg *cliconfig.Config, log *zerolog.Logger) *cobra.Command {
	return &cobra.Command{
		Use:   "keygen",
		Short: "Generate and store the run's key material",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			stream, err := hecrypto.GenerateStreamKey()
			if err != nil {
				return err
			}
			secret, err := hecrypto.GenerateSecretKey()
			if err != nil {
				return err
			}
			params := hecrypto.DefaultParams()

			if err := hecrypto.SaveKeys(cfg.KeyDir, stream, secret, params); err != nil {
				return err
			}
			log.Info().
				Str("dir", cfg.KeyDir).
				Str("stream_key", hecrypto.Fingerprint(stream[:])).
				Str("secret_key", hecrypto.Fingerprint(secret[:])).
				Msg("key material written")
			return nil
		},
	}
}
