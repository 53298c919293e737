package main

import (
	"fmt"
	"os"
	"runtime"
	"runtime/debug"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	pflag "github.com/spf13/pflag"

	"transpipe/internal/cliconfig"
)

const helpDescription = `
Run one role of the transciphering pipeline: an initiator that produces
and encrypts items, a relay that transciphers them into the homomorphic
domain, and a resolver that decrypts the final stream. Roles are separate
processes that meet over NATS and the filesystem; configure via file,
env (TRANSPIPE_*), or flags.
`

var exampleUsage = `  transpipe keygen --key-dir ./keys
  transpipe initiator --mode STREAMING --relay-endpoint nats://127.0.0.1:4222/transpipe.symmetric
  transpipe relay --mode STREAMING --wait
  transpipe resolver --mode BATCHED_FILE --data-dir ./data`

func getVersion() string {
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" {
		return info.Main.Version
	}
	return "dev"
}

func main() {
	cfg := cliconfig.DefaultConfig()
	var cfgPath string

	log := cliconfig.Logger().With().
		Str("run_id", uuid.NewString()[:8]).
		Logger()

	root := &cobra.Command{
		Use:     "transpipe",
		Short:   "Three-role transciphering pipeline over NATS and durable file queues",
		Long:    helpDescription,
		Example: exampleUsage,
		Version: fmt.Sprintf("%s %s/%s", getVersion(), runtime.GOOS, runtime.GOARCH),
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfgFile := cfgPath
			if cfgFile == "" {
				cfgFile = cliconfig.DefaultConfigPath()
			}

			changed := map[string]bool{}
			cmd.Flags().Visit(func(f *pflag.Flag) { changed[f.Name] = true })
			cmd.InheritedFlags().Visit(func(f *pflag.Flag) { changed[f.Name] = true })

			if cfgFile != "" && cliconfig.FileExists(cfgFile) {
				fc, err := cliconfig.LoadFileConfig(cfgFile)
				if err != nil {
					return fmt.Errorf("load config: %w", err)
				}
				if err := cliconfig.ApplyFileConfig(&cfg, fc, changed); err != nil {
					return err
				}
			}

			// Environment overrides file config but loses to flags.
			if err := cliconfig.ApplyEnvConfig(&cfg, changed); err != nil {
				return err
			}

			if err := cfg.Validate(); err != nil {
				return err
			}
			log.Info().Interface("config", cfg).Msg("configuration")
			return nil
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&cfgPath, "config", "", "path to config file (default: $HOME/.transpipe/config.toml)")
	pf.StringVar(&cfg.Variant, "variant", cfg.Variant, "run variant: HHE (hybrid) or HE (direct)")
	pf.StringVar(&cfg.DeliveryMode, "mode", cfg.DeliveryMode, "delivery mode: STREAMING, BATCHED_FILE, BULK_REPLAY_A, BULK_REPLAY_B")
	pf.IntVar(&cfg.IntegerSize, "int-size", cfg.IntegerSize, "raw item width in bits (8/16/32/64/128)")
	pf.IntVar(&cfg.BatchSize, "batch-size", cfg.BatchSize, "items per batch")
	pf.IntVar(&cfg.BatchNumber, "batch-number", cfg.BatchNumber, "batches per run")
	pf.StringVar(&cfg.DataDir, "data-dir", cfg.DataDir, "root directory for stage queue files")
	pf.StringVar(&cfg.KeyDir, "key-dir", cfg.KeyDir, "directory holding keys and parameters")
	pf.StringVar(&cfg.TimelineDir, "timeline-dir", cfg.TimelineDir, "directory for timeline logs (default: <data-dir>/timelines)")
	pf.StringVar(&cfg.RelayEndpoint, "relay-endpoint", cfg.RelayEndpoint, "initiator-to-relay stream endpoint")
	pf.StringVar(&cfg.ResolverEndpoint, "resolver-endpoint", cfg.ResolverEndpoint, "relay-to-resolver stream endpoint")
	pf.StringVar(&cfg.MetricsAddr, "metrics-addr", cfg.MetricsAddr, "address for the Prometheus endpoint (empty disables it)")
	pf.DurationVar(&cfg.SampleInterval, "sample-interval", cfg.SampleInterval, "heap sampling interval")
	pf.DurationVar(&cfg.Linger, "linger", cfg.Linger, "flush bound for transport connections on shutdown")
	pf.DurationVar(&cfg.Settle, "settle", cfg.Settle, "pause after the START marker before the first send")
	pf.BoolVar(&cfg.Wait, "wait", cfg.Wait, "block until an inbound file appears instead of exiting")
	pf.BoolVar(&cfg.RemoveAfterSend, "remove-after-send", cfg.RemoveAfterSend, "truncate a file after a bulk replay drains it")
	pf.BoolVar(&cfg.ArchiveDrained, "archive-drained", cfg.ArchiveDrained, "keep a zstd copy of drained files")

	root.AddCommand(
		newKeygenCmd(&cfg, &log),
		newRoleCmd(&cfg, &log, "initiator", "Produce, encrypt, and ship raw items"),
		newRoleCmd(&cfg, &log, "relay", "Transcipher the symmetric stream into the homomorphic domain"),
		newRoleCmd(&cfg, &log, "resolver", "Decrypt the homomorphic stream into plaintext output"),
	)

	if err := root.Execute(); err != nil {
		log.Error().Err(err).Msg("exit")
		os.Exit(1)
	}
}

func newRoleCmd(cfg *cliconfig.Config, log *zerolog.Logger, role, short string) *cobra.Command {
	return &cobra.Command{
		Use:   role,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRole(cfg, log.With().Str("role", role).Logger(), role)
		},
	}
}
