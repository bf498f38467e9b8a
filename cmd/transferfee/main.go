// main.go - Operator tool for confidential transfers with fee.
//
// Commands:
//   run     build, verify and decrypt N transfers concurrently and save a bundle
//   verify  re-verify every artifact of a saved bundle
//   keygen  write an ElGamal keypair as JSON
//
// Usage:
//   transferfee --config config.json run
//   transferfee verify bundle.json
//   transferfee keygen --out destination.json

package main

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"feeproof/internal/encryption"
)

var configPath string

func main() {
	if err := execute(); err != nil {
		os.Exit(1)
	}
}

func execute() error {
	root := &cobra.Command{
		Use:          "transferfee",
		Short:        "Confidential transfer-with-fee proofs",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&configPath, "config", "config.json", "configuration file, created with defaults when missing")

	root.AddCommand(runCmd(), verifyCmd(), keygenCmd())
	return root.Execute()
}

// setup loads and validates the configuration and opens the loggers.
func setup() (*Config, *Logger, error) {
	cfg, err := LoadConfig(configPath)
	if err != nil {
		return nil, nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, nil, fmt.Errorf("invalid configuration: %w", err)
	}
	audit := ""
	if cfg.EnableAudit {
		audit = cfg.AuditLogPath
	}
	log, err := NewLogger(cfg.LogLevel, cfg.LogFile, audit)
	if err != nil {
		return nil, nil, err
	}
	return cfg, log, nil
}

func runCmd() *cobra.Command {
	var transfers int
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Build, verify and decrypt transfers and save the proof bundle",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := setup()
			if err != nil {
				return err
			}
			defer log.Close()
			if transfers > 0 {
				cfg.NumTransfers = transfers
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()

			metrics := NewMetricsCollector()
			s, err := newScenario(cfg, log, metrics)
			if err != nil {
				return err
			}
			runErr := s.run(ctx)
			logSummary(log, metrics)
			if runErr != nil {
				log.Error().Err(runErr).Msg("scenario failed")
			}
			return runErr
		},
	}
	cmd.Flags().IntVarP(&transfers, "transfers", "n", 0, "number of transfers (overrides num_transfers)")
	return cmd
}

func verifyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "verify [bundle]",
		Short: "Re-verify every artifact of a saved bundle",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := setup()
			if err != nil {
				return err
			}
			defer log.Close()

			path := cfg.BundlePath
			if len(args) == 1 {
				path = args[0]
			}
			b, err := LoadBundleFromFile(path)
			if err != nil {
				return fmt.Errorf("load bundle: %w", err)
			}

			metrics := NewMetricsCollector()
			rejected, err := verifyBundle(b, log, metrics)
			if err != nil {
				return err
			}
			logSummary(log, metrics)
			fmt.Printf("%d artifacts, %d rejected\n", b.Len(), rejected)
			if rejected > 0 {
				return fmt.Errorf("%d of %d artifacts rejected", rejected, b.Len())
			}
			return nil
		},
	}
	return cmd
}

func keygenCmd() *cobra.Command {
	var out, seedHex string
	cmd := &cobra.Command{
		Use:   "keygen",
		Short: "Generate an ElGamal keypair",
		RunE: func(cmd *cobra.Command, args []string) error {
			var (
				kp  *encryption.Keypair
				err error
			)
			if seedHex != "" {
				seed, derr := hex.DecodeString(seedHex)
				if derr != nil {
					return fmt.Errorf("seed: %w", derr)
				}
				kp, err = encryption.NewKeypairFromSeed(seed)
			} else {
				kp, err = encryption.NewKeypair()
			}
			if err != nil {
				return err
			}
			defer kp.Secret.Zeroize()

			b, err := json.MarshalIndent(kp, "", "  ")
			if err != nil {
				return err
			}
			if out == "" {
				_, err = fmt.Println(string(b))
				return err
			}
			if err := os.WriteFile(out, append(b, '\n'), 0o600); err != nil {
				return err
			}
			pub := kp.Public.Bytes()
			fmt.Printf("Public key: %x\n", pub)
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "", "output file (default stdout)")
	cmd.Flags().StringVar(&seedHex, "seed", "", "hex seed of at least 32 bytes for a deterministic keypair")
	return cmd
}

func logSummary(log *Logger, metrics *MetricsCollector) {
	summary := metrics.GetMetricsSummary()
	b, err := json.Marshal(summary)
	if err != nil {
		log.Warn().Err(err).Msg("failed to encode metrics")
		return
	}
	log.Info().RawJSON("metrics", b).Msg("metrics summary")
}
