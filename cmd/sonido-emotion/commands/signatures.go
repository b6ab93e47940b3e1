package commands

import (
	"fmt"
	"io"
	"math"
	"os"

	"github.com/spf13/cobra"

	"github.com/RyanBlaney/sonido-emotion/logging"
	"github.com/RyanBlaney/sonido-emotion/signatures"
)

func newSignaturesCommand(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "signatures",
		Short: "Signature tooling",
	}
	cmd.AddCommand(newSignaturesExportCommand(opts))
	return cmd
}

func newSignaturesExportCommand(opts *options) *cobra.Command {
	var (
		out    string
		format string
		offset float64
		seed   uint64
		dim    int
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the synthetic fallback signatures",
		Long: `Generate the deterministic fallback signature set and write it in the
JSON signature file format (label -> array of numbers) or as a msgpack
checkpoint with a "signatures" entry.

Examples:
  sonido-emotion signatures export --out fallback_signatures.json
  sonido-emotion signatures export --format checkpoint --out emotion_checkpoint.msgpack`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			params := opts.cfg.Signatures.Synthetic
			if cmd.Flags().Changed("offset") {
				params.Offset = offset
			}
			if cmd.Flags().Changed("seed") {
				params.Seed = seed
			}
			if cmd.Flags().Changed("dim") {
				params.Dim = dim
			}

			if err := checkGeneratorFlags(cmd, dim, offset); err != nil {
				return err
			}
			if err := params.Validate(); err != nil {
				return fmt.Errorf("invalid generator settings: %w", err)
			}

			set, err := signatures.Synthetic(params)
			if err != nil {
				return err
			}

			var w io.Writer = cmd.OutOrStdout()
			if out != "" && out != "-" {
				f, err := os.Create(out)
				if err != nil {
					return fmt.Errorf("failed to create %s: %w", out, err)
				}
				defer f.Close()
				w = f
			}

			switch format {
			case "json":
				err = signatures.WriteJSON(w, set)
			case "checkpoint":
				err = signatures.WriteCheckpoint(w, set, map[string]any{
					"generator": "synthetic",
					"seed":      params.Seed,
					"offset":    params.Offset,
				})
			default:
				return fmt.Errorf("unknown format %q (want json or checkpoint)", format)
			}
			if err != nil {
				return fmt.Errorf("failed to write signatures: %w", err)
			}

			logging.Info("Signatures exported", logging.Fields{
				"labels": set.Labels(),
				"dim":    set.Dim(),
				"offset": params.Offset,
				"out":    out,
			})
			return nil
		},
	}

	cmd.Flags().StringVarP(&out, "out", "o", "-", "output file, - for stdout")
	cmd.Flags().StringVar(&format, "format", "json", "output format: json or checkpoint")
	cmd.Flags().Float64Var(&offset, "offset", signatures.SyntheticOffset, "per-label offset")
	cmd.Flags().Uint64Var(&seed, "seed", signatures.SyntheticSeed, "generator seed")
	cmd.Flags().IntVar(&dim, "dim", signatures.SyntheticDim, "vector length")
	return cmd
}

func checkGeneratorFlags(cmd *cobra.Command, dim int, offset float64) error {
	if cmd.Flags().Changed("dim") && dim <= 0 {
		return fmt.Errorf("--dim must be positive, got %d", dim)
	}
	if cmd.Flags().Changed("offset") && (math.IsNaN(offset) || math.IsInf(offset, 0)) {
		return fmt.Errorf("--offset must be a finite number, got %v", offset)
	}
	return nil
}
