package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/RyanBlaney/sonido-emotion/testaudio"
)

func newGenAudioCommand(opts *options) *cobra.Command {
	var (
		out        string
		perVariant int
		seed       uint64
		sampleRate int
		duration   float64
	)

	cmd := &cobra.Command{
		Use:   "gen-audio",
		Short: "Write varied tone clips for manual testing",
		Long: `Write harmonic tone clips with light noise, a few variations per tone
family (angry, happy, sad, neutral), as 16-bit mono WAV files.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			paths, err := testaudio.GenerateVaried(out, testaudio.DefaultVariants, perVariant, seed, sampleRate, duration)
			if err != nil {
				return err
			}
			for _, p := range paths {
				fmt.Fprintln(cmd.OutOrStdout(), p)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&out, "out", "o", "test_audio_samples_varied", "output directory")
	cmd.Flags().IntVar(&perVariant, "per-variant", 3, "clips per tone family")
	cmd.Flags().Uint64Var(&seed, "seed", 42, "generator seed")
	cmd.Flags().IntVar(&sampleRate, "sample-rate", 16000, "sample rate in Hz")
	cmd.Flags().Float64Var(&duration, "duration", 2.0, "clip length in seconds")
	return cmd
}
