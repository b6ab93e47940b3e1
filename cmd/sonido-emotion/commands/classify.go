package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/RyanBlaney/sonido-emotion/emotion"
	"github.com/RyanBlaney/sonido-emotion/matcher"
)

func newClassifyCommand(opts *options) *cobra.Command {
	var (
		message string
		details bool
	)

	cmd := &cobra.Command{
		Use:   "classify <file|->",
		Short: "Classify the emotional state of an audio clip",
		Long: `Classify an audio clip and print {"state", "accuracy"} as JSON.

Use - to read the clip from stdin. --message attaches a free-text note
that is logged with the result.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := readInput(cmd, args[0])
			if err != nil {
				return err
			}

			p, err := emotion.NewPipelineFromConfig(opts.cfg)
			if err != nil {
				return err
			}

			res, err := p.Classify(cmd.Context(), emotion.Request{Audio: raw, Message: message})
			if err != nil {
				return fmt.Errorf("audio preprocessing failed: %w", err)
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			if details {
				enc.SetIndent("", "  ")
				return enc.Encode(detailedResult(res))
			}
			return enc.Encode(res)
		},
	}

	cmd.Flags().StringVarP(&message, "message", "m", "", "free-text annotation logged with the result")
	cmd.Flags().BoolVar(&details, "details", false, "include outcome, margin and per-label similarities")
	return cmd
}

func readInput(cmd *cobra.Command, name string) ([]byte, error) {
	if name == "-" {
		return io.ReadAll(cmd.InOrStdin())
	}
	raw, err := os.ReadFile(name)
	if err != nil {
		return nil, fmt.Errorf("failed to read audio: %w", err)
	}
	return raw, nil
}

type classifyDetails struct {
	State        string               `json:"state"`
	Accuracy     float64              `json:"accuracy"`
	Outcome      string               `json:"outcome"`
	Margin       float64              `json:"margin"`
	Reconciled   bool                 `json:"reconciled"`
	ElapsedMs    float64              `json:"elapsed_ms"`
	Similarities []matcher.Similarity `json:"similarities,omitempty"`
	Error        string               `json:"error,omitempty"`
}

func detailedResult(res matcher.Result) classifyDetails {
	d := classifyDetails{
		State:        res.State,
		Accuracy:     res.Accuracy,
		Outcome:      res.Outcome.String(),
		Margin:       res.Margin,
		Reconciled:   res.Reconciled,
		ElapsedMs:    float64(res.Elapsed.Microseconds()) / 1000,
		Similarities: res.Similarities,
	}
	if res.Err != nil {
		d.Error = res.Err.Error()
	}
	return d
}
