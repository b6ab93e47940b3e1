package commands

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/RyanBlaney/sonido-emotion/config"
	"github.com/RyanBlaney/sonido-emotion/logging"
)

// options carries global flag values and the loaded configuration
type options struct {
	configPath string
	logLevel   string

	cfg *config.Config
}

// NewRootCommand builds the command tree
func NewRootCommand() *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:   "sonido-emotion",
		Short: "Audio emotion classification",
		Long: `sonido-emotion - classify the emotional state of short audio clips.

Clips are decoded (WAV, MP3, or anything ffmpeg reads when enabled),
normalized to 16 kHz mono, converted to a log-spectral feature matrix and
matched against reference emotion signatures.

Configuration is read from --config, $SONIDO_EMOTION_CONFIG,
config/<env>/config.yaml or sonido-emotion.yaml, in that order.

Examples:
  # Classify a clip
  sonido-emotion classify clip.wav

  # Export the fallback signatures
  sonido-emotion signatures export --out fallback_signatures.json

  # Generate test clips
  sonido-emotion gen-audio --out test_audio_samples_varied`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.init(cmd)
		},
	}

	root.PersistentFlags().StringVar(&opts.configPath, "config", "", "path to a YAML config file")
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "log level (debug, info, warn, error); overrides the config")

	root.AddCommand(
		newClassifyCommand(opts),
		newSignaturesCommand(opts),
		newGenAudioCommand(opts),
	)
	return root
}

// Execute runs the root command
func Execute() error {
	return NewRootCommand().Execute()
}

// init loads the configuration and installs a stderr logger so stdout
// stays clean for command output
func (o *options) init(cmd *cobra.Command) error {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return err
	}
	if o.logLevel != "" {
		cfg.LogLevel = o.logLevel
	}

	level, err := logging.ParseLevel(cfg.LogLevel)
	if err != nil {
		return err
	}

	logger := logging.NewDefaultLoggerTo(cmd.ErrOrStderr(), cmd.ErrOrStderr(), isTerminal(os.Stderr))
	logger.SetLevel(level)
	logging.SetGlobalLogger(logger)

	o.cfg = cfg
	return nil
}

func isTerminal(f *os.File) bool {
	if fileInfo, _ := f.Stat(); fileInfo != nil {
		return (fileInfo.Mode() & os.ModeCharDevice) != 0
	}
	return false
}
