package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/msto63/mSW/pkg/core/config"
	"github.com/msto63/mSW/pkg/core/logging"
)

var (
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "msw",
	Short: "meinSPRECHWERK - Lokaler Sprachassistent",
	Long: `meinSPRECHWERK ist ein lokaler, rundenbasierter Sprachassistent
für den Einzelarbeitsplatz.

Ablauf einer Runde:
  Mikrofon, Spracherkennung, Whisper-Transkription,
  Agent-Anfrage, Sprachsynthese, Wiedergabe.

Befehle:
  run      - Startet die Gesprächsschleife
  devices  - Listet verfügbare Eingabegeräte
  config   - Verwaltet die Konfiguration
  version  - Zeigt die Version an`,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "Config-Datei (default: ./configs/msw.toml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose Output")
}

func printError(msg string, err error) {
	fmt.Fprintf(os.Stderr, "Fehler: %s: %v\n", msg, err)
}

// loadConfig loads the configuration honoring the --config flag,
// MSW_CONFIG and the default file locations, applies the environment
// variable overrides and configures logging.
func loadConfig() (*config.Config, error) {
	var cfg *config.Config
	var err error
	if cfgFile != "" {
		cfg, err = config.Load(cfgFile)
	} else {
		cfg, err = config.LoadFromEnv()
	}
	if err != nil {
		return nil, err
	}
	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}

	level := logging.ParseLevel(cfg.General.LogLevel)
	if verbose {
		level = logging.LevelDebug
	}
	logging.SetMinLevel(level)
	logging.SetDefault(logging.NewWithConfig(logging.Config{
		Name:   "msw",
		Level:  level.String(),
		Format: cfg.General.LogFormat,
	}))

	return cfg, nil
}
