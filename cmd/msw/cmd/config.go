package cmd

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
	"github.com/spf13/cobra"

	"github.com/msto63/mSW/pkg/core/config"
	mswerror "github.com/msto63/mSW/pkg/core/error"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Verwaltet die Konfiguration",
}

var configInitCmd = &cobra.Command{
	Use:   "init [pfad]",
	Short: "Erzeugt eine Konfigurationsdatei mit Standardwerten",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := "./configs/msw.toml"
		if cfgFile != "" {
			path = cfgFile
		}
		if len(args) > 0 {
			path = args[0]
		}

		if _, err := os.Stat(path); err == nil {
			err := mswerror.Newf("config file already exists: %s", path).
				WithCode(mswerror.CodeConfigError)
			printError("Konfiguration erzeugen", err)
			return err
		}

		if err := config.Default().Save(path); err != nil {
			printError("Konfiguration speichern", err)
			return err
		}

		fmt.Printf("Konfiguration erzeugt: %s\n", path)
		fmt.Println("API-Schlüssel können als ${VAR} eingetragen oder per Umgebungsvariable gesetzt werden.")
		return nil
	},
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Zeigt die wirksame Konfiguration an",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			printError("Konfiguration laden", err)
			return err
		}

		// Secrets stay out of the terminal.
		shown := *cfg
		if shown.TTS.ElevenLabs.APIKey != "" {
			shown.TTS.ElevenLabs.APIKey = "***"
		}
		if shown.TTS.OpenAI.APIKey != "" {
			shown.TTS.OpenAI.APIKey = "***"
		}
		if shown.Agent.GatewayToken != "" {
			shown.Agent.GatewayToken = "***"
		}

		enc := toml.NewEncoder(os.Stdout)
		enc.Indent = "  "
		if err := enc.Encode(shown); err != nil {
			printError("Konfiguration ausgeben", err)
			return err
		}
		return nil
	},
}

func init() {
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configShowCmd)
	rootCmd.AddCommand(configCmd)
}
