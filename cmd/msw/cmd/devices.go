package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/msto63/mSW/internal/voice/audio"
)

var devicesCmd = &cobra.Command{
	Use:   "devices",
	Short: "Listet verfügbare Audio-Eingabegeräte",
	RunE: func(cmd *cobra.Command, args []string) error {
		devices, err := audio.ListInputDevices()
		if err != nil {
			printError("Geräte auflisten", err)
			return err
		}

		if len(devices) == 0 {
			fmt.Println("Keine Eingabegeräte gefunden.")
			return nil
		}

		fmt.Println("Verfügbare Eingabegeräte:")
		fmt.Println("-------------------------")
		for _, dev := range devices {
			marker := "   "
			if dev.IsDefault {
				marker = "[*]"
			}
			fmt.Printf("  %s %-35s %d Kanal/Kanäle, %.0f Hz\n",
				marker, dev.Name, dev.MaxInputChannels, dev.DefaultSampleRate)
		}
		fmt.Println()
		fmt.Println("[*] = Standard-Eingabegerät")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(devicesCmd)
}
