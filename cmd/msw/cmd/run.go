package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/msto63/mSW/internal/voice/agent"
	"github.com/msto63/mSW/internal/voice/audio"
	"github.com/msto63/mSW/internal/voice/filter"
	"github.com/msto63/mSW/internal/voice/loop"
	"github.com/msto63/mSW/internal/voice/recorder"
	"github.com/msto63/mSW/internal/voice/session"
	"github.com/msto63/mSW/internal/voice/stt"
	"github.com/msto63/mSW/internal/voice/tts"
	"github.com/msto63/mSW/internal/voice/vad"
	"github.com/msto63/mSW/pkg/core/config"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Startet die Gesprächsschleife",
	Long: `Startet die rundenbasierte Gesprächsschleife: zuhören,
transkribieren, den Agenten fragen, die Antwort vorlesen - bis zum
Abbruch mit Ctrl+C.`,
	RunE: runConversation,
}

func init() {
	rootCmd.AddCommand(runCmd)
}

func runConversation(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		printError("Konfiguration laden", err)
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	printBanner(cfg)

	capture, err := audio.NewCapture(audio.CaptureConfig{
		SampleRate:    cfg.Audio.SampleRate,
		FrameDuration: cfg.Audio.FrameDuration.Duration,
		DeviceName:    cfg.Audio.InputDevice,
	})
	if err != nil {
		printError("Audio-Initialisierung", err)
		return err
	}
	defer capture.Close()

	if err := capture.Start(); err != nil {
		printError("Mikrofon öffnen", err)
		return err
	}

	detector, err := vad.NewDetector(vad.Config{
		Engine:            cfg.VAD.Engine,
		SampleRate:        cfg.Audio.SampleRate,
		ThresholdFloor:    cfg.VAD.ThresholdFloor,
		Mode:              cfg.VAD.WebRTCMode,
		SilenceDuration:   cfg.VAD.SilenceDuration.Duration,
		MinSpeechDuration: cfg.VAD.MinSpeechDuration.Duration,
	})
	if err != nil {
		printError("Spracherkennung initialisieren", err)
		return err
	}
	defer detector.Close()

	fmt.Print("🎤 Kalibriere Mikrofon (bitte leise sein)... ")
	ambient, err := capture.ReadFor(ctx, cfg.Audio.CalibrationTime.Duration)
	if err != nil {
		fmt.Println()
		printError("Kalibrierung", err)
		return err
	}
	if err := detector.Calibrate(ambient); err != nil {
		fmt.Println()
		printError("Kalibrierung", err)
		return err
	}
	if energy, ok := detector.(*vad.Energy); ok {
		fmt.Printf("fertig (Schwelle=%.5f)\n", energy.Threshold())
	} else {
		fmt.Println("fertig")
	}

	transcriber, err := stt.NewWhisperCLI(stt.Config{
		Binary:     cfg.STT.Binary,
		Model:      cfg.STT.Model,
		ModelPath:  cfg.STT.ModelPath,
		Language:   cfg.STT.Language,
		SampleRate: cfg.Audio.SampleRate,
		Timeout:    cfg.STT.Timeout.Duration,
	})
	if err != nil {
		printError("Whisper-Initialisierung", err)
		fmt.Println("Bitte laden Sie das Modell herunter:")
		fmt.Printf("  curl -L https://huggingface.co/ggerganov/whisper.cpp/resolve/main/ggml-%s.bin -o models/ggml-%s.bin\n",
			cfg.STT.Model, cfg.STT.Model)
		return err
	}
	defer transcriber.Close()

	fmt.Print("📦 Whisper wird vorbereitet... ")
	if err := transcriber.Prime(ctx); err != nil {
		fmt.Println()
		printError("Whisper-Vorbereitung", err)
		return err
	}
	fmt.Println("fertig")

	denylist := filter.Default()
	if cfg.Filter.DenylistPath != "" {
		denylist, err = filter.Load(cfg.Filter.DenylistPath)
		if err != nil {
			printError("Filterliste laden", err)
			return err
		}
	}

	state := session.New(cfg.Agent.MaxTurns)

	transport, err := agent.NewTransport(agent.Config{
		Transport:    cfg.Agent.Transport,
		Binary:       cfg.Agent.Binary,
		SessionID:    cfg.Agent.SessionID,
		Thinking:     cfg.Agent.Thinking,
		Timeout:      cfg.Agent.Timeout.Duration,
		Grace:        cfg.Agent.Grace.Duration,
		GatewayURL:   cfg.Agent.GatewayURL,
		GatewayToken: cfg.Agent.GatewayToken,
	})
	if err != nil {
		printError("Agent-Anbindung", err)
		return err
	}
	client := agent.NewClient(transport, state, cfg.Agent.MaxReplyChars)

	router := tts.NewRouter(tts.Config{
		ElevenLabs: tts.ElevenLabsConfig{
			APIKey:  cfg.TTS.ElevenLabs.APIKey,
			VoiceID: cfg.TTS.ElevenLabs.VoiceID,
			ModelID: cfg.TTS.ElevenLabs.ModelID,
			Speed:   cfg.TTS.ElevenLabs.Speed,
			BaseURL: cfg.TTS.ElevenLabs.BaseURL,
		},
		OpenAI: tts.OpenAIConfig{
			APIKey:  cfg.TTS.OpenAI.APIKey,
			Voice:   cfg.TTS.OpenAI.Voice,
			Model:   cfg.TTS.OpenAI.Model,
			BaseURL: cfg.TTS.OpenAI.BaseURL,
		},
		Say: tts.SayConfig{
			Voice: cfg.TTS.Say.Voice,
			Rate:  cfg.TTS.Say.Rate,
		},
		RequestTimeout:  cfg.TTS.RequestTimeout.Duration,
		EncodeTimeout:   cfg.TTS.EncodeTimeout.Duration,
		PlaybackTimeout: cfg.TTS.PlaybackTimeout.Duration,
		MinAudioBytes:   cfg.TTS.MinAudioBytes,
	})

	rec := recorder.New(capture, detector, recorder.Config{
		SampleRate:      cfg.Audio.SampleRate,
		SilenceDuration: cfg.VAD.SilenceDuration.Duration,
	})
	rec.SetOnSpeechStart(func() {
		fmt.Println("   Aufnahme läuft...")
	})

	fmt.Println("\n🟢 Bereit! Sprechen Sie los.")

	l := loop.New(loop.Options{
		Recorder:          rec,
		Transcriber:       transcriber,
		Agent:             client,
		Speaker:           router,
		Denylist:          denylist,
		State:             state,
		MinSpeechDuration: cfg.VAD.MinSpeechDuration.Duration,
	})
	l.Run(ctx)

	fmt.Println("\n👋 Auf Wiedersehen!")
	return nil
}

func printBanner(cfg *config.Config) {
	fmt.Printf("meinSPRECHWERK v%s\n", Version)
	fmt.Println("────────────────────────────")
	fmt.Printf("Session:  %s\n", cfg.Agent.SessionID)
	fmt.Printf("Whisper:  %s\n", cfg.STT.Model)
	fmt.Printf("Agent:    %s\n", cfg.Agent.Transport)
	fmt.Printf("TTS:      %s\n", strings.Join(cfg.TTSChain(), ", "))
	if cfg.TTS.ElevenLabs.APIKey != "" && cfg.TTS.ElevenLabs.Speed != 1.0 {
		fmt.Printf("Tempo:    %gx\n", cfg.TTS.ElevenLabs.Speed)
	}
	fmt.Println("Beenden mit Ctrl+C")
}
