package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDuration_UnmarshalText(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected time.Duration
		wantErr  bool
	}{
		{"seconds", "30s", 30 * time.Second, false},
		{"milliseconds", "1500ms", 1500 * time.Millisecond, false},
		{"fraction", "1.5s", 1500 * time.Millisecond, false},
		{"minutes", "2m", 2 * time.Minute, false},
		{"invalid", "invalid", 0, true},
		{"empty", "", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var d Duration
			err := d.UnmarshalText([]byte(tt.input))

			if (err != nil) != tt.wantErr {
				t.Errorf("UnmarshalText() error = %v, wantErr %v", err, tt.wantErr)
				return
			}

			if !tt.wantErr && d.Duration != tt.expected {
				t.Errorf("UnmarshalText() = %v, want %v", d.Duration, tt.expected)
			}
		})
	}
}

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Audio.SampleRate != 16000 {
		t.Errorf("SampleRate = %d, want 16000", cfg.Audio.SampleRate)
	}
	if cfg.Audio.FrameDuration.Duration != 100*time.Millisecond {
		t.Errorf("FrameDuration = %v, want 100ms", cfg.Audio.FrameDuration.Duration)
	}
	if cfg.VAD.Engine != "energy" {
		t.Errorf("VAD.Engine = %q, want energy", cfg.VAD.Engine)
	}
	if cfg.VAD.ThresholdFloor != 0.005 {
		t.Errorf("ThresholdFloor = %v, want 0.005", cfg.VAD.ThresholdFloor)
	}
	if cfg.VAD.SilenceDuration.Duration != 1500*time.Millisecond {
		t.Errorf("SilenceDuration = %v, want 1.5s", cfg.VAD.SilenceDuration.Duration)
	}
	if cfg.VAD.MinSpeechDuration.Duration != 500*time.Millisecond {
		t.Errorf("MinSpeechDuration = %v, want 500ms", cfg.VAD.MinSpeechDuration.Duration)
	}
	if cfg.STT.Model != "tiny" {
		t.Errorf("STT.Model = %q, want tiny", cfg.STT.Model)
	}
	if cfg.Agent.SessionID != "voice-loop" {
		t.Errorf("SessionID = %q, want voice-loop", cfg.Agent.SessionID)
	}
	if cfg.Agent.Timeout.Duration != 60*time.Second {
		t.Errorf("Agent.Timeout = %v, want 60s", cfg.Agent.Timeout.Duration)
	}
	if cfg.Agent.Grace.Duration != 10*time.Second {
		t.Errorf("Agent.Grace = %v, want 10s", cfg.Agent.Grace.Duration)
	}
	if cfg.Agent.MaxTurns != 50 {
		t.Errorf("MaxTurns = %d, want 50", cfg.Agent.MaxTurns)
	}
	if cfg.Agent.MaxReplyChars != 500 {
		t.Errorf("MaxReplyChars = %d, want 500", cfg.Agent.MaxReplyChars)
	}
	if cfg.TTS.ElevenLabs.VoiceID != "21m00Tcm4TlvDq8ikWAM" {
		t.Errorf("VoiceID = %q", cfg.TTS.ElevenLabs.VoiceID)
	}
	if cfg.TTS.ElevenLabs.Speed != 1.0 {
		t.Errorf("Speed = %v, want 1.0", cfg.TTS.ElevenLabs.Speed)
	}
	if cfg.TTS.OpenAI.Voice != "alloy" {
		t.Errorf("OpenAI.Voice = %q, want alloy", cfg.TTS.OpenAI.Voice)
	}
	if cfg.TTS.Say.Rate != 350 {
		t.Errorf("Say.Rate = %d, want 350", cfg.TTS.Say.Rate)
	}
	if cfg.TTS.MinAudioBytes != 1000 {
		t.Errorf("MinAudioBytes = %d, want 1000", cfg.TTS.MinAudioBytes)
	}
	if cfg.TTS.PlaybackTimeout.Duration != 60*time.Second {
		t.Errorf("PlaybackTimeout = %v, want 60s", cfg.TTS.PlaybackTimeout.Duration)
	}
}

func TestLoad_FileNotFound(t *testing.T) {
	_, err := Load("/nonexistent/path/msw.toml")
	if err == nil {
		t.Error("Load() should fail for missing file")
	}
}

func TestLoad_ValidConfig(t *testing.T) {
	content := `
[general]
log_level = "debug"

[audio]
input_device = "USB Microphone"
sample_rate = 16000

[vad]
engine = "webrtc"
silence_duration = "2s"

[agent]
session_id = "kitchen"
timeout = "90s"
max_turns = 10

[tts.elevenlabs]
api_key = "test-key"
speed = 1.25
`
	path := filepath.Join(t.TempDir(), "msw.toml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.General.LogLevel != "debug" {
		t.Errorf("LogLevel = %q, want debug", cfg.General.LogLevel)
	}
	if cfg.Audio.InputDevice != "USB Microphone" {
		t.Errorf("InputDevice = %q", cfg.Audio.InputDevice)
	}
	if cfg.VAD.Engine != "webrtc" {
		t.Errorf("VAD.Engine = %q, want webrtc", cfg.VAD.Engine)
	}
	if cfg.VAD.SilenceDuration.Duration != 2*time.Second {
		t.Errorf("SilenceDuration = %v, want 2s", cfg.VAD.SilenceDuration.Duration)
	}
	if cfg.Agent.SessionID != "kitchen" {
		t.Errorf("SessionID = %q, want kitchen", cfg.Agent.SessionID)
	}
	if cfg.Agent.MaxTurns != 10 {
		t.Errorf("MaxTurns = %d, want 10", cfg.Agent.MaxTurns)
	}
	if cfg.TTS.ElevenLabs.APIKey != "test-key" {
		t.Errorf("APIKey = %q", cfg.TTS.ElevenLabs.APIKey)
	}
	if cfg.TTS.ElevenLabs.Speed != 1.25 {
		t.Errorf("Speed = %v, want 1.25", cfg.TTS.ElevenLabs.Speed)
	}

	// Unset fields still get defaults
	if cfg.Agent.Binary != "openclaw" {
		t.Errorf("Binary = %q, want openclaw", cfg.Agent.Binary)
	}
	if cfg.Audio.FrameDuration.Duration != 100*time.Millisecond {
		t.Errorf("FrameDuration = %v, want 100ms", cfg.Audio.FrameDuration.Duration)
	}
}

func TestConfig_expandEnvVars(t *testing.T) {
	t.Setenv("MSW_TEST_KEY", "secret-value")

	cfg := Default()
	cfg.TTS.ElevenLabs.APIKey = "${MSW_TEST_KEY}"
	cfg.expandEnvVars()

	if cfg.TTS.ElevenLabs.APIKey != "secret-value" {
		t.Errorf("APIKey = %q, want secret-value", cfg.TTS.ElevenLabs.APIKey)
	}
}

func TestConfig_ApplyEnv(t *testing.T) {
	t.Setenv("ELEVENLABS_API_KEY", "el-key")
	t.Setenv("ELEVENLABS_VOICE_ID", "custom-voice")
	t.Setenv("ELEVENLABS_SPEED", "1.5")
	t.Setenv("OPENAI_API_KEY", "oa-key")
	t.Setenv("OPENAI_VOICE", "nova")
	t.Setenv("WHISPER_MODEL", "base")
	t.Setenv("VOICE_SESSION_ID", "office")
	t.Setenv("AGENT_TIMEOUT", "90")
	t.Setenv("SAY_RATE", "280")
	t.Setenv("MAX_TURNS", "25")
	t.Setenv("OPENCLAW_GATEWAY_URL", "ws://gw:18789")
	t.Setenv("OPENCLAW_GATEWAY_TOKEN", "tok")

	cfg := Default()
	if err := cfg.ApplyEnv(); err != nil {
		t.Fatalf("ApplyEnv() error = %v", err)
	}

	if cfg.TTS.ElevenLabs.APIKey != "el-key" {
		t.Errorf("APIKey = %q", cfg.TTS.ElevenLabs.APIKey)
	}
	if cfg.TTS.ElevenLabs.VoiceID != "custom-voice" {
		t.Errorf("VoiceID = %q", cfg.TTS.ElevenLabs.VoiceID)
	}
	if cfg.TTS.ElevenLabs.Speed != 1.5 {
		t.Errorf("Speed = %v, want 1.5", cfg.TTS.ElevenLabs.Speed)
	}
	if cfg.TTS.OpenAI.Voice != "nova" {
		t.Errorf("OpenAI.Voice = %q, want nova", cfg.TTS.OpenAI.Voice)
	}
	if cfg.STT.Model != "base" {
		t.Errorf("STT.Model = %q, want base", cfg.STT.Model)
	}
	if cfg.Agent.SessionID != "office" {
		t.Errorf("SessionID = %q, want office", cfg.Agent.SessionID)
	}
	if cfg.Agent.Timeout.Duration != 90*time.Second {
		t.Errorf("Timeout = %v, want 90s", cfg.Agent.Timeout.Duration)
	}
	if cfg.TTS.Say.Rate != 280 {
		t.Errorf("Say.Rate = %d, want 280", cfg.TTS.Say.Rate)
	}
	if cfg.Agent.MaxTurns != 25 {
		t.Errorf("MaxTurns = %d, want 25", cfg.Agent.MaxTurns)
	}
	if cfg.Agent.GatewayURL != "ws://gw:18789" {
		t.Errorf("GatewayURL = %q", cfg.Agent.GatewayURL)
	}
	if cfg.Agent.GatewayToken != "tok" {
		t.Errorf("GatewayToken = %q", cfg.Agent.GatewayToken)
	}
}

func TestConfig_ApplyEnvInvalidNumbers(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{"bad timeout", "AGENT_TIMEOUT", "soon"},
		{"bad speed", "ELEVENLABS_SPEED", "fast"},
		{"bad rate", "SAY_RATE", "quick"},
		{"bad turns", "MAX_TURNS", "many"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)

			cfg := Default()
			if err := cfg.ApplyEnv(); err == nil {
				t.Errorf("ApplyEnv() should fail for %s=%q", tt.key, tt.value)
			}
		})
	}
}

func TestConfig_TTSChain(t *testing.T) {
	tests := []struct {
		name       string
		elevenKey  string
		openaiKey  string
		wantChain  []string
	}{
		{"elevenlabs wins", "el", "oa", []string{"elevenlabs", "say"}},
		{"openai second", "", "oa", []string{"openai", "say"}},
		{"say only", "", "", []string{"say"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			cfg.TTS.ElevenLabs.APIKey = tt.elevenKey
			cfg.TTS.OpenAI.APIKey = tt.openaiKey

			chain := cfg.TTSChain()
			if len(chain) != len(tt.wantChain) {
				t.Fatalf("TTSChain() = %v, want %v", chain, tt.wantChain)
			}
			for i := range chain {
				if chain[i] != tt.wantChain[i] {
					t.Errorf("TTSChain()[%d] = %q, want %q", i, chain[i], tt.wantChain[i])
				}
			}
		})
	}
}

func TestConfig_SaveAndReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "msw.toml")

	cfg := Default()
	cfg.Agent.SessionID = "saved-session"
	cfg.VAD.Engine = "webrtc"

	if err := cfg.Save(path); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if loaded.Agent.SessionID != "saved-session" {
		t.Errorf("SessionID = %q, want saved-session", loaded.Agent.SessionID)
	}
	if loaded.VAD.Engine != "webrtc" {
		t.Errorf("VAD.Engine = %q, want webrtc", loaded.VAD.Engine)
	}
}

func TestLoadFromEnv_NoConfigReturnsDefaults(t *testing.T) {
	t.Setenv("MSW_CONFIG", "")
	t.Setenv("HOME", t.TempDir())

	cwd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(t.TempDir()); err != nil {
		t.Fatal(err)
	}
	defer os.Chdir(cwd)

	cfg, err := LoadFromEnv()
	if err != nil {
		t.Fatalf("LoadFromEnv() error = %v", err)
	}
	if cfg.Agent.SessionID != "voice-loop" {
		t.Errorf("SessionID = %q, want default voice-loop", cfg.Agent.SessionID)
	}
}
