// ============================================================================
// meinSPRECHWERK (mSW) - Lokaler Sprachassistent
// ============================================================================
//
// Package:     config
// Description: TOML configuration with environment variable overrides
// Author:      Mike Stoffels with Claude
// Created:     2026-01-04
// License:     MIT
// ============================================================================

package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/BurntSushi/toml"

	mswerror "github.com/msto63/mSW/pkg/core/error"
)

// Config holds the complete application configuration
type Config struct {
	General GeneralConfig `toml:"general"`
	Audio   AudioConfig   `toml:"audio"`
	VAD     VADConfig     `toml:"vad"`
	STT     STTConfig     `toml:"stt"`
	Agent   AgentConfig   `toml:"agent"`
	TTS     TTSConfig     `toml:"tts"`
	Filter  FilterConfig  `toml:"filter"`
}

// GeneralConfig holds general application settings
type GeneralConfig struct {
	Name      string `toml:"name"`
	LogLevel  string `toml:"log_level"`
	LogFormat string `toml:"log_format"`
}

// AudioConfig holds microphone capture settings
type AudioConfig struct {
	InputDevice     string   `toml:"input_device"`
	SampleRate      int      `toml:"sample_rate"`
	FrameDuration   Duration `toml:"frame_duration"`
	CalibrationTime Duration `toml:"calibration_time"`
}

// VADConfig holds voice activity detection settings
type VADConfig struct {
	Engine            string   `toml:"engine"` // "energy" or "webrtc"
	ThresholdFloor    float64  `toml:"threshold_floor"`
	SilenceDuration   Duration `toml:"silence_duration"`
	MinSpeechDuration Duration `toml:"min_speech_duration"`
	WebRTCMode        int      `toml:"webrtc_mode"` // 0 (permissive) to 3 (aggressive)
}

// STTConfig holds speech-to-text settings
type STTConfig struct {
	Binary    string   `toml:"binary"` // auto-detected when empty
	Model     string   `toml:"model"`
	ModelPath string   `toml:"model_path"`
	Language  string   `toml:"language"`
	Timeout   Duration `toml:"timeout"`
}

// AgentConfig holds conversational agent settings
type AgentConfig struct {
	Transport     string   `toml:"transport"` // "cli" or "gateway"
	Binary        string   `toml:"binary"`
	SessionID     string   `toml:"session_id"`
	Thinking      string   `toml:"thinking"`
	Timeout       Duration `toml:"timeout"`
	Grace         Duration `toml:"grace"`
	MaxTurns      int      `toml:"max_turns"`
	MaxReplyChars int      `toml:"max_reply_chars"`
	GatewayURL    string   `toml:"gateway_url"`
	GatewayToken  string   `toml:"gateway_token"`
}

// TTSConfig holds speech synthesis settings
type TTSConfig struct {
	ElevenLabs      ElevenLabsConfig `toml:"elevenlabs"`
	OpenAI          OpenAIConfig     `toml:"openai"`
	Say             SayConfig        `toml:"say"`
	RequestTimeout  Duration         `toml:"request_timeout"`
	EncodeTimeout   Duration         `toml:"encode_timeout"`
	PlaybackTimeout Duration         `toml:"playback_timeout"`
	MinAudioBytes   int64            `toml:"min_audio_bytes"`
}

// ElevenLabsConfig holds the primary cloud TTS provider settings
type ElevenLabsConfig struct {
	APIKey  string  `toml:"api_key"`
	VoiceID string  `toml:"voice_id"`
	ModelID string  `toml:"model_id"`
	Speed   float64 `toml:"speed"`
	BaseURL string  `toml:"base_url"`
}

// OpenAIConfig holds the secondary cloud TTS provider settings
type OpenAIConfig struct {
	APIKey  string `toml:"api_key"`
	Voice   string `toml:"voice"`
	Model   string `toml:"model"`
	BaseURL string `toml:"base_url"`
}

// SayConfig holds the local speech command settings
type SayConfig struct {
	Voice string `toml:"voice"`
	Rate  int    `toml:"rate"` // words per minute
}

// FilterConfig holds transcript filter settings
type FilterConfig struct {
	DenylistPath string `toml:"denylist_path"`
}

// Duration wraps time.Duration for TOML parsing
type Duration struct {
	time.Duration
}

// UnmarshalText parses a duration string
func (d *Duration) UnmarshalText(text []byte) error {
	var err error
	d.Duration, err = time.ParseDuration(string(text))
	return err
}

// MarshalText formats the duration as a string
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// Default returns a configuration with all defaults applied
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

// Load loads configuration from a TOML file
func Load(path string) (*Config, error) {
	path = os.ExpandEnv(path)

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, mswerror.Newf("config file not found: %s", path).WithCode(mswerror.CodeConfigError)
	}

	var cfg Config
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return nil, mswerror.Wrap(err, "failed to parse config").WithCode(mswerror.CodeInvalidConfig)
	}

	cfg.applyDefaults()
	cfg.expandEnvVars()

	return &cfg, nil
}

// LoadFromEnv loads configuration from the MSW_CONFIG environment
// variable or the default file locations. Without any config file the
// defaults are returned, so the tool runs configured by environment
// variables alone.
func LoadFromEnv() (*Config, error) {
	path := os.Getenv("MSW_CONFIG")
	if path == "" {
		defaultPaths := []string{
			"./configs/msw.toml",
			"./msw.toml",
			filepath.Join(os.Getenv("HOME"), ".config/meinsprechwerk/config.toml"),
		}
		for _, p := range defaultPaths {
			if _, err := os.Stat(p); err == nil {
				path = p
				break
			}
		}
	}

	if path == "" {
		return Default(), nil
	}

	return Load(path)
}

// Save writes the configuration as a TOML file, creating parent
// directories as needed
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return mswerror.Wrap(err, "failed to create config directory").WithCode(mswerror.CodeConfigError)
	}

	f, err := os.Create(path)
	if err != nil {
		return mswerror.Wrap(err, "failed to create config file").WithCode(mswerror.CodeConfigError)
	}
	defer f.Close()

	if err := toml.NewEncoder(f).Encode(c); err != nil {
		return mswerror.Wrap(err, "failed to encode config").WithCode(mswerror.CodeConfigError)
	}
	return nil
}

// applyDefaults sets default values for missing configuration
func (c *Config) applyDefaults() {
	// General
	if c.General.Name == "" {
		c.General.Name = "meinSPRECHWERK"
	}
	if c.General.LogLevel == "" {
		c.General.LogLevel = "info"
	}
	if c.General.LogFormat == "" {
		c.General.LogFormat = "text"
	}

	// Audio
	if c.Audio.InputDevice == "" {
		c.Audio.InputDevice = "default"
	}
	if c.Audio.SampleRate == 0 {
		c.Audio.SampleRate = 16000
	}
	if c.Audio.FrameDuration.Duration == 0 {
		c.Audio.FrameDuration.Duration = 100 * time.Millisecond
	}
	if c.Audio.CalibrationTime.Duration == 0 {
		c.Audio.CalibrationTime.Duration = time.Second
	}

	// VAD
	if c.VAD.Engine == "" {
		c.VAD.Engine = "energy"
	}
	if c.VAD.ThresholdFloor == 0 {
		c.VAD.ThresholdFloor = 0.005
	}
	if c.VAD.SilenceDuration.Duration == 0 {
		c.VAD.SilenceDuration.Duration = 1500 * time.Millisecond
	}
	if c.VAD.MinSpeechDuration.Duration == 0 {
		c.VAD.MinSpeechDuration.Duration = 500 * time.Millisecond
	}
	if c.VAD.WebRTCMode == 0 {
		c.VAD.WebRTCMode = 2
	}

	// STT
	if c.STT.Model == "" {
		c.STT.Model = "tiny"
	}
	if c.STT.Language == "" {
		c.STT.Language = "en"
	}
	if c.STT.Timeout.Duration == 0 {
		c.STT.Timeout.Duration = 60 * time.Second
	}

	// Agent
	if c.Agent.Transport == "" {
		c.Agent.Transport = "cli"
	}
	if c.Agent.Binary == "" {
		c.Agent.Binary = "openclaw"
	}
	if c.Agent.SessionID == "" {
		c.Agent.SessionID = "voice-loop"
	}
	if c.Agent.Thinking == "" {
		c.Agent.Thinking = "low"
	}
	if c.Agent.Timeout.Duration == 0 {
		c.Agent.Timeout.Duration = 60 * time.Second
	}
	if c.Agent.Grace.Duration == 0 {
		c.Agent.Grace.Duration = 10 * time.Second
	}
	if c.Agent.MaxTurns == 0 {
		c.Agent.MaxTurns = 50
	}
	if c.Agent.MaxReplyChars == 0 {
		c.Agent.MaxReplyChars = 500
	}

	// TTS
	if c.TTS.ElevenLabs.VoiceID == "" {
		c.TTS.ElevenLabs.VoiceID = "21m00Tcm4TlvDq8ikWAM" // Rachel
	}
	if c.TTS.ElevenLabs.ModelID == "" {
		c.TTS.ElevenLabs.ModelID = "eleven_turbo_v2_5"
	}
	if c.TTS.ElevenLabs.Speed == 0 {
		c.TTS.ElevenLabs.Speed = 1.0
	}
	if c.TTS.ElevenLabs.BaseURL == "" {
		c.TTS.ElevenLabs.BaseURL = "https://api.elevenlabs.io"
	}
	if c.TTS.OpenAI.Voice == "" {
		c.TTS.OpenAI.Voice = "alloy"
	}
	if c.TTS.OpenAI.Model == "" {
		c.TTS.OpenAI.Model = "tts-1"
	}
	if c.TTS.OpenAI.BaseURL == "" {
		c.TTS.OpenAI.BaseURL = "https://api.openai.com"
	}
	if c.TTS.Say.Rate == 0 {
		c.TTS.Say.Rate = 350
	}
	if c.TTS.RequestTimeout.Duration == 0 {
		c.TTS.RequestTimeout.Duration = 30 * time.Second
	}
	if c.TTS.EncodeTimeout.Duration == 0 {
		c.TTS.EncodeTimeout.Duration = 15 * time.Second
	}
	if c.TTS.PlaybackTimeout.Duration == 0 {
		c.TTS.PlaybackTimeout.Duration = 60 * time.Second
	}
	if c.TTS.MinAudioBytes == 0 {
		c.TTS.MinAudioBytes = 1000
	}
}

// expandEnvVars expands environment variables in configuration values
func (c *Config) expandEnvVars() {
	c.Agent.GatewayURL = os.ExpandEnv(c.Agent.GatewayURL)
	c.Agent.GatewayToken = os.ExpandEnv(c.Agent.GatewayToken)
	c.TTS.ElevenLabs.APIKey = os.ExpandEnv(c.TTS.ElevenLabs.APIKey)
	c.TTS.OpenAI.APIKey = os.ExpandEnv(c.TTS.OpenAI.APIKey)
	c.STT.ModelPath = os.ExpandEnv(c.STT.ModelPath)
	c.Filter.DenylistPath = os.ExpandEnv(c.Filter.DenylistPath)
}

// ApplyEnv applies the environment variable surface on top of the
// loaded configuration. Variables win over file values. Read once at
// startup, no live reconfiguration.
func (c *Config) ApplyEnv() error {
	if v := os.Getenv("OPENCLAW_GATEWAY_URL"); v != "" {
		c.Agent.GatewayURL = v
	}
	if v := os.Getenv("OPENCLAW_GATEWAY_TOKEN"); v != "" {
		c.Agent.GatewayToken = v
	}
	if v := os.Getenv("ELEVENLABS_API_KEY"); v != "" {
		c.TTS.ElevenLabs.APIKey = v
	}
	if v := os.Getenv("ELEVENLABS_VOICE_ID"); v != "" {
		c.TTS.ElevenLabs.VoiceID = v
	}
	if v := os.Getenv("ELEVENLABS_SPEED"); v != "" {
		speed, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return mswerror.Newf("invalid ELEVENLABS_SPEED: %q", v).WithCode(mswerror.CodeInvalidConfig)
		}
		c.TTS.ElevenLabs.Speed = speed
	}
	if v := os.Getenv("OPENAI_API_KEY"); v != "" {
		c.TTS.OpenAI.APIKey = v
	}
	if v := os.Getenv("OPENAI_VOICE"); v != "" {
		c.TTS.OpenAI.Voice = v
	}
	if v := os.Getenv("WHISPER_MODEL"); v != "" {
		c.STT.Model = v
	}
	if v := os.Getenv("VOICE_SESSION_ID"); v != "" {
		c.Agent.SessionID = v
	}
	if v := os.Getenv("AGENT_TIMEOUT"); v != "" {
		secs, err := strconv.Atoi(v)
		if err != nil {
			return mswerror.Newf("invalid AGENT_TIMEOUT: %q", v).WithCode(mswerror.CodeInvalidConfig)
		}
		c.Agent.Timeout.Duration = time.Duration(secs) * time.Second
	}
	if v := os.Getenv("SAY_RATE"); v != "" {
		rate, err := strconv.Atoi(v)
		if err != nil {
			return mswerror.Newf("invalid SAY_RATE: %q", v).WithCode(mswerror.CodeInvalidConfig)
		}
		c.TTS.Say.Rate = rate
	}
	if v := os.Getenv("MAX_TURNS"); v != "" {
		turns, err := strconv.Atoi(v)
		if err != nil {
			return mswerror.Newf("invalid MAX_TURNS: %q", v).WithCode(mswerror.CodeInvalidConfig)
		}
		c.Agent.MaxTurns = turns
	}
	return nil
}

// TTSChain returns the synthesis backend names in priority order,
// derived from the configured credentials
func (c *Config) TTSChain() []string {
	var chain []string
	if c.TTS.ElevenLabs.APIKey != "" {
		chain = append(chain, "elevenlabs")
	} else if c.TTS.OpenAI.APIKey != "" {
		chain = append(chain, "openai")
	}
	chain = append(chain, "say")
	return chain
}

// String implements fmt.Stringer for startup logging, redacting keys
func (c *Config) String() string {
	return fmt.Sprintf("session=%s whisper=%s vad=%s tts=%v",
		c.Agent.SessionID, c.STT.Model, c.VAD.Engine, c.TTSChain())
}
