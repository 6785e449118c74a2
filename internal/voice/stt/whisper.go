// ============================================================================
// meinSPRECHWERK (mSW) - Lokaler Sprachassistent
// ============================================================================
//
// Package:     stt
// Description: Whisper transcription via whisper.cpp CLI
// Author:      Mike Stoffels with Claude
// Created:     2026-01-04
// License:     MIT
// ============================================================================

package stt

import (
	"bytes"
	"context"
	"encoding/binary"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/msto63/mSW/internal/voice/audio"
	mswerror "github.com/msto63/mSW/pkg/core/error"
	"github.com/msto63/mSW/pkg/core/logging"
)

// primeDuration is the length of the silent clip used to warm the
// engine at startup.
const primeDuration = time.Second

// WhisperCLI transcribes clips with a whisper.cpp-style command line
// binary. Each clip is written to a scoped temp WAV, transcribed
// synchronously, and the temp file removed on every path.
type WhisperCLI struct {
	binaryPath string
	modelPath  string
	language   string
	sampleRate int
	timeout    time.Duration
	tempDir    string
	logger     *logging.Logger
}

// NewWhisperCLI creates a whisper transcriber. The binary and model
// are resolved once here so a broken install fails at startup, not on
// the first utterance.
func NewWhisperCLI(cfg Config) (*WhisperCLI, error) {
	binaryPath := cfg.Binary
	if binaryPath == "" {
		binaryPath = findWhisperBinary()
	}
	if binaryPath == "" {
		return nil, mswerror.New("whisper binary not found, install whisper-cpp or set stt.binary").
			WithCode(mswerror.CodeTranscribe).
			WithOperation("stt.NewWhisperCLI")
	}
	if _, err := os.Stat(binaryPath); err != nil {
		return nil, mswerror.Wrapf(err, "whisper binary not usable: %s", binaryPath).
			WithCode(mswerror.CodeTranscribe).
			WithOperation("stt.NewWhisperCLI")
	}

	modelPath := cfg.ModelPath
	if modelPath == "" {
		modelPath = findModelFile(cfg.Model)
	}
	if modelPath == "" {
		return nil, mswerror.Newf("whisper model %q not found, set stt.model_path", cfg.Model).
			WithCode(mswerror.CodeTranscribe).
			WithOperation("stt.NewWhisperCLI")
	}
	if _, err := os.Stat(modelPath); err != nil {
		return nil, mswerror.Wrapf(err, "model file not usable: %s", modelPath).
			WithCode(mswerror.CodeTranscribe).
			WithOperation("stt.NewWhisperCLI")
	}

	tempDir, err := os.MkdirTemp("", "msw-stt-")
	if err != nil {
		return nil, mswerror.Wrap(err, "failed to create temp directory").
			WithCode(mswerror.CodeTranscribe).
			WithOperation("stt.NewWhisperCLI")
	}

	language := cfg.Language
	if language == "" {
		language = DefaultConfig().Language
	}
	sampleRate := cfg.SampleRate
	if sampleRate <= 0 {
		sampleRate = DefaultConfig().SampleRate
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultConfig().Timeout
	}

	return &WhisperCLI{
		binaryPath: binaryPath,
		modelPath:  modelPath,
		language:   language,
		sampleRate: sampleRate,
		timeout:    timeout,
		tempDir:    tempDir,
		logger:     logging.New("stt"),
	}, nil
}

// findWhisperBinary searches PATH and common install locations.
func findWhisperBinary() string {
	if path, err := exec.LookPath("whisper-cli"); err == nil {
		return path
	}
	if path, err := exec.LookPath("whisper"); err == nil {
		return path
	}

	locations := []string{
		"/opt/homebrew/bin/whisper-cli",
		"/opt/homebrew/bin/whisper",
		"/usr/local/bin/whisper-cli",
		"/usr/local/bin/whisper",
		"/usr/bin/whisper-cli",
		"/usr/bin/whisper",
	}
	for _, loc := range locations {
		if _, err := os.Stat(loc); err == nil {
			return loc
		}
	}
	return ""
}

// findModelFile resolves a model name to a ggml model file in common
// locations.
func findModelFile(model string) string {
	if model == "" {
		return ""
	}
	file := fmt.Sprintf("ggml-%s.bin", model)

	home, _ := os.UserHomeDir()
	locations := []string{
		filepath.Join("models", file),
		filepath.Join(home, ".local", "share", "meinsprechwerk", "models", file),
		filepath.Join(home, ".cache", "whisper", file),
		filepath.Join("/opt/homebrew/share/whisper-cpp/models", file),
		filepath.Join("/usr/local/share/whisper-cpp/models", file),
	}
	for _, loc := range locations {
		if _, err := os.Stat(loc); err == nil {
			return loc
		}
	}
	return ""
}

// Transcribe writes the clip to a temp WAV and runs the whisper
// binary on it.
func (w *WhisperCLI) Transcribe(ctx context.Context, clip *audio.Clip) (string, error) {
	if clip == nil || clip.Empty() {
		return "", nil
	}

	wavPath := filepath.Join(w.tempDir, fmt.Sprintf("utterance_%d.wav", time.Now().UnixNano()))
	if err := writeWAV(wavPath, clip.Samples, clip.SampleRate); err != nil {
		return "", mswerror.Wrap(err, "failed to write WAV file").
			WithCode(mswerror.CodeTranscribe).
			WithOperation("stt.Transcribe")
	}
	defer os.Remove(wavPath)

	runCtx, cancel := context.WithTimeout(ctx, w.timeout)
	defer cancel()

	args := []string{
		"-m", w.modelPath,
		"-l", w.language,
		"-np",
		wavPath,
	}
	cmd := exec.CommandContext(runCtx, w.binaryPath, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	start := time.Now()
	if err := cmd.Run(); err != nil {
		return "", mswerror.Wrapf(err, "whisper failed: %s", firstLine(stderr.String())).
			WithCode(mswerror.CodeTranscribe).
			WithOperation("stt.Transcribe")
	}

	text := cleanTranscript(stdout.String())
	w.logger.Debug("transcription complete",
		"chars", len(text),
		"audio", clip.Duration(),
		"took", time.Since(start).Round(time.Millisecond))
	return text, nil
}

// Prime transcribes one second of silence so the model is loaded and
// cached before the first real utterance.
func (w *WhisperCLI) Prime(ctx context.Context) error {
	clip := audio.NewClip(w.sampleRate)
	clip.Append(make([]float32, int(float64(w.sampleRate)*primeDuration.Seconds())))

	if _, err := w.Transcribe(ctx, clip); err != nil {
		return mswerror.Wrap(err, "priming run failed").
			WithCode(mswerror.CodeTranscribe).
			WithOperation("stt.Prime")
	}
	return nil
}

// Close removes the temp directory.
func (w *WhisperCLI) Close() error {
	if w.tempDir != "" {
		os.RemoveAll(w.tempDir)
	}
	return nil
}

// Language returns the configured language hint.
func (w *WhisperCLI) Language() string {
	return w.language
}

// cleanTranscript strips timestamp furniture from whisper output and
// joins the remaining lines.
// Lines look like "[00:00:00.000 --> 00:00:05.000]   text".
func cleanTranscript(raw string) string {
	lines := strings.Split(raw, "\n")
	clean := make([]string, 0, len(lines))
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if strings.HasPrefix(line, "[") && strings.Contains(line, "-->") {
			if idx := strings.Index(line, "]"); idx != -1 {
				line = strings.TrimSpace(line[idx+1:])
			}
		}
		if line != "" {
			clean = append(clean, line)
		}
	}
	return strings.Join(clean, " ")
}

// firstLine trims stderr noise down to the part worth logging.
func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if idx := strings.IndexByte(s, '\n'); idx != -1 {
		s = s[:idx]
	}
	return s
}

// writeWAV writes float32 samples as a 16-bit PCM mono WAV file.
func writeWAV(path string, samples []float32, sampleRate int) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	pcm := make([]int16, len(samples))
	for i, s := range samples {
		if s > 1.0 {
			s = 1.0
		}
		if s < -1.0 {
			s = -1.0
		}
		pcm[i] = int16(s * 32767)
	}

	numChannels := uint16(1)
	bitsPerSample := uint16(16)
	byteRate := uint32(sampleRate) * uint32(numChannels) * uint32(bitsPerSample) / 8
	blockAlign := numChannels * bitsPerSample / 8
	dataSize := uint32(len(pcm) * 2)

	f.Write([]byte("RIFF"))
	binary.Write(f, binary.LittleEndian, uint32(36+dataSize))
	f.Write([]byte("WAVE"))

	f.Write([]byte("fmt "))
	binary.Write(f, binary.LittleEndian, uint32(16))
	binary.Write(f, binary.LittleEndian, uint16(1))
	binary.Write(f, binary.LittleEndian, numChannels)
	binary.Write(f, binary.LittleEndian, uint32(sampleRate))
	binary.Write(f, binary.LittleEndian, byteRate)
	binary.Write(f, binary.LittleEndian, blockAlign)
	binary.Write(f, binary.LittleEndian, bitsPerSample)

	f.Write([]byte("data"))
	binary.Write(f, binary.LittleEndian, dataSize)

	return binary.Write(f, binary.LittleEndian, pcm)
}
