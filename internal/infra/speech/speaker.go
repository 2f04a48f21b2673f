// Package speech pronounces words and plays answer feedback through
// external commands (a TTS engine and an audio player).
package speech

import (
	"context"
	"os/exec"
	"strconv"
	"strings"
	"sync"

	"go.uber.org/zap"
)

// Placeholders expanded in command arguments.
const (
	placeholderText  = "{text}"
	placeholderVoice = "{voice}"
	placeholderRate  = "{rate}"
)

// DefaultArgs fits espeak and espeak-ng.
var DefaultArgs = []string{"-v", placeholderVoice, "-s", placeholderRate, placeholderText}

// Config holds the TTS command configuration.
type Config struct {
	// Command is the TTS executable, e.g. "espeak"
	Command string
	// Args may contain {text}, {voice} and {rate}; DefaultArgs when empty
	Args  []string
	Voice string
	// Rate is in words per minute
	Rate int
}

// Speaker pronounces text with a fixed voice and rate.
// A new utterance interrupts the one in progress.
type Speaker struct {
	config Config
	path   string
	logger *zap.Logger

	mu     sync.Mutex
	cancel context.CancelFunc
}

// NewSpeaker resolves the TTS command. If it is not installed the speaker
// stays silent.
func NewSpeaker(config Config, logger *zap.Logger) *Speaker {
	if len(config.Args) == 0 {
		config.Args = DefaultArgs
	}

	s := &Speaker{config: config, logger: logger}

	if config.Command == "" {
		logger.Info("speech disabled: no command configured")
		return s
	}

	path, err := exec.LookPath(config.Command)
	if err != nil {
		logger.Warn("speech disabled: command not found",
			zap.String("command", config.Command),
			zap.Error(err),
		)
		return s
	}
	s.path = path

	return s
}

// Enabled reports whether a TTS command is available.
func (s *Speaker) Enabled() bool {
	return s.path != ""
}

// Speak starts pronouncing text and returns immediately.
func (s *Speaker) Speak(text string) {
	s.speak(text)
}

// Stop interrupts the current utterance.
func (s *Speaker) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
}

// speak returns a channel that receives the command result.
func (s *Speaker) speak(text string) <-chan error {
	done := make(chan error, 1)

	text = strings.TrimSpace(text)
	if !s.Enabled() || text == "" {
		done <- nil
		return done
	}

	s.mu.Lock()
	if s.cancel != nil {
		s.cancel()
	}
	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	s.mu.Unlock()

	cmd := exec.CommandContext(ctx, s.path, s.args(text)...)
	if err := cmd.Start(); err != nil {
		cancel()
		s.logger.Error("failed to start speech", zap.Error(err))
		done <- err
		return done
	}

	go func() {
		err := cmd.Wait()
		if err != nil && ctx.Err() == nil {
			s.logger.Warn("speech command failed", zap.Error(err))
		}
		cancel()
		done <- err
	}()

	return done
}

func (s *Speaker) args(text string) []string {
	r := strings.NewReplacer(
		placeholderVoice, s.config.Voice,
		placeholderRate, strconv.Itoa(s.config.Rate),
	)

	args := make([]string, 0, len(s.config.Args))
	for _, a := range s.config.Args {
		if a == placeholderText {
			args = append(args, text)
			continue
		}
		args = append(args, r.Replace(a))
	}
	return args
}
