package speech

import (
	"context"
	"os/exec"
	"time"

	"go.uber.org/zap"
)

const playTimeout = 5 * time.Second

// ChimeConfig points to an audio player and the sound files it plays.
type ChimeConfig struct {
	Player         string
	CorrectSound   string
	IncorrectSound string
}

// Chime plays a short sound for quiz answers. Playback is fire-and-forget.
// A server has no haptics, so those are only logged.
type Chime struct {
	config ChimeConfig
	path   string
	logger *zap.Logger

	// run starts the player; replaced in tests
	run func(ctx context.Context, path, sound string) error
}

func NewChime(config ChimeConfig, logger *zap.Logger) *Chime {
	c := &Chime{config: config, logger: logger, run: runPlayer}

	if config.Player == "" {
		return c
	}
	path, err := exec.LookPath(config.Player)
	if err != nil {
		logger.Warn("feedback sounds disabled: player not found",
			zap.String("player", config.Player),
			zap.Error(err),
		)
		return c
	}
	c.path = path

	return c
}

func (c *Chime) Correct() {
	c.logger.Debug("haptic feedback", zap.String("kind", "success"))
	c.play(c.config.CorrectSound)
}

func (c *Chime) Incorrect() {
	c.logger.Debug("haptic feedback", zap.String("kind", "error"))
	c.play(c.config.IncorrectSound)
}

func (c *Chime) play(sound string) {
	if c.path == "" || sound == "" {
		return
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), playTimeout)
		defer cancel()

		if err := c.run(ctx, c.path, sound); err != nil {
			c.logger.Debug("failed to play sound",
				zap.String("sound", sound),
				zap.Error(err),
			)
		}
	}()
}

func runPlayer(ctx context.Context, path, sound string) error {
	return exec.CommandContext(ctx, path, sound).Run()
}
