package notify

import (
	"context"
	"os"
	"os/exec"
	"runtime"

	"github.com/pkg/errors"

	"github.com/vadiminshakov/coinwatch/internal/domain"
)

// CommandRunner runs an external program and waits for it.
type CommandRunner func(ctx context.Context, name string, args ...string) error

func execRunner(ctx context.Context, name string, args ...string) error {
	return exec.CommandContext(ctx, name, args...).Run()
}

// SoundNotifier plays the rule's sound file with the platform audio player.
// Rules without a sound, or whose file is gone, are skipped.
type SoundNotifier struct {
	run  CommandRunner
	goos string
}

func NewSoundNotifier() *SoundNotifier {
	return &SoundNotifier{run: execRunner, goos: runtime.GOOS}
}

// WithRunner replaces process execution, used in tests.
func (n *SoundNotifier) WithRunner(run CommandRunner, goos string) *SoundNotifier {
	n.run = run
	n.goos = goos
	return n
}

func (n *SoundNotifier) Notify(ctx context.Context, fired domain.FiredAlarm) error {
	path := fired.Rule.Sound
	if path == "" {
		return nil
	}
	if info, err := os.Stat(path); err != nil || info.IsDir() {
		return nil
	}

	name, args := playerCommand(n.goos, path)
	if err := n.run(ctx, name, args...); err != nil {
		return errors.Wrapf(err, "failed to play %s", path)
	}
	return nil
}

func playerCommand(goos, path string) (string, []string) {
	switch goos {
	case "darwin":
		return "afplay", []string{path}
	case "windows":
		return "powershell", []string{"-c", "(New-Object Media.SoundPlayer '" + path + "').PlaySync()"}
	default:
		return "aplay", []string{"-q", path}
	}
}
