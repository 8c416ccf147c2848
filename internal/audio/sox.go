package audio

import (
	"fmt"
	"os"
	"os/exec"
)

// SoxPlayer plays clips with the sox `play` command.
type SoxPlayer struct{}

// Play runs `play -q <path>` and waits for it to finish.
// A missing or unreadable clip is reported before spawning anything.
func (SoxPlayer) Play(path string) error {
	if _, err := os.Stat(path); err != nil {
		return fmt.Errorf("audio clip: %w", err)
	}
	cmd := exec.Command("play", "-q", path)
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("play %s: %w", path, err)
	}
	return nil
}

// SoxRecorder captures with the sox `rec` command, mono at 8kHz.
type SoxRecorder struct{}

// Start spawns `rec` writing to path and returns a handle to stop it.
func (SoxRecorder) Start(path string) (Capture, error) {
	cmd := exec.Command("rec", "-q", "-c", "1", "-r", "8000", path)
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("start rec: %w", err)
	}
	return &soxCapture{cmd: cmd}, nil
}

// Delete removes a recording file.
func (SoxRecorder) Delete(path string) error {
	if err := os.Remove(path); err != nil {
		return fmt.Errorf("delete recording: %w", err)
	}
	return nil
}

type soxCapture struct {
	cmd *exec.Cmd
}

// Stop interrupts rec so it finalizes the WAV header, then reaps it.
func (c *soxCapture) Stop() error {
	if err := c.cmd.Process.Signal(os.Interrupt); err != nil {
		c.cmd.Process.Kill()
		c.cmd.Wait()
		return fmt.Errorf("stop rec: %w", err)
	}
	// rec exits non-zero on SIGINT; that is its normal stop path.
	c.cmd.Wait()
	return nil
}
