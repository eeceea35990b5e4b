package detect

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/verte-zerg/speakup/internal/practice"
)

// DefaultCaptureCommand grabs one JPEG frame from the first V4L2 device.
const DefaultCaptureCommand = "ffmpeg -loglevel error -f v4l2 -i /dev/video0 -frames:v 1 -f image2 {out}"

// ErrCameraUnavailable is returned when the capture command cannot be run.
var ErrCameraUnavailable = errors.New("detect: camera unavailable")

// Camera implements practice.FrameSource by running an external capture
// command that writes one image to {out}.
type Camera struct {
	argv    []string
	timeout time.Duration
	logger  *slog.Logger
}

var _ practice.FrameSource = (*Camera)(nil)

// OpenCamera splits command on whitespace and checks that its program exists.
// An empty command uses DefaultCaptureCommand.
func OpenCamera(command string, timeout time.Duration, logger *slog.Logger) (*Camera, error) {
	if strings.TrimSpace(command) == "" {
		command = DefaultCaptureCommand
	}
	argv := strings.Fields(command)
	if len(argv) == 0 {
		return nil, fmt.Errorf("detect: empty capture command")
	}
	if _, err := exec.LookPath(argv[0]); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCameraUnavailable, err)
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Camera{argv: argv, timeout: timeout, logger: logger}, nil
}

// Capture runs the command and returns the written image.
func (c *Camera) Capture(ctx context.Context) (practice.Frame, error) {
	dir, err := os.MkdirTemp("", "speakup-frame-")
	if err != nil {
		return practice.Frame{}, err
	}
	defer func() {
		if rerr := os.RemoveAll(dir); rerr != nil {
			// Best-effort temp cleanup.
			_ = rerr
		}
	}()
	out := filepath.Join(dir, "frame.jpg")

	args := make([]string, len(c.argv))
	for i, a := range c.argv {
		args[i] = strings.ReplaceAll(a, "{out}", out)
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()
	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, args[0], args[1:]...)
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return practice.Frame{}, fmt.Errorf("detect: capture: %w: %s", err, strings.TrimSpace(stderr.String()))
	}
	data, err := os.ReadFile(out)
	if err != nil {
		return practice.Frame{}, fmt.Errorf("detect: read frame: %w", err)
	}
	if len(data) == 0 {
		return practice.Frame{}, fmt.Errorf("detect: capture produced an empty frame")
	}
	frame := practice.Frame{Data: data, MIMEType: http.DetectContentType(data), CapturedAt: time.Now()}
	c.logger.Debug("detect: frame captured", "bytes", len(data), "mime", frame.MIMEType)
	return frame, nil
}
