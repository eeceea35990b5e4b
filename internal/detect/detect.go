// Package detect names the object in front of the camera.
package detect

import (
	"context"
	"fmt"
	"strings"

	"github.com/verte-zerg/speakup/internal/practice"
	"github.com/verte-zerg/speakup/internal/prompt"
)

// Describer answers a prompt about an image. *openai.Provider implements it.
type Describer interface {
	Describe(ctx context.Context, prompt string, image []byte, mimeType string) (string, error)
}

// Vision implements practice.Detector with a vision-capable model.
type Vision struct {
	d Describer
}

var _ practice.Detector = (*Vision)(nil)

// NewVision returns a detector backed by d.
func NewVision(d Describer) *Vision {
	return &Vision{d: d}
}

// Detect labels the most prominent object. A "none" reply or an empty label
// reports ok=false.
func (v *Vision) Detect(ctx context.Context, frame practice.Frame) (string, bool, error) {
	text, err := prompt.Build(prompt.DetectObject, prompt.Params{})
	if err != nil {
		return "", false, err
	}
	raw, err := v.d.Describe(ctx, text, frame.Data, frame.MIMEType)
	if err != nil {
		return "", false, fmt.Errorf("detect: describe frame: %w", err)
	}
	if strings.EqualFold(strings.Trim(strings.TrimSpace(raw), `."'`), "none") {
		return "", false, nil
	}
	label := prompt.CleanLabel(raw)
	if label == "" || label == "none" {
		return "", false, nil
	}
	return label, true, nil
}
