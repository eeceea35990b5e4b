package speech

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	oai "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// DefaultOpenAIModel is the transcription model used when none is configured.
const DefaultOpenAIModel = "whisper-1"

// OpenAI transcribes with the OpenAI audio transcription endpoint.
type OpenAI struct {
	client   oai.Client
	model    string
	language string
}

// NewOpenAI builds a transcriber from SDK request options.
func NewOpenAI(model, language string, reqOpts ...option.RequestOption) *OpenAI {
	if model == "" {
		model = DefaultOpenAIModel
	}
	return &OpenAI{client: oai.NewClient(reqOpts...), model: model, language: language}
}

// Transcribe uploads wav and returns the text.
func (o *OpenAI) Transcribe(ctx context.Context, wav []byte) (string, error) {
	params := oai.AudioTranscriptionNewParams{
		File:  oai.File(bytes.NewReader(wav), "speech.wav", "audio/wav"),
		Model: oai.AudioModel(o.model),
	}
	if o.language != "" {
		params.Language = oai.String(o.language)
	}
	resp, err := o.client.Audio.Transcriptions.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("%w: openai: transcription: %v", ErrUnavailable, err)
	}
	return strings.TrimSpace(resp.Text), nil
}
