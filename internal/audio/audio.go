// Package audio records short utterances from the microphone.
package audio

import (
	"encoding/binary"
	"errors"
	"math"
	"time"
)

const (
	// SampleRate is the capture rate expected by speech-to-text backends.
	SampleRate = 16000
	// Channels is mono.
	Channels = 1
	// FramesPerBuffer is the portaudio read size (64ms at 16kHz).
	FramesPerBuffer = 1024
	// MinSamples pads very short clips to 200ms; whisper rejects anything under 100ms.
	MinSamples = SampleRate / 5

	bitsPerSample = 16
)

// ErrNoSpeech is returned when the listen window closes without any voiced audio.
var ErrNoSpeech = errors.New("audio: no speech detected")

// Clip is a mono 16-bit PCM recording.
type Clip struct {
	Samples    []int16
	SampleRate int
}

// Duration returns the clip length.
func (c Clip) Duration() time.Duration {
	if c.SampleRate <= 0 {
		return 0
	}
	return time.Duration(len(c.Samples)) * time.Second / time.Duration(c.SampleRate)
}

// WAV returns the clip wrapped in a RIFF/WAV container.
func (c Clip) WAV() []byte {
	rate := c.SampleRate
	if rate <= 0 {
		rate = SampleRate
	}
	return EncodeWAV(c.Samples, rate)
}

// EncodeWAV wraps mono 16-bit samples in a RIFF/WAV container.
func EncodeWAV(samples []int16, sampleRate int) []byte {
	byteRate := sampleRate * Channels * bitsPerSample / 8
	blockAlign := Channels * bitsPerSample / 8
	dataSize := len(samples) * 2

	buf := make([]byte, 44+dataSize)
	copy(buf[0:4], "RIFF")
	binary.LittleEndian.PutUint32(buf[4:8], uint32(36+dataSize))
	copy(buf[8:12], "WAVE")

	copy(buf[12:16], "fmt ")
	binary.LittleEndian.PutUint32(buf[16:20], 16)
	binary.LittleEndian.PutUint16(buf[20:22], 1) // PCM
	binary.LittleEndian.PutUint16(buf[22:24], uint16(Channels))
	binary.LittleEndian.PutUint32(buf[24:28], uint32(sampleRate))
	binary.LittleEndian.PutUint32(buf[28:32], uint32(byteRate))
	binary.LittleEndian.PutUint16(buf[32:34], uint16(blockAlign))
	binary.LittleEndian.PutUint16(buf[34:36], bitsPerSample)

	copy(buf[36:40], "data")
	binary.LittleEndian.PutUint32(buf[40:44], uint32(dataSize))
	for i, s := range samples {
		binary.LittleEndian.PutUint16(buf[44+i*2:], uint16(s))
	}
	return buf
}

// RMS returns the root-mean-square level of samples scaled to [0, 1].
func RMS(samples []int16) float64 {
	if len(samples) == 0 {
		return 0
	}
	var sum float64
	for _, s := range samples {
		v := float64(s) / math.MaxInt16
		sum += v * v
	}
	return math.Sqrt(sum / float64(len(samples)))
}

// Endpointer decides when an utterance is over: once a frame above Threshold
// has been heard, Silence worth of quiet frames ends it.
type Endpointer struct {
	Threshold float64
	Silence   time.Duration

	voiced bool
	quiet  time.Duration
}

// Feed consumes one frame and reports whether capture should stop.
func (e *Endpointer) Feed(frame []int16, sampleRate int) bool {
	if len(frame) == 0 || sampleRate <= 0 {
		return false
	}
	dur := time.Duration(len(frame)) * time.Second / time.Duration(sampleRate)
	if RMS(frame) >= e.Threshold {
		e.voiced = true
		e.quiet = 0
		return false
	}
	if !e.voiced {
		return false
	}
	e.quiet += dur
	return e.Silence > 0 && e.quiet >= e.Silence
}

// Voiced reports whether any frame crossed the threshold.
func (e *Endpointer) Voiced() bool { return e.voiced }
