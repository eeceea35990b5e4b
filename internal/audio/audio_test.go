package audio

import (
	"encoding/binary"
	"testing"
	"time"
)

func tone(n int, amp int16) []int16 {
	out := make([]int16, n)
	for i := range out {
		if i%2 == 0 {
			out[i] = amp
		} else {
			out[i] = -amp
		}
	}
	return out
}

func TestEncodeWAVHeader(t *testing.T) {
	wav := EncodeWAV([]int16{1, -1, 300}, 16000)
	if len(wav) != 44+6 {
		t.Fatalf("len = %d", len(wav))
	}
	if string(wav[0:4]) != "RIFF" || string(wav[8:12]) != "WAVE" || string(wav[36:40]) != "data" {
		t.Fatalf("bad chunk ids")
	}
	if got := binary.LittleEndian.Uint32(wav[24:28]); got != 16000 {
		t.Fatalf("sample rate = %d", got)
	}
	if got := binary.LittleEndian.Uint32(wav[40:44]); got != 6 {
		t.Fatalf("data size = %d", got)
	}
	if got := int16(binary.LittleEndian.Uint16(wav[46:48])); got != -1 {
		t.Fatalf("second sample = %d", got)
	}
}

func TestRMS(t *testing.T) {
	if RMS(nil) != 0 {
		t.Fatal("empty RMS should be zero")
	}
	if got := RMS(tone(100, 32767)); got < 0.999 {
		t.Fatalf("full scale RMS = %v", got)
	}
	if got := RMS(make([]int16, 100)); got != 0 {
		t.Fatalf("silent RMS = %v", got)
	}
}

func TestEndpointer(t *testing.T) {
	ep := &Endpointer{Threshold: 0.1, Silence: 128 * time.Millisecond}
	quiet := make([]int16, FramesPerBuffer)
	loud := tone(FramesPerBuffer, 16000)

	for i := 0; i < 5; i++ {
		if ep.Feed(quiet, SampleRate) {
			t.Fatal("leading silence must not end capture")
		}
	}
	if ep.Voiced() {
		t.Fatal("not voiced yet")
	}
	if ep.Feed(loud, SampleRate) {
		t.Fatal("speech must not end capture")
	}
	if ep.Feed(quiet, SampleRate) {
		t.Fatal("64ms of silence is not enough")
	}
	if !ep.Feed(quiet, SampleRate) {
		t.Fatal("128ms of trailing silence should end capture")
	}
}

func TestClipDuration(t *testing.T) {
	c := Clip{Samples: make([]int16, 8000), SampleRate: 16000}
	if c.Duration() != 500*time.Millisecond {
		t.Fatalf("Duration = %v", c.Duration())
	}
	if len(c.WAV()) != 44+16000 {
		t.Fatalf("WAV length = %d", len(c.WAV()))
	}
}
