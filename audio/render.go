package audio

import (
	"fmt"
	"io"
	"time"

	"github.com/faiface/beep"
	"github.com/faiface/beep/wav"
)

// RenderWAV writes d of s to w as a stereo WAV file at the context format
func RenderWAV(w io.WriteSeeker, ctx *Context, s beep.Streamer, d time.Duration) error {
	n := ctx.SampleRate.N(d)
	if n <= 0 {
		return fmt.Errorf("render length %v is too short", d)
	}
	if err := wav.Encode(w, beep.Take(n, s), ctx.Format()); err != nil {
		return fmt.Errorf("encode wav: %w", err)
	}
	return nil
}
