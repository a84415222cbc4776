package audio

import (
	"fmt"
	"time"

	"github.com/faiface/beep"
	"github.com/faiface/beep/speaker"

	"go-stepseq/debug"
)

// Play opens the default output device for ctx and starts mixing the given
// streamers into it. bufferMs trades latency for underrun safety.
func Play(ctx *Context, bufferMs int, s ...beep.Streamer) error {
	bufSize := ctx.SampleRate.N(time.Duration(bufferMs) * time.Millisecond)
	if bufSize < ctx.BlockSize {
		bufSize = ctx.BlockSize
	}
	if err := speaker.Init(ctx.SampleRate, bufSize); err != nil {
		return fmt.Errorf("init speaker: %w", err)
	}
	debug.Log(debug.CatAudio, "speaker open: %d Hz, buffer %d samples", ctx.SampleRate, bufSize)
	speaker.Play(beep.Mix(s...))
	return nil
}
