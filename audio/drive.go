package audio

import (
	"context"
	"time"

	"github.com/faiface/beep"
)

// Drive pulls s in real time, one block per block period, and discards
// the samples. It stands in for the speaker when only taps are wanted.
// Returns when ctx is done or s ends.
func Drive(ctx context.Context, actx *Context, s beep.Streamer) {
	buf := make([][2]float64, actx.BlockSize)
	ticker := time.NewTicker(actx.SampleRate.D(actx.BlockSize))
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, ok := s.Stream(buf); !ok {
				return
			}
		}
	}
}
