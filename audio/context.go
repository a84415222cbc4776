package audio

import (
	"fmt"

	"github.com/faiface/beep"

	"go-stepseq/sequencer"
)

// Context identifies one audio output. Hosts built on the same Context
// share its sample rate, block size and transport.
type Context struct {
	Name       string
	SampleRate beep.SampleRate
	BlockSize  int
}

// NewContext validates the host parameters
func NewContext(name string, sampleRate, blockSize int) (*Context, error) {
	if sampleRate <= 0 {
		return nil, fmt.Errorf("context %q: %w", name, sequencer.ErrInvalidSampleRate)
	}
	if blockSize <= 0 {
		return nil, fmt.Errorf("context %q: %w", name, sequencer.ErrInvalidBlockSize)
	}
	return &Context{
		Name:       name,
		SampleRate: beep.SampleRate(sampleRate),
		BlockSize:  blockSize,
	}, nil
}

// Format is the stereo format hosts stream in. 24-bit keeps CV steps
// distinguishable when rendered to WAV.
func (c *Context) Format() beep.Format {
	return beep.Format{
		SampleRate:  c.SampleRate,
		NumChannels: 2,
		Precision:   3,
	}
}
