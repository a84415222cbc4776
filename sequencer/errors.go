package sequencer

import "errors"

// Construction errors. Process never fails once an engine exists.
var (
	ErrInvalidSampleRate = errors.New("sample rate must be positive")
	ErrInvalidBlockSize  = errors.New("block size must be positive")
)
