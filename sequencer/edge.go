package sequencer

// Edge detector constants
const (
	EdgeThreshold = 0.5
	EdgeCooldown  = 32 // samples ignored after a detected edge
)

// EdgeDetector turns an audio-rate signal into rising-edge events.
// After an edge it ignores further crossings for EdgeCooldown samples
// so ringing or a jittery clock does not retrigger.
type EdgeDetector struct {
	lastSample        float64
	cooldownRemaining int
}

// Detect feeds one sample and reports whether it completes a rising edge
func (d *EdgeDetector) Detect(x float64) bool {
	rising := d.lastSample < EdgeThreshold && x >= EdgeThreshold
	d.lastSample = x

	if d.cooldownRemaining > 0 {
		d.cooldownRemaining--
		return false
	}
	if rising {
		d.cooldownRemaining = EdgeCooldown
		return true
	}
	return false
}

// Scan runs Detect over a block and writes the offsets of detected edges
// into dst, returning the filled prefix. dst is never grown; edges past its
// capacity are still consumed but not reported.
func (d *EdgeDetector) Scan(block []float64, dst []int) []int {
	dst = dst[:0]
	for i, x := range block {
		if d.Detect(x) && len(dst) < cap(dst) {
			dst = append(dst, i)
		}
	}
	return dst
}

// Reset returns the detector to silence
func (d *EdgeDetector) Reset() {
	d.lastSample = 0
	d.cooldownRemaining = 0
}
