package sequencer

// demoPattern is a 16-step bass line in semitones, with slides and accents
var demoPattern = [16]struct {
	semi        int
	on, sl, acc bool
}{
	{0, true, false, true}, {0, true, false, false}, {12, true, true, false}, {0, false, false, false},
	{3, true, false, false}, {5, true, true, true}, {0, true, false, false}, {7, false, false, false},
	{0, true, false, true}, {10, true, false, false}, {12, true, true, false}, {7, true, true, false},
	{5, true, false, true}, {3, false, false, false}, {0, true, false, false}, {-2, true, true, false},
}

// DemoSequence returns the built-in pattern, repeated or cut to n steps.
// Values are 1V/oct CV relative to the root.
func DemoSequence(n int) Sequence {
	seq := NewSequence(clampInt(n, 1, MaxSteps))
	for i := 0; i < seq.Length; i++ {
		p := demoPattern[i%len(demoPattern)]
		seq.Steps[i] = Step{
			Active:    p.on,
			Value:     float64(p.semi) / 12,
			LengthPct: DefaultLengthPct,
			Slide:     p.sl,
			Accent:    p.acc,
		}
		if p.sl {
			seq.Steps[i].LengthPct = MaxLengthPct
		}
	}
	return seq
}
