package sequencer

// PulsesPerBeat is the resolution of the clock: one pulse per sixty-fourth note
const PulsesPerBeat = 16

// Division code -> pulses per step (12 is fractional)
var divisionPulses = map[int]float64{
	1:  16,
	2:  8,
	3:  6,
	4:  4,
	6:  3,
	8:  2,
	12: 1.5,
	16: 1,
}

// Divisions lists the standard division codes in ascending order
var Divisions = []int{1, 2, 3, 4, 6, 8, 12, 16}

// PulsesPerStep returns how many clock pulses make up one step at the
// given division. Unknown codes fall back to 16/division, never below 1.
func PulsesPerStep(division int) float64 {
	if p, ok := divisionPulses[division]; ok {
		return p
	}
	if division <= 0 {
		return 1
	}
	return max(1, float64(PulsesPerBeat)/float64(division))
}

// NextDivision steps through Divisions, wrapping at either end
func NextDivision(division, dir int) int {
	idx := -1
	for i, d := range Divisions {
		if d == division {
			idx = i
			break
		}
	}
	if idx < 0 {
		return DefaultDivision
	}
	idx = (idx + dir + len(Divisions)) % len(Divisions)
	return Divisions[idx]
}
