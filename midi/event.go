package midi

// MIDI message types
const (
	NoteOn    uint8 = 0x90
	NoteOff   uint8 = 0x80
	PitchBend uint8 = 0xE0
)

// Event is a note or bend derived from the sequencer outputs
type Event struct {
	Sample   int64 // absolute sample the change happened at
	Type     uint8 // NoteOn, NoteOff, PitchBend
	Velocity uint8
	Bend     int16 // -8192..8191
}
