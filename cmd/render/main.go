package main

import (
	"fmt"
	"os"
	"time"

	"github.com/alexflint/go-arg"

	"go-stepseq/audio"
	"go-stepseq/sequencer"
)

type args struct {
	Out        string        `arg:"positional,required" help:"output .wav file"`
	Duration   time.Duration `arg:"--duration" default:"8s" help:"length to render"`
	BPM        float64       `arg:"--bpm" default:"120"`
	Steps      int           `arg:"--steps" default:"16"`
	Division   int           `arg:"--division" default:"4"`
	Swing      float64       `arg:"--swing" help:"-50 to 50 percent"`
	Route      string        `arg:"--route" default:"cv-gate" help:"cv-gate or gate-accent"`
	SampleRate int           `arg:"--sample-rate" default:"48000"`
	BlockSize  int           `arg:"--block-size" default:"128"`
}

func (args) Description() string {
	return "Render the demo pattern to a stereo WAV file (left/right per --route)"
}

func main() {
	var a args
	arg.MustParse(&a)

	if err := render(a); err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
}

func render(a args) error {
	actx, err := audio.NewContext("render", a.SampleRate, a.BlockSize)
	if err != nil {
		return err
	}
	route, err := audio.ParseRoute(a.Route)
	if err != nil {
		return err
	}

	seq := sequencer.DemoSequence(a.Steps)
	seq.Division = a.Division
	swing := a.Swing
	msg := seq.Message()
	msg.Swing = &swing
	seq = msg.Normalize()

	host, err := audio.NewHost(actx, audio.HostConfig{Steps: seq.Length, Route: route})
	if err != nil {
		return err
	}
	defer host.Close()

	host.Engine().SetState(seq)
	host.Transport().SetTempo(a.BPM)
	host.Transport().Start()

	f, err := os.Create(a.Out)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := audio.RenderWAV(f, actx, host, a.Duration); err != nil {
		return err
	}

	st := host.Engine().Stats()
	fmt.Printf("wrote %s: %v, %d step transitions\n", a.Out, a.Duration, st.Transitions)
	return nil
}
