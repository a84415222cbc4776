package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/alexflint/go-arg"

	"go-stepseq/midi"
)

type listCmd struct{}

type gateCmd struct {
	Port   string        `arg:"positional,required" help:"part of the output port name"`
	Count  int           `arg:"--count" default:"4"`
	Length time.Duration `arg:"--length" default:"200ms" help:"gate high time"`
	Accent bool          `arg:"--accent"`
}

type pollCmd struct {
	Port string `arg:"positional,required" help:"part of the output port name"`
}

type args struct {
	List *listCmd `arg:"subcommand:list" help:"list all MIDI ports"`
	Gate *gateCmd `arg:"subcommand:gate" help:"send test gates through the note bridge"`
	Poll *pollCmd `arg:"subcommand:poll" help:"watch a port connect and disconnect"`
}

func main() {
	var a args
	p := arg.MustParse(&a)

	switch {
	case a.List != nil:
		listPorts()
	case a.Gate != nil:
		sendGates(a.Gate)
	case a.Poll != nil:
		pollPort(a.Poll.Port)
	default:
		p.WriteHelp(os.Stdout)
	}
}

func listPorts() {
	fmt.Println("(waiting up to 3 seconds...)")
	ins, outs, err := midi.ListPorts()
	if err != nil {
		fmt.Println("\nTIMEOUT! CoreMIDI is hung.")
		fmt.Println("Fix: sudo killall coreaudiod midiserver")
		return
	}

	fmt.Println("=== MIDI Input Ports ===")
	for i, name := range ins {
		fmt.Printf("  %d: %s\n", i, name)
	}
	fmt.Println("\n=== MIDI Output Ports ===")
	for i, name := range outs {
		fmt.Printf("  %d: %s\n", i, name)
	}
}

func sendGates(c *gateCmd) {
	send, name, err := midi.OpenOut(c.Port)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	fmt.Printf("Using output: %s\n", name)

	bridge := midi.NewBridge(midi.BridgeConfig{Note: 48, Velocity: 90, AccentVelocity: 127, BendRange: 1})
	bridge.SetSender(send)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		bridge.Run(ctx)
		close(done)
	}()

	// one-sample blocks are enough to drive the bridge by hand
	accent := 0.0
	if c.Accent {
		accent = 1
	}
	var t int64
	for i := 0; i < c.Count; i++ {
		cv := float64(i) / 12
		fmt.Printf("  gate %d (cv %.3f)\n", i+1, cv)
		bridge.Block(t, []float64{cv}, []float64{1}, []float64{accent})
		time.Sleep(c.Length)
		bridge.Block(t+1, []float64{cv}, []float64{0}, []float64{0})
		time.Sleep(c.Length)
		t += 2
	}

	time.Sleep(50 * time.Millisecond)
	cancel()
	<-done
	fmt.Println("Done!")
}

func pollPort(port string) {
	fmt.Printf("Watching for %q. Ctrl+C to exit.\n", port)

	w := midi.NewOutWatcher(port)
	go w.Run(context.Background())

	for ev := range w.Events() {
		state := "connected"
		if ev.Type == midi.PortDisconnected {
			state = "disconnected"
		}
		fmt.Printf("[%s] %s %s\n", time.Now().Format("15:04:05"), strings.ToUpper(state[:1])+state[1:], ev.Name)
	}
}
