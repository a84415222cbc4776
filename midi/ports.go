package midi

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	gomidi "gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"
	_ "gitlab.com/gomidi/midi/v2/drivers/rtmididrv" // Register MIDI driver

	"go-stepseq/debug"
)

// scanTimeout bounds a port listing (CoreMIDI can hang)
const scanTimeout = 3 * time.Second

// ErrScanTimeout is returned when the MIDI driver does not answer
var ErrScanTimeout = errors.New("midi port scan timed out")

// ListPorts returns the input and output port names
func ListPorts() (ins, outs []string, err error) {
	type result struct {
		ins  []drivers.In
		outs []drivers.Out
	}
	ch := make(chan result, 1)
	go func() {
		ch <- result{ins: gomidi.GetInPorts(), outs: gomidi.GetOutPorts()}
	}()

	select {
	case r := <-ch:
		for _, p := range r.ins {
			ins = append(ins, p.String())
		}
		for _, p := range r.outs {
			outs = append(outs, p.String())
		}
		return ins, outs, nil
	case <-time.After(scanTimeout):
		// User needs to run: sudo killall coreaudiod midiserver
		return nil, nil, ErrScanTimeout
	}
}

// OpenOut opens the first output port whose name contains match
// (case-insensitive)
func OpenOut(match string) (Sender, string, error) {
	for _, p := range gomidi.GetOutPorts() {
		if !matchPort(p.String(), match) {
			continue
		}
		send, err := gomidi.SendTo(p)
		if err != nil {
			return nil, "", fmt.Errorf("open %s: %w", p.String(), err)
		}
		return send, p.String(), nil
	}
	return nil, "", fmt.Errorf("no output port matching %q", match)
}

func matchPort(name, match string) bool {
	return match != "" && strings.Contains(strings.ToLower(name), strings.ToLower(match))
}

// PortEvent is emitted when the watched port appears or disappears
type PortEvent struct {
	Type   PortEventType
	Name   string
	Sender Sender // set on PortConnected
}

type PortEventType int

const (
	PortConnected PortEventType = iota
	PortDisconnected
)

// OutWatcher handles hot-plug of one output port
type OutWatcher struct {
	match    string
	pollRate time.Duration
	events   chan PortEvent

	connected string

	list func() ([]string, error)
	open func(match string) (Sender, string, error)
}

// NewOutWatcher watches for an output port whose name contains match
func NewOutWatcher(match string) *OutWatcher {
	return &OutWatcher{
		match:    match,
		pollRate: time.Second,
		events:   make(chan PortEvent, 16),
		list: func() ([]string, error) {
			_, outs, err := ListPorts()
			return outs, err
		},
		open: OpenOut,
	}
}

// Events returns a channel of connect/disconnect events
func (w *OutWatcher) Events() <-chan PortEvent {
	return w.events
}

// Run starts the polling loop (blocking - run in goroutine)
func (w *OutWatcher) Run(ctx context.Context) {
	ticker := time.NewTicker(w.pollRate)
	defer ticker.Stop()

	// Initial scan
	w.scan(ctx)

	for {
		select {
		case <-ctx.Done():
			close(w.events)
			return
		case <-ticker.C:
			w.scan(ctx)
		}
	}
}

// emit delivers ev unless ctx ends first
func (w *OutWatcher) emit(ctx context.Context, ev PortEvent) bool {
	select {
	case w.events <- ev:
		return true
	case <-ctx.Done():
		return false
	}
}

func (w *OutWatcher) scan(ctx context.Context) {
	names, err := w.list()
	if err != nil {
		debug.Log(debug.CatMIDI, "scan: %v", err)
		return
	}

	if w.connected != "" {
		for _, n := range names {
			if n == w.connected {
				return
			}
		}
		debug.Log(debug.CatMIDI, "port gone: %s", w.connected)
		gone := w.connected
		w.connected = ""
		if !w.emit(ctx, PortEvent{Type: PortDisconnected, Name: gone}) {
			return
		}
	}

	for _, n := range names {
		if !matchPort(n, w.match) {
			continue
		}
		send, name, err := w.open(n)
		if err != nil {
			debug.Log(debug.CatMIDI, "open: %v", err)
			return
		}
		w.connected = name
		debug.Log(debug.CatMIDI, "port connected: %s", name)
		w.emit(ctx, PortEvent{Type: PortConnected, Name: name, Sender: send})
		return
	}
}
