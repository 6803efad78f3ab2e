// Package control implements the local-socket control channel: a
// Unix-domain listener that accepts one connection per command, decodes
// a single self-delimiting JSON Command, and pushes it onto a bounded
// internal queue for the supervisor to consume.
package control

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/aman-cerp/syncd/internal/syncerrs"
	"github.com/aman-cerp/syncd/internal/watcher"
)

// wireOpen, wireClose, wireShutdown mirror the three Command variants'
// JSON payloads on the wire:
//
//	{"Open": {"path": "<absolute filesystem path>"}}
//	{"Close": {"path": "<absolute filesystem path>"}}
//	{"Shutdown": {"caller": "<identifier>"}}
type wireOpen struct {
	Path string `json:"path"`
}

type wireClose struct {
	Path string `json:"path"`
}

type wireShutdown struct {
	Caller string `json:"caller"`
}

type wireCommand struct {
	Open     *wireOpen     `json:"Open,omitempty"`
	Close    *wireClose    `json:"Close,omitempty"`
	Shutdown *wireShutdown `json:"Shutdown,omitempty"`
}

// Decode parses one connection's full payload into a watcher.Command. The
// server is strict: an unknown top-level field, a missing required
// field, more than one command variant set on the same object, or a
// second JSON value following the first, are all ProtocolErrors.
func Decode(payload []byte) (watcher.Command, error) {
	dec := json.NewDecoder(bytes.NewReader(payload))
	dec.DisallowUnknownFields()

	var wire wireCommand
	if err := dec.Decode(&wire); err != nil {
		return watcher.Command{}, syncerrs.ProtocolError("decode command", err)
	}
	if dec.More() {
		return watcher.Command{}, syncerrs.ProtocolError("more than one command in a single connection", nil)
	}

	var (
		cmd watcher.Command
		set int
	)
	if wire.Open != nil {
		set++
		if wire.Open.Path == "" {
			return watcher.Command{}, syncerrs.ProtocolError("Open missing path", nil)
		}
		cmd = watcher.Command{Kind: watcher.CommandOpen, Path: wire.Open.Path}
	}
	if wire.Close != nil {
		set++
		if wire.Close.Path == "" {
			return watcher.Command{}, syncerrs.ProtocolError("Close missing path", nil)
		}
		cmd = watcher.Command{Kind: watcher.CommandClose, Path: wire.Close.Path}
	}
	if wire.Shutdown != nil {
		set++
		if wire.Shutdown.Caller == "" {
			return watcher.Command{}, syncerrs.ProtocolError("Shutdown missing caller", nil)
		}
		cmd = watcher.Command{Kind: watcher.CommandShutdown, Caller: wire.Shutdown.Caller}
	}
	if set != 1 {
		return watcher.Command{}, syncerrs.ProtocolError("exactly one command variant required", nil)
	}

	return cmd, nil
}

// Encode renders cmd in the wire format a Decode call on the other end
// will accept.
func Encode(cmd watcher.Command) ([]byte, error) {
	switch cmd.Kind {
	case watcher.CommandOpen:
		return json.Marshal(wireCommand{Open: &wireOpen{Path: cmd.Path}})
	case watcher.CommandClose:
		return json.Marshal(wireCommand{Close: &wireClose{Path: cmd.Path}})
	case watcher.CommandShutdown:
		return json.Marshal(wireCommand{Shutdown: &wireShutdown{Caller: cmd.Caller}})
	default:
		return nil, fmt.Errorf("control: unknown command kind %v", cmd.Kind)
	}
}
