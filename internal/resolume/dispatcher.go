package resolume

import (
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

var log = logrus.WithField("component", "resolume")

// Handler receives typed parameter updates from Resolume
type Handler interface {
	ApplyClipState(layer, column int, state ClipState)
	ApplyLayerClear(layer int, clear bool)
	ApplyLayerOpacity(layer int, opacity float64)
	ApplyLayerBypass(layer int, bypassed bool)
}

// Dispatcher routes inbound (address, value) pairs to a Handler. The
// kind-to-handler table is fixed at construction.
type Dispatcher struct {
	handlers map[Kind]func(Message, any) error
	trace    bool
}

// NewDispatcher builds the routing table for h
func NewDispatcher(h Handler) *Dispatcher {
	return &Dispatcher{
		handlers: map[Kind]func(Message, any) error{
			KindClipConnected: func(m Message, v any) error {
				n, ok := toInt(v)
				if !ok {
					return errors.Errorf("clip state: unexpected value %v (%T)", v, v)
				}
				state, ok := ParseClipState(n)
				if !ok {
					return errors.Errorf("clip state: out of range %d", n)
				}
				h.ApplyClipState(m.Layer, m.Column, state)
				return nil
			},
			KindLayerClear: func(m Message, v any) error {
				b, ok := toBool(v)
				if !ok {
					return errors.Errorf("clear: unexpected value %v (%T)", v, v)
				}
				h.ApplyLayerClear(m.Layer, b)
				return nil
			},
			KindLayerOpacity: func(m Message, v any) error {
				f, ok := toFloat(v)
				if !ok {
					return errors.Errorf("opacity: unexpected value %v (%T)", v, v)
				}
				h.ApplyLayerOpacity(m.Layer, f)
				return nil
			},
			KindLayerBypassed: func(m Message, v any) error {
				b, ok := toBool(v)
				if !ok {
					return errors.Errorf("bypassed: unexpected value %v (%T)", v, v)
				}
				h.ApplyLayerBypass(m.Layer, b)
				return nil
			},
		},
	}
}

// SetTrace logs every inbound message, recognised or not
func (d *Dispatcher) SetTrace(on bool) {
	d.trace = on
}

// Dispatch handles one inbound message. Unknown addresses and values that
// don't fit the parameter are dropped.
func (d *Dispatcher) Dispatch(address string, args []any) {
	entry := log.WithField("address", address)
	if d.trace {
		entry.WithField("args", args).Info("OSC RECV")
	}

	msg, ok := ParseAddress(address)
	if !ok {
		entry.Debug("ignoring unrecognised address")
		return
	}
	if len(args) == 0 {
		entry.Debug("ignoring message without value")
		return
	}

	entry.WithField("value", args[0]).Debug("OSC RECV")
	if err := d.handlers[msg.Kind](msg, args[0]); err != nil {
		entry.WithError(err).Debug("dropping message")
	}
}

func toInt(v any) (int, bool) {
	switch n := v.(type) {
	case int32:
		return int(n), true
	case int64:
		return int(n), true
	case int:
		return n, true
	case float32:
		return int(n), true
	case float64:
		return int(n), true
	case bool:
		if n {
			return 1, true
		}
		return 0, true
	}
	return 0, false
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float32:
		return float64(n), true
	case float64:
		return n, true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case int:
		return float64(n), true
	}
	return 0, false
}

func toBool(v any) (bool, bool) {
	if b, ok := v.(bool); ok {
		return b, true
	}
	n, ok := toFloat(v)
	if !ok {
		return false, false
	}
	return n != 0, true
}
