package resolume

import (
	"strconv"
	"strings"
)

// Kind tags the inbound parameters the bridge understands
type Kind int

const (
	KindClipConnected Kind = iota + 1
	KindLayerClear
	KindLayerOpacity
	KindLayerBypassed
)

func (k Kind) String() string {
	switch k {
	case KindClipConnected:
		return "clip-connected"
	case KindLayerClear:
		return "layer-clear"
	case KindLayerOpacity:
		return "layer-opacity"
	case KindLayerBypassed:
		return "layer-bypassed"
	}
	return "unknown"
}

// Message is a parsed inbound parameter address. Column is only set for
// KindClipConnected.
type Message struct {
	Kind   Kind
	Layer  int
	Column int
}

// ParseAddress extracts the kind, layer and column from a concrete address.
// Segments are matched positionally:
//
//	/composition/layers/{layer}/clips/{column}/connected
//	/composition/layers/{layer}/clear
//	/composition/layers/{layer}/video/opacity
//	/composition/layers/{layer}/bypassed
func ParseAddress(address string) (Message, bool) {
	seg := strings.Split(address, "/")
	// leading slash yields an empty first segment
	if len(seg) < 5 || seg[0] != "" || seg[1] != "composition" || seg[2] != "layers" {
		return Message{}, false
	}
	layer, ok := index(seg[3])
	if !ok {
		return Message{}, false
	}

	rest := seg[4:]
	switch {
	case len(rest) == 1 && rest[0] == "clear":
		return Message{Kind: KindLayerClear, Layer: layer}, true
	case len(rest) == 1 && rest[0] == "bypassed":
		return Message{Kind: KindLayerBypassed, Layer: layer}, true
	case len(rest) == 2 && rest[0] == "video" && rest[1] == "opacity":
		return Message{Kind: KindLayerOpacity, Layer: layer}, true
	case len(rest) == 3 && rest[0] == "clips" && rest[2] == "connected":
		column, ok := index(rest[1])
		if !ok {
			return Message{}, false
		}
		return Message{Kind: KindClipConnected, Layer: layer, Column: column}, true
	}
	return Message{}, false
}

// index parses a 1-based path index
func index(s string) (int, bool) {
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 {
		return 0, false
	}
	return n, true
}
