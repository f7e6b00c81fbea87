package resolume

import (
	"context"
	"net"
	"strconv"

	"github.com/hypebeast/go-osc/osc"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// Link is the OSC connection to Resolume: an outbound UDP client and an
// inbound UDP server.
type Link struct {
	client     *osc.Client
	listenAddr string
}

// NewLink sends to host:sendPort and listens on host:listenPort
func NewLink(host string, sendPort, listenPort int) *Link {
	return &Link{
		client:     osc.NewClient(host, sendPort),
		listenAddr: net.JoinHostPort(host, strconv.Itoa(listenPort)),
	}
}

// Send fires one parameter message. Delivery is not confirmed.
func (l *Link) Send(address string, value any) error {
	arg, err := encode(value)
	if err != nil {
		return errors.Wrapf(err, "send %s", address)
	}
	log.WithFields(logrus.Fields{"address": address, "value": arg}).Debug("OSC SEND")

	if err := l.client.Send(osc.NewMessage(address, arg)); err != nil {
		return errors.Wrapf(err, "send %s", address)
	}
	return nil
}

// encode converts a value to the OSC argument type Resolume expects
func encode(value any) (any, error) {
	switch v := value.(type) {
	case string:
		return v, nil
	case int:
		return int32(v), nil
	case int32:
		return v, nil
	case int64:
		return int32(v), nil
	case float64:
		return float32(v), nil
	case float32:
		return v, nil
	case bool:
		if v {
			return int32(1), nil
		}
		return int32(0), nil
	}
	return nil, errors.Errorf("unsupported value type %T", value)
}

// Serve listens for Resolume's pushes and hands them to d until ctx is
// cancelled.
func (l *Link) Serve(ctx context.Context, d *Dispatcher) error {
	conn, err := net.ListenPacket("udp", l.listenAddr)
	if err != nil {
		return errors.Wrapf(err, "listen on %s", l.listenAddr)
	}
	log.WithField("addr", l.listenAddr).Info("started OSC server")
	return serve(ctx, conn, d)
}

// maxPacketSize is the largest UDP payload
const maxPacketSize = 65535

// serve reads packets from conn and dispatches them one at a time, in
// arrival order. conn is closed on return.
func serve(ctx context.Context, conn net.PacketConn, d *Dispatcher) error {
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
		case <-done:
		}
		conn.Close()
	}()

	buf := make([]byte, maxPacketSize)
	for {
		n, _, err := conn.ReadFrom(buf)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return errors.Wrap(err, "read OSC packet")
		}

		packet, err := osc.ParsePacket(string(buf[:n]))
		if err != nil {
			log.WithError(err).Debug("dropping malformed OSC packet")
			continue
		}
		dispatchPacket(packet, d)
	}
}

// dispatchPacket delivers a message, or every element of a bundle in order
func dispatchPacket(p osc.Packet, d *Dispatcher) {
	switch p := p.(type) {
	case *osc.Message:
		d.Dispatch(p.Address, p.Arguments)
	case *osc.Bundle:
		for _, msg := range p.Messages {
			d.Dispatch(msg.Address, msg.Arguments)
		}
		for _, b := range p.Bundles {
			dispatchPacket(b, d)
		}
	}
}
