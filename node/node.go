// Package node implements a UDP MAVLink endpoint for injecting and observing
// navlink traffic through mavlink-router.
package node

import (
	"errors"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/gartfeo/navlink/util"
	"github.com/gartfeo/navlink/wire"
)

const (
	readTimeout = 500 * time.Millisecond
	maxFrameLen = 280
)

// ErrNoPeer is returned by Send before any frame has been received
var ErrNoPeer = errors.New("no peer seen yet")

// Callback handles a received message
type Callback func(msg *wire.Message)

// Node is a MAVLink endpoint bound to a local UDP port. The router learns
// about the endpoint from its outbound traffic and replies go to the last
// peer a frame was received from, matching mavutil's udpin behaviour.
type Node struct {
	log   *util.Logger
	codec *wire.Codec
	conn  *net.UDPConn
	clock clock.Clock

	sysID  uint8
	compID uint8

	mu         sync.Mutex
	seq        uint8
	peer       *net.UDPAddr
	callbacks  map[string][]Callback
	heartbeats map[uint8]time.Time
	drops      uint64
	unknown    uint64

	heartbeatC chan uint8
	closing    chan struct{}
	closeOnce  sync.Once
	wg         sync.WaitGroup
}

// Listen binds a node to the given UDP address and starts the read pump
func Listen(addr string, sysID uint8, codec *wire.Codec, log *util.Logger) (*Node, error) {
	return listen(addr, sysID, codec, log, clock.New())
}

func listen(addr string, sysID uint8, codec *wire.Codec, log *util.Logger, clck clock.Clock) (*Node, error) {
	udpAddr, err := net.ResolveUDPAddr("udp", addr)
	if err != nil {
		return nil, fmt.Errorf("invalid listen address: %w", err)
	}

	conn, err := net.ListenUDP("udp", udpAddr)
	if err != nil {
		return nil, fmt.Errorf("could not bind %s: %w", addr, err)
	}

	n := &Node{
		log:        log,
		codec:      codec,
		conn:       conn,
		clock:      clck,
		sysID:      sysID,
		compID:     1,
		callbacks:  make(map[string][]Callback),
		heartbeats: make(map[uint8]time.Time),
		heartbeatC: make(chan uint8, 16),
		closing:    make(chan struct{}),
	}

	n.wg.Add(1)
	go n.readLoop()

	return n, nil
}

// Addr returns the bound local address
func (n *Node) Addr() *net.UDPAddr {
	return n.conn.LocalAddr().(*net.UDPAddr)
}

// On registers a callback for a message name, or "*" for all messages
func (n *Node) On(name string, cb Callback) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.callbacks[name] = append(n.callbacks[name], cb)
}

func (n *Node) readLoop() {
	defer n.wg.Done()

	buf := make([]byte, maxFrameLen)
	for {
		select {
		case <-n.closing:
			return
		default:
		}

		// socket deadlines run on kernel time, not the node clock
		_ = n.conn.SetReadDeadline(time.Now().Add(readTimeout))
		size, addr, err := n.conn.ReadFromUDP(buf)
		if err != nil {
			if netErr, ok := err.(net.Error); ok && netErr.Timeout() {
				continue
			}
			select {
			case <-n.closing:
			default:
				n.log.ERROR.Println("read:", err)
			}
			return
		}

		n.handle(buf[:size], addr)
	}
}

func (n *Node) handle(frame []byte, addr *net.UDPAddr) {
	msg, err := n.codec.Decode(frame)
	if err != nil {
		n.mu.Lock()
		switch {
		case errors.Is(err, wire.ErrChecksum):
			// definition mismatch between sender and receiver
			n.drops++
			n.log.DEBUG.Println("dropped:", err)
		case errors.Is(err, wire.ErrUnknownMessage):
			n.unknown++
		default:
			n.log.DEBUG.Println("discarded:", err)
		}
		n.mu.Unlock()
		return
	}

	n.mu.Lock()
	n.peer = addr
	if msg.Name == "HEARTBEAT" {
		n.heartbeats[msg.SysID] = n.clock.Now()
		select {
		case n.heartbeatC <- msg.SysID:
		default:
		}
	}
	callbacks := append(append([]Callback(nil), n.callbacks[msg.Name]...), n.callbacks["*"]...)
	n.mu.Unlock()

	for _, cb := range callbacks {
		cb(msg)
	}
}

// Send encodes and transmits a message to the last seen peer
func (n *Node) Send(name string, fields map[string]interface{}) error {
	n.mu.Lock()
	peer := n.peer
	n.mu.Unlock()

	if peer == nil {
		return ErrNoPeer
	}

	return n.SendTo(peer, name, fields)
}

// SendTo encodes and transmits a message to the given address
func (n *Node) SendTo(addr *net.UDPAddr, name string, fields map[string]interface{}) error {
	n.mu.Lock()
	seq := n.seq
	n.seq++
	n.mu.Unlock()

	frame, err := n.codec.Encode(&wire.Message{
		SysID:  n.sysID,
		CompID: n.compID,
		Seq:    seq,
		Name:   name,
		Fields: fields,
	})
	if err != nil {
		return err
	}

	_, err = n.conn.WriteToUDP(frame, addr)
	return err
}

// Heartbeat announces the node as a GCS-type endpoint
func (n *Node) Heartbeat() error {
	return n.Send("HEARTBEAT", map[string]interface{}{
		"type":            uint8(6), // MAV_TYPE_GCS
		"autopilot":       uint8(8), // MAV_AUTOPILOT_INVALID
		"system_status":   uint8(4), // MAV_STATE_ACTIVE
		"mavlink_version": uint8(3),
	})
}

// WaitHeartbeat blocks until a heartbeat from any system arrives
func (n *Node) WaitHeartbeat(timeout time.Duration) (uint8, error) {
	return n.waitHeartbeat(timeout, func(uint8) bool { return true })
}

// WaitHeartbeatFrom blocks until a heartbeat from the given system arrives
func (n *Node) WaitHeartbeatFrom(sysID uint8, timeout time.Duration) error {
	_, err := n.waitHeartbeat(timeout, func(id uint8) bool { return id == sysID })
	return err
}

func (n *Node) waitHeartbeat(timeout time.Duration, match func(uint8) bool) (uint8, error) {
	timer := n.clock.Timer(timeout)
	defer timer.Stop()

	for {
		select {
		case id := <-n.heartbeatC:
			if match(id) {
				return id, nil
			}
		case <-timer.C:
			return 0, errors.New("heartbeat timeout")
		case <-n.closing:
			return 0, errors.New("node closed")
		}
	}
}

// LastHeartbeat returns the time a heartbeat from the system was last seen
func (n *Node) LastHeartbeat(sysID uint8) (time.Time, bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	t, ok := n.heartbeats[sysID]
	return t, ok
}

// Stale reports whether the system's heartbeat is older than maxAge
func (n *Node) Stale(sysID uint8, maxAge time.Duration) bool {
	t, ok := n.LastHeartbeat(sysID)
	return !ok || n.clock.Now().Sub(t) > maxAge
}

// Drops returns the number of frames dropped for checksum mismatch
func (n *Node) Drops() uint64 {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.drops
}

// Close shuts the node down and waits for the read pump
func (n *Node) Close() {
	n.closeOnce.Do(func() {
		close(n.closing)
		_ = n.conn.Close()
		n.wg.Wait()
	})
}

// Systems returns the system ids seen via heartbeat, for display purposes
func (n *Node) Systems() []uint8 {
	n.mu.Lock()
	defer n.mu.Unlock()

	ids := make([]uint8, 0, len(n.heartbeats))
	for id := range n.heartbeats {
		ids = append(ids, id)
	}
	return ids
}
