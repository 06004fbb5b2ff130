package probes

import (
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/gartfeo/navlink/dialect"
	"github.com/gartfeo/navlink/util"
	"github.com/gartfeo/navlink/wire"
)

func init() {
	Registry.Add("mavlink", MavlinkHandlerFactory)
}

func MavlinkHandlerFactory(conf map[string]interface{}) (Handler, error) {
	handler := MavlinkHandler{
		Timeout: timeout,
		SysID:   250,
	}
	err := util.DecodeOther(conf, &handler)

	if err == nil && len(handler.Ports) == 0 {
		err = errors.New("missing ports")
	}

	handler.codec = wire.NewCodec(dialect.Navlink())
	return &handler, err
}

// MavlinkHandler probes UDP ports by sending a heartbeat and waiting for any
// decodable MAVLink frame in response
type MavlinkHandler struct {
	Ports   []int
	Timeout time.Duration
	SysID   uint8
	codec   *wire.Codec
}

type mavlinkDetails struct {
	SysID  uint8
	CompID uint8
}

func (h *MavlinkHandler) Probe(log *util.Logger, host string) (res []Result) {
	for _, port := range h.Ports {
		if details, ok := h.probePort(log, host, port); ok {
			res = append(res, Result{Host: host, Port: port, Details: details})
		}
	}

	return res
}

func (h *MavlinkHandler) probePort(log *util.Logger, host string, port int) (mavlinkDetails, bool) {
	conn, err := net.DialTimeout("udp", fmt.Sprintf("%s:%d", host, port), h.Timeout)
	if err != nil {
		return mavlinkDetails{}, false
	}
	defer conn.Close()

	frame, err := h.codec.Encode(&wire.Message{
		SysID: h.SysID,
		Name:  "HEARTBEAT",
		Fields: map[string]interface{}{
			"type":            uint8(6),
			"autopilot":       uint8(8),
			"mavlink_version": uint8(3),
		},
	})
	if err != nil {
		log.ERROR.Println("probe:", err)
		return mavlinkDetails{}, false
	}

	if _, err := conn.Write(frame); err != nil {
		return mavlinkDetails{}, false
	}

	buf := make([]byte, 512)
	deadline := time.Now().Add(h.Timeout)

	for time.Now().Before(deadline) {
		_ = conn.SetReadDeadline(deadline)
		size, err := conn.Read(buf)
		if err != nil {
			return mavlinkDetails{}, false
		}

		msg, err := h.codec.Decode(buf[:size])
		if err != nil {
			// any traffic on the port is a hit even if the message is
			// not in our dialect
			if errors.Is(err, wire.ErrUnknownMessage) {
				return mavlinkDetails{SysID: buf[5], CompID: buf[6]}, true
			}
			continue
		}

		return mavlinkDetails{SysID: msg.SysID, CompID: msg.CompID}, true
	}

	return mavlinkDetails{}, false
}
