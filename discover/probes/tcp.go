package probes

import (
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/gartfeo/navlink/util"
)

func init() {
	Registry.Add("tcp", TcpHandlerFactory)
}

func TcpHandlerFactory(conf map[string]interface{}) (Handler, error) {
	handler := TcpHandler{
		Timeout: timeout,
	}
	err := util.DecodeOther(conf, &handler)

	if err == nil && len(handler.Ports) == 0 {
		err = errors.New("missing ports")
	}

	handler.dialer = net.Dialer{Timeout: handler.Timeout}
	return &handler, err
}

// TcpHandler probes for listening TCP ports, e.g. the SITL console ports
type TcpHandler struct {
	Ports   []int
	Timeout time.Duration
	dialer  net.Dialer
}

func (h *TcpHandler) Probe(log *util.Logger, host string) (res []Result) {
	for _, port := range h.Ports {
		addr := fmt.Sprintf("%s:%d", host, port)
		conn, err := h.dialer.Dial("tcp", addr)
		if err != nil {
			continue
		}
		conn.Close()

		res = append(res, Result{Host: host, Port: port})
	}

	return res
}
