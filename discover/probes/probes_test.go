package probes

import (
	"net"
	"strconv"
	"testing"

	"github.com/gartfeo/navlink/dialect"
	"github.com/gartfeo/navlink/util"
	"github.com/gartfeo/navlink/wire"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry(t *testing.T) {
	_, err := Registry.Get("tcp")
	assert.NoError(t, err)

	_, err = Registry.Get("mavlink")
	assert.NoError(t, err)

	_, err = Registry.Get("nope")
	assert.Error(t, err)

	assert.Panics(t, func() {
		Registry.Add("tcp", TcpHandlerFactory)
	})
}

func TestTcpHandlerFactory(t *testing.T) {
	_, err := TcpHandlerFactory(map[string]interface{}{})
	assert.Error(t, err, "missing ports")

	_, err = TcpHandlerFactory(map[string]interface{}{"ports": []int{5760}, "bogus": true})
	assert.Error(t, err, "unused key")

	h, err := TcpHandlerFactory(map[string]interface{}{"ports": []int{5760, 5762}})
	require.NoError(t, err)
	assert.Equal(t, []int{5760, 5762}, h.(*TcpHandler).Ports)
}

func TestTcpProbe(t *testing.T) {
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer listener.Close()

	go func() {
		for {
			conn, err := listener.Accept()
			if err != nil {
				return
			}
			conn.Close()
		}
	}()

	port := listener.Addr().(*net.TCPAddr).Port

	h, err := TcpHandlerFactory(map[string]interface{}{"ports": []int{port}})
	require.NoError(t, err)

	res := h.Probe(util.NewLogger("test"), "127.0.0.1")
	require.Len(t, res, 1)
	assert.Equal(t, port, res[0].Port)
}

func TestMavlinkProbe(t *testing.T) {
	codec := wire.NewCodec(dialect.Navlink())

	// fake vehicle endpoint: answer anything with a heartbeat
	conn, err := net.ListenUDP("udp", &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1)})
	require.NoError(t, err)
	defer conn.Close()

	go func() {
		buf := make([]byte, 512)
		for {
			_, addr, err := conn.ReadFromUDP(buf)
			if err != nil {
				return
			}

			frame, err := codec.Encode(&wire.Message{
				SysID: 1,
				Name:  "HEARTBEAT",
				Fields: map[string]interface{}{
					"type":            uint8(1),
					"autopilot":       uint8(3),
					"mavlink_version": uint8(3),
				},
			})
			if err == nil {
				_, _ = conn.WriteToUDP(frame, addr)
			}
		}
	}()

	port := conn.LocalAddr().(*net.UDPAddr).Port

	h, err := MavlinkHandlerFactory(map[string]interface{}{"ports": []int{port}})
	require.NoError(t, err)

	res := h.Probe(util.NewLogger("test"), "127.0.0.1")
	require.Len(t, res, 1, "expected hit on port "+strconv.Itoa(port))
	assert.Equal(t, mavlinkDetails{SysID: 1, CompID: 0}, res[0].Details)
}

func TestMavlinkProbeSilentPort(t *testing.T) {
	// bound but mute port: no hit
	conn, err := net.ListenUDP("udp", &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1)})
	require.NoError(t, err)
	defer conn.Close()

	h, err := MavlinkHandlerFactory(map[string]interface{}{
		"ports": []int{conn.LocalAddr().(*net.UDPAddr).Port},
	})
	require.NoError(t, err)

	res := h.Probe(util.NewLogger("test"), "127.0.0.1")
	assert.Empty(t, res)
}
