package cmd

import (
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/gartfeo/navlink/dialect"
	"github.com/gartfeo/navlink/node"
	"github.com/gartfeo/navlink/util"
	"github.com/gartfeo/navlink/wire"
	"github.com/spf13/cobra"
)

// sendCmd represents the send command
var sendCmd = &cobra.Command{
	Use:   "send MESSAGE [key=value ...]",
	Short: "Inject a navlink message between SITL vehicles",
	Long: `Sends the named navlink message from one mavlink-router endpoint and
verifies it arrives at the other, exercising the full pipeline: dialect
definitions, router routing tables and the vehicles' generated headers.

Start a SITL swarm first, e.g.:

	ROUTER_BIN=/path/to/mavlink-routerd ~/ardupilot/Tools/autotest/run_swarm.sh wsl 2

then:

	navlink send CHECK_IN boot_id=123 msg_seq=1 time_ms=1000 ttl_ms=5000
	navlink send CHECK_OUT boot_id=123 msg_seq=1 time_ms=1000 ttl_ms=5000 lat=40.31 lng=44.45 alt=1500`,
	Args: cobra.MinimumNArgs(1),
	Run:  runSend,
}

func init() {
	rootCmd.AddCommand(sendCmd)

	sendCmd.Flags().Int("port1", 14560, "UDP port of receiving endpoint")
	sendCmd.Flags().Int("port2", 14570, "UDP port of sending endpoint")
	sendCmd.Flags().String("dialect", "", "Dialect XML root file (default: built-in navlink definitions)")
	sendCmd.Flags().Duration("timeout", 5*time.Second, "Wait timeout for message routing")
}

// parseParams converts key=value arguments to typed field values
func parseParams(def *dialect.Message, args []string) (map[string]interface{}, error) {
	fields := make(map[string]interface{})

	for _, arg := range args {
		split := strings.SplitN(arg, "=", 2)
		if len(split) != 2 {
			return nil, fmt.Errorf("invalid parameter %q, expected key=value", arg)
		}

		field, ok := def.Field(split[0])
		if !ok {
			return nil, fmt.Errorf("%s has no field %s, expected: %s", def.Name, split[0], paramList(def))
		}

		value, err := field.Coerce(split[1])
		if err != nil {
			return nil, fmt.Errorf("%s: %w", split[0], err)
		}

		fields[field.Name] = value
	}

	return fields, nil
}

func paramList(def *dialect.Message) string {
	var names []string
	for _, f := range def.Fields {
		names = append(names, f.Name)
	}
	return strings.Join(names, ", ")
}

type reception struct {
	receiver int
	msg      *wire.Message
}

func runSend(cmd *cobra.Command, args []string) {
	configureLogging()

	set := loadDialect(cmd.Flag("dialect").Value.String())
	codec := wire.NewCodec(set)

	name := strings.ToUpper(args[0])
	def, ok := set.MessageByName(name)
	if !ok {
		log.FATAL.Fatalf("unknown message %s, see: navlink messages", name)
	}

	fields, err := parseParams(def, args[1:])
	if err != nil {
		log.FATAL.Fatal(err)
	}

	port1, _ := cmd.Flags().GetInt("port1")
	port2, _ := cmd.Flags().GetInt("port2")
	timeout, _ := cmd.Flags().GetDuration("timeout")

	fmt.Printf("sending %s %v\n", def.Name, fields)

	node1 := listen(port1, 251, codec, util.NewLogger("node1"))
	defer node1.Close()
	node2 := listen(port2, 252, codec, util.NewLogger("node2"))
	defer node2.Close()

	var mu sync.Mutex
	var received []reception

	handler := func(receiver int) node.Callback {
		return func(msg *wire.Message) {
			if msg.Name != def.Name {
				return
			}
			mu.Lock()
			received = append(received, reception{receiver, msg})
			mu.Unlock()
			fmt.Printf("endpoint %d <- sys %d: %s %v\n", receiver, msg.SysID, msg.Name, msg.Fields)
		}
	}
	node1.On("*", handler(1))
	node2.On("*", handler(2))

	waitVehicles(node1, node2, timeout)

	if err := node2.Send(def.Name, fields); err != nil {
		log.FATAL.Fatal(err)
	}

	fmt.Printf("waiting %v for message routing...\n", timeout)
	time.Sleep(timeout)

	mu.Lock()
	defer mu.Unlock()

	if drops := node1.Drops() + node2.Drops(); drops > 0 {
		log.WARN.Printf("%d frame(s) dropped for CRC mismatch, run: navlink crcs", drops)
	}

	if len(received) == 0 {
		fmt.Println("FAILED: no messages received")
		os.Exit(1)
	}

	fmt.Printf("PASSED: %d message(s) received\n", len(received))
}

func listen(port int, sysID uint8, codec *wire.Codec, log *util.Logger) *node.Node {
	n, err := node.Listen(fmt.Sprintf("0.0.0.0:%d", port), sysID, codec, log)
	if err != nil {
		log.FATAL.Fatal(err)
	}

	log.INFO.Printf("sys %d listening on %s", sysID, n.Addr())
	return n
}

// waitVehicles blocks until both endpoints have seen vehicle heartbeats and
// announced themselves, so the router knows where to deliver the injection
func waitVehicles(node1, node2 *node.Node, timeout time.Duration) {
	for i, n := range []*node.Node{node1, node2} {
		sysID, err := n.WaitHeartbeat(2 * timeout)
		if err != nil {
			log.FATAL.Fatalf("endpoint %d: no heartbeat, is the swarm running?", i+1)
		}
		log.INFO.Printf("endpoint %d: heartbeat from sys %d", i+1, sysID)

		if err := n.Heartbeat(); err != nil {
			log.FATAL.Fatal(err)
		}
	}
}
