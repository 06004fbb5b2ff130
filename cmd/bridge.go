package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/gartfeo/navlink/bridge"
	"github.com/gartfeo/navlink/node"
	"github.com/gartfeo/navlink/util"
	"github.com/gartfeo/navlink/wire"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// bridgeCmd represents the bridge command
var bridgeCmd = &cobra.Command{
	Use:   "bridge",
	Short: "Republish navlink traffic to MQTT",
	Long: `Attaches to a mavlink-router endpoint and publishes every decoded navlink
message as JSON to <topic>/<sysid>/<message>. Broker and topic can also be
set in the config file under the mqtt key.`,
	Run: runBridge,
}

func init() {
	rootCmd.AddCommand(bridgeCmd)

	bridgeCmd.Flags().String("broker", "", "MQTT broker, e.g. tcp://localhost:1883")
	bridgeCmd.Flags().Int("port", 14550, "UDP endpoint port")
	bridgeCmd.Flags().Uint8("system", 250, "MAVLink system id of the bridge endpoint")
	bridgeCmd.Flags().String("dialect", "", "Dialect XML root file (default: built-in navlink definitions)")
	_ = viper.BindPFlag("mqtt.broker", bridgeCmd.Flags().Lookup("broker"))
}

func runBridge(cmd *cobra.Command, args []string) {
	configureLogging()

	var conf bridge.Config
	if settings := viper.GetStringMap("mqtt"); len(settings) > 0 {
		if err := util.DecodeOther(settings, &conf); err != nil {
			log.FATAL.Fatal(fmt.Errorf("mqtt config: %w", err))
		}
	}
	if broker := viper.GetString("mqtt.broker"); broker != "" {
		conf.Broker = broker
	}

	b, err := bridge.New(util.NewLogger("mqtt"), conf)
	if err != nil {
		log.FATAL.Fatal(err)
	}
	defer b.Close()

	set := loadDialect(cmd.Flag("dialect").Value.String())
	port, _ := cmd.Flags().GetInt("port")
	system, _ := cmd.Flags().GetUint8("system")

	n, err := node.Listen(fmt.Sprintf("0.0.0.0:%d", port), system, wire.NewCodec(set), util.NewLogger("node"))
	if err != nil {
		log.FATAL.Fatal(err)
	}
	defer n.Close()

	b.Attach(n)
	log.INFO.Printf("bridging %s to %s", n.Addr(), conf.Broker)

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop
}
