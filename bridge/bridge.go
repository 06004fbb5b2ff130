// Package bridge republishes decoded navlink traffic to an MQTT broker so
// ground tooling can observe the swarm without speaking MAVLink.
package bridge

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/avast/retry-go"
	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/gartfeo/navlink/node"
	"github.com/gartfeo/navlink/util"
	"github.com/gartfeo/navlink/wire"
)

// Config is the bridge configuration, decoded weakly from the config file
type Config struct {
	Broker   string
	ClientID string
	Topic    string
	QoS      byte
}

// Bridge publishes messages to MQTT
type Bridge struct {
	log    *util.Logger
	client mqtt.Client
	topic  string
	qos    byte
}

// New connects to the broker, retrying a few times to ride out a broker
// that starts alongside the simulation.
func New(log *util.Logger, conf Config) (*Bridge, error) {
	if conf.Broker == "" {
		return nil, fmt.Errorf("missing broker")
	}
	if conf.ClientID == "" {
		conf.ClientID = "navlink-bridge"
	}
	if conf.Topic == "" {
		conf.Topic = "navlink"
	}

	opts := mqtt.NewClientOptions()
	opts.AddBroker(conf.Broker)
	opts.SetClientID(conf.ClientID)
	opts.SetAutoReconnect(true)

	client := mqtt.NewClient(opts)

	err := retry.Do(
		func() error {
			token := client.Connect()
			token.Wait()
			return token.Error()
		},
		retry.Attempts(5),
		retry.Delay(time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("could not connect %s: %w", conf.Broker, err)
	}

	log.INFO.Println("connected to", conf.Broker)

	return &Bridge{
		log:    log,
		client: client,
		topic:  conf.Topic,
		qos:    conf.QoS,
	}, nil
}

type payload struct {
	SysID  uint8                  `json:"sysid"`
	CompID uint8                  `json:"compid"`
	Fields map[string]interface{} `json:"fields"`
}

// Attach subscribes the bridge to all traffic seen by the node
func (b *Bridge) Attach(n *node.Node) {
	n.On("*", b.publish)
}

func (b *Bridge) publish(msg *wire.Message) {
	topic := fmt.Sprintf("%s/%d/%s", b.topic, msg.SysID, strings.ToLower(msg.Name))

	data, err := json.Marshal(payload{
		SysID:  msg.SysID,
		CompID: msg.CompID,
		Fields: msg.Fields,
	})
	if err != nil {
		b.log.ERROR.Println("marshal:", err)
		return
	}

	token := b.client.Publish(topic, b.qos, false, data)
	go func() {
		token.Wait()
		if err := token.Error(); err != nil {
			b.log.ERROR.Println("publish:", err)
		}
	}()
}

// Close disconnects from the broker
func (b *Bridge) Close() {
	b.client.Disconnect(250)
}
