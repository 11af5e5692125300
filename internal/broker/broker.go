// Package broker owns the pub/sub transport: connecting to the MQTT broker,
// publishing transcription results and disconnecting cleanly.
package broker

import (
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	mqtt "github.com/eclipse/paho.mqtt.golang"
)

// Connection is the transport boundary. Publish is best effort: a delivery
// failure is reported to the caller and must never be fatal to the session.
type Connection interface {
	Publish(topic, payload string) error
	Disconnect()
}

type Config struct {
	Address        string
	Port           int
	ClientID       string
	Username       string
	Password       string
	ConnectTimeout time.Duration
	PublishTimeout time.Duration
}

type mqttConnection struct {
	client  mqtt.Client
	timeout time.Duration
	logger  *log.Logger
}

// Connect establishes the broker connection. A failure here is a startup
// error: the caller must not enter the transcription loop without transport.
func Connect(cfg Config) (Connection, error) {
	logger := log.WithPrefix("broker")

	opts := mqtt.NewClientOptions().
		AddBroker(fmt.Sprintf("tcp://%s:%d", cfg.Address, cfg.Port)).
		SetClientID(cfg.ClientID).
		SetConnectTimeout(cfg.ConnectTimeout).
		SetAutoReconnect(true)
	if cfg.Username != "" {
		opts.SetUsername(cfg.Username)
		opts.SetPassword(cfg.Password)
	}
	opts.SetConnectionLostHandler(func(_ mqtt.Client, err error) {
		logger.Warn("connection lost", "err", err)
	})
	opts.SetOnConnectHandler(func(_ mqtt.Client) {
		logger.Info("connected", "address", cfg.Address, "port", cfg.Port, "client_id", cfg.ClientID)
	})

	client := mqtt.NewClient(opts)
	token := client.Connect()
	if !token.WaitTimeout(cfg.ConnectTimeout) {
		return nil, fmt.Errorf("connect to %s:%d: timeout after %v", cfg.Address, cfg.Port, cfg.ConnectTimeout)
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("connect to %s:%d: %w", cfg.Address, cfg.Port, err)
	}

	return &mqttConnection{client: client, timeout: cfg.PublishTimeout, logger: logger}, nil
}

func (c *mqttConnection) Publish(topic, payload string) error {
	token := c.client.Publish(topic, 0, false, payload)
	if !token.WaitTimeout(c.timeout) {
		return fmt.Errorf("publish to %s: timeout after %v", topic, c.timeout)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("publish to %s: %w", topic, err)
	}
	return nil
}

func (c *mqttConnection) Disconnect() {
	c.client.Disconnect(250)
	c.logger.Info("disconnected")
}
