package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/draintech/drainwatch/internal/config"
	"github.com/draintech/drainwatch/internal/device"
	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Message is the inbound notification payload published per device topic
type Message struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

// Receiver subscribes to per-device notification topics on the broker and
// hands inbound messages to the Notifier for display
type Receiver struct {
	client   mqtt.Client
	enabled  bool
	notifier Notifier
	logger   *zap.Logger
}

// NewReceiver creates a receiver for the configured broker. When the broker
// URL is empty or notifications are disabled, the receiver is inert.
func NewReceiver(cfg config.MQTTConfig, notifier Notifier, logger *zap.Logger) *Receiver {
	r := &Receiver{
		enabled:  cfg.NotificationsEnabled && cfg.BrokerURL != "",
		notifier: notifier,
		logger:   logger,
	}
	if !r.enabled {
		logger.Warn("notifications disabled, device alerts will not be shown")
		return r
	}

	clientID := cfg.ClientID
	if clientID == "" {
		clientID = "drainwatch-" + uuid.NewString()[:8]
	}

	opts := mqtt.NewClientOptions()
	opts.AddBroker(cfg.BrokerURL)
	opts.SetClientID(clientID)
	if cfg.Username != "" {
		opts.SetUsername(cfg.Username)
		opts.SetPassword(cfg.Password)
	}
	opts.SetAutoReconnect(true)
	opts.SetConnectionLostHandler(func(_ mqtt.Client, err error) {
		logger.Error("notification broker connection lost", zap.Error(err))
	})
	opts.SetReconnectingHandler(func(_ mqtt.Client, _ *mqtt.ClientOptions) {
		logger.Info("reconnecting to notification broker")
	})

	r.client = mqtt.NewClient(opts)
	return r
}

// Connect connects to the broker. Inert receivers connect trivially.
func (r *Receiver) Connect() error {
	if !r.enabled {
		return nil
	}
	token := r.client.Connect()
	if !token.WaitTimeout(10 * time.Second) {
		return fmt.Errorf("connection to notification broker timed out")
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("connecting to notification broker: %w", err)
	}
	r.logger.Info("connected to notification broker")
	return nil
}

// Disconnect detaches from the broker
func (r *Receiver) Disconnect() {
	if !r.enabled {
		return
	}
	r.client.Disconnect(250)
	r.logger.Info("disconnected from notification broker")
}

// SubscribeDevice starts delivering the device's notifications. Failures
// degrade to a logged warning; monitoring continues without notifications.
func (r *Receiver) SubscribeDevice(mac string) {
	if !r.enabled {
		return
	}
	topic := device.Topic(mac)
	token := r.client.Subscribe(topic, 0, r.handle)
	if !token.WaitTimeout(5 * time.Second) {
		r.logger.Warn("notification topic subscription timed out", zap.String("topic", topic))
		return
	}
	if err := token.Error(); err != nil {
		r.logger.Warn("failed to subscribe to notification topic",
			zap.String("topic", topic),
			zap.Error(err),
		)
		return
	}
	r.logger.Info("subscribed to notification topic", zap.String("topic", topic))
}

func (r *Receiver) handle(_ mqtt.Client, msg mqtt.Message) {
	var m Message
	if err := json.Unmarshal(msg.Payload(), &m); err != nil {
		r.logger.Warn("discarding malformed notification",
			zap.String("topic", msg.Topic()),
			zap.Error(err),
		)
		return
	}
	if m.Title == "" {
		m.Title = "Device alert"
	}
	if err := r.notifier.Notify(context.Background(), m.Title, m.Body); err != nil {
		r.logger.Warn("failed to display notification", zap.Error(err))
	}
}
