package dump

import (
	"bytes"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/pkg/errors"
)

const publishTimeout = 5 * time.Second

// Publisher is the part of mqtt.Client the writer needs.
type Publisher interface {
	Publish(topic string, qos byte, retained bool, payload interface{}) mqtt.Token
}

// MQTTWriter implements io.Writer by publishing every write to a topic.
// Trailing newlines are stripped so each message is one line.
type MQTTWriter struct {
	client Publisher
	topic  string
	wait   bool
}

// NewMQTTWriter creates a writer publishing to topic. With wait set, Write
// blocks until the broker has the message and reports publish errors;
// without it writes are fire-and-forget, which suits log output.
func NewMQTTWriter(client Publisher, topic string, wait bool) *MQTTWriter {
	return &MQTTWriter{client: client, topic: topic, wait: wait}
}

// Write publishes a copy of p.
func (w *MQTTWriter) Write(p []byte) (int, error) {
	// p may be reused by the caller after Write returns
	payload := bytes.TrimRight(append([]byte(nil), p...), "\n")

	token := w.client.Publish(w.topic, 0, false, payload)
	if !w.wait {
		return len(p), nil
	}
	if !token.WaitTimeout(publishTimeout) {
		return 0, errors.Errorf("publish to %s timed out", w.topic)
	}
	if err := token.Error(); err != nil {
		return 0, errors.Wrapf(err, "publish to %s", w.topic)
	}
	return len(p), nil
}

// DialMQTT connects a client to broker.
func DialMQTT(broker, clientID string) (mqtt.Client, error) {
	opts := mqtt.NewClientOptions().
		AddBroker(broker).
		SetClientID(clientID).
		SetAutoReconnect(true).
		SetConnectTimeout(publishTimeout)
	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return nil, errors.Wrapf(token.Error(), "connecting to MQTT broker %s", broker)
	}
	return client, nil
}
