package homeassistant

import (
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
)

type fakeToken struct {
	err error
}

func (t *fakeToken) Wait() bool {
	return true
}

func (t *fakeToken) WaitTimeout(time.Duration) bool {
	return true
}

func (t *fakeToken) Done() <-chan struct{} {
	done := make(chan struct{})
	close(done)
	return done
}

func (t *fakeToken) Error() error {
	return t.err
}

type publishedMessage struct {
	topic    string
	payload  string
	retained bool
}

// fakeMqttClient records publishes and subscriptions.
type fakeMqttClient struct {
	published     []publishedMessage
	subscriptions map[string]mqtt.MessageHandler
}

func (c *fakeMqttClient) IsConnected() bool {
	return true
}

func (c *fakeMqttClient) IsConnectionOpen() bool {
	return true
}

func (c *fakeMqttClient) Connect() mqtt.Token {
	return &fakeToken{}
}

func (c *fakeMqttClient) Disconnect(quiesce uint) {}

func (c *fakeMqttClient) Publish(topic string, qos byte, retained bool, payload interface{}) mqtt.Token {
	var body string
	switch p := payload.(type) {
	case string:
		body = p
	case []byte:
		body = string(p)
	}

	c.published = append(c.published, publishedMessage{topic: topic, payload: body, retained: retained})
	return &fakeToken{}
}

func (c *fakeMqttClient) Subscribe(topic string, qos byte, callback mqtt.MessageHandler) mqtt.Token {
	if c.subscriptions == nil {
		c.subscriptions = make(map[string]mqtt.MessageHandler)
	}
	c.subscriptions[topic] = callback
	return &fakeToken{}
}

func (c *fakeMqttClient) SubscribeMultiple(filters map[string]byte, callback mqtt.MessageHandler) mqtt.Token {
	return &fakeToken{}
}

func (c *fakeMqttClient) Unsubscribe(topics ...string) mqtt.Token {
	return &fakeToken{}
}

func (c *fakeMqttClient) AddRoute(topic string, callback mqtt.MessageHandler) {}

func (c *fakeMqttClient) OptionsReader() mqtt.ClientOptionsReader {
	return mqtt.ClientOptionsReader{}
}

func (c *fakeMqttClient) payloadFor(topic string) (string, bool) {
	for i := len(c.published) - 1; i >= 0; i-- {
		if c.published[i].topic == topic {
			return c.published[i].payload, true
		}
	}
	return "", false
}
