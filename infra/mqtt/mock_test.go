package mqtt

import (
	"sync"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
)

type published struct {
	topic   string
	qos     byte
	retain  bool
	payload []byte
}

// mockClient implements pahoClient for tests.
type mockClient struct {
	mu          sync.Mutex
	opts        *paho.ClientOptions
	connected   bool
	connectErr  error
	published   []published
	publishErrs []error
}

func (m *mockClient) IsConnected() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.connected
}

func (m *mockClient) Connect() paho.Token {
	if m.connectErr != nil {
		return &dummyToken{err: m.connectErr}
	}
	m.mu.Lock()
	m.connected = true
	m.mu.Unlock()
	if m.opts != nil && m.opts.OnConnect != nil {
		m.opts.OnConnect(nil)
	}
	return &dummyToken{}
}

func (m *mockClient) Disconnect(uint) {
	m.mu.Lock()
	m.connected = false
	m.mu.Unlock()
}

func (m *mockClient) Publish(topic string, qos byte, retain bool, payload interface{}) paho.Token {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.published = append(m.published, published{topic: topic, qos: qos, retain: retain, payload: payload.([]byte)})
	if len(m.publishErrs) > 0 {
		err := m.publishErrs[0]
		m.publishErrs = m.publishErrs[1:]
		return &dummyToken{err: err}
	}
	return &dummyToken{}
}

func (m *mockClient) messages() []published {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]published(nil), m.published...)
}

type dummyToken struct{ err error }

func (d *dummyToken) Wait() bool                     { return true }
func (d *dummyToken) WaitTimeout(time.Duration) bool { return true }
func (d *dummyToken) Done() <-chan struct{} {
	ch := make(chan struct{})
	close(ch)
	return ch
}
func (d *dummyToken) Error() error { return d.err }

func useMock(mc *mockClient) func() {
	newMQTTClient = func(o *paho.ClientOptions) pahoClient { mc.opts = o; return mc }
	return func() { newMQTTClient = func(opts *paho.ClientOptions) pahoClient { return paho.NewClient(opts) } }
}
