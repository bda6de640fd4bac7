package mqtt

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"os"
	"sync"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/sethvargo/go-retry"

	"github.com/kilianp07/rulecheck/infra/logger"
)

// DefaultTopic is the topic prefix used when Config.Topic is empty.
const DefaultTopic = "rulecheck"

// Config defines the connection parameters for the Paho MQTT client.
type Config struct {
	Broker     string      `json:"broker" koanf:"broker"`
	ClientID   string      `json:"client_id" koanf:"client_id"`
	Username   string      `json:"username" koanf:"username"`
	Password   string      `json:"password" koanf:"password"`
	Topic      string      `json:"topic" koanf:"topic"`
	QoS        byte        `json:"qos" koanf:"qos"`
	Retain     bool        `json:"retain" koanf:"retain"`
	UseTLS     bool        `json:"use_tls" koanf:"use_tls"`
	ClientCert string      `json:"client_cert" koanf:"client_cert"`
	ClientKey  string      `json:"client_key" koanf:"client_key"`
	CABundle   string      `json:"ca_bundle" koanf:"ca_bundle"`
	AuthMethod string      `json:"auth_method" koanf:"auth_method"`
	LWTPayload string      `json:"lwt_payload" koanf:"lwt_payload"`
	MaxRetries int         `json:"max_retries" koanf:"max_retries"`
	BackoffMS  int         `json:"backoff_ms" koanf:"backoff_ms"`
	TLSConfig  *tls.Config `json:"-" koanf:"-"`
}

// pahoClient is the subset of paho.Client used by Publisher.
type pahoClient interface {
	IsConnected() bool
	Connect() paho.Token
	Disconnect(quiesce uint)
	Publish(topic string, qos byte, retained bool, payload interface{}) paho.Token
	Subscribe(topic string, qos byte, callback paho.MessageHandler) paho.Token
}

var newMQTTClient = func(opts *paho.ClientOptions) pahoClient {
	return paho.NewClient(opts)
}

// Publisher sends validation outcomes to an MQTT broker and listens for
// revalidation commands on <topic>/control.
type Publisher struct {
	cli        pahoClient
	topic      string
	qos        byte
	retain     bool
	maxRetries int
	backoff    time.Duration
	logger     logger.Logger

	mu        sync.Mutex
	onControl func(cmd string)
}

// NewPublisher connects to the broker and subscribes to the control topic.
// The status topic carries "online" while connected and the last will
// payload otherwise.
func NewPublisher(cfg Config) (*Publisher, error) {
	if cfg.Topic == "" {
		cfg.Topic = DefaultTopic
	}
	opts, err := NewClientOptions(cfg)
	if err != nil {
		return nil, err
	}
	log := logger.New("mqtt_publisher")
	p := &Publisher{
		topic:      cfg.Topic,
		qos:        cfg.QoS,
		retain:     cfg.Retain,
		maxRetries: cfg.MaxRetries,
		backoff:    time.Duration(cfg.BackoffMS) * time.Millisecond,
		logger:     log,
	}
	if p.maxRetries <= 0 {
		p.maxRetries = 3
	}
	if p.backoff <= 0 {
		p.backoff = 100 * time.Millisecond
	}

	opts.OnConnect = func(c paho.Client) {
		log.Infof("MQTT connected")
		if token := c.Subscribe(p.ControlTopic(), p.qos, p.onMessage); token.Wait() && token.Error() != nil {
			log.Errorf("subscribe error: %v", token.Error())
		}
		c.Publish(p.StatusTopic(), 1, true, "online")
	}
	opts.OnConnectionLost = func(_ paho.Client, err error) {
		log.Errorf("connection lost: %v", err)
	}
	opts.OnReconnecting = func(_ paho.Client, _ *paho.ClientOptions) {
		log.Warnf("reconnecting to MQTT broker")
	}
	c := newMQTTClient(opts)
	if token := c.Connect(); token.Wait() && token.Error() != nil {
		return nil, token.Error()
	}
	p.cli = c
	return p, nil
}

// NewClientOptions builds mqtt client options from Config.
func NewClientOptions(cfg Config) (*paho.ClientOptions, error) {
	if cfg.Topic == "" {
		cfg.Topic = DefaultTopic
	}
	opts := paho.NewClientOptions().AddBroker(cfg.Broker).SetClientID(cfg.ClientID)
	opts.AutoReconnect = true
	if cfg.AuthMethod == "username_password" || cfg.AuthMethod == "both" || cfg.AuthMethod == "" {
		if cfg.Username != "" {
			opts.SetUsername(cfg.Username)
		}
		if cfg.Password != "" {
			opts.SetPassword(cfg.Password)
		}
	}
	if cfg.UseTLS {
		tlsCfg, err := cfg.LoadTLSConfig()
		if err != nil {
			return nil, err
		}
		opts.SetTLSConfig(tlsCfg)
	}
	payload := cfg.LWTPayload
	if payload == "" {
		payload = "offline"
	}
	opts.SetWill(cfg.Topic+"/status", payload, 1, true)
	return opts, nil
}

// LoadTLSConfig loads the TLS configuration from the file paths in the config.
func (c Config) LoadTLSConfig() (*tls.Config, error) {
	if c.TLSConfig != nil {
		return c.TLSConfig, nil
	}
	if c.ClientCert == "" || c.ClientKey == "" || c.CABundle == "" {
		return nil, fmt.Errorf("tls config requires client_cert, client_key and ca_bundle")
	}
	cert, err := tls.LoadX509KeyPair(c.ClientCert, c.ClientKey)
	if err != nil {
		return nil, fmt.Errorf("load cert: %w", err)
	}
	caBytes, err := os.ReadFile(c.CABundle)
	if err != nil {
		return nil, fmt.Errorf("read ca: %w", err)
	}
	pool := x509.NewCertPool()
	pool.AppendCertsFromPEM(caBytes)
	return &tls.Config{Certificates: []tls.Certificate{cert}, RootCAs: pool, MinVersion: tls.VersionTLS12}, nil
}

// ControlTopic is the topic on which revalidation commands are received.
func (p *Publisher) ControlTopic() string { return p.topic + "/control" }

// StatusTopic carries the retained online/offline state.
func (p *Publisher) StatusTopic() string { return p.topic + "/status" }

// OnControl registers the handler called for each control message.
func (p *Publisher) OnControl(fn func(cmd string)) {
	p.mu.Lock()
	p.onControl = fn
	p.mu.Unlock()
}

func (p *Publisher) onMessage(_ paho.Client, msg paho.Message) {
	p.mu.Lock()
	fn := p.onControl
	p.mu.Unlock()
	cmd := string(msg.Payload())
	if fn == nil {
		p.logger.Debugf("control message %q ignored", cmd)
		return
	}
	p.logger.Infof("control message %q", cmd)
	fn(cmd)
}

// publish sends payload, retrying failed tokens with exponential backoff.
func (p *Publisher) publish(topic string, payload []byte) error {
	b := retry.WithMaxRetries(uint64(p.maxRetries), retry.NewExponential(p.backoff))
	attempt := 0
	err := retry.Do(context.Background(), b, func(_ context.Context) error {
		attempt++
		token := p.cli.Publish(topic, p.qos, p.retain, payload)
		token.Wait()
		if err := token.Error(); err != nil {
			p.logger.Errorf("publish attempt %d failed: %v", attempt, err)
			return retry.RetryableError(err)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("publish %s: %w", topic, err)
	}
	p.logger.Debugf("published %d bytes to %s", len(payload), topic)
	return nil
}

// Disconnect marks the publisher offline and closes the MQTT connection.
func (p *Publisher) Disconnect() {
	if p.cli != nil && p.cli.IsConnected() {
		p.cli.Publish(p.StatusTopic(), 1, true, "offline").Wait()
		p.cli.Disconnect(250)
	}
}
