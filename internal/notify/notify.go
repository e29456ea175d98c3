// Package notify delivers operator-facing notifications about terminal and
// attention-needed task states to a webhook, and optionally republishes
// them on a NATS subject for any other internal subscriber.
package notify

import (
	"bytes"
	"encoding/json"
	"net/http"
	"time"

	"github.com/nats-io/nats.go"
)

// Notifier sends a one-line operator message somewhere external.
type Notifier interface {
	Notify(message string) error
}

// Webhook posts {"content": message} to a Discord-compatible webhook URL.
// An empty URL makes Notify a documented no-op rather than an error, so a
// supervisor run without a configured webhook still proceeds.
type Webhook struct {
	URL    string
	Client *http.Client
}

// NewWebhook returns a Webhook with a sane request timeout.
func NewWebhook(url string) *Webhook {
	return &Webhook{URL: url, Client: &http.Client{Timeout: 10 * time.Second}}
}

func (w *Webhook) Notify(message string) error {
	if w.URL == "" {
		return nil
	}
	body, err := json.Marshal(map[string]string{"content": message})
	if err != nil {
		return err
	}
	resp, err := w.Client.Post(w.URL, "application/json", bytes.NewReader(body))
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	return nil
}

// NATSBus republishes every notification on a subject, letting other
// internal tooling (dashboards, the tool façade) subscribe without polling
// the registry file.
type NATSBus struct {
	conn    *nats.Conn
	subject string
}

// NewNATSBus connects to url and returns a bus publishing to subject. A
// connection failure is returned to the caller so it can fall back to
// webhook-only delivery instead of blocking startup.
func NewNATSBus(url, subject string) (*NATSBus, error) {
	conn, err := nats.Connect(url)
	if err != nil {
		return nil, err
	}
	return &NATSBus{conn: conn, subject: subject}, nil
}

func (b *NATSBus) Notify(message string) error {
	return b.conn.Publish(b.subject, []byte(message))
}

func (b *NATSBus) Close() {
	b.conn.Close()
}

// Multi fans a single Notify call out to several notifiers, trying every
// sink and returning the first error encountered, if any.
type Multi struct {
	Sinks []Notifier
}

func (m Multi) Notify(message string) error {
	var first error
	for _, sink := range m.Sinks {
		if sink == nil {
			continue
		}
		if err := sink.Notify(message); err != nil && first == nil {
			first = err
		}
	}
	return first
}
