package broker

import (
	"encoding/json"

	"github.com/avvvet/hobheap-services/internal/comm"
	"github.com/nats-io/nats.go"
	log "github.com/sirupsen/logrus"
)

// Publisher emits domain events. Delivery is best effort: failures are
// logged and never reach the caller.
type Publisher interface {
	Publish(eventType string, data any)
}

// Nop drops every event. Used when NATS is not configured.
type Nop struct{}

func (Nop) Publish(string, any) {}

type Broker struct {
	Conn    *nats.Conn
	source  string
	publish func(subject string, payload []byte) error
}

func NewBroker(nc *nats.Conn, source string) *Broker {
	return &Broker{
		Conn:    nc,
		source:  source,
		publish: nc.Publish,
	}
}

func (b *Broker) Publish(eventType string, data any) {
	event, err := comm.NewEvent(b.source, eventType, data)
	if err != nil {
		log.Errorf("error [Publish] unable to marshal %s data: %v", eventType, err)
		return
	}

	payload, err := json.Marshal(event)
	if err != nil {
		log.Errorf("error [Publish] unable to marshal %s event: %v", eventType, err)
		return
	}

	subject := comm.Subject(eventType)
	if err := b.publish(subject, payload); err != nil {
		log.Errorf("Error publishing to topic %s: %s", subject, err)
	}
}
