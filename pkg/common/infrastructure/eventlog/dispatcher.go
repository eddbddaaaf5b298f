package eventlog

import (
	"github.com/sirupsen/logrus"

	"marketplace/pkg/common/domain"
)

// Dispatcher logs every domain event with its payload. It stands in for a
// message broker; the domain only depends on the EventDispatcher contract.
type Dispatcher struct {
	logger logrus.FieldLogger
}

func NewDispatcher(logger logrus.FieldLogger) *Dispatcher {
	return &Dispatcher{logger: logger}
}

func (d *Dispatcher) Dispatch(event domain.Event) error {
	d.logger.WithFields(logrus.Fields{
		"event":   event.Type(),
		"payload": event,
	}).Info("domain event")
	return nil
}
