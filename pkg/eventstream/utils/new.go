// Package eventstreamutils builds the configured answer event publisher
package eventstreamutils

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/papercomputeco/medrag/pkg/eventstream"
	"github.com/papercomputeco/medrag/pkg/eventstream/kafka"
	"github.com/papercomputeco/medrag/pkg/eventstream/nop"
	"github.com/papercomputeco/medrag/pkg/eventstream/worker"
)

type NewPublisherOpts struct {
	ProviderType string
	Brokers      []string
	Topic        string
	NumWorkers   uint
	QueueSize    uint
	Logger       *zap.Logger
}

// NewPublisher returns a no-op publisher for "" and "nop". Backends that do
// network IO are wrapped in an async worker pool.
func NewPublisher(o *NewPublisherOpts) (eventstream.Publisher, error) {
	switch o.ProviderType {
	case "", "nop", "none":
		return nop.NewPublisher(), nil
	case "kafka":
		pub, err := kafka.NewPublisher(kafka.Config{
			Brokers: o.Brokers,
			Topic:   o.Topic,
			Logger:  o.Logger,
		})
		if err != nil {
			return nil, err
		}
		return worker.NewPool(&worker.Config{
			Publisher:  pub,
			NumWorkers: o.NumWorkers,
			QueueSize:  o.QueueSize,
			Logger:     o.Logger,
		})
	default:
		return nil, fmt.Errorf("unsupported eventstream provider: %s", o.ProviderType)
	}
}
