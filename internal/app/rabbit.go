package app

import (
	"github.com/rs/zerolog"

	"fleetpay/internal/config"
	"fleetpay/internal/events"
)

// NewEventPublisher connects the payment event publisher.
// It returns nil when RabbitMQ is not configured.
func NewEventPublisher(cfg config.RabbitMQConfig, log zerolog.Logger) (*events.RabbitPublisher, error) {
	if cfg.URL == "" {
		log.Info().Msg("RABBITMQ_URL not set, payment events are only logged")
		return nil, nil
	}

	publisher, err := events.NewRabbitPublisher(cfg.URL, cfg.Exchange)
	if err != nil {
		return nil, err
	}

	log.Info().Str("exchange", cfg.Exchange).Msg("payment event publisher connected")
	return publisher, nil
}
