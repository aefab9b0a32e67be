package kafka

import (
	"context"

	"github.com/segmentio/kafka-go"

	"github.com/jhoicas/Bodega-api/pkg/logger"
)

// MessageHandler procesa un mensaje del topic de movimientos.
type MessageHandler func(ctx context.Context, key, value []byte) error

// Consumer lee el topic de movimientos dentro de un consumer group.
type Consumer struct {
	reader *kafka.Reader
	log    *logger.Logger
}

// NewConsumer construye el consumidor.
func NewConsumer(brokers []string, topic, groupID string, log *logger.Logger) *Consumer {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  brokers,
		Topic:    topic,
		GroupID:  groupID,
		MinBytes: 10e3, // 10KB
		MaxBytes: 10e6, // 10MB
	})
	return &Consumer{reader: reader, log: log}
}

// Consume procesa mensajes hasta que el contexto se cancele. Los errores de
// lectura o del handler se registran y el loop continúa.
func (c *Consumer) Consume(ctx context.Context, handler MessageHandler) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
			msg, err := c.reader.ReadMessage(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				c.log.Error().Err(err).Msg("leer mensaje")
				continue
			}
			if err := handler(ctx, msg.Key, msg.Value); err != nil {
				c.log.Error().Err(err).Str("key", string(msg.Key)).Msg("procesar mensaje")
			}
		}
	}
}

// Close cierra el reader.
func (c *Consumer) Close() error {
	return c.reader.Close()
}
