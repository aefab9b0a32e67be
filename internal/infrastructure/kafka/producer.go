// Package kafka publica y consume eventos de movimiento de inventario.
package kafka

import (
	"context"
	"encoding/json"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/jhoicas/Bodega-api/internal/application/transaction"
)

var _ transaction.EventPublisher = (*Producer)(nil)

// Producer publica eventos al topic de movimientos.
type Producer struct {
	writer *kafka.Writer
}

// NewProducer construye el publicador.
func NewProducer(brokers []string, topic string) *Producer {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.LeastBytes{},
		BatchTimeout: 10 * time.Millisecond,
	}
	return &Producer{writer: writer}
}

// Publish serializa el evento como JSON con la clave dada (public id de la
// transacción, para que los movimientos de una misma transacción conserven
// orden por partición).
func (p *Producer) Publish(ctx context.Context, key string, event any) error {
	data, err := json.Marshal(event)
	if err != nil {
		return err
	}
	return p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(key),
		Value: data,
		Time:  time.Now(),
	})
}

// Close cierra el writer.
func (p *Producer) Close() error {
	return p.writer.Close()
}
