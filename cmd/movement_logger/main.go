// Consume el topic de movimientos de inventario y registra cada transacción
// completada (auditoría liviana de los eventos publicados por el motor).
package main

import (
	"context"
	"encoding/json"
	"errors"
	"os/signal"
	"syscall"

	apptxn "github.com/jhoicas/Bodega-api/internal/application/transaction"
	"github.com/jhoicas/Bodega-api/internal/infrastructure/kafka"
	"github.com/jhoicas/Bodega-api/pkg/config"
	"github.com/jhoicas/Bodega-api/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.App.LogLevel})

	if len(cfg.Kafka.Brokers) == 0 {
		log.Fatal().Msg("KAFKA_BROKERS no configurado")
	}

	consumer := kafka.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.Topic, cfg.Kafka.GroupID, log)
	defer consumer.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	log.Info().Strs("brokers", cfg.Kafka.Brokers).Str("topic", cfg.Kafka.Topic).Msg("escuchando movimientos")

	err = consumer.Consume(ctx, func(_ context.Context, key, value []byte) error {
		var ev apptxn.TransactionCompletedEvent
		if err := json.Unmarshal(value, &ev); err != nil {
			return err
		}
		log.Info().
			Str("trans_num", ev.TransNum).
			Str("type", ev.Type).
			Int("deltas", len(ev.Deltas)).
			Time("occurred_at", ev.OccurredAt).
			Msg("transacción completada")
		return nil
	})
	if err != nil && !errors.Is(err, context.Canceled) {
		log.Fatal().Err(err).Msg("consumidor detenido")
	}
}
