// Siembra las clases de unidades de referencia (COUNT, WEIGHT, LENGTH) con
// sus conversiones a unidad base. Idempotente a nivel de clase: si la clase
// ya existe se omite.
package main

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Bodega-api/internal/application/uom"
	"github.com/jhoicas/Bodega-api/internal/domain"
	"github.com/jhoicas/Bodega-api/internal/infrastructure/postgres"
	"github.com/jhoicas/Bodega-api/pkg/config"
	"github.com/jhoicas/Bodega-api/pkg/logger"
)

type seedUnit struct {
	code   string
	name   string
	factor string
}

type seedClass struct {
	code     string
	name     string
	baseCode string
	baseName string
	units    []seedUnit
}

var seedClasses = []seedClass{
	{
		code: "COUNT", name: "Conteo", baseCode: "EA", baseName: "Unidad",
		units: []seedUnit{
			{code: "BOX", name: "Caja x12", factor: "12"},
			{code: "DZ", name: "Docena", factor: "12"},
			{code: "PAL", name: "Pallet x144", factor: "144"},
		},
	},
	{
		code: "WEIGHT", name: "Peso", baseCode: "G", baseName: "Gramo",
		units: []seedUnit{
			{code: "KG", name: "Kilogramo", factor: "1000"},
			{code: "LB", name: "Libra", factor: "453.592"},
		},
	},
	{
		code: "LENGTH", name: "Longitud", baseCode: "CM", baseName: "Centímetro",
		units: []seedUnit{
			{code: "M", name: "Metro", factor: "100"},
			{code: "MM", name: "Milímetro", factor: "0.1"},
		},
	},
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.App.LogLevel})

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	svc := uom.NewConversionService(postgres.NewUOMClassRepository(pool))

	for _, sc := range seedClasses {
		if _, err := svc.CreateClass(ctx, sc.code, sc.name, sc.baseCode, sc.baseName); err != nil {
			if errors.Is(err, domain.ErrDuplicate) {
				log.Info().Str("class", sc.code).Msg("clase ya existe, omitida")
				continue
			}
			log.Fatal().Err(err).Str("class", sc.code).Msg("crear clase")
		}
		for _, u := range sc.units {
			factor, err := decimal.NewFromString(u.factor)
			if err != nil {
				log.Fatal().Err(err).Str("uom", u.code).Msg("factor inválido")
			}
			if err := svc.AddUnit(ctx, sc.code, u.code, u.name, factor); err != nil {
				log.Fatal().Err(err).Str("class", sc.code).Str("uom", u.code).Msg("agregar unidad")
			}
		}
		log.Info().Str("class", sc.code).Int("units", len(sc.units)+1).Msg("clase sembrada")
	}
}
