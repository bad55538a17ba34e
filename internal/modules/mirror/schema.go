// README: DDL for the remote schema, applied on startup when the mirror is enabled.
package mirror

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
)

const Schema = `
CREATE TABLE IF NOT EXISTS configuracion (
	id TEXT PRIMARY KEY,
	clave TEXT NOT NULL UNIQUE,
	valor TEXT NOT NULL,
	descripcion TEXT,
	updated_at TIMESTAMPTZ DEFAULT now()
);
CREATE TABLE IF NOT EXISTS vehiculos (
	id TEXT PRIMARY KEY,
	placa TEXT NOT NULL UNIQUE,
	tipo TEXT NOT NULL,
	created_at TIMESTAMPTZ DEFAULT now()
);
CREATE TABLE IF NOT EXISTS ingresos (
	id TEXT PRIMARY KEY,
	placa TEXT NOT NULL,
	tipo_vehiculo TEXT NOT NULL,
	tipo_cobro TEXT NOT NULL,
	fecha_entrada TIMESTAMPTZ NOT NULL,
	espacio TEXT NOT NULL,
	ticket_code TEXT NOT NULL,
	numero_casco TEXT,
	estado TEXT NOT NULL,
	created_at TIMESTAMPTZ DEFAULT now()
);
CREATE TABLE IF NOT EXISTS salidas (
	id TEXT PRIMARY KEY,
	ingreso_id TEXT NOT NULL REFERENCES ingresos(id),
	placa TEXT NOT NULL,
	tipo_vehiculo TEXT NOT NULL,
	tipo_cobro TEXT NOT NULL,
	fecha_entrada TIMESTAMPTZ NOT NULL,
	fecha_salida TIMESTAMPTZ NOT NULL,
	duracion_minutos INTEGER NOT NULL,
	subtotal BIGINT NOT NULL,
	descuento BIGINT NOT NULL,
	total BIGINT NOT NULL,
	convenio BOOLEAN NOT NULL DEFAULT false,
	created_at TIMESTAMPTZ DEFAULT now()
);
CREATE TABLE IF NOT EXISTS mensualidades (
	id TEXT PRIMARY KEY,
	placa TEXT NOT NULL,
	nombre_cliente TEXT NOT NULL,
	telefono TEXT,
	tipo_vehiculo TEXT NOT NULL,
	dia_corte INTEGER NOT NULL,
	precio BIGINT NOT NULL,
	fecha_inicio TIMESTAMPTZ NOT NULL,
	estado TEXT NOT NULL,
	created_at TIMESTAMPTZ DEFAULT now(),
	updated_at TIMESTAMPTZ DEFAULT now()
);
CREATE TABLE IF NOT EXISTS mensualidad_pagos (
	id TEXT PRIMARY KEY,
	mensualidad_id TEXT NOT NULL REFERENCES mensualidades(id),
	mes_pagado INTEGER NOT NULL,
	anio_pagado INTEGER NOT NULL,
	monto BIGINT NOT NULL,
	fecha_pago TIMESTAMPTZ NOT NULL,
	created_at TIMESTAMPTZ DEFAULT now()
);
CREATE TABLE IF NOT EXISTS pagos (
	id TEXT PRIMARY KEY,
	salida_id TEXT REFERENCES salidas(id),
	mensualidad_pago_id TEXT,
	placa TEXT NOT NULL,
	tipo_vehiculo TEXT NOT NULL,
	tipo_cobro TEXT NOT NULL,
	subtotal BIGINT NOT NULL,
	descuento BIGINT NOT NULL,
	total BIGINT NOT NULL,
	metodo_pago TEXT NOT NULL,
	fecha_pago TIMESTAMPTZ NOT NULL,
	convenio BOOLEAN NOT NULL DEFAULT false,
	estado TEXT NOT NULL,
	created_at TIMESTAMPTZ DEFAULT now()
);
CREATE TABLE IF NOT EXISTS tarifas (
	id TEXT PRIMARY KEY,
	tipo_vehiculo TEXT NOT NULL,
	tipo_cobro TEXT NOT NULL,
	precio BIGINT NOT NULL,
	updated_at TIMESTAMPTZ DEFAULT now(),
	UNIQUE (tipo_vehiculo, tipo_cobro)
);
`

func (s *Service) EnsureSchema(ctx context.Context) error {
	return pgx.BeginFunc(ctx, s.db, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, Schema); err != nil {
			return fmt.Errorf("%w: schema: %v", ErrExecQuery, err)
		}
		return nil
	})
}
