// README: Desk events and the relational rows they map to in the remote schema.
package mirror

import (
	"strconv"

	sq "github.com/Masterminds/squirrel"

	"parkdesk/internal/modules/ledger"
	"parkdesk/internal/modules/pricing"
	"parkdesk/internal/modules/subscription"
	"parkdesk/internal/types"
)

// Column names below are the remote schema's contract.

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

type Statement struct {
	SQL  string
	Args []any
}

// Event is a committed desk change. Statements builds the SQL that mirrors it.
type Event interface {
	Kind() string
	Statements() ([]Statement, error)
}

type EntryRecorded struct {
	Vehicle ledger.Vehicle
}

type ExitRecorded struct {
	Vehicle ledger.Vehicle
	Payment ledger.Payment
}

type SubscriptionSaved struct {
	Subscription subscription.Subscription
}

type SubscriptionPaid struct {
	Subscription subscription.Subscription
	Payment      subscription.Payment
	Method       types.PaymentMethod
}

type SubscriptionDeleted struct {
	ID types.ID
}

type TariffUpdated struct {
	Tariff pricing.Tariff
}

func (EntryRecorded) Kind() string       { return "entry" }
func (ExitRecorded) Kind() string        { return "exit" }
func (SubscriptionSaved) Kind() string   { return "subscription_saved" }
func (SubscriptionPaid) Kind() string    { return "subscription_paid" }
func (SubscriptionDeleted) Kind() string { return "subscription_deleted" }
func (TariffUpdated) Kind() string       { return "tariff" }

func (e EntryRecorded) Statements() ([]Statement, error) {
	v := e.Vehicle
	return build(
		psql.Insert("vehiculos").
			Columns("id", "placa", "tipo").
			Values(string(v.ID), v.Plate, string(v.Type)).
			Suffix("ON CONFLICT (placa) DO NOTHING"),
		ingreso(v),
	)
}

// ingreso upserts the entry row. Exits use it too, so a stay whose entry was
// never mirrored (seeded, pre-mirror or dropped) still satisfies the salidas
// foreign key.
func ingreso(v ledger.Vehicle) sq.InsertBuilder {
	return psql.Insert("ingresos").
		Columns("id", "placa", "tipo_vehiculo", "tipo_cobro", "fecha_entrada", "espacio", "ticket_code", "numero_casco", "estado").
		Values(string(v.ID), v.Plate, string(v.Type), string(v.RateType), v.EntryTime, string(v.SpaceID), v.TicketCode, nullable(v.HelmetNumber), string(v.Status)).
		Suffix("ON CONFLICT (id) DO UPDATE SET estado = EXCLUDED.estado")
}

func (e ExitRecorded) Statements() ([]Statement, error) {
	v, p := e.Vehicle, e.Payment
	exitAt := p.Date
	if v.ExitTime != nil {
		exitAt = *v.ExitTime
	}
	return build(
		ingreso(v),
		psql.Insert("salidas").
			Columns("id", "ingreso_id", "placa", "tipo_vehiculo", "tipo_cobro", "fecha_entrada", "fecha_salida", "duracion_minutos", "subtotal", "descuento", "total", "convenio").
			Values(string(p.ID), string(v.ID), v.Plate, string(v.Type), string(p.RateType), v.EntryTime, exitAt, p.Duration, p.Subtotal, p.Discount, p.Amount, p.Convenio),
		psql.Insert("pagos").
			Columns("id", "salida_id", "placa", "tipo_vehiculo", "tipo_cobro", "subtotal", "descuento", "total", "metodo_pago", "fecha_pago", "convenio", "estado").
			Values(string(p.ID), string(p.ID), p.Plate, string(p.VehicleType), string(p.RateType), p.Subtotal, p.Discount, p.Amount, string(p.Method), p.Date, p.Convenio, string(p.Status)),
	)
}

func (e SubscriptionSaved) Statements() ([]Statement, error) {
	s := e.Subscription
	return build(
		psql.Insert("mensualidades").
			Columns("id", "placa", "nombre_cliente", "telefono", "tipo_vehiculo", "dia_corte", "precio", "fecha_inicio", "estado").
			Values(string(s.ID), s.Plate, s.ClientName, nullable(s.Phone), string(s.VehicleType), s.CutDay, s.Price, s.StartDate, string(s.Status)).
			Suffix("ON CONFLICT (id) DO UPDATE SET nombre_cliente = EXCLUDED.nombre_cliente, telefono = EXCLUDED.telefono, dia_corte = EXCLUDED.dia_corte, precio = EXCLUDED.precio, estado = EXCLUDED.estado, updated_at = now()"),
	)
}

func (e SubscriptionPaid) Statements() ([]Statement, error) {
	s, p := e.Subscription, e.Payment
	method := e.Method
	if method == "" {
		method = types.PaymentCash
	}
	return build(
		psql.Insert("mensualidad_pagos").
			Columns("id", "mensualidad_id", "mes_pagado", "anio_pagado", "monto", "fecha_pago").
			Values(string(p.ID), string(s.ID), p.Month, p.Year, p.Amount, p.Date),
		psql.Insert("pagos").
			Columns("id", "mensualidad_pago_id", "placa", "tipo_vehiculo", "tipo_cobro", "subtotal", "descuento", "total", "metodo_pago", "fecha_pago", "convenio", "estado").
			Values(string(p.ID), string(p.ID), s.Plate, string(s.VehicleType), string(types.RateMonthly), p.Amount, 0, p.Amount, string(method), p.Date, false, string(ledger.PaymentPaid)),
		psql.Update("mensualidades").
			Set("estado", string(s.Status)).
			Set("updated_at", sq.Expr("now()")).
			Where(sq.Eq{"id": string(s.ID)}),
	)
}

func (e SubscriptionDeleted) Statements() ([]Statement, error) {
	return build(
		psql.Delete("mensualidad_pagos").Where(sq.Eq{"mensualidad_id": string(e.ID)}),
		psql.Delete("mensualidades").Where(sq.Eq{"id": string(e.ID)}),
	)
}

// Statements upserts one tarifas row per (vehicle type, rate type) and the
// scalar settings as configuracion rows.
func (e TariffUpdated) Statements() ([]Statement, error) {
	t := e.Tariff
	var parts []sq.Sqlizer
	for _, vt := range t.VehicleTypes {
		for _, rt := range append(append([]types.RateType(nil), types.BillableRates...), types.RateMonthly) {
			price, ok := t.Rates[vt][rt]
			if !ok {
				continue
			}
			parts = append(parts, psql.Insert("tarifas").
				Columns("id", "tipo_vehiculo", "tipo_cobro", "precio").
				Values(string(vt)+"_"+string(rt), string(vt), string(rt), price).
				Suffix("ON CONFLICT (tipo_vehiculo, tipo_cobro) DO UPDATE SET precio = EXCLUDED.precio, updated_at = now()"))
		}
	}
	settings := []struct{ key, value, desc string }{
		{"nombre", t.Name, "Nombre del parqueadero"},
		{"moneda", t.Currency, "Moneda"},
		{"periodo_gracia", strconv.Itoa(t.Grace()), "Minutos de gracia"},
		{"convenio_minimo_horas", strconv.Itoa(t.ConvenioMinimumHours), "Horas mínimas con convenio"},
	}
	for _, vt := range t.VehicleTypes {
		settings = append(settings, struct{ key, value, desc string }{
			"espacios_" + string(vt), strconv.Itoa(t.TotalSpaces[vt]), "Espacios " + string(vt),
		})
	}
	for _, s := range settings {
		parts = append(parts, psql.Insert("configuracion").
			Columns("id", "clave", "valor", "descripcion").
			Values(s.key, s.key, s.value, s.desc).
			Suffix("ON CONFLICT (clave) DO UPDATE SET valor = EXCLUDED.valor, updated_at = now()"))
	}
	return build(parts...)
}

func build(parts ...sq.Sqlizer) ([]Statement, error) {
	out := make([]Statement, 0, len(parts))
	for _, p := range parts {
		query, args, err := p.ToSql()
		if err != nil {
			return nil, err
		}
		out = append(out, Statement{SQL: query, Args: args})
	}
	return out, nil
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
