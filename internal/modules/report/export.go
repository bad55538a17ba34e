// README: CSV and JSON exports of payments and exited vehicles.
package report

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"time"

	"parkdesk/internal/modules/ledger"
	"parkdesk/internal/types"
)

// MaxExportedVehicles caps the vehicle history in the JSON export.
const MaxExportedVehicles = 50

var csvHeader = []string{"fecha", "placa", "tipo", "duracion", "metodo", "monto"}

var vehicleLabels = map[types.VehicleType]string{
	types.VehicleCar:        "Carro",
	types.VehicleMotorcycle: "Moto",
	types.VehicleTruck:      "Camioneta",
}

var methodLabels = map[types.PaymentMethod]string{
	types.PaymentCash: "Efectivo",
	types.PaymentCard: "Tarjeta",
}

func VehicleLabel(vt types.VehicleType) string {
	if l, ok := vehicleLabels[vt]; ok {
		return l
	}
	return string(vt)
}

// FormatDateTime renders t as dd/mm/yyyy hh:mm in loc.
func FormatDateTime(t time.Time, loc *time.Location) string {
	return t.In(loc).Format("02/01/2006 15:04")
}

// WritePaymentsCSV writes one row per payment with Spanish column names.
func WritePaymentsCSV(w io.Writer, payments []ledger.Payment, loc *time.Location) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}
	for _, p := range payments {
		method, ok := methodLabels[p.Method]
		if !ok {
			method = string(p.Method)
		}
		row := []string{
			FormatDateTime(p.Date, loc),
			p.Plate,
			VehicleLabel(p.VehicleType),
			FormatDuration(p.Duration),
			method,
			strconv.FormatInt(p.Amount, 10),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write csv row %s: %w", p.ID, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

type jsonExport struct {
	Payments []ledger.Payment `json:"payments"`
	Vehicles []ledger.Vehicle `json:"vehicles"`
}

// WriteJSON writes every payment and the first MaxExportedVehicles exited vehicles.
func WriteJSON(w io.Writer, payments []ledger.Payment, vehicles []ledger.Vehicle) error {
	exited := ledger.Select(vehicles, ledger.Filter{Status: ledger.VehicleExited})
	if len(exited) > MaxExportedVehicles {
		exited = exited[:MaxExportedVehicles]
	}
	if payments == nil {
		payments = []ledger.Payment{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(jsonExport{Payments: payments, Vehicles: exited})
}
