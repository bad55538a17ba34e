package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"parkdesk/internal/modules/pricing"
	"parkdesk/internal/modules/report"
	"parkdesk/internal/types"
)

type Row struct {
	VehicleType types.VehicleType
	RateType    types.RateType
	Quote       pricing.Quote
}

// BuildTable quotes every type x rate x minutes combination in flag order.
func BuildTable(t pricing.Tariff, cfg Config) ([]Row, error) {
	vehicles := cfg.VehicleTypes
	if len(vehicles) == 0 {
		vehicles = t.VehicleTypes
	}
	var rows []Row
	for _, vt := range vehicles {
		if !t.Supports(vt) {
			return nil, fmt.Errorf("vehicle type %q is not in the tariff", vt)
		}
		for _, rt := range cfg.RateTypes {
			for _, m := range cfg.Minutes {
				q, err := pricing.NewQuote(m, vt, rt, t, cfg.Convenio)
				if err != nil {
					return nil, err
				}
				rows = append(rows, Row{VehicleType: vt, RateType: rt, Quote: q})
			}
		}
	}
	return rows, nil
}

func WriteTable(w io.Writer, rows []Row) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "TYPE\tRATE\tSTAY\tHOURS\tSUBTOTAL\tDISCOUNT\tAMOUNT\t")
	for _, r := range rows {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%s\t%s\t%s\t\n",
			r.VehicleType, r.RateType,
			report.FormatDuration(r.Quote.Minutes),
			r.Quote.BillableHours,
			report.FormatCurrency(r.Quote.Subtotal),
			report.FormatCurrency(r.Quote.Discount),
			report.FormatCurrency(r.Quote.Amount),
		)
	}
	return tw.Flush()
}
