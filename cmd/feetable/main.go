// README: Fee table CLI; prints quotes for a list of stay lengths against a tariff file.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"parkdesk/internal/modules/pricing"
	"parkdesk/internal/types"
)

type Config struct {
	TariffFile   string
	VehicleTypes []types.VehicleType
	RateTypes    []types.RateType
	Minutes      []int
	Convenio     bool
}

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	cfg, err := loadConfig(os.Args[1:])
	if err != nil {
		logger.Error("invalid flags", "error", err)
		os.Exit(2)
	}

	tariff, err := pricing.NewStore(cfg.TariffFile).Load()
	if err != nil {
		logger.Error("load tariff", "file", cfg.TariffFile, "error", err)
		os.Exit(1)
	}

	rows, err := BuildTable(tariff, cfg)
	if err != nil {
		logger.Error("build fee table", "error", err)
		os.Exit(1)
	}
	if err := WriteTable(os.Stdout, rows); err != nil {
		logger.Error("write fee table", "error", err)
		os.Exit(1)
	}
}

func loadConfig(args []string) (Config, error) {
	fs := flag.NewFlagSet("feetable", flag.ContinueOnError)
	var cfg Config
	var vehicles, rates, minutes string
	fs.StringVar(&cfg.TariffFile, "tariff", envOrDefault("PARKDESK_TARIFF_FILE", "config/tariff.toml"), "Tariff TOML file; defaults apply when missing")
	fs.StringVar(&vehicles, "types", "", "Comma-separated vehicle types (default: every type in the tariff)")
	fs.StringVar(&rates, "rates", "hour,day,night,24h", "Comma-separated rate types")
	fs.StringVar(&minutes, "minutes", "15,45,65,125,300,720", "Comma-separated stay lengths in minutes")
	fs.BoolVar(&cfg.Convenio, "convenio", false, "Apply the convenio discount")
	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	for _, v := range splitList(vehicles) {
		cfg.VehicleTypes = append(cfg.VehicleTypes, types.VehicleType(v))
	}
	for _, r := range splitList(rates) {
		rt := types.RateType(r)
		if !rt.Valid() || rt == types.RateMonthly {
			return Config{}, fmt.Errorf("unknown rate type %q", r)
		}
		cfg.RateTypes = append(cfg.RateTypes, rt)
	}
	for _, m := range splitList(minutes) {
		n, err := strconv.Atoi(m)
		if err != nil || n < 0 {
			return Config{}, fmt.Errorf("invalid minutes %q", m)
		}
		cfg.Minutes = append(cfg.Minutes, n)
	}
	return cfg, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func envOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
