// README: Report shapes: income buckets and the daily desk summary.
package report

import (
	"errors"

	"parkdesk/internal/modules/spaces"
	"parkdesk/internal/types"
)

var ErrUnknownPeriod = errors.New("unknown report period")

type Period string

const (
	PeriodDaily   Period = "daily"
	PeriodWeekly  Period = "weekly"
	PeriodMonthly Period = "monthly"
)

type Bucket struct {
	Label string `json:"label"`
	Total int64  `json:"total"`
	Count int    `json:"count"`
}

type Income struct {
	Period  Period   `json:"period"`
	Buckets []Bucket `json:"buckets"`
	Total   int64    `json:"total"`
}

// Summary is the dashboard view of today.
type Summary struct {
	IncomeToday     int64                     `json:"income_today"`
	PaymentsToday   int                       `json:"payments_today"`
	AverageMinutes  int                       `json:"average_minutes"`
	ParkedByType    map[types.VehicleType]int `json:"parked_by_type"`
	ParkedByRate    map[types.RateType]int    `json:"parked_by_rate"`
	Occupancy       []spaces.Occupancy        `json:"occupancy"`
	SpacesByStatus  map[spaces.Status]int     `json:"spaces_by_status"`
	LastSevenDays   []Bucket                  `json:"last_seven_days"`
	ParkedVehicles  int                       `json:"parked_vehicles"`
	OccupiedPercent int                       `json:"occupied_percent"`
}
