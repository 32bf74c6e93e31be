package models

import "time"

// TimePeriod is the tariff bracket assigned by the billing backend.
type TimePeriod string

const (
	PeriodPeak   TimePeriod = "peak"
	PeriodNormal TimePeriod = "normal"
	PeriodValley TimePeriod = "valley"
)

// ChargingRecord is one completed, metered charging session as issued by the
// backend. All monetary amounts are already computed server-side; this module
// only displays them.
type ChargingRecord struct {
	ID               int64      `json:"id"`
	RecordNumber     string     `json:"record_number"`
	StartTime        time.Time  `json:"start_time"`
	EndTime          time.Time  `json:"end_time"`
	ChargingDuration float64    `json:"charging_duration"`
	ChargingAmount   float64    `json:"charging_amount"`
	TimePeriod       TimePeriod `json:"time_period"`
	UnitPrice        float64    `json:"unit_price"`
	ElectricityFee   float64    `json:"electricity_fee"`
	ServiceFee       float64    `json:"service_fee"`
	TotalFee         float64    `json:"total_fee"`
}

// Label returns the display name for the tariff bracket. Unknown values pass
// through verbatim.
func (p TimePeriod) Label() string {
	switch p {
	case PeriodPeak:
		return "峰时"
	case PeriodNormal:
		return "平时"
	case PeriodValley:
		return "谷时"
	default:
		return string(p)
	}
}

// Severity returns the visual emphasis tag for the tariff bracket.
func (p TimePeriod) Severity() string {
	switch p {
	case PeriodPeak:
		return "danger"
	case PeriodNormal:
		return "warning"
	case PeriodValley:
		return "success"
	default:
		return "info"
	}
}
