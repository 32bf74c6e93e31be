package records

import (
	"strings"
	"time"

	"chargedash/internal/models"
)

// TimeRange selects how far back the record view reaches.
type TimeRange string

const (
	RangeAll        TimeRange = ""
	RangeLast7Days  TimeRange = "7days"
	RangeLast30Days TimeRange = "30days"
	RangeThisMonth  TimeRange = "thisMonth"
)

// ParseTimeRange maps a query value to a known range; anything unrecognized
// falls back to no constraint.
func ParseTimeRange(value string) TimeRange {
	switch TimeRange(value) {
	case RangeLast7Days, RangeLast30Days, RangeThisMonth:
		return TimeRange(value)
	default:
		return RangeAll
	}
}

// Page is one visible slice of the filtered set plus the pre-pagination total.
type Page struct {
	Records []models.ChargingRecord
	Total   int
}

// View filters records by search text and time range, then slices out the
// requested 1-indexed page. Backend ordering is preserved. The search needle
// matches case-insensitively against the record number or the formatted
// start date (YYYY-MM-DD); now anchors the time-range cutoffs.
func View(recs []models.ChargingRecord, search string, rng TimeRange, page, pageSize int, now time.Time) Page {
	filtered := recs

	if needle := strings.ToLower(strings.TrimSpace(search)); needle != "" {
		matched := make([]models.ChargingRecord, 0, len(filtered))
		for _, rec := range filtered {
			if strings.Contains(strings.ToLower(rec.RecordNumber), needle) ||
				strings.Contains(models.FormatDate(rec.StartTime), needle) {
				matched = append(matched, rec)
			}
		}
		filtered = matched
	}

	if cutoff, ok := rangeCutoff(rng, now); ok {
		matched := make([]models.ChargingRecord, 0, len(filtered))
		for _, rec := range filtered {
			if !rec.StartTime.Before(cutoff) {
				matched = append(matched, rec)
			}
		}
		filtered = matched
	}

	total := len(filtered)
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 10
	}
	start := (page - 1) * pageSize
	if start >= total {
		return Page{Records: []models.ChargingRecord{}, Total: total}
	}
	end := start + pageSize
	if end > total {
		end = total
	}
	return Page{Records: filtered[start:end], Total: total}
}

func rangeCutoff(rng TimeRange, now time.Time) (time.Time, bool) {
	switch rng {
	case RangeLast7Days:
		return now.AddDate(0, 0, -7), true
	case RangeLast30Days:
		return now.AddDate(0, 0, -30), true
	case RangeThisMonth:
		return time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location()), true
	default:
		return time.Time{}, false
	}
}
