package models

import (
	"fmt"
	"math"
	"time"
)

// FormatDate renders a timestamp as zero-padded YYYY-MM-DD.
func FormatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("2006-01-02")
}

// FormatClock renders a timestamp as zero-padded HH:MM.
func FormatClock(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("15:04")
}

// FormatDateTime renders a timestamp as "YYYY-MM-DD HH:MM".
func FormatDateTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("2006-01-02 15:04")
}

// FormatDuration renders fractional hours as "<H>小时<M>分钟", dropping the
// minutes clause when the remainder rounds to zero.
func FormatDuration(hours float64) string {
	h := int(math.Floor(hours))
	m := int(math.Round((hours - float64(h)) * 60))
	if m == 60 {
		h++
		m = 0
	}
	if m == 0 {
		return fmt.Sprintf("%d小时", h)
	}
	return fmt.Sprintf("%d小时%d分钟", h, m)
}
