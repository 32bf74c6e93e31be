package invoice

import (
	"strconv"

	"chargedash/internal/models"
)

// Disclaimer printed at the bottom of every issued document.
const Disclaimer = "本详单仅作为充电费用凭证，感谢您使用智能充电桩调度计费系统。"

// Item is one labelled value line.
type Item struct {
	Label string
	Value string
	Total bool
}

// Section groups related lines under a heading.
type Section struct {
	Title string
	Items []Item
}

// Document is the human-readable rendering of one charging record. It carries
// no render-time state, so rendering the same record twice is identical.
type Document struct {
	Title          string
	RecordNumber   string
	Date           string
	PeriodSeverity string
	Sections       []Section
	Disclaimer     string
}

// Render formats a charging record into its detail document.
func Render(rec models.ChargingRecord) Document {
	return Document{
		Title:          "充电详单",
		RecordNumber:   rec.RecordNumber,
		Date:           models.FormatDate(rec.StartTime),
		PeriodSeverity: rec.TimePeriod.Severity(),
		Sections: []Section{
			{
				Title: "充电信息",
				Items: []Item{
					{Label: "开始时间", Value: models.FormatDateTime(rec.StartTime)},
					{Label: "结束时间", Value: models.FormatDateTime(rec.EndTime)},
					{Label: "充电时长", Value: models.FormatDuration(rec.ChargingDuration)},
					{Label: "充电量", Value: money(rec.ChargingAmount) + " 度"},
				},
			},
			{
				Title: "费用明细",
				Items: []Item{
					{Label: "电价时段", Value: rec.TimePeriod.Label()},
					{Label: "电价单价", Value: money(rec.UnitPrice) + " 元/度"},
					{Label: "电费", Value: money(rec.ElectricityFee) + " 元"},
					{Label: "服务费", Value: money(rec.ServiceFee) + " 元"},
					{Label: "总费用", Value: money(rec.TotalFee) + " 元", Total: true},
				},
			},
		},
		Disclaimer: Disclaimer,
	}
}

func money(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}
