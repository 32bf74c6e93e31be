package invoice

import (
	"bytes"
	"fmt"
	"html/template"
	"time"

	"chargedash/internal/models"
)

var printableTmpl = template.Must(template.New("printable").Parse(`<html>
  <head>
    <title>{{.Title}} - {{.RecordNumber}}</title>
    <style>
      body { font-family: Arial, sans-serif; padding: 20px; }
      .header { text-align: center; margin-bottom: 30px; }
      .title { font-size: 24px; font-weight: bold; }
      .subtitle { font-size: 14px; color: #666; }
      .section { margin-bottom: 20px; }
      .section-title { font-size: 18px; border-bottom: 1px solid #eee; padding-bottom: 5px; }
      .item { display: flex; margin: 10px 0; }
      .label { width: 150px; font-weight: bold; }
      .value { flex: 1; }
      .total { font-weight: bold; margin-top: 15px; border-top: 1px solid #eee; padding-top: 10px; }
      .footer { margin-top: 50px; text-align: center; font-size: 12px; color: #999; }
    </style>
  </head>
  <body>
    <div class="header">
      <div class="title">{{.Title}}</div>
      <div class="subtitle">详单编号: {{.RecordNumber}}</div>
      <div class="subtitle">日期: {{.Date}}</div>
    </div>
{{range .Sections}}
    <div class="section">
      <div class="section-title">{{.Title}}</div>
{{range .Items}}      <div class="item{{if .Total}} total{{end}}">
        <div class="label">{{.Label}}:</div>
        <div class="value">{{.Value}}</div>
      </div>
{{end}}    </div>
{{end}}
    <div class="footer">
      打印时间: {{.PrintedAt}}<br>
      {{.Disclaimer}}
    </div>
  </body>
</html>
`))

type printableData struct {
	Document
	PrintedAt string
}

// RenderPrintable produces the standalone printable page for one record. The
// embedded 打印时间 is captured from now, not from the record.
func RenderPrintable(rec models.ChargingRecord, now time.Time) (string, error) {
	data := printableData{
		Document:  Render(rec),
		PrintedAt: now.Format("2006-01-02 15:04:05"),
	}
	var buf bytes.Buffer
	if err := printableTmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("invoice: render printable: %w", err)
	}
	return buf.String(), nil
}
