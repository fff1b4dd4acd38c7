package report

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"time"

	"github.com/sefer-erp/sefer-erp/internal/billing"
	"github.com/sefer-erp/sefer-erp/internal/money"
)

// Renderer turns assembled billing reports into PDF documents through
// Gotenberg. The HTML layout mirrors the printed puantaj forms.
type Renderer struct {
	client *Client
	tmpl   *template.Template
}

// NewRenderer constructs a Renderer.
func NewRenderer(client *Client) (*Renderer, error) {
	tmpl, err := template.New("invoice").Funcs(template.FuncMap{
		"lira": func(a money.Amount) string { return billing.FormatTRY(a) },
		"date": func(t time.Time) string { return t.Format("02.01.2006") },
	}).Parse(invoiceTemplate)
	if err != nil {
		return nil, fmt.Errorf("report: parse invoice template: %w", err)
	}
	return &Renderer{client: client, tmpl: tmpl}, nil
}

// Render produces the PDF for one report.
func (r *Renderer) Render(ctx context.Context, report *billing.Report) ([]byte, error) {
	var buf bytes.Buffer
	if err := r.tmpl.Execute(&buf, report); err != nil {
		return nil, fmt.Errorf("report: execute invoice template: %w", err)
	}
	return r.client.RenderHTML(ctx, buf.String())
}

const invoiceTemplate = `<!DOCTYPE html>
<html lang="tr">
<head>
<meta charset="utf-8">
<title>{{.Number}}</title>
<style>
body { font-family: "DejaVu Sans", sans-serif; font-size: 12px; margin: 2cm; }
h1 { font-size: 16px; margin-bottom: 0; }
.meta { color: #444; margin-bottom: 1em; }
table { width: 100%; border-collapse: collapse; margin-bottom: 1.5em; }
th, td { border: 1px solid #999; padding: 4px 6px; text-align: left; }
th { background: #eee; }
td.num, th.num { text-align: right; }
tfoot td { font-weight: bold; }
.totals td { border: none; }
.totals tr td:first-child { text-align: right; padding-right: 1em; }
</style>
</head>
<body>
<h1>{{.Scope.Name}}</h1>
<div class="meta">
	<div>Rapor No: {{.Number}} &middot; Dönem: {{.PeriodLabel}}</div>
	{{if .Scope.TaxNumber}}<div>Vergi Dairesi: {{.Scope.TaxOffice}} &middot; Vergi No: {{.Scope.TaxNumber}}</div>{{end}}
	{{if .Scope.ClientName}}<div>Müşteri: {{.Scope.ClientName}}</div>{{end}}
</div>

<table>
<thead>
<tr><th>Plaka</th><th>Güzergah</th><th class="num">Sefer</th><th class="num">Birim Fiyat</th><th class="num">Tutar</th><th class="num">KDV</th></tr>
</thead>
<tbody>
{{range .Rows}}
<tr>
	<td>{{.VehiclePlate}}</td>
	<td>{{.RouteName}}</td>
	{{if .NoEntry}}
	<td class="num">-</td><td class="num">-</td><td class="num">-</td><td class="num">-</td>
	{{else}}
	<td class="num">{{.TripTotal}}</td>
	<td class="num">{{lira .UnitPrice}}</td>
	<td class="num">{{lira .LineTotal}}</td>
	<td class="num">{{lira .LineVAT}}</td>
	{{end}}
</tr>
{{end}}
</tbody>
</table>

{{if .ExtraRows}}
<table>
<thead>
<tr><th>Tarih</th><th>Ek İş</th><th class="num">Tutar</th></tr>
</thead>
<tbody>
{{range .ExtraRows}}
<tr><td>{{date .WorkDate}}</td><td>{{.Description}}</td><td class="num">{{lira .Amount}}</td></tr>
{{end}}
</tbody>
</table>
{{end}}

<table class="totals">
<tr><td>Toplam</td><td class="num">{{lira .Totals.NetTotal}}</td></tr>
<tr><td>KDV</td><td class="num">{{lira .Totals.VATTotal}}</td></tr>
<tr><td>Ara Toplam</td><td class="num">{{lira .Totals.Subtotal}}</td></tr>
<tr><td>Tevkifat (5/10)</td><td class="num">{{lira .Totals.Withholding}}</td></tr>
<tr><td>Ödenecek Tutar</td><td class="num">{{lira .Totals.InvoiceAmount}}</td></tr>
</table>
</body>
</html>`
