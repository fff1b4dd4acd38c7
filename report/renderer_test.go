package report

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/sefer-erp/sefer-erp/internal/billing"
	"github.com/sefer-erp/sefer-erp/internal/money"
)

func TestRendererPostsInvoiceHTML(t *testing.T) {
	var rendered string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/forms/chromium/convert/html", r.URL.Path)
		file, header, err := r.FormFile("files")
		require.NoError(t, err)
		require.Equal(t, "index.html", header.Filename)
		require.Equal(t, "8.27", r.FormValue("paperWidth"))
		html, err := io.ReadAll(file)
		require.NoError(t, err)
		rendered = string(html)
		_, _ = w.Write([]byte("%PDF-1.4 fake"))
	}))
	defer srv.Close()

	renderer, err := NewRenderer(NewClient(srv.URL))
	require.NoError(t, err)

	pdf, err := renderer.Render(context.Background(), &billing.Report{
		Number:      "TED-2026-003",
		PriceMode:   billing.PriceModeSupplier,
		PeriodLabel: "Mart 2026",
		Scope: billing.ScopeInfo{
			Kind:      billing.ScopeSupplier,
			Name:      "Arslan Nakliyat",
			TaxOffice: "Gebze",
			TaxNumber: "1234567890",
		},
		Rows: []billing.RouteRow{
			{VehiclePlate: "41 ABC 100", RouteName: "Sabah Servisi", TripTotal: 5,
				UnitPrice: money.MustParse("100.00"), LineTotal: money.MustParse("500.00"),
				LineVAT: money.MustParse("100.00"), VATRatePercent: 20},
			{VehiclePlate: "41 XYZ 200", RouteName: "no entry", NoEntry: true},
		},
		ExtraRows: []billing.ExtraWorkRow{
			{WorkDate: time.Date(2026, time.March, 12, 0, 0, 0, 0, time.UTC),
				Description: "ek sefer", Amount: money.MustParse("350.00")},
		},
		Totals: billing.ComputeInvoice(money.MustParse("850.00"), money.MustParse("100.00")),
	})
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(string(pdf), "%PDF"))

	require.Contains(t, rendered, "TED-2026-003")
	require.Contains(t, rendered, "Mart 2026")
	require.Contains(t, rendered, "Arslan Nakliyat")
	require.Contains(t, rendered, "41 ABC 100")
	require.Contains(t, rendered, "500,00")
	require.Contains(t, rendered, "Tevkifat (5/10)")
	require.Contains(t, rendered, "ek sefer")
	require.Contains(t, rendered, "12.03.2026")
}
