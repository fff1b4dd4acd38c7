package billing

import "github.com/sefer-erp/sefer-erp/internal/money"

// withholdingPercent is the fixed tevkifat share applied to VAT only,
// the Turkish 5/10 partial withholding scheme.
const withholdingPercent = 50

// ComputeInvoice derives the headline figures from a net total and
// its VAT. All arithmetic stays in kuruş.
//
//	subtotal    = net + vat
//	withholding = vat * 50%
//	invoice     = subtotal - withholding
func ComputeInvoice(net, vat money.Amount) Invoice {
	subtotal := net.Add(vat)
	withholding := vat.Percent(withholdingPercent)
	return Invoice{
		NetTotal:      net,
		VATTotal:      vat,
		Subtotal:      subtotal,
		Withholding:   withholding,
		InvoiceAmount: subtotal.Sub(withholding),
	}
}

// Invoice folds the aggregate's totals through ComputeInvoice. Extra
// work contributes to the net total but carries no VAT.
func (a Aggregate) Invoice() Invoice {
	return ComputeInvoice(a.RouteTotal.Add(a.ExtraWorkTotal), a.RouteVAT)
}
