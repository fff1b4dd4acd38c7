package billing

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/sefer-erp/sefer-erp/internal/money"
	"github.com/sefer-erp/sefer-erp/internal/shared"
)

// supplierReportPrefix tags supplier settlement reports ("tedarikçi").
const supplierReportPrefix = "TED"

// factoryReportPrefix tags factory invoicing reports ("fabrika").
const factoryReportPrefix = "FAB"

// Assembler combines aggregates and invoice math into the renderer
// payload.
type Assembler struct {
	service *Service
	repo    RepositoryPort
	now     func() time.Time
}

// NewAssembler builds an Assembler instance.
func NewAssembler(service *Service, repo RepositoryPort) *Assembler {
	return &Assembler{service: service, repo: repo, now: time.Now}
}

// BuildSupplierReport assembles the supplier-priced settlement report
// for one supplier and period.
func (a *Assembler) BuildSupplierReport(ctx context.Context, supplierID int64, period shared.Period) (*Report, error) {
	scope := Scope{Kind: ScopeSupplier, ID: supplierID}
	agg, err := a.service.Aggregate(ctx, scope, period, PriceModeSupplier)
	if err != nil {
		return nil, err
	}
	supplier, err := a.repo.GetSupplier(ctx, supplierID)
	if err != nil {
		return nil, err
	}
	number, err := a.reportNumber(ctx, scope, period)
	if err != nil {
		return nil, err
	}
	return a.assemble(number, PriceModeSupplier, period, ScopeInfo{
		Kind:      ScopeSupplier,
		Name:      supplier.Name,
		TaxOffice: supplier.TaxOffice,
		TaxNumber: supplier.TaxNumber,
	}, agg), nil
}

// BuildFactoryReport assembles the factory-priced report for one
// project and period, spanning all suppliers.
func (a *Assembler) BuildFactoryReport(ctx context.Context, projectID int64, period shared.Period) (*Report, error) {
	scope := Scope{Kind: ScopeProject, ID: projectID}
	agg, err := a.service.Aggregate(ctx, scope, period, PriceModeFactory)
	if err != nil {
		return nil, err
	}
	project, err := a.repo.GetProject(ctx, projectID)
	if err != nil {
		return nil, err
	}
	number, err := a.reportNumber(ctx, scope, period)
	if err != nil {
		return nil, err
	}
	return a.assemble(number, PriceModeFactory, period, ScopeInfo{
		Kind:       ScopeProject,
		Name:       project.Name,
		ClientName: project.ClientName,
	}, agg), nil
}

func (a *Assembler) assemble(number string, mode PriceMode, period shared.Period, scope ScopeInfo, agg *Aggregate) *Report {
	return &Report{
		Number:      number,
		PriceMode:   mode,
		PeriodLabel: period.Label(),
		Scope:       scope,
		Rows:        agg.Rows,
		ExtraRows:   agg.ExtraRows,
		Totals:      agg.Invoice(),
		GeneratedAt: a.now().UTC(),
	}
}

// reportNumber derives the advisory report number. The sequence is the
// count of timesheets recorded for the scope and year; concurrent
// generations may collide, which is acceptable for these documents.
func (a *Assembler) reportNumber(ctx context.Context, scope Scope, period shared.Period) (string, error) {
	seq, err := a.repo.CountTimesheets(ctx, scope, period.Year)
	if err != nil {
		return "", err
	}
	if scope.Kind == ScopeProject {
		return fmt.Sprintf("%s-%d-%02d-%03d", factoryReportPrefix, period.Year, int(period.Month), seq), nil
	}
	return fmt.Sprintf("%s-%d-%03d", supplierReportPrefix, period.Year, seq), nil
}

var trPrinter = message.NewPrinter(language.Turkish)

// FormatTRY renders an amount the way Turkish invoices print it,
// thousands separated by dots and a comma before the kuruş, e.g.
// "1.234,56".
func FormatTRY(a money.Amount) string {
	v := a.Kurus()
	sign := ""
	if v < 0 {
		sign = "-"
		v = -v
	}
	return trPrinter.Sprintf("%s%d,%02d", sign, v/100, v%100)
}
