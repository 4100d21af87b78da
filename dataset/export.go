package dataset

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/flopayments/recongen/config"
	"github.com/flopayments/recongen/generator"
	"github.com/flopayments/recongen/models"
	"github.com/flopayments/recongen/utils"
)

const dateLayout = "2006-01-02"

var (
	invoiceHeader = []string{
		"id", "invoice_number", "issue_date", "due_date",
		"gross_amount", "net_amount", "tax_amount",
		"provider", "provider_vat_id", "client",
		"description", "sector", "service_type",
		"status", "text_fallback",
	}
	paymentHeader = []string{
		"id", "payment_date", "value_date", "amount",
		"payer", "payer_iban", "reference", "detail",
		"method", "text_fallback",
	}
	labelHeader = []string{
		"invoice_id", "payment_id", "match_type", "confidence",
		"amount_covered", "block", "sub_pattern", "cardinality", "rationale",
	}
)

// Exporter writes an assembled dataset to disk: one directory per partition
// with invoices.csv, payments.csv and ground_truth.csv, plus metadata.json
// and an optional XLSX workbook at the root.
type Exporter struct {
	dir    string
	now    time.Time
	logger *logrus.Logger
}

func NewExporter(dir string, now time.Time) *Exporter {
	return &Exporter{dir: dir, now: now, logger: config.GetLogger()}
}

func (e *Exporter) WriteCSV(a *Assembled) error {
	for _, p := range a.Partitions {
		if len(p.Scenarios) == 0 {
			continue
		}
		dir := filepath.Join(e.dir, string(p.Name))
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("export %s: %w", p.Name, err)
		}
		if err := e.writeTable(filepath.Join(dir, "invoices.csv"), invoiceHeader, invoiceRows(p.Scenarios, e.now)); err != nil {
			return err
		}
		if err := e.writeTable(filepath.Join(dir, "payments.csv"), paymentHeader, paymentRows(p.Scenarios)); err != nil {
			return err
		}
		if err := e.writeTable(filepath.Join(dir, "ground_truth.csv"), labelHeader, labelRows(p.Scenarios)); err != nil {
			return err
		}
		e.logger.WithFields(logrus.Fields{
			"partition": p.Name,
			"scenarios": len(p.Scenarios),
		}).Info("partition exported")
	}
	return nil
}

func (e *Exporter) writeTable(path string, header []string, rows [][]string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("export %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		return fmt.Errorf("export %s: %w", path, err)
	}
	if err := w.WriteAll(rows); err != nil {
		return fmt.Errorf("export %s: %w", path, err)
	}
	return f.Close()
}

// WriteMetadata serializes the run report next to the partitions.
func (e *Exporter) WriteMetadata(report *generator.Report) error {
	if err := os.MkdirAll(e.dir, 0o755); err != nil {
		return fmt.Errorf("export metadata: %w", err)
	}
	raw, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("export metadata: %w", err)
	}
	path := filepath.Join(e.dir, "metadata.json")
	if err := os.WriteFile(path, append(raw, '\n'), 0o644); err != nil {
		return fmt.Errorf("export metadata: %w", err)
	}
	return nil
}

// invoiceRows derives each invoice's status at export time from its
// scenario's committed links and the generation reference date.
func invoiceRows(scenarios []*generator.Scenario, now time.Time) [][]string {
	var rows [][]string
	for _, s := range scenarios {
		covered := models.CoverageByInvoice(s.Links)
		for _, inv := range s.Invoices {
			status := inv.DeriveStatus(covered[inv.ID], now)
			rows = append(rows, []string{
				inv.ID,
				inv.InvoiceNumber,
				inv.IssueDate.Format(dateLayout),
				inv.DueDate.Format(dateLayout),
				utils.FormatAmount(inv.GrossAmount),
				utils.FormatAmount(inv.NetAmount),
				utils.FormatAmount(inv.TaxAmount),
				inv.Provider,
				inv.ProviderVatID,
				inv.Client,
				inv.Description,
				inv.Sector,
				inv.ServiceType,
				string(status),
				strconv.FormatBool(inv.TextFallback),
			})
		}
	}
	return rows
}

func paymentRows(scenarios []*generator.Scenario) [][]string {
	var rows [][]string
	for _, s := range scenarios {
		for _, p := range s.Payments {
			rows = append(rows, []string{
				p.ID,
				p.PaymentDate.Format(dateLayout),
				p.ValueDate.Format(dateLayout),
				utils.FormatAmount(p.Amount),
				p.Payer,
				p.PayerIBAN,
				p.Reference,
				p.Detail,
				string(p.Method),
				strconv.FormatBool(p.TextFallback),
			})
		}
	}
	return rows
}

func labelRows(scenarios []*generator.Scenario) [][]string {
	var rows [][]string
	for _, s := range scenarios {
		for _, lbl := range s.Labels {
			rows = append(rows, []string{
				lbl.InvoiceID,
				lbl.PaymentID,
				string(lbl.MatchType),
				strconv.FormatFloat(lbl.Confidence, 'f', 2, 64),
				utils.FormatAmount(lbl.AmountCovered),
				s.Block,
				s.SubPattern,
				string(s.Cardinality),
				lbl.Rationale,
			})
		}
	}
	return rows
}
