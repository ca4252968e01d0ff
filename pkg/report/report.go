// Package report renders stored predictions as a PDF document.
package report

import (
	"fmt"
	"io"
	"time"

	"github.com/jung-kurt/gofpdf"

	"github.com/kilianp07/citypredict/core/prediction"
	"github.com/kilianp07/citypredict/core/stats"
	"github.com/kilianp07/citypredict/core/store"
)

// RecentPerModule is the number of predictions listed on each module page.
const RecentPerModule = 10

type rgb struct{ r, g, b int }

var (
	colorTitle   = rgb{0x2c, 0x3e, 0x50}
	colorHeading = rgb{0x34, 0x98, 0xdb}
	colorMuted   = rgb{0x95, 0xa5, 0xa6}
	colorStripe  = rgb{0xec, 0xf0, 0xf1}
)

// Filename returns the attachment name of a report generated at t.
func Filename(t time.Time) string {
	return fmt.Sprintf("smart_city_report_%s.pdf", t.Format("20060102_150405"))
}

// Render writes the A4 report for st and recs to w.
func Render(w io.Writer, st stats.Stats, recs []store.Record, generated time.Time) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Smart City Resource Optimization Report", true)
	pdf.SetCreator("citypredict", true)
	pdf.SetCreationDate(generated)
	pdf.SetAutoPageBreak(true, 15)
	pdf.AliasNbPages("")
	pdf.SetFooterFunc(func() {
		pdf.SetY(-12)
		pdf.SetFont("Helvetica", "I", 8)
		setText(pdf, colorMuted)
		pdf.CellFormat(0, 8, fmt.Sprintf("Page %d/{nb}", pdf.PageNo()), "", 0, "C", false, 0, "")
	})

	pdf.AddPage()
	cover(pdf, st, generated)
	statsTable(pdf, st)
	barChart(pdf, st)

	byModule := map[prediction.Domain][]store.Record{}
	for _, r := range recs {
		byModule[r.Module] = append(byModule[r.Module], r)
	}
	for _, d := range prediction.Domains() {
		if len(byModule[d]) == 0 {
			continue
		}
		modulePage(pdf, d, st, byModule[d])
	}
	conclusion(pdf)

	return pdf.Output(w)
}

func setText(pdf *gofpdf.Fpdf, c rgb) { pdf.SetTextColor(c.r, c.g, c.b) }
func setFill(pdf *gofpdf.Fpdf, c rgb) { pdf.SetFillColor(c.r, c.g, c.b) }

func heading(pdf *gofpdf.Fpdf, text string) {
	pdf.Ln(4)
	pdf.SetFont("Helvetica", "B", 15)
	setText(pdf, colorHeading)
	pdf.CellFormat(0, 9, text, "", 1, "L", false, 0, "")
	pdf.Ln(1)
}

func body(pdf *gofpdf.Fpdf, text string) {
	pdf.SetFont("Helvetica", "", 10)
	setText(pdf, colorTitle)
	pdf.MultiCell(0, 5.5, text, "", "L", false)
}

func cover(pdf *gofpdf.Fpdf, st stats.Stats, generated time.Time) {
	pdf.SetFont("Helvetica", "B", 22)
	setText(pdf, colorTitle)
	pdf.CellFormat(0, 14, "Smart City Resource Optimization", "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "", 14)
	pdf.CellFormat(0, 8, "Comprehensive Analysis Report", "", 1, "C", false, 0, "")
	pdf.Ln(6)
	pdf.SetFont("Helvetica", "B", 10)
	pdf.CellFormat(32, 6, "Report Generated:", "", 0, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	pdf.CellFormat(0, 6, generated.Format("January 02, 2006 at 03:04 PM"), "", 1, "L", false, 0, "")

	heading(pdf, "Executive Summary")
	body(pdf, fmt.Sprintf("This report covers five modules: Traffic Management, Energy Consumption, "+
		"Water Demand, Waste Collection and Air Quality Monitoring. It is based on %d predictions "+
		"served by the trained models.", st.TotalPredictions()))
}

// keyMetric is the one-line statistic shown for a domain.
func keyMetric(d prediction.Domain, st stats.Stats) (total int, label string) {
	switch d {
	case prediction.Traffic:
		return st.Traffic.Total, fmt.Sprintf("High Congestion: %d", st.Traffic.HighCongestion)
	case prediction.Energy:
		return st.Energy.Total, fmt.Sprintf("Avg Consumption: %.2f kWh", st.Energy.AvgConsumption)
	case prediction.Water:
		return st.Water.Total, fmt.Sprintf("Avg Consumption: %.2f Liters", st.Water.AvgConsumption)
	case prediction.Waste:
		return st.Waste.Total, fmt.Sprintf("Collection Needed: %d", st.Waste.CollectionNeeded)
	case prediction.Air:
		return st.Air.Total, fmt.Sprintf("Unhealthy Days: %d", st.Air.UnhealthyDays)
	}
	return 0, ""
}

func statsTable(pdf *gofpdf.Fpdf, st stats.Stats) {
	heading(pdf, "Module Statistics")
	widths := []float64{60, 40, 80}
	pdf.SetFont("Helvetica", "B", 11)
	setFill(pdf, colorHeading)
	pdf.SetTextColor(255, 255, 255)
	for i, h := range []string{"Module", "Total Predictions", "Key Metrics"} {
		pdf.CellFormat(widths[i], 9, h, "1", 0, "C", true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Helvetica", "", 10)
	setText(pdf, colorTitle)
	for i, d := range prediction.Domains() {
		total, metric := keyMetric(d, st)
		setFill(pdf, colorStripe)
		fill := i%2 == 1
		pdf.CellFormat(widths[0], 8, d.Title(), "1", 0, "C", fill, 0, "")
		pdf.CellFormat(widths[1], 8, fmt.Sprint(total), "1", 0, "C", fill, 0, "")
		pdf.CellFormat(widths[2], 8, metric, "1", 1, "C", fill, 0, "")
	}
}

func barChart(pdf *gofpdf.Fpdf, st stats.Stats) {
	heading(pdf, "Predictions per Module")
	const (
		chartH = 50.0
		barW   = 24.0
		gap    = 10.0
	)
	totals := make([]int, 0, 5)
	peak := 1
	for _, d := range prediction.Domains() {
		n, _ := keyMetric(d, st)
		totals = append(totals, n)
		if n > peak {
			peak = n
		}
	}
	x0, y0 := pdf.GetX()+8, pdf.GetY()+chartH
	pdf.SetDrawColor(colorMuted.r, colorMuted.g, colorMuted.b)
	pdf.Line(x0-2, y0, x0+float64(len(totals))*(barW+gap), y0)
	pdf.SetFont("Helvetica", "", 8)
	for i, n := range totals {
		h := chartH * float64(n) / float64(peak)
		x := x0 + float64(i)*(barW+gap)
		setFill(pdf, colorHeading)
		if h > 0 {
			pdf.Rect(x, y0-h, barW, h, "F")
		}
		setText(pdf, colorTitle)
		pdf.SetXY(x, y0-h-5)
		pdf.CellFormat(barW, 5, fmt.Sprint(n), "", 0, "C", false, 0, "")
		pdf.SetXY(x, y0+1)
		pdf.CellFormat(barW, 5, prediction.Domains()[i].String(), "", 0, "C", false, 0, "")
	}
	pdf.SetXY(10, y0+8)
}

func modulePage(pdf *gofpdf.Fpdf, d prediction.Domain, st stats.Stats, recs []store.Record) {
	pdf.AddPage()
	heading(pdf, d.Title())
	total, metric := keyMetric(d, st)
	body(pdf, fmt.Sprintf("Total Predictions: %d\n%s", total, metric))

	pdf.Ln(3)
	pdf.SetFont("Helvetica", "B", 12)
	setText(pdf, colorTitle)
	pdf.CellFormat(0, 8, "Recent Predictions", "", 1, "L", false, 0, "")

	pdf.SetFont("Helvetica", "B", 10)
	setFill(pdf, colorMuted)
	pdf.SetTextColor(255, 255, 255)
	pdf.CellFormat(40, 8, "Timestamp", "1", 0, "L", true, 0, "")
	pdf.CellFormat(140, 8, "Prediction Details", "1", 1, "L", true, 0, "")

	pdf.SetFont("Helvetica", "", 8)
	setText(pdf, colorTitle)
	setFill(pdf, colorStripe)
	start := 0
	if len(recs) > RecentPerModule {
		start = len(recs) - RecentPerModule
	}
	for i := len(recs) - 1; i >= start; i-- {
		r := recs[i]
		details := r.Result.Summary()
		if len(details) > 95 {
			details = details[:95]
		}
		fill := (len(recs)-1-i)%2 == 1
		pdf.CellFormat(40, 7, r.Timestamp.Format("2006-01-02 15:04"), "1", 0, "L", fill, 0, "")
		pdf.CellFormat(140, 7, details, "1", 1, "L", fill, 0, "")
	}
}

func conclusion(pdf *gofpdf.Fpdf) {
	pdf.AddPage()
	heading(pdf, "Conclusion & Recommendations")
	body(pdf, "Key findings:\n"+
		"- Predictions were served across the configured modules.\n"+
		"- Stored results allow congestion, consumption and air quality trends to be followed.\n\n"+
		"Recommendations:\n"+
		"- Keep monitoring predictions to identify patterns.\n"+
		"- Alert on critical thresholds such as high congestion or unhealthy air.\n"+
		"- Retrain the models regularly on fresh data.")
	pdf.Ln(8)
	pdf.SetFont("Helvetica", "I", 9)
	setText(pdf, colorMuted)
	pdf.MultiCell(0, 5, "Generated by the Smart City Resource Optimization System.", "", "L", false)
}
