// Package export writes pages and histograms as spreadsheet files.
package export

import (
	"encoding/csv"
	"io"
	"strconv"

	"github.com/cockroachdb/errors"
	"github.com/xuri/excelize/v2"

	"github.com/lost-woods/variates/src/format"
	"github.com/lost-woods/variates/src/histogram"
)

const (
	numbersSheet   = "numeros"
	histogramSheet = "histograma"
)

var histogramHeader = []interface{}{"index", "label", "lower", "upper", "freq", "rel", "cum", "cum_rel"}

// PageXLSX writes one row per value, numbered from skip+1.
func PageXLSX(w io.Writer, skip int, values []float64) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), numbersSheet); err != nil {
		return errors.Wrap(err, "rename sheet")
	}
	sw, err := f.NewStreamWriter(numbersSheet)
	if err != nil {
		return errors.Wrap(err, "open stream writer")
	}
	if err := sw.SetRow("A1", []interface{}{"n", "valor"}); err != nil {
		return err
	}
	for i, v := range values {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := sw.SetRow(cell, []interface{}{skip + i + 1, v}); err != nil {
			return errors.Wrapf(err, "write row %d", i+2)
		}
	}
	if err := sw.Flush(); err != nil {
		return errors.Wrap(err, "flush sheet")
	}
	return f.Write(w)
}

// HistogramXLSX writes the bin table of h.
func HistogramXLSX(w io.Writer, h *histogram.Histogram) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), histogramSheet); err != nil {
		return errors.Wrap(err, "rename sheet")
	}
	header := histogramHeader
	if err := f.SetSheetRow(histogramSheet, "A1", &header); err != nil {
		return err
	}
	for i, b := range h.Bins {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		row := []interface{}{b.Index, b.Label, b.Lower, b.Upper, b.Freq, b.Rel, b.Cum, b.CumRel}
		if err := f.SetSheetRow(histogramSheet, cell, &row); err != nil {
			return errors.Wrapf(err, "write bin %d", b.Index)
		}
	}
	return f.Write(w)
}

// PageCSV writes the values formatted with style, numbered from skip+1.
func PageCSV(w io.Writer, skip int, values []float64, style format.Style) error {
	cw := csv.NewWriter(w)
	if style == format.Spanish {
		cw.Comma = ';'
	}
	if err := cw.Write([]string{"n", "valor"}); err != nil {
		return err
	}
	for i, v := range values {
		if err := cw.Write([]string{strconv.Itoa(skip + i + 1), format.Value(v, style)}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// HistogramCSV writes the bin table of h.
func HistogramCSV(w io.Writer, h *histogram.Histogram) error {
	cw := csv.NewWriter(w)
	header := make([]string, len(histogramHeader))
	for i, v := range histogramHeader {
		header[i] = v.(string)
	}
	if err := cw.Write(header); err != nil {
		return err
	}
	ff := func(x float64) string { return strconv.FormatFloat(x, 'f', -1, 64) }
	for _, b := range h.Bins {
		rec := []string{
			strconv.Itoa(b.Index), b.Label, ff(b.Lower), ff(b.Upper),
			strconv.Itoa(b.Freq), ff(b.Rel), strconv.Itoa(b.Cum), ff(b.CumRel),
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
