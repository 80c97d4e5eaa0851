package fileio

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"

	excelize "github.com/xuri/excelize/v2"

	"product-matcher/internal/matching/model"
)

var resultHeader = []string{
	"request_id", "input", "spu_id", "spu_name", "spu_score", "match_type",
	"sku_id", "sku_name", "sku_score", "details",
}

// WriteResults пишет результаты в формате по расширению: .xlsx, .csv, .json.
func WriteResults(w io.Writer, filename string, results []model.Result) error {
	switch ext := strings.ToLower(filepath.Ext(filename)); ext {
	case ".json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		enc.SetEscapeHTML(false)
		return enc.Encode(results)
	case ".csv":
		cw := csv.NewWriter(w)
		if err := cw.Write(resultHeader); err != nil {
			return err
		}
		for _, r := range results {
			if err := cw.Write(resultRow(r)); err != nil {
				return err
			}
		}
		cw.Flush()
		return cw.Error()
	case ".xlsx":
		return writeXLSX(w, results)
	default:
		return fmt.Errorf("%w: %s", ErrUnsupported, filename)
	}
}

func writeXLSX(w io.Writer, results []model.Result) error {
	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Results"
	if err := f.SetSheetName(f.GetSheetName(0), sheet); err != nil {
		return err
	}
	if err := f.SetSheetRow(sheet, "A1", &resultHeader); err != nil {
		return err
	}
	for i, r := range results {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		row := resultRow(r)
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return err
		}
	}
	if err := f.SetPanes(sheet, &excelize.Panes{Freeze: true, YSplit: 1, TopLeftCell: "A2", ActivePane: "bottomLeft"}); err != nil {
		return err
	}
	_, err := f.WriteTo(w)
	return err
}

func resultRow(r model.Result) []string {
	row := make([]string, len(resultHeader))
	row[0], row[1] = r.RequestID, r.Input
	if r.SPU != nil {
		row[2] = r.SPU.Entry.ID
		row[3] = r.SPU.Entry.Name
		row[4] = strconv.FormatFloat(r.SPU.Score, 'f', 3, 64)
		row[5] = string(r.SPU.Explanation.MatchType)
		row[9] = strings.Join(r.SPU.Explanation.Details, "; ")
	}
	if r.SKU != nil && r.SKU.Variant != nil {
		row[6] = r.SKU.Variant.ID
		row[7] = r.SKU.Variant.Name
		row[8] = strconv.FormatFloat(r.SKU.Score, 'f', 3, 64)
	}
	return row
}
