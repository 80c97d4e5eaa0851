// Парсер .xls: ширину таблицы считаем сами, Row.LastCol() врёт на выгрузках.
package fileio

import (
	"bytes"
	"errors"
	"io"
	"strings"

	xls "github.com/extrame/xls"
)

const xlsProbeCols = 256

// xlsWidth: самая правая непустая колонка по шапке и данным.
func xlsWidth(sheet *xls.WorkSheet) int {
	width := 0
	for i := 0; i <= int(sheet.MaxRow); i++ {
		r := sheet.Row(i)
		if r == nil {
			continue
		}
		for j := xlsProbeCols - 1; j >= width; j-- {
			if strings.TrimSpace(r.Col(j)) != "" {
				width = j + 1
				break
			}
		}
	}
	return max(width, 1)
}

func readXLS(r io.Reader, headerRow int) ([][]string, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	// старые книги без юникода: сначала utf-8, затем китайская и кириллица
	var wb *xls.WorkBook
	var lastErr error
	for _, ch := range []string{"utf-8", "gbk", "windows-1251"} {
		wb, err = xls.OpenReader(bytes.NewReader(b), ch)
		if err == nil && wb != nil {
			break
		}
		lastErr = err
	}
	if wb == nil {
		if lastErr == nil {
			lastErr = errors.New("xls: failed to open workbook")
		}
		return nil, lastErr
	}

	sheet := wb.GetSheet(0)
	if sheet == nil || int(sheet.MaxRow) < headerRow-1 {
		return nil, nil
	}

	width := xlsWidth(sheet)
	rows := make([][]string, 0, int(sheet.MaxRow)+1)
	for i := 0; i <= int(sheet.MaxRow); i++ {
		row := sheet.Row(i)
		cols := make([]string, width)
		if row != nil {
			for j := range cols {
				cols[j] = strings.TrimSpace(row.Col(j))
			}
		}
		rows = append(rows, cols)
	}
	return rows, nil
}
