package fileio

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/saintfish/chardet"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/simplifiedchinese"
	"golang.org/x/text/transform"
)

// readCSV определяет кодировку по первым 4 КБ и перекодирует в UTF-8.
// Выгрузки маркетплейсов бывают в GB18030/GBK, старые в cp1251.
func readCSV(r io.Reader, tab bool) ([][]string, error) {
	br := bufio.NewReader(r)
	peek, _ := br.Peek(4096)
	peek = bytes.TrimPrefix(peek, []byte("\xEF\xBB\xBF"))

	var dec io.Reader = br
	switch detectCharset(peek) {
	case "gb-18030":
		dec = transform.NewReader(br, simplifiedchinese.GB18030.NewDecoder())
	case "windows-1251":
		dec = transform.NewReader(br, charmap.Windows1251.NewDecoder())
	}

	cr := csv.NewReader(dec)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	if tab {
		cr.Comma = '\t'
	}

	var rows [][]string
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		rows = append(rows, rec)
	}
	return rows, nil
}

// detectCharset: валидный UTF-8 оставляем как есть, кириллицу определяет
// chardet, всё остальное считаем китайской выгрузкой.
func detectCharset(peek []byte) string {
	if len(peek) == 0 || isValidUTF8(peek) {
		return "utf-8"
	}
	if det, err := chardet.NewTextDetector().DetectBest(peek); err == nil && det != nil {
		if strings.EqualFold(det.Charset, "windows-1251") {
			return "windows-1251"
		}
	}
	return "gb-18030"
}

func isValidUTF8(b []byte) bool {
	// последний символ мог обрезаться на границе peek
	for i := 0; i < 3 && len(b) > 0; i++ {
		if utf8.Valid(b) {
			return true
		}
		b = b[:len(b)-1]
	}
	return utf8.Valid(b)
}
