package fileio

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"product-matcher/internal/matching/model"
)

var ErrInvalidCatalog = errors.New("invalid catalog")

// Заголовки каталога: одна строка на SKU.
const (
	ColSPUID   = "spu_id|spuid|spu编号|商品id|商品编号"
	ColSPUName = "spu_name|name|商品名称|名称|标题"
	ColBrand   = "brand|品牌"
	ColSKUID   = "sku_id|skuid|sku编号"
	ColColor   = "color|颜色"
	ColSpec    = "spec|capacity|规格|容量|存储"
	ColCombo   = "combo|version|版本|套餐"

	ColTitle = "title|input|标题|商品标题|商品名称|name"
)

// ReadCatalog читает каталог из .xlsx/.xls/.csv (строка на SKU, группируется
// по spu_id в порядке первого появления) или .json ([]CatalogEntry).
func ReadCatalog(r io.Reader, filename string) ([]model.CatalogEntry, error) {
	if strings.EqualFold(filepath.Ext(filename), ".json") {
		var entries []model.CatalogEntry
		if err := json.NewDecoder(r).Decode(&entries); err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrInvalidCatalog, filename, err)
		}
		return entries, nil
	}

	recs, headers, err := ReadTable(r, filename, 1)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCatalog, err)
	}
	if len(headers) == 0 {
		return nil, fmt.Errorf("%w: %s has no header row", ErrInvalidCatalog, filename)
	}

	idKey := resolveColumn(headers, ColSPUID)
	nameKey := resolveColumn(headers, ColSPUName)
	if idKey == "" || nameKey == "" {
		return nil, fmt.Errorf("%w: %s needs spu_id and spu_name columns, got %v", ErrInvalidCatalog, filename, headers)
	}
	brandKey := resolveColumn(headers, ColBrand)
	skuKey := resolveColumn(headers, ColSKUID)
	colorKey := resolveColumn(headers, ColColor)
	specKey := resolveColumn(headers, ColSpec)
	comboKey := resolveColumn(headers, ColCombo)

	var out []model.CatalogEntry
	pos := map[string]int{}
	for _, rec := range recs {
		// склеенные выгрузки повторяют шапку посреди данных
		if repeatsHeader(rec) {
			continue
		}
		id := rec[idKey]
		if id == "" {
			continue
		}
		i, ok := pos[id]
		if !ok {
			i = len(out)
			pos[id] = i
			out = append(out, model.CatalogEntry{ID: id})
		}
		e := &out[i]
		if e.Name == "" {
			e.Name = rec[nameKey]
		}
		if e.Brand == "" && brandKey != "" {
			e.Brand = rec[brandKey]
		}
		v := model.VariantDescriptor{
			VariantID: get(rec, skuKey),
			Color:     get(rec, colorKey),
			Spec:      get(rec, specKey),
			Combo:     get(rec, comboKey),
		}
		if v != (model.VariantDescriptor{}) {
			e.Variants = append(e.Variants, v)
		}
	}
	return out, nil
}

// repeatsHeader: хотя бы две ячейки строки совпадают со своим заголовком
// после нормализации.
func repeatsHeader(rec map[string]string) bool {
	cnt := 0
	for h, v := range rec {
		if v != "" && normHeaderKey(v) == normHeaderKey(h) {
			cnt++
		}
	}
	return cnt >= 2
}

func get(rec map[string]string, key string) string {
	if key == "" {
		return ""
	}
	return rec[key]
}

// ReadTitles читает входные названия: колонку title из таблицы или
// построчно из .txt.
func ReadTitles(r io.Reader, filename string) ([]string, error) {
	if strings.EqualFold(filepath.Ext(filename), ".txt") {
		var out []string
		sc := bufio.NewScanner(r)
		sc.Buffer(make([]byte, 64*1024), 1024*1024)
		for sc.Scan() {
			if line := strings.TrimSpace(sc.Text()); line != "" {
				out = append(out, line)
			}
		}
		return out, sc.Err()
	}

	recs, headers, err := ReadTable(r, filename, 1)
	if err != nil {
		return nil, err
	}
	key := resolveColumn(headers, ColTitle)
	if key == "" {
		if len(headers) == 0 {
			return nil, nil
		}
		key = headers[0]
	}
	out := make([]string, 0, len(recs))
	for _, rec := range recs {
		if t := rec[key]; t != "" && normHeaderKey(t) != normHeaderKey(key) {
			out = append(out, t)
		}
	}
	return out, nil
}
