package fileio

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	excelize "github.com/xuri/excelize/v2"
	"golang.org/x/text/encoding/simplifiedchinese"

	"product-matcher/internal/matching/model"
)

const catalogCSV = `spu_id,spu_name,brand,sku_id,color,spec,combo
1,vivo S30 Pro mini 全网通5G,vivo,11,可可黑,12GB+512GB,
1,vivo S30 Pro mini 全网通5G,vivo,12,雾凇蓝,12GB+256GB,
2,vivo S30 Pro mini 三丽鸥家族系列礼盒,vivo,21,,,礼盒版
`

func TestReadCatalog_CSV(t *testing.T) {
	t.Parallel()

	entries, err := ReadCatalog(strings.NewReader(catalogCSV), "catalog.csv")
	require.NoError(t, err)
	require.Len(t, entries, 2)

	assert.Equal(t, "1", entries[0].ID)
	assert.Equal(t, "vivo S30 Pro mini 全网通5G", entries[0].Name)
	assert.Equal(t, "vivo", entries[0].Brand)
	require.Len(t, entries[0].Variants, 2)
	assert.Equal(t, model.VariantDescriptor{VariantID: "11", Color: "可可黑", Spec: "12GB+512GB"}, entries[0].Variants[0])
	assert.Equal(t, "雾凇蓝", entries[0].Variants[1].Color)

	require.Len(t, entries[1].Variants, 1)
	assert.Equal(t, "礼盒版", entries[1].Variants[0].Combo)
}

func TestReadCatalog_RepeatedHeaderSkipped(t *testing.T) {
	t.Parallel()

	src := catalogCSV + "SPU_ID,SPU_Name,Brand,SKU_ID,Color,Spec,Combo\n" +
		"3,OPPO Find X8 Pro,OPPO,31,星野黑,16GB+512GB,\n"
	entries, err := ReadCatalog(strings.NewReader(src), "catalog.csv")
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, "3", entries[2].ID)
}

func TestReadCatalog_ChineseHeadersGB18030(t *testing.T) {
	t.Parallel()

	src := "商品编号,商品名称,品牌,SKU编号,颜色,规格\n" +
		"100,华为 Mate 60 Pro,华为,1001,雅川青,12GB+512GB\n" +
		"100,华为 Mate 60 Pro,华为,1002,白沙银,12GB+1TB\n"
	enc, err := simplifiedchinese.GB18030.NewEncoder().String(src)
	require.NoError(t, err)

	entries, err := ReadCatalog(strings.NewReader(enc), "catalog.csv")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "华为 Mate 60 Pro", entries[0].Name)
	assert.Equal(t, "华为", entries[0].Brand)
	require.Len(t, entries[0].Variants, 2)
	assert.Equal(t, "白沙银", entries[0].Variants[1].Color)
	assert.Equal(t, "1002", entries[0].Variants[1].VariantID)
}

func TestReadCatalog_XLSX(t *testing.T) {
	t.Parallel()

	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	rows := [][]any{
		{"SPU ID", "SPU Name", "Brand", "SKU ID", "Color", "Spec"},
		{"7", "Apple iPhone 17 Pro Max", "苹果", "71", "星宇橙", "256GB"},
		{},
		{"7", "Apple iPhone 17 Pro Max", "苹果", "72", "深蓝色", "512GB"},
	}
	for i, r := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow(sheet, cell, &r))
	}
	var buf bytes.Buffer
	_, err := f.WriteTo(&buf)
	require.NoError(t, err)

	entries, err := ReadCatalog(&buf, "catalog.xlsx")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "Apple iPhone 17 Pro Max", entries[0].Name)
	require.Len(t, entries[0].Variants, 2)
	assert.Equal(t, "512GB", entries[0].Variants[1].Spec)
}

func TestReadCatalog_JSON(t *testing.T) {
	t.Parallel()

	want := []model.CatalogEntry{{ID: "a", Name: "OPPO Find X8", Variants: []model.VariantDescriptor{{VariantID: "a1", Color: "星野黑"}}}}
	b, err := json.Marshal(want)
	require.NoError(t, err)

	got, err := ReadCatalog(bytes.NewReader(b), "catalog.JSON")
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestReadCatalog_Invalid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name, file, body string
	}{
		{"json object instead of list", "c.json", `{"id":"1"}`},
		{"missing name column", "c.csv", "spu_id,color\n1,黑\n"},
		{"empty file", "c.csv", ""},
		{"unsupported extension", "c.pdf", "x"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := ReadCatalog(strings.NewReader(tt.body), tt.file)
			require.ErrorIs(t, err, ErrInvalidCatalog)
		})
	}
}

func TestReadTitles(t *testing.T) {
	t.Parallel()

	got, err := ReadTitles(strings.NewReader("id,标题\n1,Vivo S30Promini 5G(12+512)可可黑\n2,\n3,华为Mate60Pro\n"), "in.csv")
	require.NoError(t, err)
	assert.Equal(t, []string{"Vivo S30Promini 5G(12+512)可可黑", "华为Mate60Pro"}, got)

	got, err = ReadTitles(strings.NewReader("  a \n\nb\n"), "in.txt")
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, got)
}

func TestResolveColumn(t *testing.T) {
	t.Parallel()

	headers := []string{"商品名称（必填）", "SKU编号", "spu_id", "颜色"}
	assert.Equal(t, "spu_id", resolveColumn(headers, ColSPUID))
	assert.Equal(t, "商品名称（必填）", resolveColumn(headers, ColSPUName))
	assert.Equal(t, "SKU编号", resolveColumn(headers, ColSKUID))
	assert.Equal(t, "颜色", resolveColumn(headers, ColColor))
	assert.Empty(t, resolveColumn(headers, ColBrand))
	assert.Empty(t, resolveColumn(headers, ""))
}

func sampleResults() []model.Result {
	entry := &model.EnhancedEntry{CatalogEntry: model.CatalogEntry{ID: "1", Name: "vivo S30 Pro mini 全网通5G"}}
	return []model.Result{
		{
			RequestID: "r1",
			Input:     "Vivo S30Promini 5G(12+512)可可黑",
			SPU: &model.SPUMatchResult{
				Entry: entry, Score: 1,
				Explanation: model.MatchExplanation{MatchType: model.MatchExact, Details: []string{"a", "b"}},
			},
			SKU: &model.SKUMatchResult{Variant: &model.Variant{ID: "11", Name: "vivo S30 Pro mini 可可黑"}, Score: 0.85},
		},
		{RequestID: "r2", Input: "手机 5G 全网通"},
	}
}

func TestWriteResults_CSV(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	require.NoError(t, WriteResults(&buf, "out.csv", sampleResults()))
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, strings.Join(resultHeader, ","), lines[0])
	assert.Equal(t, "r1,Vivo S30Promini 5G(12+512)可可黑,1,vivo S30 Pro mini 全网通5G,1.000,exact,11,vivo S30 Pro mini 可可黑,0.850,a; b", lines[1])
	assert.Equal(t, "r2,手机 5G 全网通,,,,,,,,", lines[2])
}

func TestWriteResults_XLSXRoundTrip(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	require.NoError(t, WriteResults(&buf, "out.xlsx", sampleResults()))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()
	rows, err := f.GetRows("Results")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "spu_id", rows[0][2])
	assert.Equal(t, "1", rows[1][2])
	assert.Equal(t, "0.850", rows[1][8])
}

func TestWriteResults_JSONAndUnsupported(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	require.NoError(t, WriteResults(&buf, "out.json", sampleResults()))
	assert.Contains(t, buf.String(), `"requestId": "r1"`)
	assert.Contains(t, buf.String(), `"spu": null`)

	require.ErrorIs(t, WriteResults(&buf, "out.pdf", nil), ErrUnsupported)
}
