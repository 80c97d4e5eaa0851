package service

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"product-matcher/internal/matching/dict"
	"product-matcher/internal/matching/model"
)

func fixtureEntries() []model.CatalogEntry {
	return []model.CatalogEntry{
		{ID: "1", Name: "vivo S30 Pro mini 全网通5G", Brand: "vivo", Variants: []model.VariantDescriptor{
			{VariantID: "11", Color: "可可黑", Spec: "12GB+512GB"},
			{VariantID: "12", Color: "雾凇蓝", Spec: "12GB+256GB"},
			{VariantID: "13", Color: "可可黑", Spec: "12GB+256GB"},
		}},
		{ID: "2", Name: "vivo S30 Pro mini 三丽鸥家族系列礼盒", Brand: "vivo", Variants: []model.VariantDescriptor{
			{VariantID: "21", Color: "粉色", Spec: "12GB+512GB"},
		}},
		{ID: "3", Name: "vivo S30 全网通5G", Brand: "vivo"},
		{ID: "4", Name: "Apple iPhone 17 Pro Max", Brand: "苹果", Variants: []model.VariantDescriptor{
			{VariantID: "41", Color: "星宇橙", Spec: "256GB"},
			{VariantID: "42", Color: "深蓝色", Spec: "512GB"},
		}},
		{ID: "5", Name: "Apple iPhone 17", Brand: "苹果"},
		{ID: "6", Name: "华为 Mate 60 Pro"},
		{ID: "7", Name: "OPPO Find X8 Pro"},
		{ID: "8", Name: "HUAWEI WATCH GT 5 Pro 46mm", Variants: []model.VariantDescriptor{
			{VariantID: "81", Color: "曜石黑"},
			{VariantID: "82", Color: "钛金属原色"},
		}},
		{ID: "9", Name: "Xiaomi 14 Ultra"},
	}
}

type recordingTracer struct {
	mu     sync.Mutex
	starts []string
	ends   map[string]map[string]any
}

func (r *recordingTracer) Start(phase string, _ map[string]any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.starts = append(r.starts, phase)
}

func (r *recordingTracer) End(phase string, meta map[string]any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.ends == nil {
		r.ends = map[string]map[string]any{}
	}
	r.ends[phase] = meta
}

func newFixture(t *testing.T, opts Options) (*Matcher, *Catalog) {
	t.Helper()
	m := NewMatcher(dict.Defaults(), opts)
	cat, err := m.Preprocess(context.Background(), fixtureEntries())
	require.NoError(t, err)
	return m, cat
}

func TestMatch_GiftBoxFilteredAndSKUResolved(t *testing.T) {
	t.Parallel()
	m, cat := newFixture(t, Options{Workers: 4})

	res := m.Match("Vivo S30Promini 5G(12+512)可可黑", cat)
	require.NotNil(t, res.SPU)
	assert.NotEmpty(t, res.RequestID)
	assert.Equal(t, "1", res.SPU.Entry.ID)
	assert.Equal(t, model.MatchExact, res.SPU.Explanation.MatchType)
	assert.InDelta(t, 1.0, res.SPU.Score, 1e-9)
	assert.Equal(t, PriorityStandard, res.SPU.Priority)
	assert.Contains(t, res.SPU.Explanation.Details[len(res.SPU.Explanation.Details)-1], "selected by score layer")

	require.NotNil(t, res.SKU)
	assert.Equal(t, "11", res.SKU.Variant.ID)
	assert.Equal(t, "1", res.SKU.Variant.SPUID)
	assert.InDelta(t, 1.0, res.SKU.Score, 1e-9)
	assert.True(t, res.SKU.SpecMatches[DimColor].Matched)
	assert.True(t, res.SKU.SpecMatches[DimCapacity].Matched)
}

func TestMatch_ExactBeatsFuzzyShorterModel(t *testing.T) {
	t.Parallel()
	m, cat := newFixture(t, Options{})

	res := m.Match("Apple iPhone 17 Pro Max 256GB", cat)
	require.NotNil(t, res.SPU)
	assert.Equal(t, "4", res.SPU.Entry.ID)
	assert.Equal(t, model.MatchExact, res.SPU.Explanation.MatchType)

	require.NotNil(t, res.SKU)
	assert.Equal(t, "41", res.SKU.Variant.ID)
	assert.InDelta(t, 0.5, res.SKU.SpecMatches[DimColor].Score, 1e-9)
	assert.InDelta(t, 1.0, res.SKU.SpecMatches[DimCapacity].Score, 1e-9)
	_, hasVersion := res.SKU.SpecMatches[DimVersion]
	assert.False(t, hasVersion, "version absent on both sides is omitted")
}

func TestMatch_WatchUsesTypeWeights(t *testing.T) {
	t.Parallel()
	m, cat := newFixture(t, Options{})

	res := m.Match("华为 WATCH GT 5 Pro 46mm 钛金属原色", cat)
	require.NotNil(t, res.SPU)
	assert.Equal(t, "8", res.SPU.Entry.ID)
	require.NotNil(t, res.SKU)
	assert.Equal(t, "82", res.SKU.Variant.ID)
	assert.InDelta(t, 1.0, res.SKU.Score, 1e-9)
	assert.Contains(t, res.SKU.SpecMatches, DimSize)
	assert.NotContains(t, res.SKU.SpecMatches, DimCapacity)
}

func TestMatch_FuzzyBrandSpelling(t *testing.T) {
	t.Parallel()
	m, cat := newFixture(t, Options{})

	res := m.Match("Xiaomy 14 Ultra", cat)
	require.NotNil(t, res.SPU)
	assert.Equal(t, "9", res.SPU.Entry.ID)
	assert.Nil(t, res.SKU, "entry without variants has no sku")
}

func TestMatch_NoMatch(t *testing.T) {
	t.Parallel()
	m, cat := newFixture(t, Options{})

	tests := []struct {
		name  string
		input string
	}{
		{"no extractable model", "手机 5G 全网通"},
		{"brand known, model unknown", "华为 Pura 80 Ultra"},
		{"other brand same model", "荣耀 Mate 60 Pro"},
		{"empty input", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			res := m.Match(tt.input, cat)
			assert.Nil(t, res.SPU)
			assert.Nil(t, res.SKU)
			assert.Equal(t, tt.input, res.Input)
		})
	}
}

func TestMatch_EmptyCatalog(t *testing.T) {
	t.Parallel()
	m := NewMatcher(dict.Defaults(), Options{})

	res := m.Match("Vivo S30Promini 5G(12+512)可可黑", nil)
	assert.Nil(t, res.SPU)
	assert.Nil(t, res.SKU)

	cat, err := m.Preprocess(context.Background(), nil)
	require.NoError(t, err)
	assert.Zero(t, cat.Len())
	res = m.Match("Vivo S30Promini 5G(12+512)可可黑", cat)
	assert.Nil(t, res.SPU)
	assert.Nil(t, res.SKU)
	assert.Nil(t, m.MatchSPU("vivo s30", cat))
}

func TestMatch_Threshold(t *testing.T) {
	t.Parallel()
	m, cat := newFixture(t, Options{Threshold: 0.99})
	assert.InDelta(t, 0.99, m.Threshold(), 1e-9)

	// точное совпадение без версии набирает 0.6 и не проходит порог
	assert.Nil(t, m.MatchSPU("Apple iPhone 17 Pro Max", cat))
	require.NotNil(t, m.MatchSPU("Vivo S30Promini 5G", cat))
}

func TestMatch_TracerSeesPhases(t *testing.T) {
	t.Parallel()
	tr := &recordingTracer{}
	m, cat := newFixture(t, Options{Tracer: tr})

	m.Match("Apple iPhone 17 Pro Max 256GB", cat)

	tr.mu.Lock()
	defer tr.mu.Unlock()
	for _, phase := range []string{"preprocess", "extract", "narrow", "exact", "fuzzy", "select", "sku"} {
		assert.Contains(t, tr.starts, phase)
		require.Contains(t, tr.ends, phase)
		assert.Contains(t, tr.ends[phase], "elapsed")
	}
}

func TestPreprocess_Indexes(t *testing.T) {
	t.Parallel()
	entries := append(fixtureEntries(),
		model.CatalogEntry{ID: "", Name: "no id"},
		model.CatalogEntry{ID: "x", Name: "   "},
		model.CatalogEntry{ID: "1", Name: "duplicate of vivo S30 Pro mini"},
	)
	m := NewMatcher(dict.Defaults(), Options{Workers: 3})
	cat, err := m.Preprocess(context.Background(), entries)
	require.NoError(t, err)

	assert.Equal(t, 9, cat.Len())
	e, ok := cat.Entry("1")
	require.True(t, ok)
	assert.Equal(t, "vivo S30 Pro mini 全网通5G", e.Name)
	assert.Equal(t, "S30 Pro mini", e.ExtractedModel)
	assert.Equal(t, "s30promini", e.NormalizedModel)
	require.NotNil(t, e.Version)
	assert.True(t, e.Version.Standard)

	// порядок индекса совпадает с порядком каталога
	ids := func(es []*model.EnhancedEntry) []string {
		var out []string
		for _, e := range es {
			out = append(out, e.ID)
		}
		return out
	}
	assert.Equal(t, []string{"1", "2"}, ids(cat.ByModel("s30promini")))
	assert.Equal(t, []string{"1", "2", "3"}, ids(cat.ByBrand("vivo")))
	assert.Equal(t, ids(cat.ByBrand("华为")), ids(cat.ByBrand("HUAWEI")))
	assert.Equal(t, []string{"6", "8"}, ids(cat.ByBrand("huawei")))
	assert.Equal(t, []string{"4", "5"}, ids(cat.ByBrand("apple")))

	assert.Contains(t, cat.Colors(), "钛金属原色")
	assert.Equal(t, "钛金属原色", cat.Colors()[0], "longest color first")

	gift, _ := cat.Entry("2")
	plain, _ := cat.Entry("3")
	assert.Greater(t, gift.Simplicity, plain.Simplicity)

	// каталог задаёт бренд как "苹果", а в названии стоит "Apple"
	iphone, ok := cat.Entry("5")
	require.True(t, ok)
	assert.Equal(t, "iphone17", iphone.NormalizedModel)
	assert.Equal(t, 1, iphone.Simplicity, "len(Apple iPhone 17) - len(apple) - len(iphone 17)")
}

func TestMatch_SpacedAndGluedSeriesNumber(t *testing.T) {
	t.Parallel()
	m := NewMatcher(dict.Defaults(), Options{})
	cat, err := m.Preprocess(context.Background(), []model.CatalogEntry{
		{ID: "5", Name: "Apple iPhone 17", Brand: "苹果"},
		{ID: "6", Name: "华为 Mate 60 Pro"},
	})
	require.NoError(t, err)

	for _, input := range []string{"Apple iPhone17", "Apple iPhone 17", "苹果 iphone 17"} {
		res := m.MatchSPU(input, cat)
		require.NotNil(t, res, input)
		assert.Equal(t, "5", res.Entry.ID, input)
		assert.Equal(t, model.MatchExact, res.Explanation.MatchType, input)
	}
}

func TestMatch_PartialWeightsKeepDefaults(t *testing.T) {
	t.Parallel()
	m, cat := newFixture(t, Options{Weights: Weights{Threshold: 0.6}})
	assert.InDelta(t, 0.6, m.Threshold(), 1e-9)

	res := m.Match("Vivo S30Promini 5G(12+512)可可黑", cat)
	require.NotNil(t, res.SPU)
	assert.Equal(t, "1", res.SPU.Entry.ID)
	assert.InDelta(t, 1.0, res.SPU.Score, 1e-9)
	require.NotNil(t, res.SKU)
	assert.Equal(t, "11", res.SKU.Variant.ID)
}

func TestPreprocess_Cancelled(t *testing.T) {
	t.Parallel()
	m := NewMatcher(dict.Defaults(), Options{})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := m.Preprocess(ctx, fixtureEntries())
	require.ErrorIs(t, err, context.Canceled)
}

func TestMatch_ConcurrentRequests(t *testing.T) {
	t.Parallel()
	m, cat := newFixture(t, Options{})

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			res := m.Match("Vivo S30Promini 5G(12+512)可可黑", cat)
			if assert.NotNil(t, res.SPU) {
				assert.Equal(t, "1", res.SPU.Entry.ID)
			}
		}()
	}
	wg.Wait()
}
