package service

import (
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"product-matcher/internal/matching/dict"
	"product-matcher/internal/matching/model"
)

// VariantSource отдаёт SKU для найденного SPU. По умолчанию варианты
// строятся из дескрипторов записи каталога.
type VariantSource interface {
	Variants(entry *model.EnhancedEntry) []model.Variant
}

type entryVariants struct{}

func (entryVariants) Variants(e *model.EnhancedEntry) []model.Variant { return variantsOf(e) }

type Options struct {
	Threshold float64 // 0 -> Weights.Threshold
	Weights   Weights // нулевые поля берутся из DefaultWeights()
	Workers   int     // параллелизм Preprocess, <1 -> 1
	Logger    *zerolog.Logger
	Tracer    Tracer
	Strategy  Strategy // nil -> Rules из словарей
	Variants  VariantSource
}

// Matcher: оркестратор запроса: извлечение, сужение по индексу, exact,
// fuzzy, разрешение ничьей, SKU.
type Matcher struct {
	d         *dict.Dictionaries
	ex        *Extractor
	strategy  Strategy
	exact     *ExactMatcher
	fuzzy     *FuzzyMatcher
	sku       *SKUMatcher
	w         Weights
	threshold float64
	workers   int
	log       zerolog.Logger
	tracer    Tracer
	variants  VariantSource
}

func NewMatcher(d *dict.Dictionaries, opts Options) *Matcher {
	w := opts.Weights.WithDefaults()
	threshold := opts.Threshold
	if threshold <= 0 {
		threshold = w.Threshold
	}
	m := &Matcher{
		d:         d,
		ex:        NewExtractor(d),
		w:         w,
		threshold: threshold,
		workers:   max(opts.Workers, 1),
		log:       zerolog.Nop(),
		tracer:    opts.Tracer,
		variants:  opts.Variants,
		strategy:  opts.Strategy,
	}
	if opts.Logger != nil {
		m.log = opts.Logger.With().Str("component", "matcher").Logger()
	}
	if m.tracer == nil {
		m.tracer = nopTracer{}
	}
	if m.variants == nil {
		m.variants = entryVariants{}
	}
	if m.strategy == nil {
		m.strategy = NewRules(m.ex, d)
	}
	m.exact = NewExactMatcher(m.strategy, w, d.SpecialEditionWords)
	m.fuzzy = NewFuzzyMatcher(m.strategy, w)
	m.sku = NewSKUMatcher(m.ex, d, w)
	return m
}

func (m *Matcher) Threshold() float64 { return m.threshold }

func (m *Matcher) Extractor() *Extractor { return m.ex }

// Extract использует цвета каталога как словарь; cat может быть nil.
func (m *Matcher) Extract(raw string, cat *Catalog) model.ExtractedInfo {
	done := m.span("extract", nil)
	info := m.ex.Extract(raw, cat.Colors())
	done(map[string]any{"brand": info.Brand.Get(), "model": info.Model.Get()})
	return info
}

// Match: полный запрос. Отсутствие совпадения это нормальный результат
// с пустыми SPU/SKU, не ошибка.
func (m *Matcher) Match(raw string, cat *Catalog) model.Result {
	res := model.Result{RequestID: uuid.NewString(), Input: raw}
	log := m.log.With().Str("req_id", res.RequestID).Logger()

	if cat.Len() == 0 {
		log.Debug().Msg("empty catalog")
		return res
	}
	info := m.Extract(raw, cat)
	spu := m.matchSPU(&info, cat, log)
	if spu == nil {
		log.Debug().Str("input", raw).Msg("no spu match")
		return res
	}
	res.SPU = spu

	sku := m.matchSKU(spu.Entry, &info)
	if sku.Variant != nil {
		res.SKU = &sku
	}
	log.Debug().
		Str("spu", spu.Entry.ID).
		Float64("score", spu.Score).
		Str("match_type", string(spu.Explanation.MatchType)).
		Msg("matched")
	return res
}

// MatchSPU: только разрешение SPU. nil, если ничего не прошло порог.
func (m *Matcher) MatchSPU(raw string, cat *Catalog) *model.SPUMatchResult {
	if cat.Len() == 0 {
		return nil
	}
	info := m.Extract(raw, cat)
	return m.matchSPU(&info, cat, m.log)
}

// MatchSKU выбирает вариант для уже найденного SPU.
func (m *Matcher) MatchSKU(entry *model.EnhancedEntry, info *model.ExtractedInfo) model.SKUMatchResult {
	return m.matchSKU(entry, info)
}

func (m *Matcher) matchSKU(entry *model.EnhancedEntry, info *model.ExtractedInfo) model.SKUMatchResult {
	done := m.span("sku", map[string]any{"spu": entry.ID})
	variants := m.variants.Variants(entry)
	res := m.sku.FindBestMatch(entry, info, info.ProductType, variants)
	done(map[string]any{"variants": len(variants), "score": res.Score})
	return res
}

func (m *Matcher) matchSPU(info *model.ExtractedInfo, cat *Catalog, log zerolog.Logger) *model.SPUMatchResult {
	// без модели совпадение по одному бренду не считается
	if !info.Model.Ok() {
		log.Debug().Str("input", info.OriginalInput).Msg("no model extracted")
		return nil
	}

	done := m.span("narrow", nil)
	cands := m.narrow(info, cat)
	done(map[string]any{"candidates": len(cands)})
	if len(cands) == 0 {
		return nil
	}

	done = m.span("exact", nil)
	exact := m.exact.FindMatches(info, cat.ByModel(info.Model.Get()))
	done(map[string]any{"results": len(exact)})
	log.Debug().Int("candidates", len(cands)).Int("exact", len(exact)).Msg("exact pass")

	pool := exact
	if len(exact) == 0 || exact[0].Score < 1 {
		seen := make(map[string]bool, len(exact))
		for _, r := range exact {
			seen[r.Entry.ID] = true
		}
		rest := make([]*model.EnhancedEntry, 0, len(cands))
		for _, c := range cands {
			if !seen[c.ID] {
				rest = append(rest, c)
			}
		}
		done = m.span("fuzzy", nil)
		fuzzy := m.fuzzy.FindMatches(info, rest, m.threshold)
		done(map[string]any{"results": len(fuzzy)})
		log.Debug().Int("fuzzy", len(fuzzy)).Msg("fuzzy pass")
		pool = append(append([]model.SPUMatchResult(nil), exact...), fuzzy...)
	}

	// пул уже упорядочен: сначала exact, потом fuzzy, внутри по sortResults.
	// Точное совпадение модели не уступает похожему, даже если у того
	// score выше.
	kept := pool[:0:0]
	for _, r := range pool {
		if r.Score >= m.threshold {
			kept = append(kept, r)
		}
	}
	if len(kept) == 0 {
		return nil
	}

	done = m.span("select", map[string]any{"pool": len(kept)})
	best := m.selectBest(info, kept)
	done(map[string]any{"spu": best.Entry.ID, "score": best.Score})
	return &best
}

// narrow: при распознанном бренде берём индекс по бренду, а если ключа
// в индексе нет, то полный проход с проверкой бренда. Иначе весь каталог.
func (m *Matcher) narrow(info *model.ExtractedInfo, cat *Catalog) []*model.EnhancedEntry {
	if !info.Brand.Ok() {
		return cat.Entries
	}
	brand := info.Brand.Get()
	var out []*model.EnhancedEntry
	seen := map[string]bool{}
	hit := false
	for _, k := range m.brandKeys(brand) {
		list, ok := cat.byBrand[k]
		if !ok {
			continue
		}
		hit = true
		for _, e := range list {
			if !seen[e.ID] {
				seen[e.ID] = true
				out = append(out, e)
			}
		}
	}
	if hit {
		return out
	}
	for _, e := range cat.Entries {
		if m.strategy.IsBrandMatch(brand, e.ExtractedBrand) {
			out = append(out, e)
		}
	}
	return out
}
