package service

import (
	"fmt"
	"regexp"
	"strings"

	"product-matcher/internal/matching/dict"
	"product-matcher/internal/matching/model"
	"product-matcher/internal/utils"
)

const (
	DimColor    = "color"
	DimCapacity = "capacity"
	DimVersion  = "version"
	DimSize     = "size"
	DimBand     = "band"
)

// фиксированный порядок измерений, чтобы SpecMatches и сумма считались одинаково
var dimensions = []string{DimColor, DimCapacity, DimVersion, DimSize, DimBand}

var reBand = regexp.MustCompile(`\p{Han}{1,6}表带`)

const dimensionMatched = 0.7

// SKUMatcher выбирает вариант внутри найденного SPU.
type SKUMatcher struct {
	ex     *Extractor
	d      *dict.Dictionaries
	colors *dict.ColorEquivalence
	w      Weights
}

func NewSKUMatcher(ex *Extractor, d *dict.Dictionaries, w Weights) *SKUMatcher {
	return &SKUMatcher{ex: ex, d: d, colors: dict.NewColorEquivalence(d.ColorVariants), w: w}
}

type attrs struct {
	color, capacity, size, band string
	version                     *model.Version
}

// FindBestMatch считает взвешенное среднее по измерениям типа товара.
// Измерения, отсутствующие с обеих сторон, в знаменатель не входят.
// При равенстве остаётся первый вариант. Пустой список: {nil, 0}.
func (s *SKUMatcher) FindBestMatch(spu *model.EnhancedEntry, info *model.ExtractedInfo, productType string, variants []model.Variant) model.SKUMatchResult {
	if len(variants) == 0 {
		return model.SKUMatchResult{}
	}
	weights := s.weightsFor(productType)
	in := s.inputAttrs(info)

	var best model.SKUMatchResult
	bestScore := -1.0
	for i := range variants {
		va := s.variantAttrs(&variants[i])
		score, matches := s.score(in, va, weights)
		if score > bestScore {
			bestScore = score
			v := variants[i]
			if v.SPUID == "" && spu != nil {
				v.SPUID = spu.ID
			}
			best = model.SKUMatchResult{Variant: &v, Score: score, SpecMatches: matches}
		}
	}
	return best
}

func (s *SKUMatcher) weightsFor(productType string) map[string]float64 {
	if pt, ok := s.d.ProductType(productType); ok && len(pt.SpecWeights) > 0 {
		return pt.SpecWeights
	}
	return DefaultSpecWeights()
}

func (s *SKUMatcher) inputAttrs(info *model.ExtractedInfo) attrs {
	a := attrs{
		color:    info.Color.Get(),
		capacity: info.Capacity.Get(),
		version:  versionPtr(info),
	}
	if m := reSize.FindStringSubmatch(info.PreprocessedInput); m != nil {
		a.size = m[1]
	}
	a.band = reBand.FindString(info.PreprocessedInput)
	return a
}

// variantAttrs: структурные поля важнее разбора названия.
func (s *SKUMatcher) variantAttrs(v *model.Variant) attrs {
	name := s.ex.Preprocess(v.Name)
	a := attrs{color: utils.Fold(v.Color)}
	if a.color == "" && name != "" {
		a.color = s.ex.ExtractColor(name, nil).Get()
	}
	if v.Capacity != "" {
		a.capacity = s.ex.NormalizeCapacity(v.Capacity)
	} else {
		a.capacity = s.ex.ExtractCapacity(name).Get()
	}
	if v.Version != "" {
		a.version = s.parseVersion(v.Version)
	} else if ext := s.ex.ExtractVersion(name); ext.Ok() {
		ver := ext.Get()
		a.version = &ver
	}
	if m := reSize.FindStringSubmatch(name); m != nil {
		a.size = m[1]
	}
	a.band = reBand.FindString(name)
	return a
}

// parseVersion: метка варианта может быть свободным текстом ("官方标配").
func (s *SKUMatcher) parseVersion(label string) *model.Version {
	text := s.ex.Preprocess(label)
	if text == "" {
		return nil
	}
	if ext := s.ex.ExtractVersion(text); ext.Ok() {
		v := ext.Get()
		return &v
	}
	return &model.Version{Label: text}
}

func (s *SKUMatcher) score(in, va attrs, weights map[string]float64) (float64, map[string]model.DimensionMatch) {
	matches := map[string]model.DimensionMatch{}
	sum, denom := 0.0, 0.0
	for _, dim := range dimensions {
		w := weights[dim]
		if w <= 0 {
			continue
		}
		sc, ok := s.dimension(dim, in, va)
		if !ok {
			continue
		}
		matches[dim] = model.DimensionMatch{Matched: sc >= dimensionMatched, Score: sc}
		sum += w * sc
		denom += w
	}
	if denom == 0 {
		return 0, matches
	}
	return clamp01(sum / denom), matches
}

// dimension возвращает ok=false, если измерения нет ни у входа, ни у варианта.
func (s *SKUMatcher) dimension(dim string, in, va attrs) (float64, bool) {
	if dim == DimVersion {
		if in.version == nil && va.version == nil {
			return 0, false
		}
		return MatchVersion(in.version, va.version, s.w).Score, true
	}

	var a, b string
	var cmp func(a, b string) float64
	switch dim {
	case DimColor:
		a, b, cmp = in.color, va.color, s.ColorScore
	case DimCapacity:
		a, b, cmp = in.capacity, va.capacity, s.capacityScore
	case DimSize:
		a, b, cmp = in.size, va.size, equalScore
	case DimBand:
		a, b, cmp = in.band, va.band, s.bandScore
	default:
		return 0, false
	}
	switch {
	case a == "" && b == "":
		return 0, false
	case a == "":
		return s.w.SpecNeutral, true
	case b == "":
		return 0, true
	}
	return cmp(a, b), true
}

// ColorScore симметричен: совпадение или вариант написания 1.0, вхождение
// ColorContains, общий базовый цвет ColorBasic.
func (s *SKUMatcher) ColorScore(a, b string) float64 {
	if a == "" || b == "" {
		return 0
	}
	if a == b || s.colors.Equivalent(a, b) {
		return 1
	}
	if strings.Contains(a, b) || strings.Contains(b, a) {
		return s.w.ColorContains
	}
	for _, bc := range s.d.BasicColors {
		if bc != "" && strings.Contains(a, bc) && strings.Contains(b, bc) {
			return s.w.ColorBasic
		}
	}
	return 0
}

func (s *SKUMatcher) capacityScore(a, b string) float64 {
	if a == b {
		return 1
	}
	if storage(a) == storage(b) {
		return s.w.CapacityStorageOnly
	}
	return 0
}

// storage: объём накопителя без оперативной памяти ("12+512" -> "512").
func storage(c string) string {
	if i := strings.LastIndexByte(c, '+'); i >= 0 {
		return c[i+1:]
	}
	return c
}

func equalScore(a, b string) float64 {
	if a == b {
		return 1
	}
	return 0
}

func (s *SKUMatcher) bandScore(a, b string) float64 {
	if a == b {
		return 1
	}
	if strings.Contains(a, b) || strings.Contains(b, a) {
		return s.w.ColorContains
	}
	return 0
}

// variantsOf строит варианты из дескрипторов записи каталога.
func variantsOf(e *model.EnhancedEntry) []model.Variant {
	out := make([]model.Variant, 0, len(e.Variants))
	for i, d := range e.Variants {
		id := d.VariantID
		if id == "" {
			id = fmt.Sprintf("%s#%d", e.ID, i+1)
		}
		out = append(out, model.Variant{
			ID:       id,
			Name:     utils.CollapseSpaces(strings.Join([]string{e.Name, d.Color, d.Spec, d.Combo}, " ")),
			SPUID:    e.ID,
			Color:    d.Color,
			Capacity: d.Spec,
			Version:  d.Combo,
		})
	}
	return out
}
