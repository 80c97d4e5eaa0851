package service

import (
	"fmt"
	"strings"

	"product-matcher/internal/matching/model"
	"product-matcher/internal/utils"
)

// FuzzyMatcher оценивает кандидатов по похожести токенов модели.
type FuzzyMatcher struct {
	s Strategy
	w Weights
}

func NewFuzzyMatcher(s Strategy, w Weights) *FuzzyMatcher {
	return &FuzzyMatcher{s: s, w: w}
}

func (m *FuzzyMatcher) FindMatches(info *model.ExtractedInfo, candidates []*model.EnhancedEntry, threshold float64) []model.SPUMatchResult {
	if !info.Model.Ok() || len(candidates) == 0 {
		return nil
	}
	inputModel := m.s.Tokenize(info.Model.Get())
	inputLong := longTokens(m.s.Tokenize(info.PreprocessedInput))

	var out []model.SPUMatchResult
	for _, c := range candidates {
		if m.s.ShouldFilter(info, c) {
			continue
		}
		// распознанный бренд во входе: кандидат без бренда или с чужим отсекается
		if info.Brand.Ok() && (c.ExtractedBrand == "" || !m.s.IsBrandMatch(info.Brand.Get(), c.ExtractedBrand)) {
			continue
		}
		if c.NormalizedModel == "" {
			continue
		}
		sim := TokenSimilarity(inputModel, m.s.Tokenize(c.NormalizedModel), m.w.PartialTokenCap)
		if sim <= m.w.FuzzyMinSimilarity {
			continue
		}
		kw := keywordBonus(inputLong, c.NameTokens, m.w)
		score := clamp01(m.w.FuzzyBase + sim*m.w.FuzzySimilarityWeight + kw)
		if score < threshold {
			continue
		}
		vm := MatchVersion(versionPtr(info), c.Version, m.w)
		out = append(out, model.SPUMatchResult{
			Entry:    c,
			Score:    score,
			Priority: m.s.GetPriority(info, c),
			Explanation: model.MatchExplanation{
				MatchType:    model.MatchFuzzy,
				BrandMatch:   brandDimension(info, c, m.s),
				ModelMatch:   model.DimensionMatch{Matched: sim >= 1, Score: sim},
				VersionMatch: model.DimensionMatch{Matched: vm.Matched, Score: vm.Score},
				Details: []string{
					fmt.Sprintf("fuzzy model %q ~ %q: similarity %.3f; keyword bonus %.2f",
						info.Model.Get(), c.NormalizedModel, sim, kw),
				},
			},
		})
	}
	sortResults(out)
	return out
}

// TokenSimilarity усредняет похожесть в обе стороны, поэтому короткий "17"
// не выглядит так же хорошо, как полный "17 pro max". Пустой список: 0.
func TokenSimilarity(a, b []string, partialCap float64) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	return (directional(a, b, partialCap) + directional(b, a, partialCap)) / 2
}

func directional(from, to []string, partialCap float64) float64 {
	total := 0.0
	for _, x := range from {
		best := 0.0
		for _, y := range to {
			if s := tokenScore(x, y, partialCap); s > best {
				best = s
			}
		}
		total += best
	}
	return total / float64(len(from))
}

func tokenScore(x, y string, partialCap float64) float64 {
	if x == y {
		return 1
	}
	if x == "" || y == "" {
		return 0
	}
	if strings.Contains(x, y) || strings.Contains(y, x) {
		lx, ly := utils.RuneLen(x), utils.RuneLen(y)
		short, long := lx, ly
		if short > long {
			short, long = long, short
		}
		return float64(short) / float64(long) * partialCap
	}
	return 0
}
