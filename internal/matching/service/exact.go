package service

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"product-matcher/internal/matching/model"
)

// модельные коды вида "ABC-AL00"
var reModelCode = regexp.MustCompile(`\b[a-z]{2,4}-[a-z]{1,3}\d{2,4}\b`)

// ExactMatcher: бренд совпадает и нормализованная модель равна строкой.
type ExactMatcher struct {
	s        Strategy
	w        Weights
	editions []string
}

func NewExactMatcher(s Strategy, w Weights, editionWords []string) *ExactMatcher {
	return &ExactMatcher{s: s, w: w, editions: lowerAll(editionWords)}
}

// FindMatches возвращает кандидатов, отсортированных по score, priority,
// simplicity. Пустой вход даёт пустой результат.
func (m *ExactMatcher) FindMatches(info *model.ExtractedInfo, candidates []*model.EnhancedEntry) []model.SPUMatchResult {
	if !info.Model.Ok() || len(candidates) == 0 {
		return nil
	}
	want := info.Model.Get()
	inputTokens := longTokens(m.s.Tokenize(info.PreprocessedInput))

	var out []model.SPUMatchResult
	for _, c := range candidates {
		if m.s.ShouldFilter(info, c) {
			continue
		}
		if info.Brand.Ok() && !m.s.IsBrandMatch(info.Brand.Get(), c.ExtractedBrand) {
			continue
		}
		// обе стороны уже нормализованы через NormalizeModel
		if c.NormalizedModel != want {
			continue
		}

		vm := MatchVersion(versionPtr(info), c.Version, m.w)
		kw := keywordBonus(inputTokens, c.NameTokens, m.w)
		detail := m.detailBonus(info.PreprocessedInput, c.FoldedName)
		score := clamp01(vm.Score + kw + detail)

		out = append(out, model.SPUMatchResult{
			Entry:    c,
			Score:    score,
			Priority: m.s.GetPriority(info, c),
			Explanation: model.MatchExplanation{
				MatchType:    model.MatchExact,
				BrandMatch:   brandDimension(info, c, m.s),
				ModelMatch:   model.DimensionMatch{Matched: true, Score: 1},
				VersionMatch: model.DimensionMatch{Matched: vm.Matched, Score: vm.Score},
				Details: []string{
					fmt.Sprintf("exact model %q; %s; keyword bonus %.2f; detail bonus %.2f",
						want, vm.Explanation, kw, detail),
				},
			},
		})
	}
	sortResults(out)
	return out
}

func (m *ExactMatcher) detailBonus(input, name string) float64 {
	bonus := 0.0
	for _, code := range reModelCode.FindAllString(input, -1) {
		if strings.Contains(name, code) {
			bonus += m.w.ModelCodeBonus
			break
		}
	}
	for _, w := range m.editions {
		if containsWord(input, w) && containsWord(name, w) {
			bonus += m.w.EditionWordBonus
		}
	}
	if bonus > m.w.ModelDetailCap {
		bonus = m.w.ModelDetailCap
	}
	return bonus
}

// keywordBonus: +KeywordBonusPerToken за каждый общий токен длиннее 2 символов.
func keywordBonus(inputLong, candTokens []string, w Weights) float64 {
	if len(inputLong) == 0 || len(candTokens) == 0 {
		return 0
	}
	set := make(map[string]bool, len(candTokens))
	for _, t := range candTokens {
		set[t] = true
	}
	bonus := 0.0
	for _, t := range inputLong {
		if set[t] {
			bonus += w.KeywordBonusPerToken
		}
	}
	if bonus > w.KeywordBonusCap {
		bonus = w.KeywordBonusCap
	}
	return bonus
}

func versionPtr(info *model.ExtractedInfo) *model.Version {
	if !info.Version.Ok() {
		return nil
	}
	v := info.Version.Get()
	return &v
}

func brandDimension(info *model.ExtractedInfo, c *model.EnhancedEntry, s Strategy) model.DimensionMatch {
	if !info.Brand.Ok() {
		return model.DimensionMatch{}
	}
	if s.IsBrandMatch(info.Brand.Get(), c.ExtractedBrand) {
		return model.DimensionMatch{Matched: true, Score: info.Brand.Confidence}
	}
	return model.DimensionMatch{}
}

// sortResults: score desc, priority desc, simplicity asc; стабильно.
func sortResults(rs []model.SPUMatchResult) {
	sort.SliceStable(rs, func(i, j int) bool {
		a, b := rs[i], rs[j]
		if !sameScore(a.Score, b.Score) {
			return a.Score > b.Score
		}
		if a.Priority != b.Priority {
			return a.Priority > b.Priority
		}
		return a.Entry.Simplicity < b.Entry.Simplicity
	})
}

const scoreEpsilon = 1e-9

func sameScore(a, b float64) bool {
	d := a - b
	return d < scoreEpsilon && d > -scoreEpsilon
}
