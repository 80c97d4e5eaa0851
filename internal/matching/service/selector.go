package service

import (
	"fmt"
	"strings"

	"product-matcher/internal/matching/model"
	"product-matcher/internal/utils"
)

// слои разрешения ничьей, по порядку
const (
	layerScore    = "score"
	layerSuffix   = "suffix-match"
	layerCoverage = "keyword-coverage"
	layerLength   = "length-match"
	layerShortest = "shortest-name"
)

type scored struct {
	res model.SPUMatchResult
	met model.SelectionMetrics
}

// selectBest берёт лучшего из уже отсортированного пула. При равенстве
// score и priority группа сужается слоями suffix -> coverage -> length ->
// самое короткое имя. Выбранному результату всегда дописывается пояснение.
func (m *Matcher) selectBest(info *model.ExtractedInfo, pool []model.SPUMatchResult) model.SPUMatchResult {
	top := pool[0]
	group := make([]*scored, 0, len(pool))
	for _, r := range pool {
		if r.Explanation.MatchType == top.Explanation.MatchType &&
			sameScore(r.Score, top.Score) && r.Priority == top.Priority {
			group = append(group, &scored{res: r, met: model.SelectionMetrics{BaseScore: r.Score}})
		}
	}

	// метрики нужны пояснению даже для единственного лидера
	inSuffixes := m.suffixSet(info.Model.Get())
	inTokens := longTokens(m.strategy.Tokenize(info.PreprocessedInput))
	inLen := utils.RuneLen(info.Model.Get())
	for _, g := range group {
		g.met.SuffixMatchScore = SuffixMatchScore(inSuffixes, m.suffixSet(g.res.Entry.NormalizedModel), m.w.SuffixExtraPenalty)
		g.met.KeywordCoverageScore = keywordCoverage(inTokens, g.res.Entry.FoldedName)
		g.met.LengthMatchScore = lengthMatch(inLen, utils.RuneLen(g.res.Entry.NormalizedModel), m.w.ShortCandidatePenalty)
	}

	layer := layerScore
	if len(group) > 1 {
		layers := []struct {
			name string
			key  func(*scored) float64
		}{
			{layerSuffix, func(s *scored) float64 { return s.met.SuffixMatchScore }},
			{layerCoverage, func(s *scored) float64 { return s.met.KeywordCoverageScore }},
			{layerLength, func(s *scored) float64 { return s.met.LengthMatchScore }},
		}
		for _, l := range layers {
			group = keepMax(group, l.key)
			if len(group) == 1 {
				layer = l.name
				break
			}
		}
		if len(group) > 1 {
			layer = layerShortest
			i := shortestIndex(group)
			group = group[i : i+1]
		}
	}

	win := group[0]
	win.met.FinalScore = finalScore(win.met)
	res := win.res
	res.Explanation.Details = append(append([]string(nil), res.Explanation.Details...),
		fmt.Sprintf("selected by %s layer: base=%.3f suffix=%.3f coverage=%.3f length=%.3f final=%.3f",
			layer, win.met.BaseScore, win.met.SuffixMatchScore, win.met.KeywordCoverageScore,
			win.met.LengthMatchScore, win.met.FinalScore))
	return res
}

func keepMax(group []*scored, key func(*scored) float64) []*scored {
	best := key(group[0])
	for _, g := range group[1:] {
		if v := key(g); v > best && !sameScore(v, best) {
			best = v
		}
	}
	out := group[:0:0]
	for _, g := range group {
		if sameScore(key(g), best) {
			out = append(out, g)
		}
	}
	return out
}

// shortestIndex: первый с самым коротким названием.
func shortestIndex(group []*scored) int {
	idx, best := 0, utils.RuneLen(group[0].res.Entry.Name)
	for i, g := range group[1:] {
		if n := utils.RuneLen(g.res.Entry.Name); n < best {
			idx, best = i+1, n
		}
	}
	return idx
}

// suffixSet раскладывает модель на токены и оставляет суффиксы
// ("17promax" -> pro, max).
func (m *Matcher) suffixSet(normalized string) map[string]bool {
	out := map[string]bool{}
	for _, t := range m.strategy.Tokenize(normalized) {
		if m.ex.IsSuffix(t) {
			out[t] = true
		}
	}
	return out
}

// SuffixMatchScore = matched/len(input) минус penalty за каждый лишний
// суффикс кандидата. Без суффиксов во входе база 1.0.
func SuffixMatchScore(input, candidate map[string]bool, penalty float64) float64 {
	matched, extra := 0, 0
	for s := range candidate {
		if input[s] {
			matched++
		} else {
			extra++
		}
	}
	base := 1.0
	if len(input) > 0 {
		base = float64(matched) / float64(len(input))
	}
	return clamp01(base - penalty*float64(extra))
}

// keywordCoverage: доля длинных токенов входа, встречающихся в названии.
func keywordCoverage(tokens []string, name string) float64 {
	if len(tokens) == 0 {
		return 0
	}
	hit := 0
	for _, t := range tokens {
		if strings.Contains(name, t) {
			hit++
		}
	}
	return float64(hit) / float64(len(tokens))
}

func lengthMatch(in, cand int, shortPenalty float64) float64 {
	if in == 0 || cand == 0 {
		return 0
	}
	lo, hi := in, cand
	if lo > hi {
		lo, hi = hi, lo
	}
	s := float64(lo) / float64(hi)
	if cand*2 < in {
		s *= shortPenalty
	}
	return s
}

// finalScore: сводная метрика для аудита, на выбор не влияет.
func finalScore(m model.SelectionMetrics) float64 {
	return clamp01(0.4*m.BaseScore + 0.25*m.SuffixMatchScore + 0.2*m.KeywordCoverageScore + 0.15*m.LengthMatchScore)
}
