package service

import (
	"strings"

	"product-matcher/internal/matching/dict"
	"product-matcher/internal/matching/model"
)

// Strategy: знания о предметной области, нужные матчерам. Rules работает
// по словарям.
type Strategy interface {
	ExtractBrand(text string) model.Extraction[string]
	ExtractModel(text string) model.Extraction[string]
	IsBrandMatch(a, b string) bool
	// ShouldFilter отсекает подарочные наборы, аксессуары и комплекты, о которых вход не просил.
	ShouldFilter(info *model.ExtractedInfo, entry *model.EnhancedEntry) bool
	GetPriority(info *model.ExtractedInfo, entry *model.EnhancedEntry) int
	Tokenize(s string) []string
}

const (
	PriorityStandard  = 3
	PrioritySpecialty = 2 // спецслово есть и во входе
	PriorityOther     = 1
)

type Rules struct {
	ex        *Extractor
	filter    []string
	specialty []string
}

var _ Strategy = (*Rules)(nil)

func NewRules(ex *Extractor, d *dict.Dictionaries) *Rules {
	return &Rules{
		ex:        ex,
		filter:    lowerAll(d.FilterWords),
		specialty: lowerAll(d.SpecialtyWords),
	}
}

func lowerAll(ws []string) []string {
	out := make([]string, 0, len(ws))
	for _, w := range ws {
		if w = strings.ToLower(strings.TrimSpace(w)); w != "" {
			out = append(out, w)
		}
	}
	return out
}

func (r *Rules) ExtractBrand(text string) model.Extraction[string] { return r.ex.ExtractBrand(text) }

func (r *Rules) ExtractModel(text string) model.Extraction[string] { return r.ex.ExtractModel(text) }

func (r *Rules) IsBrandMatch(a, b string) bool { return r.ex.Brands().Same(a, b) }

func (r *Rules) ShouldFilter(info *model.ExtractedInfo, entry *model.EnhancedEntry) bool {
	for _, w := range r.filter {
		if containsWord(entry.FoldedName, w) && !containsWord(info.PreprocessedInput, w) {
			return true
		}
	}
	return false
}

func (r *Rules) GetPriority(info *model.ExtractedInfo, entry *model.EnhancedEntry) int {
	special := false
	for _, w := range r.specialty {
		if !containsWord(entry.FoldedName, w) {
			continue
		}
		special = true
		if containsWord(info.PreprocessedInput, w) {
			return PrioritySpecialty
		}
	}
	if special {
		return PriorityOther
	}
	return PriorityStandard
}

func (r *Rules) Tokenize(s string) []string { return r.ex.Tokenize(s) }
