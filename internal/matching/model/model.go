package model

// Source: откуда взялось извлечённое значение.
type Source string

const (
	SourceExact    Source = "exact"
	SourceFuzzy    Source = "fuzzy"
	SourceInferred Source = "inferred"
)

// Extraction: одно извлечённое поле. Value == nil значит "не найдено",
// это штатный исход, не ошибка.
type Extraction[T any] struct {
	Value      *T      `json:"value"`
	Confidence float64 `json:"confidence"` // 0..1
	Source     Source  `json:"source"`
}

func Found[T any](v T, confidence float64, src Source) Extraction[T] {
	return Extraction[T]{Value: &v, Confidence: confidence, Source: src}
}

func Absent[T any]() Extraction[T] {
	return Extraction[T]{Source: SourceInferred}
}

func (e Extraction[T]) Ok() bool { return e.Value != nil }

// Get: значение или нулевое значение T.
func (e Extraction[T]) Get() T {
	var zero T
	if e.Value == nil {
		return zero
	}
	return *e.Value
}

// Version: метка версии/сети из названия.
type Version struct {
	Label    string `json:"label"`    // найденные слова в порядке входа: "全网通 5g"
	Priority int    `json:"priority"` // максимальный priority среди найденных
	Standard bool   `json:"standard"` // есть хотя бы одно слово стандартной версии
}

// ExtractedInfo: всё, что извлекли из одной входной строки.
type ExtractedInfo struct {
	Brand    Extraction[string]  `json:"brand"`    // каноническое имя бренда
	Model    Extraction[string]  `json:"model"`    // после NormalizeModel
	Color    Extraction[string]  `json:"color"`
	Capacity Extraction[string]  `json:"capacity"` // "12+512" / "256"
	Version  Extraction[Version] `json:"version"`

	ModelText         string `json:"modelText"` // модель как написана: нижний регистр, одиночные пробелы
	OriginalInput     string `json:"originalInput"`
	PreprocessedInput string `json:"preprocessedInput"`
	ProductType       string `json:"productType"`
}

// VariantDescriptor: SKU-часть записи каталога.
type VariantDescriptor struct {
	VariantID string `json:"variantId"`
	Color     string `json:"color,omitempty"`
	Spec      string `json:"spec,omitempty"`  // объём: "12GB+512GB"
	Combo     string `json:"combo,omitempty"` // версия или комплектация
}

// CatalogEntry: один SPU в том виде, как его передал вызывающий.
type CatalogEntry struct {
	ID       string              `json:"id"`
	Name     string              `json:"name"`
	Brand    string              `json:"brand,omitempty"`
	Variants []VariantDescriptor `json:"variants,omitempty"`
}

// EnhancedEntry: запись каталога плюс поля, посчитанные один раз при загрузке.
type EnhancedEntry struct {
	CatalogEntry

	ExtractedBrand  string   `json:"extractedBrand"`
	ExtractedModel  string   `json:"extractedModel"`  // в исходном регистре
	NormalizedModel string   `json:"normalizedModel"` // сравнивается с ExtractedInfo.Model
	NamePart        string   `json:"namePart"`        // название без объёма и цвета
	Version         *Version `json:"version,omitempty"`
	Simplicity      int      `json:"simplicity"` // меньше = каноничнее

	FoldedName string   `json:"-"` // название после Preprocess
	NameTokens []string `json:"-"`
}

type Variant struct {
	ID            string   `json:"id"`
	Name          string   `json:"name"`
	SPUID         string   `json:"spuId"`
	Color         string   `json:"color,omitempty"`
	Capacity      string   `json:"capacity,omitempty"`
	Version       string   `json:"version,omitempty"`
	ExternalCodes []string `json:"externalCodes,omitempty"`
}

type MatchType string

const (
	MatchExact MatchType = "exact"
	MatchFuzzy MatchType = "fuzzy"
)

type DimensionMatch struct {
	Matched bool    `json:"matched"`
	Score   float64 `json:"score"`
}

// MatchExplanation только для аудита, на ход сопоставления не влияет.
type MatchExplanation struct {
	MatchType    MatchType      `json:"matchType"`
	BrandMatch   DimensionMatch `json:"brandMatch"`
	ModelMatch   DimensionMatch `json:"modelMatch"`
	VersionMatch DimensionMatch `json:"versionMatch"`
	Details      []string       `json:"details"`
}

type SPUMatchResult struct {
	Entry       *EnhancedEntry   `json:"entry"`
	Score       float64          `json:"score"`
	Explanation MatchExplanation `json:"explanation"`
	Priority    int              `json:"priority,omitempty"`
}

// SelectionMetrics считаются только при разрешении ничьей.
type SelectionMetrics struct {
	BaseScore            float64
	SuffixMatchScore     float64
	KeywordCoverageScore float64
	LengthMatchScore     float64
	FinalScore           float64
}

type SKUMatchResult struct {
	Variant     *Variant                  `json:"variant"`
	Score       float64                   `json:"score"`
	SpecMatches map[string]DimensionMatch `json:"specMatches"`
}

// Result: ответ на один запрос.
type Result struct {
	RequestID string          `json:"requestId"`
	Input     string          `json:"input"`
	SPU       *SPUMatchResult `json:"spu"`
	SKU       *SKUMatchResult `json:"sku"`
}
