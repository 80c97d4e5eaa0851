package service

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/sync/errgroup"

	"product-matcher/internal/matching/model"
	"product-matcher/internal/utils"
)

// Catalog: предобработанный каталог с индексами. После Preprocess
// только читается, поэтому безопасен для параллельных запросов.
type Catalog struct {
	Entries []*model.EnhancedEntry

	byID    map[string]*model.EnhancedEntry
	byBrand map[string][]*model.EnhancedEntry // любое написание бренда -> записи
	byModel map[string][]*model.EnhancedEntry // NormalizedModel -> записи
	colors  []string                          // словарь цветов каталога, длинные первыми
}

func (c *Catalog) Len() int {
	if c == nil {
		return 0
	}
	return len(c.Entries)
}

func (c *Catalog) Entry(id string) (*model.EnhancedEntry, bool) {
	if c == nil {
		return nil, false
	}
	e, ok := c.byID[id]
	return e, ok
}

// ByBrand ищет по любому написанию бренда.
func (c *Catalog) ByBrand(key string) []*model.EnhancedEntry {
	if c == nil {
		return nil
	}
	return c.byBrand[strings.ToLower(strings.TrimSpace(key))]
}

func (c *Catalog) ByModel(normalized string) []*model.EnhancedEntry {
	if c == nil {
		return nil
	}
	return c.byModel[normalized]
}

// Colors: цвета вариантов каталога (в свёрнутом виде).
func (c *Catalog) Colors() []string {
	if c == nil {
		return nil
	}
	return c.colors
}

// Preprocess извлекает бренд/модель/версию для каждой записи один раз и
// строит индексы. Битая запись логируется и пропускается, остальные
// индексируются. Ошибка возвращается только при отмене ctx.
func (m *Matcher) Preprocess(ctx context.Context, entries []model.CatalogEntry) (*Catalog, error) {
	done := m.span("preprocess", map[string]any{"entries": len(entries)})

	vocab := colorVocabulary(entries)
	enhanced := make([]*model.EnhancedEntry, len(entries))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(m.workers)
	for i := range entries {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			ee, err := m.enhance(entries[i], vocab)
			if err != nil {
				m.log.Warn().Err(err).Str("id", entries[i].ID).Int("pos", i).Msg("catalog entry skipped")
				return nil
			}
			enhanced[i] = ee
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		done(map[string]any{"error": err.Error()})
		return nil, fmt.Errorf("preprocess catalog: %w", err)
	}

	cat := &Catalog{
		byID:    make(map[string]*model.EnhancedEntry, len(entries)),
		byBrand: make(map[string][]*model.EnhancedEntry),
		byModel: make(map[string][]*model.EnhancedEntry),
		colors:  vocab,
	}
	// индексируем в исходном порядке: от него зависит first-seen при равенстве
	for _, ee := range enhanced {
		if ee == nil {
			continue
		}
		if _, dup := cat.byID[ee.ID]; dup {
			m.log.Warn().Str("id", ee.ID).Msg("duplicate catalog id skipped")
			continue
		}
		cat.byID[ee.ID] = ee
		cat.Entries = append(cat.Entries, ee)
		for _, k := range m.brandKeys(ee.ExtractedBrand) {
			cat.byBrand[k] = append(cat.byBrand[k], ee)
		}
		if ee.NormalizedModel != "" {
			cat.byModel[ee.NormalizedModel] = append(cat.byModel[ee.NormalizedModel], ee)
		}
	}

	m.log.Info().
		Int("entries", len(entries)).
		Int("indexed", len(cat.Entries)).
		Int("brands", len(cat.byBrand)).
		Int("models", len(cat.byModel)).
		Msg("catalog preprocessed")
	done(map[string]any{"indexed": len(cat.Entries)})
	return cat, nil
}

// brandKeys: каноническое имя, spell и все алиасы в нижнем регистре.
func (m *Matcher) brandKeys(brand string) []string {
	if brand == "" {
		return nil
	}
	forms := []string{brand}
	if b, ok := m.ex.Brands().Brand(brand); ok {
		forms = b.Forms()
	}
	seen := make(map[string]bool, len(forms))
	keys := make([]string, 0, len(forms))
	for _, f := range forms {
		k := strings.ToLower(strings.TrimSpace(f))
		if k == "" || seen[k] {
			continue
		}
		seen[k] = true
		keys = append(keys, k)
	}
	return keys
}

func colorVocabulary(entries []model.CatalogEntry) []string {
	seen := map[string]bool{}
	var out []string
	for _, e := range entries {
		for _, v := range e.Variants {
			c := utils.Fold(v.Color)
			if c == "" || seen[c] {
				continue
			}
			seen[c] = true
			out = append(out, c)
		}
	}
	return sortedByLength(out)
}

func (m *Matcher) enhance(e model.CatalogEntry, vocab []string) (ee *model.EnhancedEntry, err error) {
	defer func() {
		if r := recover(); r != nil {
			ee, err = nil, fmt.Errorf("extract %q: panic: %v", e.Name, r)
		}
	}()
	if strings.TrimSpace(e.ID) == "" || strings.TrimSpace(e.Name) == "" {
		return nil, fmt.Errorf("entry needs id and name")
	}

	info := m.ex.Extract(e.Name, vocab)
	brand := info.Brand.Get()
	// явный бренд из каталога важнее найденного в названии
	if e.Brand != "" {
		if c := m.ex.Brands().Canonical(e.Brand); c != "" {
			brand = c
		} else {
			brand = strings.TrimSpace(e.Brand)
		}
	}

	ee = &model.EnhancedEntry{
		CatalogEntry:    e,
		ExtractedBrand:  brand,
		ExtractedModel:  humanCase(e.Name, info.ModelText),
		NormalizedModel: info.Model.Get(),
		FoldedName:      info.PreprocessedInput,
		NameTokens:      m.ex.Tokenize(info.PreprocessedInput),
	}
	if info.Version.Ok() {
		v := info.Version.Get()
		ee.Version = &v
	}

	name := info.PreprocessedInput
	spec := reCapacityDual.FindString(name)
	if spec == "" {
		spec = reCapacitySingle.FindString(name)
	}
	if spec != "" {
		name = strings.Replace(name, spec, " ", 1)
	}
	if info.Color.Ok() {
		name = strings.Replace(name, info.Color.Get(), " ", 1)
	}
	ee.NamePart = utils.CollapseSpaces(emptyBrackets.Replace(name))

	// вычитаем бренд в том написании, в каком он стоит в названии
	brandLen := 0
	if _, form := m.ex.matchBrand(info.PreprocessedInput); form != "" {
		brandLen = utils.RuneLen(form)
	}
	simplicity := utils.RuneLen(e.Name) - brandLen - utils.RuneLen(info.ModelText) - utils.RuneLen(spec)
	if simplicity < 0 {
		simplicity = 0
	}
	ee.Simplicity = simplicity
	return ee, nil
}

var emptyBrackets = strings.NewReplacer("( )", " ", "()", " ", "[ ]", " ", "[]", " ")

// humanCase достаёт модель из исходного названия с оригинальным регистром,
// если это возможно без потери позиций.
func humanCase(name, modelText string) string {
	if modelText == "" {
		return ""
	}
	lower := strings.ToLower(name)
	if len(lower) == len(name) {
		if i := strings.Index(lower, modelText); i >= 0 {
			return name[i : i+len(modelText)]
		}
	}
	return modelText
}
