package service

import (
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/hbollon/go-edlib"

	"product-matcher/internal/matching/dict"
	"product-matcher/internal/matching/model"
	"product-matcher/internal/utils"
)

var (
	reParen          = regexp.MustCompile(`\([^)]*\)|\[[^\]]*\]|【[^】]*】`)
	reCapacityDual   = regexp.MustCompile(`(\d+)\s*(?:gb|g)?\s*\+\s*(\d+)\s*(gb|g|tb|t)?`)
	reCapacitySingle = regexp.MustCompile(`(\d+)\s*(gb|tb)\b`)
	reSize           = regexp.MustCompile(`(\d{2})\s*mm\b`)
	reHanRun         = regexp.MustCompile(`\p{Han}+`)
	reLatinWord      = regexp.MustCompile(`[a-z]+`)
	reSimpleModel    = regexp.MustCompile(`\b([a-z]*)\s?(\d+[a-z]*)\b`)
	reCapacityLike   = regexp.MustCompile(`^\d+(?:gb|g|tb|t|mm|mah|w|hz)$`)
	reYear           = regexp.MustCompile(`^(?:19|20)\d{2}$`)
	reTwoWordToken   = regexp.MustCompile(`^[a-z]{2,}$`)

	reColorAfterEdition  = regexp.MustCompile(`版(\p{Han}{2,5})`)
	reColorTrailing      = regexp.MustCompile(`(\p{Han}+)$`)
	reColorAfterCapacity = regexp.MustCompile(`\d+\s*(?:gb|g)?\s*\+\s*\d+\s*(?:gb|g|tb|t)?\s*\)?\s*(\p{Han}{2,5})|\(\s*\d+\s*(?:gb|tb)\s*\)\s*(\p{Han}{2,5})`)
)

// линейки "буква + слово" ("x fold", "x note") важнее форм с product-word ("watch gt 5")
var singleLetterLines = []string{"note", "fold", "flip"}

const fuzzyBrandMinLen = 5

type brandForm struct {
	form      string // в нижнем регистре
	canonical string
	han       bool
}

// Extractor разбирает сырое название в ExtractedInfo. После сборки только
// читается, можно звать из нескольких горутин.
type Extractor struct {
	d        *dict.Dictionaries
	brands   *dict.BrandTable
	suffixes map[string]bool
	noise    map[string]bool

	brandForms  []brandForm // длинные первыми
	brandSpells []brandForm // латинские написания для нечёткого поиска
	aliasKeys   []string    // алиасы моделей, длинные первыми
	versionKWs  []dict.VersionKeyword
	denylist    []string

	reSingleLetter *regexp.Regexp
	reProductWord  *regexp.Regexp
	reComplex      *regexp.Regexp
}

func NewExtractor(d *dict.Dictionaries) *Extractor {
	e := &Extractor{
		d:        d,
		brands:   dict.NewBrandTable(d.Brands),
		suffixes: make(map[string]bool, len(d.ModelSuffixes)),
		noise:    make(map[string]bool, len(d.NoiseWords)),
		denylist: sortedByLength(d.ColorDenylist),
	}
	for _, s := range d.ModelSuffixes {
		e.suffixes[strings.ToLower(s)] = true
	}
	for _, w := range d.NoiseWords {
		e.noise[strings.ToLower(w)] = true
	}

	for _, b := range d.Brands {
		for _, f := range b.Forms() {
			lf := strings.ToLower(f)
			bf := brandForm{form: lf, canonical: b.Name, han: utils.HasHan(lf)}
			e.brandForms = append(e.brandForms, bf)
			if !bf.han && len(lf) >= fuzzyBrandMinLen && reLatinWord.FindString(lf) == lf {
				e.brandSpells = append(e.brandSpells, bf)
			}
		}
	}
	sort.SliceStable(e.brandForms, func(i, j int) bool {
		return utils.RuneLen(e.brandForms[i].form) > utils.RuneLen(e.brandForms[j].form)
	})

	for k := range d.ModelAliases {
		e.aliasKeys = append(e.aliasKeys, strings.ToLower(k))
	}
	sort.Slice(e.aliasKeys, func(i, j int) bool {
		if len(e.aliasKeys[i]) != len(e.aliasKeys[j]) {
			return len(e.aliasKeys[i]) > len(e.aliasKeys[j])
		}
		return e.aliasKeys[i] < e.aliasKeys[j]
	})

	for _, vk := range d.VersionKeywords {
		vk.Keyword = strings.ToLower(vk.Keyword)
		e.versionKWs = append(e.versionKWs, vk)
	}

	suf := alternation(d.ModelSuffixes)
	e.reSingleLetter = regexp.MustCompile(`(?:^|[^a-z0-9])([a-z]\s*(?:` + alternation(singleLetterLines) +
		`)(?:\s*\d+)?(?:\s+(?:` + suf + `))*)(?:$|[^a-z0-9])`)
	e.reProductWord = regexp.MustCompile(`(?:^|[^a-z0-9])([a-z]*(?:` + alternation(d.ProductWords) +
		`)(?:\s*[a-z]{1,4}(?:\s*\d+)?|\s*\d+)(?:\s+(?:` + suf + `))*)(?:$|[^a-z0-9])`)
	e.reComplex = regexp.MustCompile(`\b([a-z]*\s?\d+[a-z]*)\s*((?:` + suf + `)(?:\s*(?:` + suf + `))*)\b`)
	return e
}

// alternation: a|b|c для regexp, длинные слова первыми.
func alternation(words []string) string {
	ws := make([]string, 0, len(words))
	for _, w := range sortedByLength(words) {
		if w = strings.ToLower(strings.TrimSpace(w)); w != "" {
			ws = append(ws, regexp.QuoteMeta(w))
		}
	}
	if len(ws) == 0 {
		return `\x00` // в реальном тексте не встречается
	}
	return strings.Join(ws, "|")
}

func (e *Extractor) Brands() *dict.BrandTable { return e.brands }

// Preprocess: Fold плюс таблицы опечаток и сокращений. Остальные методы
// ждут текст уже в этом виде.
func (e *Extractor) Preprocess(raw string) string {
	s := utils.Fold(raw)
	s = replaceWords(s, e.d.Typos)
	s = replaceWords(s, e.d.Abbreviations)
	return utils.CollapseSpaces(s)
}

// Extract прогоняет все извлечения. colors: словарь цветов каталога
// (после Fold), может быть nil.
func (e *Extractor) Extract(raw string, colors []string) model.ExtractedInfo {
	text := e.Preprocess(raw)
	brand, form := e.matchBrand(text)
	mdl, modelText := e.extractModel(text, brand, form)
	return model.ExtractedInfo{
		Brand:             brand,
		Model:             mdl,
		Color:             e.ExtractColor(text, colors),
		Capacity:          e.ExtractCapacity(text),
		Version:           e.ExtractVersion(text),
		ModelText:         modelText,
		OriginalInput:     raw,
		PreprocessedInput: text,
		ProductType:       e.ProductType(text),
	}
}

// ExtractBrand ищет бренд в предобработанном тексте.
func (e *Extractor) ExtractBrand(text string) model.Extraction[string] {
	ext, _ := e.matchBrand(text)
	return ext
}

func (e *Extractor) matchBrand(text string) (model.Extraction[string], string) {
	for _, bf := range e.brandForms {
		if bf.han {
			if strings.Contains(text, bf.form) {
				return model.Found(bf.canonical, 1.0, model.SourceExact), bf.form
			}
			continue
		}
		if indexBrandWord(text, bf.form) >= 0 {
			return model.Found(bf.canonical, 1.0, model.SourceExact), bf.form
		}
	}
	for _, w := range reLatinWord.FindAllString(text, -1) {
		if len(w) < fuzzyBrandMinLen {
			continue
		}
		for _, bs := range e.brandSpells {
			if edlib.DamerauLevenshteinDistance(w, bs.form) <= 1 {
				return model.Found(bs.canonical, 0.8, model.SourceFuzzy), w
			}
		}
	}
	return model.Absent[string](), ""
}

// indexBrandWord: граница слова нужна только слева, модель часто идёт
// сразу за брендом ("iqoo13").
func indexBrandWord(text, form string) int {
	from := 0
	for from < len(text) {
		i := strings.Index(text[from:], form)
		if i < 0 {
			return -1
		}
		i += from
		end := i + len(form)
		if boundaryBefore(text, i) && (end >= len(text) || !isASCIILetter(text[end])) {
			return i
		}
		from = i + 1
	}
	return -1
}

func isASCIILetter(b byte) bool {
	return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}

// ExtractModel: каскад шаблонов модели по предобработанному тексту.
func (e *Extractor) ExtractModel(text string) model.Extraction[string] {
	brand, form := e.matchBrand(text)
	ext, _ := e.extractModel(text, brand, form)
	return ext
}

func (e *Extractor) extractModel(text string, brand model.Extraction[string], form string) (model.Extraction[string], string) {
	t := e.stripForModel(text, brand, form)
	if t == "" {
		return model.Absent[string](), ""
	}
	found := func(m string, conf float64, src model.Source) (model.Extraction[string], string) {
		m = utils.CollapseSpaces(m)
		return model.Found(NormalizeModel(m), conf, src), m
	}
	if m := e.matchWordWord(t); m != "" {
		return found(m, 0.9, model.SourceExact)
	}
	if m := e.matchComplex(t); m != "" {
		return found(m, 0.9, model.SourceExact)
	}
	if m := e.matchSimple(t); m != "" {
		return found(m, 0.8, model.SourceExact)
	}
	if m := e.matchTwoWord(t); m != "" {
		return found(m, 0.6, model.SourceInferred)
	}
	return model.Absent[string](), ""
}

// stripForModel: убрать бренд, скобки, объём и размер корпуса, раскрыть
// алиасы модели, иероглифы заменить пробелами.
func (e *Extractor) stripForModel(text string, brand model.Extraction[string], form string) string {
	t := text
	if brand.Ok() {
		forms := []string{form}
		if b, ok := e.brands.Brand(brand.Get()); ok {
			for _, f := range b.Forms() {
				forms = append(forms, strings.ToLower(f))
			}
		}
		for _, f := range sortedByLength(forms) {
			t = removeBrandForm(t, f)
		}
	}
	t = reParen.ReplaceAllString(t, " ")
	t = reCapacityDual.ReplaceAllString(t, " ")
	t = reCapacitySingle.ReplaceAllString(t, " ")
	t = reSize.ReplaceAllString(t, " ")
	for _, k := range e.aliasKeys {
		if strings.Contains(t, k) {
			t = strings.ReplaceAll(t, k, " "+strings.ToLower(e.d.ModelAliases[k])+" ")
		}
	}
	t = reHanRun.ReplaceAllString(t, " ")
	return utils.CollapseSpaces(t)
}

func removeBrandForm(t, form string) string {
	if form == "" {
		return t
	}
	if utils.HasHan(form) {
		return strings.ReplaceAll(t, form, " ")
	}
	for {
		i := indexBrandWord(t, form)
		if i < 0 {
			return t
		}
		t = t[:i] + " " + t[i+len(form):]
	}
}

func (e *Extractor) matchWordWord(t string) string {
	if m := e.reSingleLetter.FindStringSubmatch(t); m != nil {
		return m[1]
	}
	for _, m := range e.reProductWord.FindAllStringSubmatch(t, -1) {
		fields := strings.Fields(m[1])
		noisy := false
		for _, f := range fields[1:] {
			if e.noise[f] {
				noisy = true
				break
			}
		}
		if !noisy {
			return m[1]
		}
	}
	return ""
}

func (e *Extractor) matchComplex(t string) string {
	best := ""
	for _, m := range e.reComplex.FindAllStringSubmatch(t, -1) {
		core := NormalizeModel(m[1])
		if reCapacityLike.MatchString(core) {
			continue
		}
		if whole := strings.TrimSpace(m[0]); len(whole) > len(best) {
			best = whole
		}
	}
	return best
}

func (e *Extractor) matchSimple(t string) string {
	// префикс может стоять через пробел: "iphone 17" и "iphone17" дают одну модель
	var cands []string
	for _, m := range reSimpleModel.FindAllStringSubmatch(t, -1) {
		if reCapacityLike.MatchString(m[2]) || reYear.MatchString(m[2]) {
			continue
		}
		cands = append(cands, strings.TrimSpace(m[0]))
	}
	if len(cands) == 0 {
		return ""
	}
	compact := func(s string) int { return len(strings.ReplaceAll(s, " ", "")) }
	sort.SliceStable(cands, func(i, j int) bool {
		if compact(cands[i]) != compact(cands[j]) {
			return compact(cands[i]) > compact(cands[j])
		}
		return hasAlphaSuffix(cands[i]) && !hasAlphaSuffix(cands[j])
	})
	return cands[0]
}

// hasAlphaSuffix: буквы после цифр ("y300i", но не "y300").
func hasAlphaSuffix(tok string) bool {
	last := tok[len(tok)-1]
	return isASCIILetter(last) && strings.ContainsAny(tok, "0123456789")
}

func (e *Extractor) matchTwoWord(t string) string {
	fields := strings.Fields(t)
	for i := 0; i+1 < len(fields); i++ {
		a, b := fields[i], fields[i+1]
		if !reTwoWordToken.MatchString(a) || !reTwoWordToken.MatchString(b) {
			continue
		}
		if e.noise[a] || e.noise[b] {
			continue
		}
		return a + " " + b
	}
	return ""
}

// ExtractColor по порядку: словарь каталога (самое длинное), иероглифы после
// 版, иероглифы в конце, иероглифы после объёма, базовый цвет одним символом.
func (e *Extractor) ExtractColor(text string, vocab []string) model.Extraction[string] {
	best := ""
	for _, c := range vocab {
		if c != "" && strings.Contains(text, c) && utils.RuneLen(c) > utils.RuneLen(best) {
			best = c
		}
	}
	if best != "" {
		return model.Found(best, 1.0, model.SourceExact)
	}

	if m := reColorAfterEdition.FindStringSubmatch(text); m != nil {
		if c, ok := e.cleanColor(m[1]); ok {
			return model.Found(c, 0.9, model.SourceFuzzy)
		}
	}
	trimmed := strings.TrimRight(text, " )]】.,!;:")
	if m := reColorTrailing.FindStringSubmatch(trimmed); m != nil {
		if c, ok := e.cleanColor(e.trimDenylistPrefix(m[1])); ok && utils.RuneLen(c) <= maxColorRunes {
			return model.Found(c, 0.8, model.SourceFuzzy)
		}
	}
	if m := reColorAfterCapacity.FindStringSubmatch(text); m != nil {
		run := m[1]
		if run == "" {
			run = m[2]
		}
		if c, ok := e.cleanColor(run); ok {
			return model.Found(c, 0.8, model.SourceFuzzy)
		}
	}
	for _, bc := range e.d.BasicColors {
		if bc != "" && strings.Contains(text, bc) {
			return model.Found(bc, 0.5, model.SourceInferred)
		}
	}
	return model.Absent[string]()
}

const maxColorRunes = 5

// trimDenylistPrefix срезает стоп-слова в начале хвостового ханьского
// отрезка ("全网通可可黑" -> "可可黑"). Короче двух символов не режет.
func (e *Extractor) trimDenylistPrefix(c string) string {
	for changed := true; changed; {
		changed = false
		for _, d := range e.denylist {
			if c == d {
				return c
			}
			if d != "" && strings.HasPrefix(c, d) && utils.RuneLen(c)-utils.RuneLen(d) >= 2 {
				c = strings.TrimPrefix(c, d)
				changed = true
			}
		}
	}
	return c
}

// cleanColor отбрасывает версии/сети и срезает хвост из стоп-слов
// ("可可黑手机" -> "可可黑").
func (e *Extractor) cleanColor(c string) (string, bool) {
	for changed := true; changed; {
		changed = false
		for _, d := range e.denylist {
			if d == "" {
				continue
			}
			if c == d {
				return "", false
			}
			if strings.HasSuffix(c, d) && utils.RuneLen(c)-utils.RuneLen(d) >= 2 {
				c = strings.TrimSuffix(c, d)
				changed = true
			}
		}
	}
	if strings.Contains(c, "版") || utils.RuneLen(c) < 2 {
		return "", false
	}
	for _, d := range e.denylist {
		if d != "" && strings.HasSuffix(c, d) {
			return "", false
		}
	}
	return c, true
}

// ExtractCapacity: "12+512", "12GB+512GB", "256GB", "1TB" ->
// "12+512", "256", "1024" (без единиц).
func (e *Extractor) ExtractCapacity(text string) model.Extraction[string] {
	if v, ok := e.parseCapacity(text); ok {
		return model.Found(v, 1.0, model.SourceExact)
	}
	return model.Absent[string]()
}

func (e *Extractor) parseCapacity(text string) (string, bool) {
	text = replaceWords(text, e.d.CapacityUnits)
	if m := reCapacityDual.FindStringSubmatch(text); m != nil {
		return m[1] + "+" + scaleTB(m[2], m[3]), true
	}
	if m := reCapacitySingle.FindStringSubmatch(text); m != nil {
		return scaleTB(m[1], m[2]), true
	}
	return "", false
}

func scaleTB(n, unit string) string {
	if unit != "tb" && unit != "t" {
		return n
	}
	v, err := strconv.Atoi(n)
	if err != nil {
		return n
	}
	return strconv.Itoa(v * 1024)
}

// NormalizeCapacity приводит значение spec ("12GB+512GB", "256G", "1 TB")
// к виду ExtractCapacity.
func (e *Extractor) NormalizeCapacity(s string) string {
	text := utils.Fold(s)
	if text == "" {
		return ""
	}
	if v, ok := e.parseCapacity(text); ok {
		return v
	}
	var b strings.Builder
	for _, r := range text {
		if (r >= '0' && r <= '9') || r == '+' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// ExtractVersion собирает все слова версий в порядке входа.
func (e *Extractor) ExtractVersion(text string) model.Extraction[model.Version] {
	type hit struct {
		at int
		kw dict.VersionKeyword
	}
	var hits []hit
	for _, kw := range e.versionKWs {
		if i := indexWord(text, kw.Keyword); i >= 0 {
			hits = append(hits, hit{at: i, kw: kw})
		}
	}
	if len(hits) == 0 {
		return model.Absent[model.Version]()
	}
	sort.SliceStable(hits, func(i, j int) bool { return hits[i].at < hits[j].at })

	v := model.Version{}
	seen := map[string]bool{}
	labels := make([]string, 0, len(hits))
	for _, h := range hits {
		if !seen[h.kw.Label] {
			seen[h.kw.Label] = true
			labels = append(labels, strings.ToLower(h.kw.Label))
		}
		if h.kw.Priority > v.Priority {
			v.Priority = h.kw.Priority
		}
		v.Standard = v.Standard || h.kw.Standard
	}
	v.Label = strings.Join(labels, " ")
	return model.Found(v, 1.0, model.SourceExact)
}

// ProductType: первый тип, чьё ключевое слово есть в тексте, иначе "phone"
// (если такой тип настроен).
func (e *Extractor) ProductType(text string) string {
	for _, pt := range e.d.ProductTypes {
		for _, kw := range pt.Keywords {
			if containsWord(text, strings.ToLower(kw)) {
				return pt.ID
			}
		}
	}
	if _, ok := e.d.ProductType("phone"); ok {
		return "phone"
	}
	return ""
}

func (e *Extractor) Tokenize(s string) []string {
	return tokenize(s, e.suffixes)
}

func (e *Extractor) IsSuffix(tok string) bool { return e.suffixes[tok] }
