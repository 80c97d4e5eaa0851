package service

// Weights: подобранные на глаз константы скоринга. Вынесены наружу, чтобы
// переопределять их по размеченной выборке.
type Weights struct {
	Threshold float64 // минимальный score SPU

	KeywordBonusPerToken float64
	KeywordBonusCap      float64
	ModelCodeBonus       float64
	EditionWordBonus     float64
	ModelDetailCap       float64

	PartialTokenCap       float64 // потолок за частичное вхождение токена
	FuzzyMinSimilarity    float64
	FuzzyBase             float64
	FuzzySimilarityWeight float64

	SuffixExtraPenalty    float64 // за каждый суффикс кандидата, которого нет во входе
	ShortCandidatePenalty float64 // множитель length-match, если кандидат короче половины входа

	VersionMatch    float64
	VersionStandard float64
	VersionNeutral  float64

	ColorContains       float64
	ColorBasic          float64
	CapacityStorageOnly float64
	SpecNeutral         float64 // у варианта измерение есть, во входе нет
}

func DefaultWeights() Weights {
	return Weights{
		Threshold: 0.5,

		KeywordBonusPerToken: 0.05,
		KeywordBonusCap:      0.10,
		ModelCodeBonus:       0.10,
		EditionWordBonus:     0.05,
		ModelDetailCap:       0.15,

		PartialTokenCap:       0.7,
		FuzzyMinSimilarity:    0.5,
		FuzzyBase:             0.4,
		FuzzySimilarityWeight: 0.6,

		SuffixExtraPenalty:    0.1,
		ShortCandidatePenalty: 0.5,

		VersionMatch:    1.0,
		VersionStandard: 0.8,
		VersionNeutral:  0.5,

		ColorContains:       0.8,
		ColorBasic:          0.5,
		CapacityStorageOnly: 0.7,
		SpecNeutral:         0.5,
	}
}

// WithDefaults заполняет нулевые поля значениями DefaultWeights, так что
// можно переопределить только часть констант.
func (w Weights) WithDefaults() Weights {
	d := DefaultWeights()
	for _, f := range []struct{ v, def *float64 }{
		{&w.Threshold, &d.Threshold},
		{&w.KeywordBonusPerToken, &d.KeywordBonusPerToken},
		{&w.KeywordBonusCap, &d.KeywordBonusCap},
		{&w.ModelCodeBonus, &d.ModelCodeBonus},
		{&w.EditionWordBonus, &d.EditionWordBonus},
		{&w.ModelDetailCap, &d.ModelDetailCap},
		{&w.PartialTokenCap, &d.PartialTokenCap},
		{&w.FuzzyMinSimilarity, &d.FuzzyMinSimilarity},
		{&w.FuzzyBase, &d.FuzzyBase},
		{&w.FuzzySimilarityWeight, &d.FuzzySimilarityWeight},
		{&w.SuffixExtraPenalty, &d.SuffixExtraPenalty},
		{&w.ShortCandidatePenalty, &d.ShortCandidatePenalty},
		{&w.VersionMatch, &d.VersionMatch},
		{&w.VersionStandard, &d.VersionStandard},
		{&w.VersionNeutral, &d.VersionNeutral},
		{&w.ColorContains, &d.ColorContains},
		{&w.ColorBasic, &d.ColorBasic},
		{&w.CapacityStorageOnly, &d.CapacityStorageOnly},
		{&w.SpecNeutral, &d.SpecNeutral},
	} {
		if *f.v == 0 {
			*f.v = *f.def
		}
	}
	return w
}

// DefaultSpecWeights для типов товара без своих весов.
func DefaultSpecWeights() map[string]float64 {
	return map[string]float64{"color": 0.3, "capacity": 0.4, "version": 0.3}
}
