// Package dict: статические таблицы для извлечения и скоринга. Dictionaries
// собирается один раз (Defaults, поверх Load) и дальше только читается.
package dict

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

var ErrInvalidConfig = errors.New("invalid dictionary configuration")

type Brand struct {
	Name    string   `yaml:"name"`    // каноническое
	Spell   string   `yaml:"spell"`   // латиница / пиньинь
	Aliases []string `yaml:"aliases"` // другие написания и сокращения
}

// Forms: все непустые написания, каноническое первым.
func (b Brand) Forms() []string {
	out := make([]string, 0, 2+len(b.Aliases))
	for _, f := range append([]string{b.Name, b.Spell}, b.Aliases...) {
		if strings.TrimSpace(f) != "" {
			out = append(out, f)
		}
	}
	return out
}

type VersionKeyword struct {
	Keyword  string `yaml:"keyword"` // ищется во входе после Fold
	Label    string `yaml:"label"`
	Priority int    `yaml:"priority"`
	Standard bool   `yaml:"standard"`
}

type ProductType struct {
	ID          string             `yaml:"id"`
	Name        string             `yaml:"name"`
	Keywords    []string           `yaml:"keywords"`
	SpecWeights map[string]float64 `yaml:"spec_weights"`
}

type Dictionaries struct {
	Brands        []Brand             `yaml:"brands"`
	ModelAliases  map[string]string   `yaml:"model_aliases"`
	Typos         map[string]string   `yaml:"typos"`
	Abbreviations map[string]string   `yaml:"abbreviations"`
	CapacityUnits map[string]string   `yaml:"capacity_units"`
	ColorVariants map[string][]string `yaml:"color_variants"`

	BasicColors   []string `yaml:"basic_colors"`
	ColorDenylist []string `yaml:"color_denylist"`

	VersionKeywords     []VersionKeyword `yaml:"version_keywords"`
	SpecialEditionWords []string         `yaml:"special_edition_words"`
	FilterWords         []string         `yaml:"filter_words"`
	SpecialtyWords      []string         `yaml:"specialty_words"`
	NoiseWords          []string         `yaml:"noise_words"`
	ProductWords        []string         `yaml:"product_words"`
	ModelSuffixes       []string         `yaml:"model_suffixes"`

	ProductTypes []ProductType `yaml:"product_types"`
}

func (d *Dictionaries) ProductType(id string) (ProductType, bool) {
	for _, pt := range d.ProductTypes {
		if pt.ID == id {
			return pt, true
		}
	}
	return ProductType{}, false
}

// Validate падает на таблицах, с которыми работать нельзя. Зовётся при
// загрузке, до первого запроса.
func (d *Dictionaries) Validate() error {
	for i, b := range d.Brands {
		if strings.TrimSpace(b.Name) == "" {
			return fmt.Errorf("%w: brands[%d] has no name", ErrInvalidConfig, i)
		}
	}
	for i, vk := range d.VersionKeywords {
		if strings.TrimSpace(vk.Keyword) == "" || strings.TrimSpace(vk.Label) == "" {
			return fmt.Errorf("%w: version_keywords[%d] needs keyword and label", ErrInvalidConfig, i)
		}
	}
	seen := make(map[string]bool, len(d.ProductTypes))
	for i, pt := range d.ProductTypes {
		if strings.TrimSpace(pt.ID) == "" {
			return fmt.Errorf("%w: product_types[%d] has no id", ErrInvalidConfig, i)
		}
		if seen[pt.ID] {
			return fmt.Errorf("%w: duplicate product type %q", ErrInvalidConfig, pt.ID)
		}
		seen[pt.ID] = true
		if len(pt.SpecWeights) == 0 {
			return fmt.Errorf("%w: product type %q has no spec_weights", ErrInvalidConfig, pt.ID)
		}
		total := 0.0
		for dim, w := range pt.SpecWeights {
			if w < 0 {
				return fmt.Errorf("%w: product type %q weight %s is negative", ErrInvalidConfig, pt.ID, dim)
			}
			total += w
		}
		if total == 0 {
			return fmt.Errorf("%w: product type %q weights are all zero", ErrInvalidConfig, pt.ID)
		}
	}
	return nil
}

// UnbalancedWeights: типы товара, у которых сумма весов отличается от 1.0
// больше чем на 0.01. Это не ошибка, вызывающий только предупреждает.
func (d *Dictionaries) UnbalancedWeights() []string {
	var out []string
	for _, pt := range d.ProductTypes {
		total := 0.0
		for _, w := range pt.SpecWeights {
			total += w
		}
		if math.Abs(total-1) > 0.01 {
			out = append(out, pt.ID)
		}
	}
	return out
}
