package dict

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// Load читает YAML и накладывает его поверх Defaults. Пустой путь: только
// встроенные таблицы.
func Load(path string) (*Dictionaries, error) {
	if path == "" {
		d := Defaults()
		return d, d.Validate()
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open dictionaries: %w", err)
	}
	defer f.Close()
	return Decode(f)
}

// Decode: то же, что Load, для открытого reader.
func Decode(r io.Reader) (*Dictionaries, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read dictionaries: %w", err)
	}
	var overlay Dictionaries
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&overlay); err != nil && err != io.EOF {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	d := Defaults()
	d.merge(&overlay)
	if err := d.Validate(); err != nil {
		return nil, err
	}
	return d, nil
}

// merge: map сливаются по ключам, бренды и типы товара по имени/id,
// остальные списки из файла заменяют встроенные целиком.
func (d *Dictionaries) merge(o *Dictionaries) {
	d.Brands = mergeBrands(d.Brands, o.Brands)
	d.ProductTypes = mergeProductTypes(d.ProductTypes, o.ProductTypes)

	mergeMap(d.ModelAliases, o.ModelAliases)
	mergeMap(d.Typos, o.Typos)
	mergeMap(d.Abbreviations, o.Abbreviations)
	mergeMap(d.CapacityUnits, o.CapacityUnits)
	for k, v := range o.ColorVariants {
		d.ColorVariants[k] = v
	}

	replace(&d.BasicColors, o.BasicColors)
	replace(&d.ColorDenylist, o.ColorDenylist)
	replace(&d.SpecialEditionWords, o.SpecialEditionWords)
	replace(&d.FilterWords, o.FilterWords)
	replace(&d.SpecialtyWords, o.SpecialtyWords)
	replace(&d.NoiseWords, o.NoiseWords)
	replace(&d.ProductWords, o.ProductWords)
	replace(&d.ModelSuffixes, o.ModelSuffixes)
	if len(o.VersionKeywords) > 0 {
		d.VersionKeywords = o.VersionKeywords
	}
}

func mergeMap(dst, src map[string]string) {
	for k, v := range src {
		dst[k] = v
	}
}

func replace(dst *[]string, src []string) {
	if len(src) > 0 {
		*dst = src
	}
}

func mergeBrands(base, over []Brand) []Brand {
	for _, b := range over {
		found := false
		for i := range base {
			if base[i].Name == b.Name {
				base[i] = b
				found = true
				break
			}
		}
		if !found {
			base = append(base, b)
		}
	}
	return base
}

func mergeProductTypes(base, over []ProductType) []ProductType {
	for _, pt := range over {
		found := false
		for i := range base {
			if base[i].ID == pt.ID {
				base[i] = pt
				found = true
				break
			}
		}
		if !found {
			base = append(base, pt)
		}
	}
	return base
}
