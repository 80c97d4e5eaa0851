package dict

import "strings"

// BrandTable: любое написание бренда -> каноническое имя.
type BrandTable struct {
	canonical map[string]string // форма в нижнем регистре -> каноническое имя
	brands    []Brand
}

func NewBrandTable(brands []Brand) *BrandTable {
	t := &BrandTable{canonical: make(map[string]string), brands: brands}
	for _, b := range brands {
		for _, f := range b.Forms() {
			k := strings.ToLower(strings.TrimSpace(f))
			if _, ok := t.canonical[k]; !ok {
				t.canonical[k] = b.Name
			}
		}
	}
	return t
}

// Canonical: каноническое имя или "", если бренд неизвестен.
func (t *BrandTable) Canonical(s string) string {
	return t.canonical[strings.ToLower(strings.TrimSpace(s))]
}

func (t *BrandTable) Brand(name string) (Brand, bool) {
	for _, b := range t.brands {
		if b.Name == name {
			return b, true
		}
	}
	return Brand{}, false
}

// Brands в порядке объявления.
func (t *BrandTable) Brands() []Brand { return t.brands }

// Same: один ли это бренд. Неизвестные написания сравниваются без учёта
// регистра, пустая строка не совпадает ни с чем.
func (t *BrandTable) Same(a, b string) bool {
	ka, kb := t.key(a), t.key(b)
	return ka != "" && ka == kb
}

func (t *BrandTable) key(s string) string {
	if c := t.Canonical(s); c != "" {
		return strings.ToLower(c)
	}
	return strings.ToLower(strings.TrimSpace(s))
}

// ColorEquivalence группирует написания одного цвета.
type ColorEquivalence struct {
	group map[string]int
}

func NewColorEquivalence(variants map[string][]string) *ColorEquivalence {
	// union-find: группы с общим написанием сливаются
	parent := map[string]string{}
	var find func(string) string
	find = func(s string) string {
		p, ok := parent[s]
		if !ok {
			parent[s] = s
			return s
		}
		if p == s {
			return s
		}
		r := find(p)
		parent[s] = r
		return r
	}
	union := func(a, b string) {
		ra, rb := find(a), find(b)
		if ra != rb {
			parent[ra] = rb
		}
	}
	for k, vs := range variants {
		k = strings.TrimSpace(k)
		if k == "" {
			continue
		}
		find(k)
		for _, v := range vs {
			if v = strings.TrimSpace(v); v != "" {
				union(k, v)
			}
		}
	}

	e := &ColorEquivalence{group: make(map[string]int, len(parent))}
	ids := map[string]int{}
	for s := range parent {
		r := find(s)
		id, ok := ids[r]
		if !ok {
			id = len(ids) + 1
			ids[r] = id
		}
		e.group[s] = id
	}
	return e
}

// Equivalent симметрична.
func (e *ColorEquivalence) Equivalent(a, b string) bool {
	a, b = strings.TrimSpace(a), strings.TrimSpace(b)
	if a == "" || b == "" {
		return false
	}
	if a == b {
		return true
	}
	ga, ok := e.group[a]
	if !ok {
		return false
	}
	return ga == e.group[b]
}
