package dict

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestDefaultsValidate(t *testing.T) {
	t.Parallel()
	require.NoError(t, Defaults().Validate())
}

func TestUnbalancedWeights(t *testing.T) {
	t.Parallel()
	d := Defaults()
	assert.Empty(t, d.UnbalancedWeights())

	d.ProductTypes = append(d.ProductTypes, ProductType{ID: "drone", SpecWeights: map[string]float64{"color": 0.5}})
	require.NoError(t, d.Validate())
	assert.Equal(t, []string{"drone"}, d.UnbalancedWeights())
}

func TestDefaultsAreIndependent(t *testing.T) {
	t.Parallel()
	a := Defaults()
	a.ModelAliases["foo"] = "bar"
	b := Defaults()
	assert.NotContains(t, b.ModelAliases, "foo")
}

func TestDecode_Overlay(t *testing.T) {
	t.Parallel()

	src := `
brands:
  - name: vivo
    spell: vivo
    aliases: [维沃, vivo手机]
  - name: 传音
    spell: transsion
model_aliases:
  ultramax: ultra max
color_variants:
  星光白: [星光银白]
noise_words: [foo]
product_types:
  - id: phone
    name: 手机
    keywords: [手机]
    spec_weights: {color: 0.5, capacity: 0.5}
`
	d, err := Decode(strings.NewReader(src))
	require.NoError(t, err)

	b, ok := NewBrandTable(d.Brands).Brand("vivo")
	require.True(t, ok)
	assert.Contains(t, b.Aliases, "vivo手机")
	assert.Equal(t, "传音", NewBrandTable(d.Brands).Canonical("TRANSSION"))

	assert.Equal(t, "ultra max", d.ModelAliases["ultramax"])
	assert.Equal(t, "pro mini", d.ModelAliases["promini"], "defaults survive a map overlay")
	assert.Equal(t, []string{"foo"}, d.NoiseWords)
	assert.Contains(t, d.ColorVariants, "雾凇蓝")

	pt, ok := d.ProductType("phone")
	require.True(t, ok)
	assert.InDelta(t, 0.5, pt.SpecWeights["color"], 1e-9)
	_, ok = d.ProductType("watch")
	assert.True(t, ok)
}

func TestDecode_Invalid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		src  string
	}{
		{name: "brand without name", src: "brands:\n  - spell: foo\n"},
		{name: "product type without id", src: "product_types:\n  - name: x\n    spec_weights: {color: 1}\n"},
		{name: "product type without weights", src: "product_types:\n  - id: x\n"},
		{name: "negative weight", src: "product_types:\n  - id: x\n    spec_weights: {color: -1}\n"},
		{name: "version keyword without label", src: "version_keywords:\n  - keyword: foo\n"},
		{name: "unknown key", src: "brandz: []\n"},
		{name: "not a mapping", src: "- a\n- b\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := Decode(strings.NewReader(tt.src))
			require.ErrorIs(t, err, ErrInvalidConfig)
		})
	}
}

func TestDecode_Empty(t *testing.T) {
	t.Parallel()
	d, err := Decode(strings.NewReader(""))
	require.NoError(t, err)
	assert.Equal(t, len(Defaults().Brands), len(d.Brands))
}

func TestLoad_EmptyPathIsDefaults(t *testing.T) {
	t.Parallel()
	d, err := Load("")
	require.NoError(t, err)
	assert.NotEmpty(t, d.Brands)
}

func TestLoad_MissingFile(t *testing.T) {
	t.Parallel()
	_, err := Load("/nonexistent/dict.yaml")
	require.Error(t, err)
}

func TestBrandTable(t *testing.T) {
	t.Parallel()
	bt := NewBrandTable(Defaults().Brands)

	assert.Equal(t, "华为", bt.Canonical("HUAWEI"))
	assert.Equal(t, "vivo", bt.Canonical("维沃"))
	assert.Empty(t, bt.Canonical("nokia"))

	assert.True(t, bt.Same("华为", "huawei"))
	assert.True(t, bt.Same("Huawei", "华为"))
	assert.True(t, bt.Same("Nokia", "nokia"), "unknown brands compare case-insensitively")
	assert.False(t, bt.Same("华为", "荣耀"))
	assert.False(t, bt.Same("", ""))
}

func TestColorEquivalence(t *testing.T) {
	t.Parallel()
	ce := NewColorEquivalence(map[string][]string{
		"雾凇蓝": {"雾松蓝"},
		"曜石黑": {"耀石黑"},
		"耀夜黑": {"耀石黑"},
	})

	assert.True(t, ce.Equivalent("雾凇蓝", "雾松蓝"))
	assert.True(t, ce.Equivalent("雾松蓝", "雾凇蓝"))
	assert.True(t, ce.Equivalent("曜石黑", "耀夜黑"), "groups sharing a spelling merge")
	assert.True(t, ce.Equivalent("星光白", "星光白"))
	assert.False(t, ce.Equivalent("雾凇蓝", "曜石黑"))
	assert.False(t, ce.Equivalent("", ""))
}

func TestPropertyEquivalenceSymmetric(t *testing.T) {
	t.Parallel()
	d := Defaults()
	bt := NewBrandTable(d.Brands)
	ce := NewColorEquivalence(d.ColorVariants)

	var brandForms, colors []string
	for _, b := range d.Brands {
		brandForms = append(brandForms, b.Forms()...)
	}
	brandForms = append(brandForms, "nokia", "NOKIA", "")
	for k, vs := range d.ColorVariants {
		colors = append(colors, k)
		colors = append(colors, vs...)
	}
	colors = append(colors, "星光白", "")

	rapid.Check(t, func(t *rapid.T) {
		a := rapid.SampledFrom(brandForms).Draw(t, "brandA")
		b := rapid.SampledFrom(brandForms).Draw(t, "brandB")
		if bt.Same(a, b) != bt.Same(b, a) {
			t.Fatalf("brand equivalence not symmetric for %q, %q", a, b)
		}
		ca := rapid.SampledFrom(colors).Draw(t, "colorA")
		cb := rapid.SampledFrom(colors).Draw(t, "colorB")
		if ce.Equivalent(ca, cb) != ce.Equivalent(cb, ca) {
			t.Fatalf("color equivalence not symmetric for %q, %q", ca, cb)
		}
	})
}
