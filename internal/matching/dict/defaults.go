package dict

// Defaults: встроенные таблицы. Каждый вызов отдаёт новые map и срезы.
func Defaults() *Dictionaries {
	return &Dictionaries{
		Brands: []Brand{
			{Name: "华为", Spell: "huawei"},
			{Name: "荣耀", Spell: "honor"},
			{Name: "小米", Spell: "xiaomi"},
			{Name: "红米", Spell: "redmi"},
			{Name: "苹果", Spell: "apple"},
			{Name: "vivo", Spell: "vivo", Aliases: []string{"维沃"}},
			{Name: "iQOO", Spell: "iqoo", Aliases: []string{"爱酷"}},
			{Name: "OPPO", Spell: "oppo", Aliases: []string{"欧珀"}},
			{Name: "一加", Spell: "oneplus"},
			{Name: "真我", Spell: "realme"},
			{Name: "三星", Spell: "samsung"},
			{Name: "魅族", Spell: "meizu"},
			{Name: "努比亚", Spell: "nubia"},
			{Name: "中兴", Spell: "zte"},
			{Name: "摩托罗拉", Spell: "motorola", Aliases: []string{"moto"}},
		},
		ModelAliases: map[string]string{
			"promini":  "pro mini",
			"promax":   "pro max",
			"proplus":  "pro plus",
			"watchgt":  "watch gt",
			"watchfit": "watch fit",
			"xnote":    "x note",
			"xfold":    "x fold",
			"xflip":    "x flip",
		},
		Typos: map[string]string{
			"iphnoe":  "iphone",
			"huwei":   "huawei",
			"xiaomei": "xiaomi",
			"vivio":   "vivo",
		},
		Abbreviations: map[string]string{
			"pm":   "pro max",
			"pro+": "pro plus",
		},
		CapacityUnits: map[string]string{
			"1t": "1tb",
			"2t": "2tb",
		},
		ColorVariants: map[string][]string{
			"雾凇蓝": {"雾松蓝"},
			"曜石黑": {"耀石黑"},
			"钛金属原色": {"原色钛金属"},
			"冰川白": {"冰河白"},
		},
		BasicColors: []string{"黑", "白", "蓝", "红", "绿", "紫", "粉", "金", "银", "灰", "黄", "橙", "青", "棕"},
		ColorDenylist: []string{
			"全网通", "标准版", "官方标配", "套装", "礼盒", "移动版", "联通版", "电信版",
			"双卡双待", "国行", "正品", "新品", "手机", "智能手机", "全新", "包邮", "官方",
		},
		VersionKeywords: []VersionKeyword{
			{Keyword: "标准版", Label: "标准版", Priority: 3, Standard: true},
			{Keyword: "全网通", Label: "全网通", Priority: 3, Standard: true},
			{Keyword: "官方标配", Label: "官方标配", Priority: 3, Standard: true},
			{Keyword: "蓝牙版", Label: "蓝牙版", Priority: 2},
			{Keyword: "esim版", Label: "esim版", Priority: 2},
			{Keyword: "wifi版", Label: "wifi版", Priority: 2},
			{Keyword: "卫星通信版", Label: "卫星通信版", Priority: 2},
			{Keyword: "活力版", Label: "活力版", Priority: 2},
			{Keyword: "青春版", Label: "青春版", Priority: 2},
			{Keyword: "典藏版", Label: "典藏版", Priority: 2},
			{Keyword: "5g", Label: "5g", Priority: 1},
			{Keyword: "4g", Label: "4g", Priority: 1},
		},
		SpecialEditionWords: []string{"典藏", "联名", "限定", "保时捷设计", "非凡大师", "卫星通信", "纪念"},
		FilterWords: []string{
			"礼盒", "套装", "礼包", "保护壳", "手机壳", "保护套", "钢化膜", "贴膜",
			"充电器", "充电头", "数据线", "配件",
		},
		SpecialtyWords: []string{"系列", "联名", "限定", "定制", "礼盒", "套装", "纪念", "特别版", "典藏"},
		NoiseWords: []string{
			"full", "netcom", "network", "version", "edition", "new", "official", "phone",
			"mobile", "smart", "dual", "sim", "card", "wifi", "lte", "esim", "and", "with",
		},
		ProductWords:  []string{"watch", "band", "buds", "pad", "book", "pencil", "tab"},
		ModelSuffixes: []string{"pro", "max", "plus", "ultra", "mini", "se", "air", "lite", "note", "turbo"},
		ProductTypes: []ProductType{
			{
				ID: "watch", Name: "智能手表", Keywords: []string{"watch", "手表"},
				SpecWeights: map[string]float64{"color": 0.2, "size": 0.3, "band": 0.3, "version": 0.2},
			},
			{
				ID: "tablet", Name: "平板", Keywords: []string{"pad", "平板", "tab"},
				SpecWeights: map[string]float64{"color": 0.3, "capacity": 0.4, "version": 0.3},
			},
			{
				ID: "earphone", Name: "耳机", Keywords: []string{"buds", "耳机"},
				SpecWeights: map[string]float64{"color": 0.6, "version": 0.4},
			},
			{
				ID: "phone", Name: "手机", Keywords: []string{"手机", "phone"},
				SpecWeights: map[string]float64{"color": 0.3, "capacity": 0.4, "version": 0.3},
			},
		},
	}
}
