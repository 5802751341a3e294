package facet

import (
	"sort"
	"strings"
)

// District is one federal district with its fixed region list.
type District struct {
	Name    string
	Regions []string
}

// FederalDistricts is the fixed enumeration of Russian federal districts
// in their conventional order. The region lists carry the names FAS
// division strings resolve to.
var FederalDistricts = []District{
	{
		Name: "Центральный федеральный округ",
		Regions: []string{
			"Москва",
			"Московская область",
			"Белгородская область",
			"Брянская область",
			"Владимирская область",
			"Воронежская область",
			"Ивановская область",
			"Калужская область",
			"Костромская область",
			"Курская область",
			"Липецкая область",
			"Орловская область",
			"Рязанская область",
			"Смоленская область",
			"Тамбовская область",
			"Тверская область",
			"Тульская область",
			"Ярославская область",
		},
	},
	{
		Name: "Северо-Западный федеральный округ",
		Regions: []string{
			"Санкт-Петербург",
			"Ленинградская область",
			"Архангельская область",
			"Вологодская область",
			"Калининградская область",
			"Республика Карелия",
			"Республика Коми",
			"Мурманская область",
			"Новгородская область",
			"Псковская область",
			"Ненецкий автономный округ",
		},
	},
	{
		Name: "Южный федеральный округ",
		Regions: []string{
			"Краснодарский край",
			"Ростовская область",
			"Волгоградская область",
			"Астраханская область",
			"Республика Адыгея",
			"Республика Калмыкия",
			"Республика Крым",
			"Севастополь",
		},
	},
	{
		Name: "Северо-Кавказский федеральный округ",
		Regions: []string{
			"Ставропольский край",
			"Республика Дагестан",
			"Республика Ингушетия",
			"Кабардино-Балкарская Республика",
			"Карачаево-Черкесская Республика",
			"Республика Северная Осетия",
			"Чеченская Республика",
		},
	},
	{
		Name: "Приволжский федеральный округ",
		Regions: []string{
			"Республика Татарстан",
			"Республика Башкортостан",
			"Нижегородская область",
			"Самарская область",
			"Саратовская область",
			"Пермский край",
			"Оренбургская область",
			"Пензенская область",
			"Ульяновская область",
			"Кировская область",
			"Чувашская Республика",
			"Республика Марий Эл",
			"Республика Мордовия",
			"Удмуртская Республика",
		},
	},
	{
		Name: "Уральский федеральный округ",
		Regions: []string{
			"Свердловская область",
			"Челябинская область",
			"Тюменская область",
			"Курганская область",
			"Ханты-Мансийский автономный округ",
			"Ямало-Ненецкий автономный округ",
		},
	},
	{
		Name: "Сибирский федеральный округ",
		Regions: []string{
			"Новосибирская область",
			"Омская область",
			"Красноярский край",
			"Алтайский край",
			"Иркутская область",
			"Кемеровская область",
			"Томская область",
			"Республика Хакасия",
			"Республика Тыва",
			"Республика Алтай",
		},
	},
	{
		Name: "Дальневосточный федеральный округ",
		Regions: []string{
			"Приморский край",
			"Хабаровский край",
			"Амурская область",
			"Республика Бурятия",
			"Забайкальский край",
			"Республика Саха (Якутия)",
			"Сахалинская область",
			"Камчатский край",
			"Магаданская область",
			"Еврейская автономная область",
			"Чукотский автономный округ",
		},
	},
}

// divisionTranslations maps stored FAS_division strings to region names.
// The dataset writes divisions in adjectival form ("Московское УФАС
// России"), which substring matching alone cannot resolve.
var divisionTranslations = map[string]string{
	"Московское УФАС России":           "Москва",
	"Московское областное УФАС России": "Московская область",
	"Санкт-Петербургское УФАС России":  "Санкт-Петербург",
	"Ленинградское УФАС России":        "Ленинградская область",
	"Татарстанское УФАС России":        "Республика Татарстан",
	"Башкортостанское УФАС России":     "Республика Башкортостан",
	"Нижегородское УФАС России":        "Нижегородская область",
	"Самарское УФАС России":            "Самарская область",
	"Саратовское УФАС России":          "Саратовская область",
	"Пермское УФАС России":             "Пермский край",
	"Оренбургское УФАС России":         "Оренбургская область",
	"Свердловское УФАС России":         "Свердловская область",
	"Челябинское УФАС России":          "Челябинская область",
	"Тюменское УФАС России":            "Тюменская область",
	"Новосибирское УФАС России":        "Новосибирская область",
	"Омское УФАС России":               "Омская область",
	"Красноярское УФАС России":         "Красноярский край",
	"Алтайское краевое УФАС России":    "Алтайский край",
	"Иркутское УФАС России":            "Иркутская область",
	"Кемеровское УФАС России":          "Кемеровская область",
	"Томское УФАС России":              "Томская область",
	"Краснодарское УФАС России":        "Краснодарский край",
	"Ростовское УФАС России":           "Ростовская область",
	"Волгоградское УФАС России":        "Волгоградская область",
	"Астраханское УФАС России":         "Астраханская область",
	"Крымское УФАС России":             "Республика Крым",
	"Ставропольское УФАС России":       "Ставропольский край",
	"Дагестанское УФАС России":         "Республика Дагестан",
	"Приморское УФАС России":           "Приморский край",
	"Хабаровское УФАС России":          "Хабаровский край",
	"Амурское УФАС России":             "Амурская область",
	"Бурятское УФАС России":            "Республика Бурятия",
	"Забайкальское УФАС России":        "Забайкальский край",
	"Якутское УФАС России":             "Республика Саха (Якутия)",
	"Сахалинское УФАС России":          "Сахалинская область",
	"Камчатское УФАС России":           "Камчатский край",
	"Воронежское УФАС России":          "Воронежская область",
	"Белгородское УФАС России":         "Белгородская область",
	"Тверское УФАС России":             "Тверская область",
	"Тульское УФАС России":             "Тульская область",
	"Ярославское УФАС России":          "Ярославская область",
	"Калининградское УФАС России":      "Калининградская область",
	"Мурманское УФАС России":           "Мурманская область",
	"Вологодское УФАС России":          "Вологодская область",
	"Архангельское УФАС России":        "Архангельская область",
	"Удмуртское УФАС России":           "Удмуртская Республика",
	"Чувашское УФАС России":            "Чувашская Республика",
	"Кировское УФАС России":            "Кировская область",
	"Пензенское УФАС России":           "Пензенская область",
	"Ульяновское УФАС России":          "Ульяновская область",
}

// TranslateDivision resolves a stored FAS division string to a region
// name via the fixed translation table. ok is false when the division has
// no exact translation.
func TranslateDivision(division string) (string, bool) {
	r, ok := divisionTranslations[strings.TrimSpace(division)]
	return r, ok
}

// BuildRegionTree aggregates stored FAS_division values into the fixed
// federal-district hierarchy. A division resolves to a region by exact
// translation first; untranslated divisions fall back to case-insensitive
// substring containment against each district's region list and add their
// counts to every region they match. Districts with no matched cases are
// omitted; matched regions are sorted by label within a district.
func BuildRegionTree(divisions []string) []Node {
	// Tally raw division values once up front.
	tally := map[string]int{}
	for _, d := range divisions {
		d = strings.TrimSpace(d)
		if d == "" {
			continue
		}
		tally[d]++
	}

	var out []Node
	for _, district := range FederalDistricts {
		counts := map[string]int{}
		for division, n := range tally {
			if region, ok := TranslateDivision(division); ok {
				if containsRegion(district.Regions, region) {
					counts[region] += n
				}
				continue
			}
			low := strings.ToLower(division)
			for _, region := range district.Regions {
				if strings.Contains(low, strings.ToLower(region)) {
					counts[region] += n
				}
			}
		}
		if len(counts) == 0 {
			continue
		}

		labels := make([]string, 0, len(counts))
		for r := range counts {
			labels = append(labels, r)
		}
		sort.Strings(labels)

		total := 0
		children := make([]Node, 0, len(labels))
		for _, r := range labels {
			children = append(children, Node{Label: r, Count: counts[r]})
			total += counts[r]
		}
		out = append(out, Node{
			Label:    district.Name,
			Count:    total,
			Children: children,
		})
	}
	return out
}

func containsRegion(regions []string, name string) bool {
	for _, r := range regions {
		if r == name {
			return true
		}
	}
	return false
}
