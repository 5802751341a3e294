//go:build ignore

// Package main generates a synthetic cases.json for load testing the
// embed builder and the search engine.
// Usage: go run scripts/generate-test-corpus.go -cases 1000 -output testdata/bench
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
)

var (
	numCases  = flag.Int("cases", 1000, "Number of case records to generate")
	outputDir = flag.String("output", "testdata/bench", "Output directory")
	seed      = flag.Int64("seed", 42, "Random seed for reproducibility")
)

type caseRecord struct {
	Index             int     `json:"index"`
	DocID             *string `json:"docId"`
	ViolationType     *string `json:"Violation_Type"`
	DocumentDate      *string `json:"document_date"`
	FASDivision       *string `json:"FAS_division"`
	ViolationFound    *string `json:"violation_found"`
	DefendantName     *string `json:"defendant_name"`
	DefendantIndustry *string `json:"defendant_industry"`
	AdDescription     *string `json:"ad_description"`
	AdContentCited    *string `json:"ad_content_cited"`
	AdPlatform        *string `json:"ad_platform"`
	ViolationSummary  *string `json:"violation_summary"`
	FASArguments      *string `json:"FAS_arguments"`
	LegalProvisions   *string `json:"legal_provisions"`
}

// Value pools mirroring the shape of the real dataset.
var (
	divisions = []string{
		"Московское УФАС России", "Санкт-Петербургское УФАС России",
		"Татарстанское УФАС России", "Свердловское УФАС России",
		"Новосибирское УФАС России", "Краснодарское УФАС России",
		"Ростовское УФАС России", "Нижегородское УФАС России",
	}
	industries = []string{
		"Финансы->Банки", "Финансы->Микрозаймы", "Медицина->БАДы",
		"Медицина->Клиники", "Недвижимость->Застройщики",
		"Торговля->Продукты", "Услуги->Связь", "Алкоголь->Розница",
	}
	platforms = []string{
		"наружная реклама", "телевидение", "радио",
		"интернет", "социальные сети", "печатные СМИ",
	}
	subjects = []string{
		"кредита", "вклада", "микрозайма", "БАД", "медицинских услуг",
		"квартир в новостройке", "алкогольной продукции", "тарифа связи",
	}
	violations = []string{
		"отсутствовали существенные условия",
		"не было предупреждения о противопоказаниях",
		"использовалось некорректное сравнение с конкурентами",
		"отсутствовала часть существенной информации",
		"реклама вводила потребителей в заблуждение",
		"не указан срок действия акции",
	}
	articles = []string{
		"ч. 1 ст. 5 ФЗ «О рекламе»", "ч. 3 ст. 5 ФЗ «О рекламе»",
		"ч. 7 ст. 5 ФЗ «О рекламе»", "ст. 7 ФЗ «О рекламе»",
		"ч. 1 ст. 24 ФЗ «О рекламе»", "ч. 1 ст. 25 ФЗ «О рекламе»",
		"ч. 2 ст. 28 ФЗ «О рекламе»", "ч. 3 ст. 28 ФЗ «О рекламе»",
	}
)

func main() {
	flag.Parse()
	rng := rand.New(rand.NewSource(*seed))

	if err := os.MkdirAll(*outputDir, 0755); err != nil {
		fmt.Fprintf(os.Stderr, "Error creating output directory: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Generating %d cases in %s...\n", *numCases, *outputDir)

	cases := make([]caseRecord, *numCases)
	for i := range cases {
		cases[i] = generateCase(rng, i)
	}

	data, err := json.MarshalIndent(cases, "", "  ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error marshaling cases: %v\n", err)
		os.Exit(1)
	}

	path := filepath.Join(*outputDir, "cases.json")
	if err := os.WriteFile(path, data, 0644); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing %s: %v\n", path, err)
		os.Exit(1)
	}

	fmt.Printf("Generated %d cases successfully.\n", len(cases))
}

func generateCase(rng *rand.Rand, index int) caseRecord {
	division := pick(rng, divisions)
	industry := pick(rng, industries)
	platform := pick(rng, platforms)
	subject := pick(rng, subjects)
	violation := pick(rng, violations)
	article := pick(rng, articles)

	year := 2020 + rng.Intn(5)
	date := fmt.Sprintf("%d-%02d-%02d", year, 1+rng.Intn(12), 1+rng.Intn(28))
	docID := fmt.Sprintf("%03d/05/%d-%d/%d", rng.Intn(100), 5+rng.Intn(30), 100+index, year)
	defendant := fmt.Sprintf("ООО «Компания %d»", 1+rng.Intn(500))
	found := "да"

	description := fmt.Sprintf("Реклама %s, размещенная через %s.", subject, platform)
	cited := fmt.Sprintf("«Лучшие условия %s — только у нас!»", subject)
	summary := fmt.Sprintf("В рекламе %s %s.", subject, violation)
	arguments := fmt.Sprintf(
		"Комиссия установила, что в рекламе %s, распространенной через %s, %s, "+
			"что нарушает %s. Ответственность несет рекламодатель %s.",
		subject, platform, violation, article, defendant)
	vtype := "Недостоверная реклама"

	return caseRecord{
		Index:             index,
		DocID:             &docID,
		ViolationType:     &vtype,
		DocumentDate:      &date,
		FASDivision:       &division,
		ViolationFound:    &found,
		DefendantName:     &defendant,
		DefendantIndustry: &industry,
		AdDescription:     &description,
		AdContentCited:    &cited,
		AdPlatform:        &platform,
		ViolationSummary:  &summary,
		FASArguments:      &arguments,
		LegalProvisions:   &article,
	}
}

func pick(rng *rand.Rand, pool []string) string {
	return pool[rng.Intn(len(pool))]
}
