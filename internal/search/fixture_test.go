package search

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/fascase/fascase/internal/store"
)

func strp(s string) *string { return &s }

// fixtureCases is a small corpus exercising every retrieval path: distinct
// years, regions, hierarchical industries, citations at each specificity
// level, and one record with nothing but text.
func fixtureCases() []store.Case {
	return []store.Case{
		{
			Index:             0,
			DocumentDate:      strp("2022-03-15"),
			FASDivision:       strp("Московское УФАС России"),
			DefendantIndustry: strp("Фармацевтика/Лекарства"),
			FASArguments:      strp("Реклама лекарственного препарата распространялась без предупреждения о противопоказаниях"),
			ViolationSummary:  strp("Отсутствие обязательного предупреждения в рекламе лекарственного средства"),
			LegalProvisions:   strp("ч. 7 ст. 24 Федерального закона «О рекламе»"),
		},
		{
			Index:             1,
			DocumentDate:      strp("2023-06-01"),
			FASDivision:       strp("Татарстанское УФАС России"),
			DefendantIndustry: strp("Финансы/Банки"),
			FASArguments:      strp("Реклама кредита умалчивала существенные условия банковской услуги"),
			ViolationSummary:  strp("Неполная информация об условиях кредита"),
			LegalProvisions:   strp("ч. 2 ст. 28 ФЗ «О рекламе»"),
		},
		{
			Index:             2,
			DocumentDate:      strp("2023-11-20"),
			FASDivision:       strp("Санкт-Петербургское УФАС России"),
			DefendantIndustry: strp("Финансы"),
			FASArguments:      strp("Недостоверная реклама доходности вклада вводила потребителей в заблуждение"),
			ViolationSummary:  strp("Недостоверные сведения о процентной ставке"),
			LegalProvisions:   strp("п. 2 ч. 3 ст. 5 ФЗ «О рекламе»"),
		},
		{
			Index:             3,
			DocumentDate:      strp("2024-02-09"),
			FASDivision:       strp("Московское УФАС России"),
			DefendantIndustry: strp("Алкоголь"),
			FASArguments:      strp("Наружная реклама алкогольной продукции размещена ближе ста метров от школы"),
			ViolationSummary:  strp("Запрещенное место размещения рекламы алкоголя"),
			LegalProvisions:   strp("п. 1 ч. 2 ст. 21 ФЗ «О рекламе»"),
		},
		{
			Index:        4,
			FASArguments: strp("Массовая рассылка смс рекламы без предварительного согласия абонентов"),
		},
	}
}

// fixtureVectors returns unit-friendly 4-dimensional embeddings for the
// primary field. Case 4 has a degenerate row.
func fixtureVectors() [][]float32 {
	return [][]float32{
		{1, 0, 0, 0},
		{0, 1, 0, 0},
		{0, 0, 1, 0},
		{1, 1, 0, 0},
		{0, 0, 0, 0},
	}
}

func fixtureIndex(t *testing.T) *store.Index {
	t.Helper()

	corpus := store.NewCorpus(fixtureCases())

	primary, err := store.NewVectorTable(store.FieldFASArguments, "test-model", 4, fixtureVectors())
	require.NoError(t, err)

	summary, err := store.NewVectorTable(store.FieldViolationSummary, "test-model", 4, [][]float32{
		{0, 1, 0, 0},
		{1, 0, 0, 0},
		{0, 0, 1, 0},
		{0, 0, 0, 1},
		{0, 0, 0, 0},
	})
	require.NoError(t, err)

	tables := map[string]*store.VectorTable{
		store.FieldFASArguments:     primary,
		store.FieldViolationSummary: summary,
	}
	return store.NewIndex(corpus, primary, tables, 7)
}

// fixedProvider always serves the same snapshot.
type fixedProvider struct{ ix *store.Index }

func (p fixedProvider) Snapshot() *store.Index { return p.ix }

// stubEmbedder returns a canned vector or error and counts calls.
type stubEmbedder struct {
	vec   []float32
	err   error
	calls int
}

func (s *stubEmbedder) EmbedQuery(_ context.Context, _ string) ([]float32, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	out := make([]float32, len(s.vec))
	copy(out, s.vec)
	return out, nil
}

func (s *stubEmbedder) ModelName() string { return "stub-model" }

var errEmbedDown = errors.New("embedding backend down")
