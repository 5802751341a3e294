package index

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/fascase/fascase/internal/store"
)

func sp(s string) *string { return &s }

func TestExtractThesisMarker(t *testing.T) {
	args := "Вступление. Ключевой тезис: реклама вводит в заблуждение. Юридическое обоснование: далее много текста."
	assert.Equal(t, "реклама вводит в заблуждение.", extractThesis(args))
}

func TestExtractThesisMarkerWithoutEnd(t *testing.T) {
	args := "Ключевой тезис: реклама без предупреждения"
	assert.Equal(t, "реклама без предупреждения", extractThesis(args))
}

func TestExtractThesisFallbackTruncates(t *testing.T) {
	long := strings.Repeat("ы", 600)
	got := extractThesis(long)
	assert.Equal(t, 500, len([]rune(got)))
}

func TestExtractThesisShortFallback(t *testing.T) {
	assert.Equal(t, "короткий текст", extractThesis("короткий текст"))
}

func TestComposeDocumentTextSections(t *testing.T) {
	c := &store.Case{
		AdContentCited:    sp("«Лучший банк страны»"),
		AdDescription:     sp("Баннер на сайте"),
		ViolationSummary:  sp("Недостоверное сравнение"),
		FASArguments:      sp("Ключевой тезис: превосходная степень без подтверждения. Юридическое обоснование."),
		LegalProvisions:   sp("['ч. 1 ст. 5']"),
		ThematicTags:      sp("банки, превосходная степень"),
		DefendantIndustry: sp("Финансы/Банки"),
		AdPlatform:        sp("интернет"),
		ViolationType:     sp("substance"),
	}

	text := ComposeDocumentText(c)
	assert.Contains(t, text, "Реклама: «Лучший банк страны»")
	assert.Contains(t, text, "Описание рекламы: Баннер на сайте")
	assert.Contains(t, text, "Нарушение: Недостоверное сравнение")
	assert.Contains(t, text, "Обоснование ФАС: превосходная степень без подтверждения.")
	assert.Contains(t, text, "Нарушенные статьи: ч. 1 ст. 5")
	assert.NotContains(t, text, "[")
	assert.Contains(t, text, "Отрасль: Финансы/Банки")
	assert.Contains(t, text, "Тип: нарушение содержания")
}

func TestComposeDocumentTextPlacementType(t *testing.T) {
	c := &store.Case{ViolationType: sp("placement")}
	assert.Contains(t, ComposeDocumentText(c), "Тип: нарушение размещения")
}

func TestComposeDocumentTextEmptyCase(t *testing.T) {
	assert.Equal(t, "Нет данных", ComposeDocumentText(&store.Case{}))
}

func TestFieldText(t *testing.T) {
	c := &store.Case{
		FASArguments:     sp("Ключевой тезис: тезис. Юридическое обоснование."),
		ViolationSummary: sp("Суть нарушения"),
	}

	assert.Equal(t, "тезис.", FieldText(c, store.FieldFASArguments))
	assert.Equal(t, "Суть нарушения", FieldText(c, store.FieldViolationSummary))
	assert.Equal(t, "", FieldText(c, store.FieldAdDescription))
	assert.Equal(t, "", FieldText(c, store.FieldLegalProvisions))
}
