package store

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCase_DecodeWithNulls(t *testing.T) {
	raw := `{
		"index": 3,
		"docId": "077/05/5-123/2024",
		"Violation_Type": null,
		"document_date": "2024-03-15",
		"FASbd_link": null,
		"FAS_division": "Московское УФАС России",
		"violation_found": "да",
		"defendant_name": "ООО «Пример»",
		"defendant_industry": "Финансы/Банки",
		"ad_description": "Реклама кредита",
		"ad_content_cited": null,
		"ad_platform": "Интернет",
		"violation_summary": "Отсутствуют существенные условия",
		"FAS_arguments": "Ключевой тезис: реклама вводит в заблуждение",
		"legal_provisions": "['ч. 2 ст. 5', 'ст. 28']",
		"thematic_tags": null
	}`

	var c Case
	require.NoError(t, json.Unmarshal([]byte(raw), &c))

	assert.Equal(t, 3, c.Index)
	require.NotNil(t, c.DocID)
	assert.Equal(t, "077/05/5-123/2024", *c.DocID)
	assert.Nil(t, c.ViolationType)
	assert.Nil(t, c.AdContentCited)
	require.NotNil(t, c.FASDivision)
	assert.Equal(t, "Московское УФАС России", *c.FASDivision)
}

func TestCase_EncodeKeepsNulls(t *testing.T) {
	c := Case{Index: 1}
	data, err := json.Marshal(&c)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))

	// Absent optional fields must serialize as explicit nulls
	v, present := decoded["FAS_arguments"]
	assert.True(t, present)
	assert.Nil(t, v)
}

func TestCase_Text(t *testing.T) {
	args := "Обоснование решения"
	c := Case{FASArguments: &args}

	assert.Equal(t, "Обоснование решения", c.Text(FieldFASArguments))
	assert.Equal(t, "", c.Text(FieldViolationSummary))
	assert.Equal(t, "", c.Text("no_such_field"))
}
