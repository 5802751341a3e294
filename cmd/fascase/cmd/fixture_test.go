package cmd

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// setupWorkspace creates a working directory with a static-provider
// fascase.yaml and a two-case corpus, then chdirs into it. Returns the
// data directory.
func setupWorkspace(t *testing.T) string {
	t.Helper()
	isolateConfig(t)

	dir := t.TempDir()
	t.Chdir(dir)

	dataDir := filepath.Join(dir, "data")
	require.NoError(t, os.MkdirAll(dataDir, 0o755))

	cfgYAML := "embeddings:\n  provider: static\ndata:\n  dir: " + dataDir + "\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "fascase.yaml"), []byte(cfgYAML), 0o644))

	writeTestCorpus(t, dataDir)
	return dataDir
}

func writeTestCorpus(t *testing.T, dataDir string) {
	t.Helper()

	strp := func(s string) *string { return &s }
	cases := []map[string]any{
		{
			"index":              0,
			"docId":              strp("077/05/5-100/2022"),
			"document_date":      strp("2022-03-15"),
			"FAS_division":       strp("Московское УФАС России"),
			"defendant_industry": strp("Финансы->Банки"),
			"FAS_arguments":      strp("Реклама кредита не содержала всех условий, определяющих полную стоимость."),
			"violation_summary":  strp("Неполные условия кредита в рекламе."),
			"legal_provisions":   strp("ч. 3 ст. 28 ФЗ «О рекламе»"),
		},
		{
			"index":              1,
			"docId":              strp("016/05/18-200/2023"),
			"document_date":      strp("2023-07-01"),
			"FAS_division":       strp("Татарстанское УФАС России"),
			"defendant_industry": strp("Медицина->БАДы"),
			"FAS_arguments":      strp("Реклама БАД не сопровождалась предупреждением о том, что товар не является лекарством."),
			"violation_summary":  strp("Отсутствует предупреждение в рекламе БАД."),
			"legal_provisions":   strp("ч. 1 ст. 25 ФЗ «О рекламе»"),
		},
	}

	data, err := json.MarshalIndent(cases, "", "  ")
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dataDir, "cases.json"), data, 0o644))
}
