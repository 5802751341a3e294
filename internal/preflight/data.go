package preflight

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/fascase/fascase/internal/index"
	"github.com/fascase/fascase/internal/store"
)

// CheckCorpus verifies cases.json exists and parses.
func (c *Checker) CheckCorpus() CheckResult {
	result := CheckResult{Name: "corpus", Required: true}

	cases, err := index.ReadCases(c.cfg.Data.Dir)
	if err != nil {
		result.Status = StatusFail
		result.Message = err.Error()
		result.Details = fmt.Sprintf("expected %s", filepath.Join(c.cfg.Data.Dir, index.CasesFile))
		return result
	}

	result.Status = StatusPass
	result.Message = fmt.Sprintf("%d cases in %s", len(cases), index.CasesFile)
	return result
}

// CheckVectorTables verifies each embeddings file parses, aligns with the
// corpus and matches the configured dimension. Missing tables warn: the
// server runs degraded without them.
func (c *Checker) CheckVectorTables() []CheckResult {
	cases, err := index.ReadCases(c.cfg.Data.Dir)
	if err != nil {
		// CheckCorpus already reports this failure.
		cases = nil
	}

	files := []struct {
		field string
		file  string
	}{
		{"document", index.PrimaryTableFile},
		{store.FieldFASArguments, index.FieldTableFiles[store.FieldFASArguments]},
		{store.FieldViolationSummary, index.FieldTableFiles[store.FieldViolationSummary]},
		{store.FieldAdDescription, index.FieldTableFiles[store.FieldAdDescription]},
	}

	var results []CheckResult
	for _, f := range files {
		results = append(results, c.checkTable(f.field, f.file, len(cases)))
	}
	return results
}

func (c *Checker) checkTable(field, file string, caseCount int) CheckResult {
	result := CheckResult{Name: "table_" + field, Required: false}
	path := filepath.Join(c.cfg.Data.Dir, file)

	t, err := store.ReadVectorTableFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			result.Status = StatusWarn
			result.Message = fmt.Sprintf("%s missing (run `fascase embed`)", file)
			return result
		}
		result.Status = StatusFail
		result.Message = fmt.Sprintf("%s unreadable: %v", file, err)
		return result
	}

	if caseCount > 0 && t.Len() != caseCount {
		result.Status = StatusFail
		result.Message = fmt.Sprintf("%s has %d rows for %d cases", file, t.Len(), caseCount)
		return result
	}
	if c.cfg.Embeddings.Dimensions > 0 && t.Dimension != c.cfg.Embeddings.Dimensions {
		result.Status = StatusWarn
		result.Message = fmt.Sprintf("%s dimension %d differs from configured %d",
			file, t.Dimension, c.cfg.Embeddings.Dimensions)
		result.Details = "queries will embed at the configured dimension; re-run `fascase embed` after changing it"
		return result
	}

	result.Status = StatusPass
	result.Message = fmt.Sprintf("%s: %d rows, dimension %d (model %s)", file, t.Len(), t.Dimension, t.Model)
	return result
}

// CheckLogDirWritable verifies the log file's directory accepts writes.
func (c *Checker) CheckLogDirWritable() CheckResult {
	result := CheckResult{Name: "log_dir", Required: false}

	if c.cfg.Logging.FilePath == "" {
		result.Status = StatusPass
		result.Message = "file logging disabled"
		return result
	}

	dir := filepath.Dir(c.cfg.Logging.FilePath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		result.Status = StatusFail
		result.Message = fmt.Sprintf("cannot create log directory %s: %v", dir, err)
		return result
	}

	probe, err := os.CreateTemp(dir, ".fascase-doctor-*")
	if err != nil {
		result.Status = StatusFail
		result.Message = fmt.Sprintf("log directory %s is not writable: %v", dir, err)
		return result
	}
	probe.Close()
	os.Remove(probe.Name())

	result.Status = StatusPass
	result.Message = fmt.Sprintf("log directory %s is writable", dir)
	return result
}
