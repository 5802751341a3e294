// Package index loads the case dataset into the immutable store.Index,
// serves the current snapshot behind an atomic pointer, watches the data
// directory for changes, and hosts the offline embedding builder.
package index

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync/atomic"

	fcerrors "github.com/fascase/fascase/internal/errors"
	"github.com/fascase/fascase/internal/store"
)

// CasesFile is the corpus file name under the data directory.
const CasesFile = "cases.json"

// PrimaryTableFile holds the combined-document embeddings used for
// first-stage retrieval.
const PrimaryTableFile = "embeddings.json"

// FieldTableFiles maps rerank field names to their table file names.
var FieldTableFiles = map[string]string{
	store.FieldFASArguments:     "embeddings_FAS_arguments.json",
	store.FieldViolationSummary: "embeddings_violation_summary.json",
	store.FieldAdDescription:    "embeddings_ad_description.json",
}

// TableReport describes one vector table's load outcome.
type TableReport struct {
	Field     string
	File      string
	Loaded    bool
	Rows      int
	Dimension int
	Err       error
}

// Report summarizes one load for startup logging.
type Report struct {
	Cases      int
	Generation uint64
	Tables     []TableReport
}

// Loader reads the dataset from a directory and builds index snapshots.
// Each successful load gets a new generation number.
type Loader struct {
	dataDir    string
	logger     *slog.Logger
	generation atomic.Uint64
}

// NewLoader creates a loader for the given data directory.
func NewLoader(dataDir string, logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{dataDir: dataDir, logger: logger}
}

// DataDir returns the loader's data directory.
func (l *Loader) DataDir() string {
	return l.dataDir
}

// Load reads cases.json and every vector table, returning the built index
// and its consistency report. A missing or corrupt corpus fails the load;
// a bad vector table only degrades it.
func (l *Loader) Load(ctx context.Context) (*store.Index, *Report, error) {
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}

	cases, err := ReadCases(l.dataDir)
	if err != nil {
		return nil, nil, err
	}
	corpus := store.NewCorpus(cases)

	report := &Report{
		Cases:      corpus.Len(),
		Generation: l.generation.Add(1),
	}

	primary := l.loadTable("document", PrimaryTableFile, corpus.Len(), report)

	tables := make(map[string]*store.VectorTable, len(FieldTableFiles))
	for field, file := range FieldTableFiles {
		if t := l.loadTable(field, file, corpus.Len(), report); t != nil {
			tables[field] = t
		}
	}

	ix := store.NewIndex(corpus, primary, tables, report.Generation)
	l.logReport(report)
	return ix, report, nil
}

// ReadCases reads and validates cases.json from a data directory.
func ReadCases(dataDir string) ([]store.Case, error) {
	path := filepath.Join(dataDir, CasesFile)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fcerrors.New(fcerrors.ErrCodeFileNotFound,
				fmt.Sprintf("corpus file %s not found", path), err).
				WithSuggestion("run `fascase embed` or point data.dir at a prepared dataset")
		}
		return nil, fcerrors.New(fcerrors.ErrCodeFilePermission,
			fmt.Sprintf("reading corpus file %s", path), err)
	}

	var cases []store.Case
	if err := json.Unmarshal(data, &cases); err != nil {
		return nil, fcerrors.New(fcerrors.ErrCodeCorpusCorrupt,
			fmt.Sprintf("decoding corpus file %s", path), err)
	}

	// The index field must equal the array position; everything downstream
	// identifies cases by position.
	for i := range cases {
		if cases[i].Index != i {
			return nil, fcerrors.New(fcerrors.ErrCodeCorpusCorrupt,
				fmt.Sprintf("case at position %d declares index %d", i, cases[i].Index), nil)
		}
	}
	return cases, nil
}

// loadTable reads one vector table. Any failure is recorded in the report
// and the table is treated as absent.
func (l *Loader) loadTable(field, file string, caseCount int, report *Report) *store.VectorTable {
	path := filepath.Join(l.dataDir, file)
	tr := TableReport{Field: field, File: file}

	t, err := store.ReadVectorTableFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			tr.Err = err
			report.Tables = append(report.Tables, tr)
			return nil
		}
		tr.Err = fcerrors.New(fcerrors.ErrCodeTableMismatch,
			fmt.Sprintf("loading vector table %s", path), err)
		report.Tables = append(report.Tables, tr)
		return nil
	}
	if err := t.Validate(caseCount); err != nil {
		tr.Err = fcerrors.New(fcerrors.ErrCodeTableMismatch,
			fmt.Sprintf("vector table %s is not aligned with the corpus", path), err)
		report.Tables = append(report.Tables, tr)
		return nil
	}

	tr.Loaded = true
	tr.Rows = t.Len()
	tr.Dimension = t.Dimension
	report.Tables = append(report.Tables, tr)
	return t
}

func (l *Loader) logReport(report *Report) {
	l.logger.Info("index loaded",
		"cases", report.Cases,
		"generation", report.Generation)
	for _, tr := range report.Tables {
		if tr.Loaded {
			l.logger.Info("vector table loaded",
				"field", tr.Field,
				"rows", tr.Rows,
				"dimension", tr.Dimension)
			continue
		}
		l.logger.Warn("vector table unavailable, feature degraded",
			"field", tr.Field,
			"file", tr.File,
			"error", tr.Err)
	}
}
