package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/fascase/fascase/internal/config"
	"github.com/fascase/fascase/internal/embed"
	"github.com/fascase/fascase/internal/output"
	"github.com/fascase/fascase/internal/preflight"
)

func newDoctorCmd() *cobra.Command {
	var (
		jsonOutput bool
		offline    bool
		dataDir    string
	)

	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Check system requirements and diagnose issues",
		Long: `Run diagnostics to ensure fascase can operate correctly.

Checks:
  - Case corpus (cases.json readable and well-formed)
  - Vector tables (present, row counts match the corpus)
  - GEMINI_API_KEY (when the gemini provider is configured)
  - Embedding backend reachability
  - Disk space (100MB minimum)
  - Log directory writability

Missing vector tables are warnings, not failures: the service still
answers keyword-only. Run 'fascase embed' to build them.`,
		Example: `  # Run diagnostics
  fascase doctor

  # Skip the network probe
  fascase doctor --offline

  # JSON output for scripting
  fascase doctor --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runDoctor(cmd, jsonOutput, offline, dataDir)
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	cmd.Flags().BoolVar(&offline, "offline", false, "Skip checks that need network access")
	cmd.Flags().StringVar(&dataDir, "data", "", "Data directory (overrides config)")

	return cmd
}

func runDoctor(cmd *cobra.Command, jsonOutput, offline bool, dataDir string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("failed to get working directory: %w", err)
	}
	cfg, err := config.Load(cwd)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if dataDir != "" {
		cfg.Data.Dir = dataDir
	}

	opts := []preflight.Option{preflight.WithOffline(offline)}
	if !offline {
		// A probe embedder so the reachability check exercises the real
		// backend. Creation failure (e.g. missing API key) is itself a
		// finding, not an error.
		if embedder, embErr := embed.NewEmbedder(cfg.Embeddings); embErr == nil {
			opts = append(opts, preflight.WithEmbedder(embedder))
			defer func() { _ = embedder.Close() }()
		}
	}

	checker := preflight.New(cfg, opts...)
	results := checker.RunAll(ctx)

	if jsonOutput {
		if err := printDoctorJSON(cmd, results); err != nil {
			return err
		}
	} else {
		printDoctorResults(cmd, results)
	}

	if preflight.HasCriticalFailures(results) {
		return &doctorError{message: "system check failed"}
	}
	return nil
}

// doctorError is a custom error for doctor command failures.
type doctorError struct {
	message string
}

func (e *doctorError) Error() string {
	return e.message
}

func printDoctorResults(cmd *cobra.Command, results []preflight.CheckResult) {
	out := output.New(cmd.OutOrStdout())

	out.Status("🩺", "fascase doctor")
	out.Newline()

	for _, r := range results {
		line := fmt.Sprintf("%-18s %s", r.Name, r.Message)
		switch r.Status {
		case preflight.StatusPass:
			out.Successf("%s", line)
		case preflight.StatusWarn:
			out.Warningf("%s", line)
		case preflight.StatusFail:
			out.Errorf("%s", line)
		}
		if r.Details != "" {
			out.Detail(r.Details)
		}
	}

	out.Newline()
	if preflight.HasCriticalFailures(results) {
		out.Error("System check failed")
	} else {
		out.Success("All required checks passed")
	}
}

// doctorJSON is the machine-readable doctor report.
type doctorJSON struct {
	Status   string            `json:"status"`
	Checks   []doctorCheckJSON `json:"checks"`
	Warnings []string          `json:"warnings,omitempty"`
	Errors   []string          `json:"errors,omitempty"`
}

type doctorCheckJSON struct {
	Name     string `json:"name"`
	Status   string `json:"status"`
	Message  string `json:"message"`
	Required bool   `json:"required"`
	Details  string `json:"details,omitempty"`
}

func printDoctorJSON(cmd *cobra.Command, results []preflight.CheckResult) error {
	report := doctorJSON{
		Status: "ok",
		Checks: make([]doctorCheckJSON, len(results)),
	}
	for i, r := range results {
		report.Checks[i] = doctorCheckJSON{
			Name:     r.Name,
			Status:   r.Status.String(),
			Message:  r.Message,
			Required: r.Required,
			Details:  r.Details,
		}
		if r.IsCritical() {
			report.Errors = append(report.Errors, r.Name+": "+r.Message)
		} else if r.Status == preflight.StatusWarn {
			report.Warnings = append(report.Warnings, r.Name+": "+r.Message)
		}
	}
	if len(report.Errors) > 0 {
		report.Status = "fail"
	} else if len(report.Warnings) > 0 {
		report.Status = "warn"
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(report)
}
