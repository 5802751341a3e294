// Package profiling backs the fascase --profile-* flags with pprof and
// trace collection around a whole command run.
package profiling

import (
	"fmt"
	"os"
	"runtime"
	"runtime/pprof"
	"runtime/trace"
)

// Profiler scopes CPU and trace collection to a command invocation.
// The search engine's hot paths (fusion, rerank) are what these
// profiles are usually taken for.
type Profiler struct {
	cpuFile   *os.File
	traceFile *os.File
}

func NewProfiler() *Profiler {
	return &Profiler{}
}

// StartCPU begins CPU profiling into path. The returned cleanup stops
// the profile and closes the file; data is incomplete until it runs.
func (p *Profiler) StartCPU(path string) (cleanup func(), err error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create CPU profile file: %w", err)
	}

	if err := pprof.StartCPUProfile(f); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("failed to start CPU profile: %w", err)
	}

	p.cpuFile = f
	return func() {
		pprof.StopCPUProfile()
		_ = p.cpuFile.Close()
		p.cpuFile = nil
	}, nil
}

// StartTrace begins execution tracing into path. The returned cleanup
// stops the trace and closes the file.
func (p *Profiler) StartTrace(path string) (cleanup func(), err error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create trace file: %w", err)
	}

	if err := trace.Start(f); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("failed to start trace: %w", err)
	}

	p.traceFile = f
	return func() {
		trace.Stop()
		_ = p.traceFile.Close()
		p.traceFile = nil
	}, nil
}

// WriteHeap snapshots live heap objects into path. Runs a GC first so
// the snapshot reflects what actually survives, not collectible garbage
// from index loading.
func (p *Profiler) WriteHeap(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create heap profile file: %w", err)
	}
	defer func() { _ = f.Close() }()

	runtime.GC()

	if err := pprof.WriteHeapProfile(f); err != nil {
		return fmt.Errorf("failed to write heap profile: %w", err)
	}
	return nil
}

// WriteAllocs records cumulative allocations, collectible or not.
func (p *Profiler) WriteAllocs(path string) error {
	runtime.GC()
	return p.writeLookup("allocs", path, 0)
}

// WriteGoroutine dumps the stacks of all current goroutines.
func (p *Profiler) WriteGoroutine(path string) error {
	return p.writeLookup("goroutine", path, 1)
}

// WriteBlock records where goroutines blocked on sync primitives.
func (p *Profiler) WriteBlock(path string) error {
	return p.writeLookup("block", path, 0)
}

func (p *Profiler) writeLookup(name, path string, debug int) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s profile file: %w", name, err)
	}
	defer func() { _ = f.Close() }()

	if err := pprof.Lookup(name).WriteTo(f, debug); err != nil {
		return fmt.Errorf("failed to write %s profile: %w", name, err)
	}
	return nil
}

// MemStats returns current memory statistics.
func MemStats() runtime.MemStats {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	return m
}

// FormatBytes renders a byte count in human-readable units.
func FormatBytes(bytes uint64) string {
	const (
		kb = 1024
		mb = kb * 1024
		gb = mb * 1024
	)

	switch {
	case bytes >= gb:
		return fmt.Sprintf("%.2f GB", float64(bytes)/float64(gb))
	case bytes >= mb:
		return fmt.Sprintf("%.2f MB", float64(bytes)/float64(mb))
	case bytes >= kb:
		return fmt.Sprintf("%.2f KB", float64(bytes)/float64(kb))
	default:
		return fmt.Sprintf("%d B", bytes)
	}
}
