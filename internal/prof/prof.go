// Package prof wires Go's pprof and runtime/trace into the kestrel CLI.
package prof

import (
	"errors"
	"fmt"
	"os"
	"runtime"
	"runtime/pprof"
	"runtime/trace"
)

// Config names the output files; empty paths disable the matching profile.
type Config struct {
	CPU     string
	Mem     string
	Runtime string
}

// Session holds the files of the profiles started by Start.
type Session struct {
	cfg       Config
	cpuFile   *os.File
	traceFile *os.File
}

// Start begins CPU profiling and runtime tracing as configured. The heap
// profile is written by Stop.
func Start(cfg Config) (*Session, error) {
	s := &Session{cfg: cfg}
	if cfg.CPU != "" {
		f, err := os.Create(cfg.CPU)
		if err != nil {
			return nil, fmt.Errorf("cpuprofile: %w", err)
		}
		if err := pprof.StartCPUProfile(f); err != nil {
			_ = f.Close()
			return nil, fmt.Errorf("cpuprofile: %w", err)
		}
		s.cpuFile = f
	}
	if cfg.Runtime != "" {
		f, err := os.Create(cfg.Runtime)
		if err != nil {
			s.stopCPU()
			return nil, fmt.Errorf("runtime trace: %w", err)
		}
		if err := trace.Start(f); err != nil {
			_ = f.Close()
			s.stopCPU()
			return nil, fmt.Errorf("runtime trace: %w", err)
		}
		s.traceFile = f
	}
	return s, nil
}

// Stop ends every active profile and writes the heap profile.
func (s *Session) Stop() error {
	if s == nil {
		return nil
	}
	s.stopCPU()
	var errs []error
	if s.traceFile != nil {
		trace.Stop()
		errs = append(errs, s.traceFile.Close())
		s.traceFile = nil
	}
	if s.cfg.Mem != "" {
		errs = append(errs, WriteMem(s.cfg.Mem))
	}
	return errors.Join(errs...)
}

func (s *Session) stopCPU() {
	if s.cpuFile == nil {
		return
	}
	pprof.StopCPUProfile()
	_ = s.cpuFile.Close()
	s.cpuFile = nil
}

// WriteMem captures a heap profile to the supplied file path.
func WriteMem(path string) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("memprofile: %w", err)
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()
	runtime.GC()
	return pprof.WriteHeapProfile(f)
}
