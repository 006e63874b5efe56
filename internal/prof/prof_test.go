package prof

import (
	"os"
	"path/filepath"
	"testing"
)

func TestSessionWritesProfiles(t *testing.T) {
	dir := t.TempDir()
	cfg := Config{
		CPU: filepath.Join(dir, "cpu.out"),
		Mem: filepath.Join(dir, "mem.out"),
	}
	s, err := Start(cfg)
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if err := s.Stop(); err != nil {
		t.Fatalf("stop: %v", err)
	}
	for _, p := range []string{cfg.CPU, cfg.Mem} {
		info, err := os.Stat(p)
		if err != nil {
			t.Fatalf("missing profile %s: %v", p, err)
		}
		if info.Size() == 0 {
			t.Fatalf("empty profile %s", p)
		}
	}
}

func TestEmptyConfigIsNoop(t *testing.T) {
	s, err := Start(Config{})
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if err := s.Stop(); err != nil {
		t.Fatalf("stop: %v", err)
	}
}
