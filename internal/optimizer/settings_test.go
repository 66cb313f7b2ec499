package optimizer

import (
	"testing"

	"github.com/r3e-network/solx-go/internal/catalog"
)

func TestSpillAreaSizeMonotonic(t *testing.T) {
	s := New(catalog.Level3, false, false, false)
	s.SetSpillAreaSize(100)
	s.SetSpillAreaSize(50)
	if s.SpillAreaSize != 100 {
		t.Fatalf("spill area shrank: got %d, want 100", s.SpillAreaSize)
	}
	s.SetSpillAreaSize(200)
	if s.SpillAreaSize != 200 {
		t.Fatalf("spill area did not grow: got %d, want 200", s.SpillAreaSize)
	}
}

func TestSwitchToSizeFallbackLatches(t *testing.T) {
	s := New(catalog.Level3, false, false, false)
	s.SwitchToSizeFallback()
	if s.Level != catalog.LevelZ || !s.SizeFallback {
		t.Fatalf("expected level z and size_fallback=true, got %+v", s)
	}
}

func TestCloneIndependence(t *testing.T) {
	s := New(catalog.Level2, false, false, false)
	c := s.Clone()
	c.SetSpillAreaSize(1000)
	if s.SpillAreaSize != 0 {
		t.Fatal("mutating the clone affected the original")
	}
}
