package profile

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/sweeney/plant-monitor/internal/plant"
)

func TestSaveLoadRoundTrip(t *testing.T) {
	s := NewStore(t.TempDir())

	want := plant.PlantProfile{
		PlantName:              "Monstera",
		SoilDryThreshold:       2200,
		SoilWetThreshold:       900,
		SoilDryDaysForWatering: 5,
		TempHighLimit:          32,
		TempLowLimit:           8,

		HighTempDormancyMaxTemp:     31,
		HighTempDormancyMinTemp:     24,
		HighTempDormancyMinTempDays: 5,
		LowTempDormancyMinTemp:      6,
		ActivePeriodMinTemp:         12,
		ActivePeriodMaxTemp:         27,
		ActivePeriodConsecutiveDays: 4,
	}

	if err := s.Save(want); err != nil {
		t.Fatalf("save: %v", err)
	}

	got := s.Load()
	if got != want {
		t.Errorf("round trip mismatch:\n got %+v\nwant %+v", got, want)
	}
}

func TestLoadMissingReturnsDefaultsAndPersists(t *testing.T) {
	dir := t.TempDir()
	s := NewStore(dir)

	got := s.Load()
	if got != Default() {
		t.Errorf("missing blob: got %+v, want defaults", got)
	}

	// The defaults must have been written back.
	path := filepath.Join(dir, Namespace, Key)
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("defaults were not persisted: %v", err)
	}
	if len(data) != blobSize {
		t.Errorf("persisted blob size: got %d, want %d", len(data), blobSize)
	}
}

func TestLoadSizeMismatchReturnsDefaults(t *testing.T) {
	dir := t.TempDir()
	s := NewStore(dir)

	if err := os.MkdirAll(filepath.Join(dir, Namespace), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, Namespace, Key), []byte("short"), 0o644); err != nil {
		t.Fatal(err)
	}

	if got := s.Load(); got != Default() {
		t.Errorf("size mismatch: got %+v, want defaults", got)
	}
}

func TestLoadInvalidProfileReturnsDefaults(t *testing.T) {
	dir := t.TempDir()
	s := NewStore(dir)

	bad := Default()
	bad.SoilWetThreshold = 9000 // above dry threshold
	if err := os.MkdirAll(filepath.Join(dir, Namespace), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, Namespace, Key), encode(bad), 0o644); err != nil {
		t.Fatal(err)
	}

	if got := s.Load(); got != Default() {
		t.Errorf("invalid stored profile: got %+v, want defaults", got)
	}
}

func TestLongPlantNameTruncates(t *testing.T) {
	s := NewStore(t.TempDir())

	p := Default()
	p.PlantName = "An Extremely Verbose Botanical Name That Overflows"
	if err := s.Save(p); err != nil {
		t.Fatalf("save: %v", err)
	}

	got := s.Load()
	if len(got.PlantName) != 32 {
		t.Errorf("name length: got %d, want 32", len(got.PlantName))
	}
	if got.PlantName != p.PlantName[:32] {
		t.Errorf("name: got %q, want %q", got.PlantName, p.PlantName[:32])
	}
}

func TestDefaultIsValid(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Errorf("default profile must validate: %v", err)
	}
}
