// Package profile persists the plant profile as a fixed-size binary blob.
// Load never fails: any backing-store problem falls back to the compiled-in
// defaults.
package profile

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/sweeney/plant-monitor/internal/plant"
)

// Namespace/key pair: the blob lives at <dir>/plant_config/profile.
const (
	Namespace = "plant_config"
	Key       = "profile"
)

const nameSize = 32

// blobSize is the exact encoded size. A stored blob of any other size is
// treated as corrupt and replaced with defaults.
const blobSize = nameSize + 9*8 + 3*4

// Default returns the compiled-in profile (tuned for a succulent).
func Default() plant.PlantProfile {
	return plant.PlantProfile{
		PlantName:              "Succulent Plant",
		SoilDryThreshold:       2500,
		SoilWetThreshold:       1000,
		SoilDryDaysForWatering: 3,
		TempHighLimit:          35,
		TempLowLimit:           5,

		HighTempDormancyMaxTemp:     30,
		HighTempDormancyMinTemp:     25,
		HighTempDormancyMinTempDays: 4,
		LowTempDormancyMinTemp:      5,
		ActivePeriodMinTemp:         10,
		ActivePeriodMaxTemp:         28,
		ActivePeriodConsecutiveDays: 3,
	}
}

// Store reads and writes the profile blob under a base directory.
type Store struct {
	dir string
}

// NewStore creates a Store rooted at dir.
func NewStore(dir string) *Store {
	return &Store{dir: dir}
}

func (s *Store) path() string {
	return filepath.Join(s.dir, Namespace, Key)
}

// Load returns the stored profile, or the defaults when the blob is
// missing, unreadable, the wrong size, or fails validation. Defaults are
// saved back on a best-effort basis so the next boot finds a blob.
func (s *Store) Load() plant.PlantProfile {
	data, err := os.ReadFile(s.path())
	if err != nil {
		log.Printf("profile: load failed (%v), using defaults", err)
		return s.defaultAndSave()
	}
	if len(data) != blobSize {
		log.Printf("profile: blob size mismatch (got %d, want %d), using defaults", len(data), blobSize)
		return s.defaultAndSave()
	}

	p := decode(data)
	if err := p.Validate(); err != nil {
		log.Printf("profile: stored profile invalid (%v), using defaults", err)
		return s.defaultAndSave()
	}
	return p
}

func (s *Store) defaultAndSave() plant.PlantProfile {
	p := Default()
	if err := s.Save(p); err != nil {
		log.Printf("profile: failed to save defaults: %v", err)
	}
	return p
}

// Save writes the profile blob atomically (temp file + rename).
func (s *Store) Save(p plant.PlantProfile) error {
	dir := filepath.Join(s.dir, Namespace)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create profile dir: %w", err)
	}

	tmp := s.path() + ".tmp"
	if err := os.WriteFile(tmp, encode(p), 0o644); err != nil {
		return fmt.Errorf("write profile: %w", err)
	}
	if err := os.Rename(tmp, s.path()); err != nil {
		return fmt.Errorf("rename profile: %w", err)
	}
	return nil
}

func encode(p plant.PlantProfile) []byte {
	buf := bytes.NewBuffer(make([]byte, 0, blobSize))

	var name [nameSize]byte
	copy(name[:], p.PlantName)
	buf.Write(name[:])

	le := binary.LittleEndian
	writeF64 := func(v float64) { binary.Write(buf, le, v) }
	writeI32 := func(v int) { binary.Write(buf, le, int32(v)) }

	writeF64(p.SoilDryThreshold)
	writeF64(p.SoilWetThreshold)
	writeI32(p.SoilDryDaysForWatering)
	writeF64(p.TempHighLimit)
	writeF64(p.TempLowLimit)
	writeF64(p.HighTempDormancyMaxTemp)
	writeF64(p.HighTempDormancyMinTemp)
	writeI32(p.HighTempDormancyMinTempDays)
	writeF64(p.LowTempDormancyMinTemp)
	writeF64(p.ActivePeriodMinTemp)
	writeF64(p.ActivePeriodMaxTemp)
	writeI32(p.ActivePeriodConsecutiveDays)

	return buf.Bytes()
}

func decode(data []byte) plant.PlantProfile {
	var p plant.PlantProfile

	p.PlantName = string(bytes.TrimRight(data[:nameSize], "\x00"))
	r := bytes.NewReader(data[nameSize:])

	le := binary.LittleEndian
	readF64 := func(dst *float64) { binary.Read(r, le, dst) }
	readI32 := func(dst *int) {
		var v int32
		binary.Read(r, le, &v)
		*dst = int(v)
	}

	readF64(&p.SoilDryThreshold)
	readF64(&p.SoilWetThreshold)
	readI32(&p.SoilDryDaysForWatering)
	readF64(&p.TempHighLimit)
	readF64(&p.TempLowLimit)
	readF64(&p.HighTempDormancyMaxTemp)
	readF64(&p.HighTempDormancyMinTemp)
	readI32(&p.HighTempDormancyMinTempDays)
	readF64(&p.LowTempDormancyMinTemp)
	readF64(&p.ActivePeriodMinTemp)
	readF64(&p.ActivePeriodMaxTemp)
	readI32(&p.ActivePeriodConsecutiveDays)

	return p
}
