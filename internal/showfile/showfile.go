// Package showfile reads and writes shows as YAML.
package showfile

import (
	"fmt"
	"io"
	"os"

	"github.com/Vasu1712/scenyx-showtime/internal/models"
	"github.com/Vasu1712/scenyx-showtime/internal/show"
	"gopkg.in/yaml.v3"
)

// Decode reads a YAML show and normalizes it: scenes are renumbered by
// position and negative durations become 0. Shows without scenes, or with
// missing or repeated ids, are rejected with show.ErrInvalidShow.
func Decode(r io.Reader) (models.Show, error) {
	var s models.Show
	if err := yaml.NewDecoder(r).Decode(&s); err != nil {
		return models.Show{}, fmt.Errorf("decode show: %w", err)
	}
	if err := show.Validate(s); err != nil {
		return models.Show{}, fmt.Errorf("decode show: %w", err)
	}
	if s.Transitions == nil {
		s.Transitions = []models.Transition{}
	}
	return show.Normalize(s), nil
}

func Encode(w io.Writer, s models.Show) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(s); err != nil {
		return fmt.Errorf("encode show: %w", err)
	}
	return enc.Close()
}

// Read loads a show from a YAML file.
func Read(path string) (models.Show, error) {
	f, err := os.Open(path)
	if err != nil {
		return models.Show{}, err
	}
	defer f.Close()
	return Decode(f)
}

// Write stores a show as a YAML file.
func Write(path string, s models.Show) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := Encode(f, s); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
