// Package seriesfile reads and writes the YAML form of a season
// configuration, an alternative to the config workbook.
package seriesfile

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/pavelchuchma/vkct/internal/domain/model"
)

// Sentinel kinds for series file errors.
var (
	ErrDecode            = errors.New("series file decode failed")
	ErrDuplicateCategory = errors.New("duplicate category name")
)

// IsSeriesFile reports whether path names a YAML series file.
func IsSeriesFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return true
	}
	return false
}

// Load reads and validates the series file at path.
func Load(path string) (model.Season, error) {
	f, err := os.Open(path)
	if err != nil {
		return model.Season{}, fmt.Errorf("open series file: %w", err)
	}
	defer f.Close()

	s, err := Decode(f)
	if err != nil {
		return model.Season{}, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}

// Decode reads a season from r. Unknown fields are rejected.
func Decode(r io.Reader) (model.Season, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return model.Season{}, fmt.Errorf("read series file: %w", err)
	}

	var s model.Season
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&s); err != nil {
		return model.Season{}, fmt.Errorf("%w: %w", ErrDecode, err)
	}

	for i := range s.Categories {
		for j := range s.Categories[i].Inputs {
			in := &s.Categories[i].Inputs[j]
			in.NameCol = strings.ToUpper(in.NameCol)
			in.TeamCol = strings.ToUpper(in.TeamCol)
			in.BirthYearCol = strings.ToUpper(in.BirthYearCol)
			in.PositionCol = strings.ToUpper(in.PositionCol)
			in.BirthYearApprovedCol = strings.ToUpper(in.BirthYearApprovedCol)
			in.PositionApprovedCol = strings.ToUpper(in.PositionApprovedCol)
		}
	}

	if err := s.Validate(); err != nil {
		return model.Season{}, err
	}
	seen := make(map[string]struct{}, len(s.Categories))
	for _, c := range s.Categories {
		if _, ok := seen[c.Name]; ok {
			return model.Season{}, fmt.Errorf("%w: %s", ErrDuplicateCategory, c.Name)
		}
		seen[c.Name] = struct{}{}
	}
	return s, nil
}

// Encode writes s as YAML.
func Encode(w io.Writer, s model.Season) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(s); err != nil {
		return fmt.Errorf("encode series file: %w", err)
	}
	return enc.Close()
}

// Save writes s to path.
func Save(path string, s model.Season) error {
	var buf bytes.Buffer
	if err := Encode(&buf, s); err != nil {
		return err
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write series file: %w", err)
	}
	return nil
}
