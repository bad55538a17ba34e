// README: Tariff store backed by a TOML file.
package pricing

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/BurntSushi/toml"
)

type Store struct {
	path string
}

func NewStore(path string) *Store {
	return &Store{path: path}
}

// Load reads the tariff file. A missing file yields DefaultTariff; keys the
// file leaves out keep their default values.
func (s *Store) Load() (Tariff, error) {
	t := DefaultTariff()
	if s.path == "" {
		return t, nil
	}
	raw, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return t, nil
	}
	if err != nil {
		return Tariff{}, fmt.Errorf("read tariff %s: %w", s.path, err)
	}
	return Decode(raw, t)
}

// Save writes t to the tariff file.
func (s *Store) Save(t Tariff) error {
	if err := t.Validate(); err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(t); err != nil {
		return fmt.Errorf("encode tariff: %w", err)
	}
	return os.WriteFile(s.path, buf.Bytes(), 0o644)
}

// Decode overlays TOML data on base and validates the result. Lists and
// per-vehicle rate tables present in the file replace the base values;
// vehicle types and space counts the file leaves out keep theirs.
func Decode(raw []byte, base Tariff) (Tariff, error) {
	t := base.Clone()
	if _, err := toml.Decode(string(raw), &t); err != nil {
		return Tariff{}, fmt.Errorf("%w: %v", ErrInvalidTariff, err)
	}
	if err := t.Validate(); err != nil {
		return Tariff{}, err
	}
	return t, nil
}
