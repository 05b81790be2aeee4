package devfields

import (
	"os"

	"github.com/BurntSushi/toml"

	"trainload/internal/trainerr"
)

// LoadFile parses a catalog document from path and layers it onto r.
func (r *Registry) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return trainerr.Wrap(trainerr.KindConfig, err, "read developer-field catalog "+path)
	}
	var doc CatalogDocument
	if _, err := toml.Decode(string(data), &doc); err != nil {
		return trainerr.Wrap(trainerr.KindConfig, err, "parse developer-field catalog "+path)
	}
	return r.Layer(doc)
}

// LoadFiles loads and layers multiple catalogs in order, so later files win
// ties per the last-writer-wins contract.
func (r *Registry) LoadFiles(paths ...string) error {
	for _, p := range paths {
		if err := r.LoadFile(p); err != nil {
			return err
		}
	}
	return nil
}
