package store

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/modelforge-bio/modelforge/internal/model"
)

// mediaLibrary is the YAML shape of the predefined media library file.
type mediaLibrary struct {
	Media []mediaEntry `yaml:"media"`
}

type mediaEntry struct {
	ID        string                  `yaml:"id"`
	Name      string                  `yaml:"name"`
	Compounds map[string]boundsYAML   `yaml:"compounds"`
}

type boundsYAML struct {
	Lower float64 `yaml:"lower"`
	Upper float64 `yaml:"upper"`
}

// CompoundResolver validates compound identifiers against the reference
// index. Satisfied by *biochem.Index.
type CompoundResolver interface {
	GetCompound(id string) (model.Compound, error)
}

// LoadPredefinedMedia reads the media library file and stores every entry
// with Predefined set. Every compound ID in every entry must resolve in
// the reference index; a bad library file fails startup rather than
// silently loading a partial library.
func LoadPredefinedMedia(path string, resolver CompoundResolver, dst *MediaStore) (int, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("store: read media library: %w", err)
	}

	var lib mediaLibrary
	if err := yaml.Unmarshal(raw, &lib); err != nil {
		return 0, fmt.Errorf("store: parse media library: %w", err)
	}

	now := time.Now().UTC()
	for _, entry := range lib.Media {
		if entry.ID == "" {
			return 0, fmt.Errorf("store: media library entry %q has no id", entry.Name)
		}
		compounds := make(map[string]model.Bounds, len(entry.Compounds))
		for cid, b := range entry.Compounds {
			if _, err := resolver.GetCompound(cid); err != nil {
				return 0, fmt.Errorf("store: media library %q: %w", entry.ID, err)
			}
			compounds[cid] = model.Bounds{Lower: b.Lower, Upper: b.Upper}
		}
		dst.Put(model.Media{
			ID:         entry.ID,
			Name:       entry.Name,
			Compounds:  compounds,
			Predefined: true,
			CreatedAt:  now,
		})
	}
	return len(lib.Media), nil
}
