package content

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/tibiaserver/server/internal/worldstate"
)

type zoneEntry struct {
	Name       string `yaml:"name"`
	MinX       uint16 `yaml:"min_x"`
	MaxX       uint16 `yaml:"max_x"`
	MinY       uint16 `yaml:"min_y"`
	MaxY       uint16 `yaml:"max_y"`
	MinZ       uint8  `yaml:"min_z"`
	MaxZ       uint8  `yaml:"max_z"`
	Protection bool   `yaml:"protection"`
	NoLogout   bool   `yaml:"no_logout"`
}

type mapIndexFile struct {
	Zones []zoneEntry `yaml:"zones"`
}

// MapIndex is the loaded set of protection/no-logout rectangles a world
// seeds its tiles from at startup, grounded on the donor's MapDataTable's
// map_list.yaml (per-map metadata file) but narrowed to the zone flags
// model.Tile actually carries (Protection, NoLogout) rather than the
// donor's full passability/zone-byte tile grid, since tile geometry itself
// is an out-of-scope content concern here (spec.md §1).
type MapIndex struct {
	zones []zoneEntry
}

// Count reports how many zone rectangles were loaded.
func (m *MapIndex) Count() int {
	return len(m.zones)
}

// SeedInto registers every loaded zone on w, so newly-created tiles within
// a zone's bounds pick up its Protection/NoLogout flags.
func (m *MapIndex) SeedInto(w *worldstate.World) {
	for _, z := range m.zones {
		w.SeedZone(worldstate.ZoneRect{
			MinX: z.MinX, MaxX: z.MaxX,
			MinY: z.MinY, MaxY: z.MaxY,
			MinZ: z.MinZ, MaxZ: z.MaxZ,
			Protection: z.Protection,
			NoLogout:   z.NoLogout,
		})
	}
}

// LoadMapIndex reads one zone-list YAML file into a MapIndex.
func LoadMapIndex(path string) (*MapIndex, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("content: read map index: %w", err)
	}
	var f mapIndexFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("content: parse map index: %w", err)
	}
	return &MapIndex{zones: f.Zones}, nil
}
