package categorize

import (
	"os"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

// Zone is a named keyword set matched as address substrings.
type Zone struct {
	Name     string   `yaml:"name"`
	Keywords []string `yaml:"keywords"`
}

// ZonesFile overrides the built-in area definitions.
type ZonesFile struct {
	RemoteLeisure Zone   `yaml:"remote_leisure"`
	LocalMetro    Zone   `yaml:"local_metro"`
	SpecialZones  []Zone `yaml:"special_zones"`
}

// DefaultSpecialZones returns the built-in special zones tracked by the
// weekly aggregator.
func DefaultSpecialZones() []Zone {
	return []Zone{
		{Name: "Portland", Keywords: []string{"portland", " or ", "oregon", "beaverton", "tigard", "gresham", "hillsboro"}},
		{Name: "Spokane", Keywords: []string{"spokane", "spokane valley", "liberty lake"}},
	}
}

// LoadZones reads a zones override file.
func LoadZones(path string) (*ZonesFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "categorize: read zones %s", path)
	}
	var zf ZonesFile
	if err := yaml.Unmarshal(data, &zf); err != nil {
		return nil, eris.Wrap(err, "categorize: parse zones")
	}
	return &zf, nil
}
