package remote

import (
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/marcus/mfx/internal/models"
)

// Fixture is the YAML layout that seeds Memory backends:
//
//	profiles:
//	  zosmf:
//	    datasets:
//	      - {path: USER.PDS, tag: pds}
//	      - {path: USER.PDS(MEM1), tag: member, data: "..."}
//	    uss:
//	      - {path: /u/user/a.txt, tag: textFile}
type Fixture struct {
	Profiles map[string]map[string][]Object `yaml:"profiles"`
}

// LoadFixtureFile reads a fixture and returns one backend per schema
func LoadFixtureFile(path string) (map[models.Schema]*Memory, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return LoadFixture(f)
}

// LoadFixture decodes a fixture from r
func LoadFixture(r io.Reader) (map[models.Schema]*Memory, error) {
	var fx Fixture
	if err := yaml.NewDecoder(r).Decode(&fx); err != nil && err != io.EOF {
		return nil, fmt.Errorf("decode fixture: %w", err)
	}

	backends := make(map[models.Schema]*Memory, len(models.AllSchemas))
	for _, s := range models.AllSchemas {
		backends[s] = NewMemory(s)
	}
	for profile, bySchema := range fx.Profiles {
		for name, objs := range bySchema {
			schema, err := models.ParseSchema(name)
			if err != nil {
				return nil, fmt.Errorf("profile %s: %w", profile, err)
			}
			for _, o := range objs {
				if o.Path == "" {
					return nil, fmt.Errorf("profile %s: %s object without path", profile, schema)
				}
				backends[schema].Put(profile, o)
			}
		}
	}
	return backends, nil
}
