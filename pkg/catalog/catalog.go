// pkg/catalog/catalog.go
package catalog

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
)

func LoadCatalog(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var c Catalog
	err = json.Unmarshal(data, &c)
	return &c, err
}

func SaveCatalog(path string, c *Catalog) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(data, '\n'), 0o644)
}

// FindField returns the field with id and the step it belongs to.
func (c *Catalog) FindField(id string) (*Field, *Step, bool) {
	for i := range c.Steps {
		s := &c.Steps[i]
		for j := range s.Fields {
			if s.Fields[j].ID == id {
				return &s.Fields[j], s, true
			}
		}
	}
	return nil, nil, false
}

// Diff lists the field and document ids present in only one of the catalogs.
func Diff(a, b *Catalog) []string {
	var out []string
	seen := map[string]int{}
	collect := func(c *Catalog, bit int) {
		for _, s := range c.Steps {
			for _, f := range s.Fields {
				seen["field:"+f.ID] |= bit
			}
		}
		for _, d := range c.Documents {
			seen["document:"+d.Type] |= bit
		}
	}
	collect(a, 1)
	collect(b, 2)
	for id, bits := range seen {
		switch bits {
		case 1:
			out = append(out, fmt.Sprintf("-%s", id))
		case 2:
			out = append(out, fmt.Sprintf("+%s", id))
		}
	}
	sort.Strings(out)
	return out
}
