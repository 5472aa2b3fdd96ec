// Package armor provides armor definitions keyed by hit location and the
// ablation check that decides whether armor degrades after absorbing a hit.
package armor

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// ArmorDef defines a piece of armor loaded from YAML.
type ArmorDef struct {
	ID        string `yaml:"id"`
	Name      string `yaml:"name"`
	Rating    int    `yaml:"rating"`
	Locations []int  `yaml:"locations"` // hit-location die faces covered
}

// Validate reports an error if the ArmorDef is missing required fields or contains illegal values.
// Precondition: a is non-nil.
// Postcondition: Returns nil iff the def is well-formed.
func (a *ArmorDef) Validate() error {
	var errs []error
	if a.ID == "" {
		errs = append(errs, errors.New("id must not be empty"))
	}
	if a.Name == "" {
		errs = append(errs, errors.New("name must not be empty"))
	}
	if a.Rating < 0 {
		errs = append(errs, errors.New("rating must be >= 0"))
	}
	if len(a.Locations) == 0 {
		errs = append(errs, errors.New("locations must not be empty"))
	}
	for _, loc := range a.Locations {
		if loc < 1 || loc > 6 {
			errs = append(errs, fmt.Errorf("location %d must be within [1, 6]", loc))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("armor validation failed: %v", errs)
	}
	return nil
}

// Covers reports whether the armor protects hit location loc.
func (a *ArmorDef) Covers(loc int) bool {
	for _, l := range a.Locations {
		if l == loc {
			return true
		}
	}
	return false
}

// ForLocation returns the highest-rated armor in worn that covers loc, or nil.
func ForLocation(worn []*ArmorDef, loc int) *ArmorDef {
	var best *ArmorDef
	for _, a := range worn {
		if a.Covers(loc) && (best == nil || a.Rating > best.Rating) {
			best = a
		}
	}
	return best
}

// LoadArmors reads all .yaml files in dir and returns parsed ArmorDef slice.
// Precondition: dir must be a readable directory.
// Postcondition: Returns non-nil slice and nil error on success; all returned defs pass Validate.
func LoadArmors(dir string) ([]*ArmorDef, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("LoadArmors: cannot read directory %q: %w", dir, err)
	}

	armors := []*ArmorDef{}
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".yaml" {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("LoadArmors: cannot read file %q: %w", path, err)
		}
		var a ArmorDef
		if err := yaml.Unmarshal(data, &a); err != nil {
			return nil, fmt.Errorf("LoadArmors: cannot parse file %q: %w", path, err)
		}
		if err := a.Validate(); err != nil {
			return nil, fmt.Errorf("LoadArmors: invalid armor in %q: %w", path, err)
		}
		armors = append(armors, &a)
	}
	return armors, nil
}
