package ruleset

import (
	"embed"
	"fmt"
	"io/fs"
	"os"
	"path"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed content/*.yaml
var defaultContent embed.FS

// Default returns a Registry holding the built-in variants: myz, fbl, alien,
// vae, and t2k.
//
// Postcondition: Returns a populated Registry or a non-nil error.
func Default() (*Registry, error) {
	defs, err := LoadVariantDefs(defaultContent, "content")
	if err != nil {
		return nil, err
	}
	reg := NewRegistry()
	for _, d := range defs {
		v, err := d.Build()
		if err != nil {
			return nil, err
		}
		if err := reg.Register(v); err != nil {
			return nil, err
		}
	}
	return reg, nil
}

// LoadDir builds the default Registry and overlays every variant found in the
// .yaml files of dir, replacing built-in variants with the same ID. An empty
// dir returns the defaults unchanged.
//
// Precondition: dir must be "" or a readable directory.
// Postcondition: Returns a populated Registry or a non-nil error.
func LoadDir(dir string) (*Registry, error) {
	reg, err := Default()
	if err != nil {
		return nil, err
	}
	if dir == "" {
		return reg, nil
	}
	defs, err := LoadVariantDefs(os.DirFS(dir), ".")
	if err != nil {
		return nil, err
	}
	for _, d := range defs {
		v, err := d.Build()
		if err != nil {
			return nil, err
		}
		reg.Replace(v)
	}
	return reg, nil
}

// LoadVariantDefs reads every .yaml or .yml file in dir of fsys and parses
// each as a VariantDef, in lexical file order.
//
// Postcondition: Returns all parsed definitions (may be empty) or a non-nil error.
func LoadVariantDefs(fsys fs.FS, dir string) ([]VariantDef, error) {
	files, err := yamlFiles(fsys, dir)
	if err != nil {
		return nil, err
	}
	defs := make([]VariantDef, 0, len(files))
	for _, p := range files {
		data, err := fs.ReadFile(fsys, p)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", p, err)
		}
		var d VariantDef
		if err := yaml.Unmarshal(data, &d); err != nil {
			return nil, fmt.Errorf("%w: parsing variant file %s: %v", ErrConfiguration, p, err)
		}
		defs = append(defs, d)
	}
	return defs, nil
}

func yamlFiles(fsys fs.FS, dir string) ([]string, error) {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return nil, fmt.Errorf("reading directory %s: %w", dir, err)
	}
	var paths []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		if strings.HasSuffix(name, ".yaml") || strings.HasSuffix(name, ".yml") {
			paths = append(paths, path.Join(dir, name))
		}
	}
	sort.Strings(paths)
	return paths, nil
}
