package hcl_adapter

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/vk/sosgridgo/internal/config"
	"github.com/vk/sosgridgo/internal/ctxlog"
	"github.com/vk/sosgridgo/internal/fsutil"
)

// Loader is the HCL-specific implementation of the config.Loader interface.
type Loader struct{}

// NewLoader creates a new HCL configuration loader.
func NewLoader() *Loader {
	return &Loader{}
}

// fileRoot is a struct used to decode all possible top-level blocks from any file.
type fileRoot struct {
	Settings     *Settings      `hcl:"settings,block"`
	RegionSets   []*RegionSet   `hcl:"region_set,block"`
	IntervalSets []*IntervalSet `hcl:"interval_set,block"`
	Scenarios    []*Scenario    `hcl:"scenario,block"`
	SectorModels []*SectorModel `hcl:"sector_model,block"`
	SosModels    []*SosModel    `hcl:"sos_model,block"`
	Narratives   []*Narrative   `hcl:"narrative,block"`
	ModelRuns    []*ModelRun    `hcl:"model_run,block"`
}

// Load orchestrates the entire HCL configuration loading process. It is
// agnostic to the origin of the paths and parses any valid block from any file.
func (l *Loader) Load(ctx context.Context, paths ...string) (*config.Model, config.Converter, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("HCL loader started.", "path_count", len(paths))

	model := &config.Model{}
	names := newNameIndex()

	hclFiles, err := l.findAllHCLFiles(paths)
	if err != nil {
		return nil, nil, err
	}
	logger.Debug("Discovered HCL files.", "count", len(hclFiles))

	parser := hclparse.NewParser()

	for _, file := range hclFiles {
		hclFile, diags := parser.ParseHCLFile(file)
		if diags.HasErrors() {
			return nil, nil, fmt.Errorf("failed to parse HCL file %s: %w", file, diags)
		}

		var root fileRoot
		diags = gohcl.DecodeBody(hclFile.Body, nil, &root)
		if diags.HasErrors() {
			return nil, nil, fmt.Errorf("failed to decode HCL file %s: %w", file, diags)
		}

		if err := l.merge(ctx, model, names, &root); err != nil {
			return nil, nil, fmt.Errorf("in %s: %w", file, err)
		}
	}

	logger.Debug("HCL loading complete.",
		"region_sets", len(model.RegionSets),
		"interval_sets", len(model.IntervalSets),
		"scenarios", len(model.Scenarios),
		"sector_models", len(model.SectorModels),
		"sos_models", len(model.SosModels),
		"model_runs", len(model.ModelRuns),
	)
	return model, NewConverter(), nil
}

// merge translates all blocks of one file into the model.
func (l *Loader) merge(ctx context.Context, model *config.Model, names *nameIndex, root *fileRoot) error {
	if root.Settings != nil && root.Settings.BaseYear != 0 {
		if model.BaseYear != 0 && model.BaseYear != root.Settings.BaseYear {
			return fmt.Errorf("conflicting base_year %d, already set to %d", root.Settings.BaseYear, model.BaseYear)
		}
		model.BaseYear = root.Settings.BaseYear
	}

	for _, rs := range root.RegionSets {
		if err := names.claim("region_set", rs.Name); err != nil {
			return err
		}
		model.RegionSets = append(model.RegionSets, translateRegionSet(rs))
	}
	for _, is := range root.IntervalSets {
		if err := names.claim("interval_set", is.Name); err != nil {
			return err
		}
		model.IntervalSets = append(model.IntervalSets, translateIntervalSet(is))
	}
	// Scenarios, sector models and composites share one namespace because
	// a composite refers to its children by name.
	for _, s := range root.Scenarios {
		if err := names.claim("model", s.Name); err != nil {
			return err
		}
		model.Scenarios = append(model.Scenarios, translateScenario(s))
	}
	for _, s := range root.SectorModels {
		if err := names.claim("model", s.Name); err != nil {
			return err
		}
		model.SectorModels = append(model.SectorModels, l.translateSectorModel(ctx, s))
	}
	for _, s := range root.SosModels {
		if err := names.claim("model", s.Name); err != nil {
			return err
		}
		model.SosModels = append(model.SosModels, translateSosModel(s))
	}
	for _, n := range root.Narratives {
		if err := names.claim("narrative", n.Name); err != nil {
			return err
		}
		model.Narratives = append(model.Narratives, translateNarrative(n))
	}
	for _, r := range root.ModelRuns {
		if err := names.claim("model_run", r.Name); err != nil {
			return err
		}
		model.ModelRuns = append(model.ModelRuns, translateModelRun(r))
	}
	return nil
}

// nameIndex tracks names already used per namespace across files.
type nameIndex struct {
	seen map[string]map[string]struct{}
}

func newNameIndex() *nameIndex {
	return &nameIndex{seen: make(map[string]map[string]struct{})}
}

func (n *nameIndex) claim(kind, name string) error {
	if n.seen[kind] == nil {
		n.seen[kind] = make(map[string]struct{})
	}
	if _, ok := n.seen[kind][name]; ok {
		return fmt.Errorf("duplicate %s %q", kind, name)
	}
	n.seen[kind][name] = struct{}{}
	return nil
}

// findAllHCLFiles walks all given paths and returns a flat list of all .hcl files found.
func (l *Loader) findAllHCLFiles(paths []string) ([]string, error) {
	var allFiles []string
	seen := make(map[string]struct{})

	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			if os.IsNotExist(err) {
				continue // It's not an error if a configured path doesn't exist.
			}
			return nil, fmt.Errorf("error accessing path %s: %w", path, err)
		}

		if info.IsDir() {
			found, err := fsutil.FindFilesByExtension(path, ".hcl")
			if err != nil {
				return nil, err
			}
			for _, p := range found {
				if _, wasSeen := seen[p]; !wasSeen {
					allFiles = append(allFiles, p)
					seen[p] = struct{}{}
				}
			}
		} else if filepath.Ext(path) == ".hcl" {
			if _, wasSeen := seen[path]; !wasSeen {
				allFiles = append(allFiles, path)
				seen[path] = struct{}{}
			}
		}
	}
	return allFiles, nil
}
