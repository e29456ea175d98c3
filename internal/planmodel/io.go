package planmodel

import (
	"encoding/json"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/zoeorch/zoeorch/internal/filelock"
	"github.com/zoeorch/zoeorch/internal/models"
	"github.com/zoeorch/zoeorch/internal/zoerr"
)

// Load reads a plan from path, auto-detecting YAML vs JSON by extension,
// and validates it before returning. Authoring plans as YAML is supported
// alongside the canonical JSON wire format so operators can hand-write a
// plan without fighting quoting rules.
func Load(path string) (*models.Plan, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, zoerr.InvalidPlan("plan file not found: %s", path)
	}

	var p models.Plan
	if isYAMLPath(path) {
		if err := yaml.Unmarshal(raw, &p); err != nil {
			return nil, zoerr.InvalidPlan("plan file is not valid YAML: %s", path)
		}
	} else {
		if err := ValidateSchema(raw); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(raw, &p); err != nil {
			return nil, zoerr.InvalidPlan("plan file is not valid JSON: %s", path)
		}
	}
	if err := Validate(&p); err != nil {
		return nil, err
	}
	return &p, nil
}

func isYAMLPath(path string) bool {
	n := len(path)
	return n >= 5 && (path[n-5:] == ".yaml") || (n >= 4 && path[n-4:] == ".yml")
}

// WriteJSON serializes the plan as indented JSON and writes it atomically
// (temp file in the same directory, then rename) so readers polling the
// archive never observe a partially written plan.
func WriteJSON(p *models.Plan, path string) error {
	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return err
	}
	return filelock.AtomicWrite(path, data)
}
