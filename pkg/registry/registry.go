// pkg/registry/registry.go
package registry

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

func LoadRegistry(path string) (*ActivityRegistry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var reg ActivityRegistry
	err = json.Unmarshal(data, &reg)
	return &reg, err
}

// FindByTaskType returns the activity registered for a Zeebe task type.
func (r *ActivityRegistry) FindByTaskType(taskType string) (*Activity, bool) {
	for i := range r.Activities {
		if r.Activities[i].TaskType == taskType {
			return &r.Activities[i], true
		}
	}
	return nil, false
}

// ValidateInput checks job variables against the activity's input schema.
// Returns the list of violation messages; empty means valid. Activities
// without a schema accept anything.
func (a *Activity) ValidateInput(variables map[string]interface{}) ([]string, error) {
	if len(a.InputSchema) == 0 {
		return nil, nil
	}

	result, err := gojsonschema.Validate(
		gojsonschema.NewGoLoader(a.InputSchema),
		gojsonschema.NewGoLoader(variables),
	)
	if err != nil {
		return nil, fmt.Errorf("schema validation for %s failed: %w", a.TaskType, err)
	}

	if result.Valid() {
		return nil, nil
	}
	violations := make([]string, 0, len(result.Errors()))
	for _, desc := range result.Errors() {
		violations = append(violations, desc.String())
	}
	return violations, nil
}

// Validate sanity-checks the registry itself at startup: unique ids,
// unique task types, schemas that actually compile.
func (r *ActivityRegistry) Validate() error {
	seenIDs := make(map[string]struct{}, len(r.Activities))
	seenTasks := make(map[string]struct{}, len(r.Activities))

	for i := range r.Activities {
		a := &r.Activities[i]
		if strings.TrimSpace(a.ID) == "" {
			return fmt.Errorf("activity %d has no id", i)
		}
		if strings.TrimSpace(a.TaskType) == "" {
			return fmt.Errorf("activity %s has no task type", a.ID)
		}
		if _, dup := seenIDs[a.ID]; dup {
			return fmt.Errorf("duplicate activity id: %s", a.ID)
		}
		if _, dup := seenTasks[a.TaskType]; dup {
			return fmt.Errorf("duplicate task type: %s", a.TaskType)
		}
		seenIDs[a.ID] = struct{}{}
		seenTasks[a.TaskType] = struct{}{}

		if len(a.InputSchema) > 0 {
			if _, err := gojsonschema.NewSchema(gojsonschema.NewGoLoader(a.InputSchema)); err != nil {
				return fmt.Errorf("activity %s has an invalid input schema: %w", a.ID, err)
			}
		}
	}
	return nil
}
