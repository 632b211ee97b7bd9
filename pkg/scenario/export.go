package scenario

import (
	"encoding/json"
	"fmt"

	"github.com/invopop/jsonschema"
)

// SchemaID is the canonical identifier of the scenario test spec schema.
const SchemaID = "https://github.com/ormasoftchile/mapcheck/schemas/scenario-v0.json"

// GenerateJSONSchema produces a JSON Schema document for test.yaml files.
func GenerateJSONSchema() ([]byte, error) {
	r := new(jsonschema.Reflector)
	s := r.Reflect(&TestSpec{})
	s.ID = SchemaID
	s.Title = "mapcheck scenario test spec v0"
	s.Description = "Expectations for one golden scenario directory"

	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal scenario schema: %w", err)
	}
	return data, nil
}
