package beatmap

import (
	"encoding/json"
	"fmt"

	"github.com/invopop/jsonschema"
)

// SchemaID is the canonical identifier of the beatmapset document schema.
const SchemaID = "https://github.com/ormasoftchile/mapcheck/schemas/beatmapset-v0.json"

// GenerateJSONSchema produces a JSON Schema Draft 2020-12 document from the
// Set Go types using invopop/jsonschema.
func GenerateJSONSchema() ([]byte, error) {
	r := new(jsonschema.Reflector)
	r.DoNotReference = false

	s := r.Reflect(&Set{})
	s.ID = SchemaID
	s.Title = "mapcheck beatmapset v0"
	s.Description = "Schema for parsed beatmapset YAML documents consumed by mapcheck (Draft 2020-12)"

	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal beatmapset schema: %w", err)
	}
	return data, nil
}
