package api

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/talgya/guardian-sim/internal/sim"
)

// Parameter updates are validated against a JSON schema before they reach
// the engine: unknown fields and non-numeric values are rejected here, range
// clamping happens in the engine itself.
const paramsSchemaDoc = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "additionalProperties": false,
  "properties": {
    "speed_mult":       {"type": "number", "exclusiveMinimum": 0},
    "decay_mult":       {"type": "number", "exclusiveMinimum": 0},
    "danger_threshold": {"type": "number", "exclusiveMinimum": 0},
    "rescue_bonus":     {"type": "number", "exclusiveMinimum": 0}
  }
}`

var paramsSchema = jsonschema.MustCompileString("params.json", paramsSchemaDoc)

const maxBodyBytes = 64 << 10

func decodeParamsPatch(r *http.Request) (sim.TunablesPatch, error) {
	var patch sim.TunablesPatch

	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		return patch, fmt.Errorf("read body: %w", err)
	}

	var doc any
	if err := json.Unmarshal(body, &doc); err != nil {
		return patch, fmt.Errorf("invalid json: %w", err)
	}
	if err := paramsSchema.Validate(doc); err != nil {
		return patch, fmt.Errorf("invalid parameters: %w", err)
	}
	if err := json.Unmarshal(body, &patch); err != nil {
		return patch, fmt.Errorf("invalid parameters: %w", err)
	}
	return patch, nil
}
