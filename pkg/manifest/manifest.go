// Package manifest loads the battle manifest consumed by the batch driver
// and writes the results summary it produces. The manifest is validated
// against a JSON schema before use, so a malformed file fails loudly
// instead of producing a half-run tournament.
package manifest

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// Battle is one manifest entry: the robots to pit against each other and
// how many battles to run.
type Battle struct {
	Robots     []string `json:"robots"`
	NumBattles int      `json:"num_battles"`
}

// Manifest is the battles.json top level.
type Manifest struct {
	Battles []Battle `json:"battles"`
}

const schemaJSON = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "required": ["battles"],
  "properties": {
    "battles": {
      "type": "array",
      "minItems": 1,
      "items": {
        "type": "object",
        "required": ["robots"],
        "properties": {
          "robots": {
            "type": "array",
            "minItems": 2,
            "maxItems": 5,
            "items": {"type": "string", "minLength": 1}
          },
          "num_battles": {"type": "integer", "minimum": 1}
        }
      }
    }
  }
}`

var schema = jsonschema.MustCompileString("battles.schema.json", schemaJSON)

// Load reads and validates a battles.json manifest. Entries without
// num_battles default to 1.
func Load(path string) (*Manifest, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(path, raw)
}

// Parse validates and decodes manifest bytes.
func Parse(name string, raw []byte) (*Manifest, error) {
	var generic interface{}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	if err := dec.Decode(&generic); err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	if err := schema.Validate(generic); err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}

	var m Manifest
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	for i := range m.Battles {
		if m.Battles[i].NumBattles == 0 {
			m.Battles[i].NumBattles = 1
		}
	}
	return &m, nil
}

// ResultValues carries the per-robot tallies of one manifest entry.
type ResultValues struct {
	GamesWon []int `json:"games_won"`
}

// Result is the outcome summary for one manifest entry, in the shape the
// ranking tooling consumes.
type Result struct {
	Robots     []string     `json:"robots"`
	NumBattles int          `json:"num_battles"`
	Values     ResultValues `json:"values"`
}

// WriteResults writes the results summary as indented JSON.
func WriteResults(path string, results []Result) error {
	out, err := json.MarshalIndent(results, "", "  ")
	if err != nil {
		return err
	}
	out = append(out, '\n')
	return os.WriteFile(path, out, 0o644)
}
