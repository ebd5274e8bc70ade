// Package utils holds small parsing helpers shared across the engine,
// chiefly lenient JSON extraction from language-model output.
package utils

import (
	"encoding/json"
	"fmt"
	"regexp"

	jsonrepair "github.com/RealAlexandreAI/json-repair"
	hjson "github.com/hjson/hjson-go/v4"
)

var fencedJSON = regexp.MustCompile("(?s)```(?:json)?\\s*(.*?)\\s*```")

// StripFences removes a surrounding markdown code fence, if present. Models
// frequently wrap JSON answers in ```json blocks despite instructions.
func StripFences(input string) string {
	if m := fencedJSON.FindStringSubmatch(input); len(m) > 1 {
		return m[1]
	}
	return input
}

// ParseLenientJSON decodes model output into schema, trying progressively
// more forgiving strategies: strict JSON, automated repair (unquoted keys,
// trailing commas, unclosed brackets), then Hjson. The decoded form must
// still match the schema; nothing is invented to make a parse succeed.
func ParseLenientJSON(input string, schema interface{}) error {
	input = StripFences(input)

	if err := json.Unmarshal([]byte(input), schema); err == nil {
		return nil
	}

	if repaired, err := jsonrepair.RepairJSON(input); err == nil {
		if err := json.Unmarshal([]byte(repaired), schema); err == nil {
			return nil
		}
	}

	if err := hjson.Unmarshal([]byte(input), schema); err == nil {
		return nil
	}

	return fmt.Errorf("all JSON parsing strategies failed")
}
