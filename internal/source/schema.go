// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package source

import (
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// detailSchema is the minimum shape of a recipe information payload.
// Nutrition is optional here; missing facts are rejected later by the
// quality gate with a reason rather than as a malformed payload.
const detailSchema = `{
  "type": "object",
  "required": ["id", "title", "extendedIngredients"],
  "properties": {
    "id": {"type": "integer"},
    "title": {"type": "string", "minLength": 1},
    "readyInMinutes": {"type": ["integer", "null"]},
    "servings": {"type": ["integer", "null"]},
    "spoonacularScore": {"type": ["number", "null"]},
    "aggregateLikes": {"type": ["integer", "null"]},
    "extendedIngredients": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["original"],
        "properties": {"original": {"type": "string"}}
      }
    },
    "nutrition": {
      "type": "object",
      "properties": {
        "nutrients": {
          "type": "array",
          "items": {
            "type": "object",
            "required": ["name", "amount"],
            "properties": {
              "name": {"type": "string"},
              "amount": {"type": "number"}
            }
          }
        }
      }
    }
  }
}`

var compiledDetailSchema = mustSchema(detailSchema)

func mustSchema(s string) *gojsonschema.Schema {
	schema, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(s))
	if err != nil {
		panic(fmt.Sprintf("compiling detail schema: %v", err))
	}
	return schema
}

// validateDetail checks body against the detail schema.
func validateDetail(body []byte) error {
	result, err := compiledDetailSchema.Validate(gojsonschema.NewBytesLoader(body))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if result.Valid() {
		return nil
	}
	var msgs []string
	for _, e := range result.Errors() {
		msgs = append(msgs, e.String())
	}
	return fmt.Errorf("%w: %s", ErrMalformed, strings.Join(msgs, "; "))
}
