package codec

import (
	"errors"
	"fmt"
	"strings"

	"github.com/energylabel/elex/schemas"
	"github.com/santhosh-tekuri/jsonschema/v6"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var schemaMessages = message.NewPrinter(language.English)

var boundariesEntrySchema, weightEntrySchema = compileEntrySchemas()

// compileEntrySchemas compiles the embedded entry schemas. They ship with the
// binary, so failure is a programming error.
func compileEntrySchemas() (boundaries, weight *jsonschema.Schema) {
	c := jsonschema.NewCompiler()
	load := func(url, raw string) *jsonschema.Schema {
		doc, err := jsonschema.UnmarshalJSON(strings.NewReader(raw))
		if err != nil {
			panic(fmt.Sprintf("embedded schema %s: %v", url, err))
		}
		if err := c.AddResource(url, doc); err != nil {
			panic(fmt.Sprintf("embedded schema %s: %v", url, err))
		}
		sch, err := c.Compile(url)
		if err != nil {
			panic(fmt.Sprintf("embedded schema %s: %v", url, err))
		}
		return sch
	}
	return load("boundaries-entry.schema.json", schemas.BoundariesEntrySchemaJSON),
		load("weight-entry.schema.json", schemas.WeightEntrySchemaJSON)
}

// validateEntry returns why value violates schema, or "" when it is valid.
// Leaf causes are joined with "; " and prefixed with their JSON pointer.
func validateEntry(schema *jsonschema.Schema, value any) string {
	err := schema.Validate(value)
	if err == nil {
		return ""
	}
	var ve *jsonschema.ValidationError
	if !errors.As(err, &ve) {
		return fmt.Sprintf("schema: %v", err)
	}

	var reasons []string
	stack := []*jsonschema.ValidationError{ve}
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if len(cur.Causes) > 0 {
			for i := len(cur.Causes) - 1; i >= 0; i-- {
				stack = append(stack, cur.Causes[i])
			}
			continue
		}
		msg := cur.ErrorKind.LocalizedString(schemaMessages)
		if len(cur.InstanceLocation) > 0 {
			msg = "/" + strings.Join(cur.InstanceLocation, "/") + ": " + msg
		}
		reasons = append(reasons, msg)
	}
	return strings.Join(reasons, "; ")
}
