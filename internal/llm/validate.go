package llm

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

// compiled caches compiled schemas by definition identity. Schemas are
// package-level values in the engine, so the cache stays small.
var compiled sync.Map // *Schema -> *jsonschema.Schema

// checkOutput rejects structured output that was cut off or does not
// satisfy schema. Text replies only fail when empty.
func checkOutput(provider string, schema *Schema, content json.RawMessage, stop string) error {
	if schema == nil {
		if len(bytes.TrimSpace(content)) == 0 {
			return &Error{Kind: KindInvalidOutput, Provider: provider, Err: errors.New("empty reply")}
		}
		return nil
	}
	if stop == stopMaxTokens {
		return &Error{Kind: KindTruncated, Provider: provider, Content: content}
	}
	if err := validateJSON(schema, content); err != nil {
		return &Error{Kind: KindInvalidOutput, Provider: provider, Content: content, Err: err}
	}
	return nil
}

func validateJSON(schema *Schema, raw json.RawMessage) error {
	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(raw))
	if err != nil {
		return fmt.Errorf("reply is not JSON: %w", err)
	}
	sch, err := compileSchema(schema)
	if err != nil {
		return err
	}
	if err := sch.Validate(doc); err != nil {
		return fmt.Errorf("reply does not match %s: %w", schema.Name, err)
	}
	return nil
}

func compileSchema(schema *Schema) (*jsonschema.Schema, error) {
	if v, ok := compiled.Load(schema); ok {
		return v.(*jsonschema.Schema), nil
	}

	// Definitions are Go literals (ints, []any); the compiler wants the
	// shapes encoding/json produces.
	data, err := json.Marshal(schema.Definition)
	if err != nil {
		return nil, fmt.Errorf("marshal schema %s: %w", schema.Name, err)
	}
	def, err := jsonschema.UnmarshalJSON(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode schema %s: %w", schema.Name, err)
	}

	c := jsonschema.NewCompiler()
	url := "mem://" + schema.Name + ".json"
	if err := c.AddResource(url, def); err != nil {
		return nil, fmt.Errorf("add schema %s: %w", schema.Name, err)
	}
	sch, err := c.Compile(url)
	if err != nil {
		return nil, fmt.Errorf("compile schema %s: %w", schema.Name, err)
	}
	compiled.Store(schema, sch)
	return sch, nil
}
