// Package schema validates specoracle's JSON documents against the embedded
// JSON schemas.
package schema

import (
	"bytes"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"

	schemafs "github.com/AndreyAkinshin/specoracle/schema"
)

// Schema file names.
const (
	ConfigSchema   = "config.schema.json"
	SnapshotSchema = "snapshot.schema.json"
	ActualSchema   = "actual.schema.json"
)

var (
	compiled    map[string]*jsonschema.Schema
	compileOnce sync.Once
	compileErr  error
)

// compileSchemas compiles all embedded schemas once.
func compileSchemas() error {
	compileOnce.Do(func() {
		compiler := jsonschema.NewCompiler()
		names := []string{ConfigSchema, SnapshotSchema, ActualSchema}

		for _, name := range names {
			data, err := schemafs.FS.ReadFile(name)
			if err != nil {
				compileErr = fmt.Errorf("read %s: %w", name, err)
				return
			}
			doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(data))
			if err != nil {
				compileErr = fmt.Errorf("unmarshal %s: %w", name, err)
				return
			}
			if err := compiler.AddResource(name, doc); err != nil {
				compileErr = fmt.Errorf("add %s resource: %w", name, err)
				return
			}
		}

		out := make(map[string]*jsonschema.Schema, len(names))
		for _, name := range names {
			sch, err := compiler.Compile(name)
			if err != nil {
				compileErr = fmt.Errorf("compile %s: %w", name, err)
				return
			}
			out[name] = sch
		}
		compiled = out
	})

	return compileErr
}

// validate checks JSON data against the named schema.
func validate(name, what string, data []byte) error {
	if err := compileSchemas(); err != nil {
		return err
	}

	v, err := jsonschema.UnmarshalJSON(bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("invalid JSON: %w", err)
	}

	if err := compiled[name].Validate(v); err != nil {
		return fmt.Errorf("%s validation failed: %w", what, err)
	}

	return nil
}

// ValidateConfig validates JSON data against the config schema.
func ValidateConfig(data []byte) error {
	return validate(ConfigSchema, "config", data)
}

// ValidateSnapshot validates JSON data against the corpus snapshot schema.
func ValidateSnapshot(data []byte) error {
	return validate(SnapshotSchema, "snapshot", data)
}

// ValidateActual validates JSON data against the actual outcome schema.
func ValidateActual(data []byte) error {
	return validate(ActualSchema, "actual outcome", data)
}
