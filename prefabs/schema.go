package prefabs

import (
	"bytes"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"
)

const tuningSchemaName = "tuning.schema.json"

var (
	tuningSchemaOnce sync.Once
	tuningSchema     *jsonschema.Schema
	tuningSchemaErr  error
)

func compiledTuningSchema() (*jsonschema.Schema, error) {
	tuningSchemaOnce.Do(func() {
		data, err := PrefabsFS.ReadFile(tuningSchemaName)
		if err != nil {
			tuningSchemaErr = fmt.Errorf("prefabs: load %s: %w", tuningSchemaName, err)
			return
		}
		compiler := jsonschema.NewCompiler()
		if err := compiler.AddResource(tuningSchemaName, bytes.NewReader(data)); err != nil {
			tuningSchemaErr = fmt.Errorf("prefabs: add %s: %w", tuningSchemaName, err)
			return
		}
		tuningSchema, tuningSchemaErr = compiler.Compile(tuningSchemaName)
		if tuningSchemaErr != nil {
			tuningSchemaErr = fmt.Errorf("prefabs: compile %s: %w", tuningSchemaName, tuningSchemaErr)
		}
	})
	return tuningSchema, tuningSchemaErr
}

// ValidateTuning checks a tuning document against the embedded schema.
func ValidateTuning(name string, data []byte) error {
	schema, err := compiledTuningSchema()
	if err != nil {
		return err
	}
	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("prefabs: unmarshal %s: %w", name, err)
	}
	if doc == nil {
		doc = map[string]any{}
	}
	if err := schema.Validate(doc); err != nil {
		return fmt.Errorf("prefabs: validate %s: %w", name, err)
	}
	return nil
}
