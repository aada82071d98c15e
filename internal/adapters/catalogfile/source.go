// Package catalogfile reads resource and recipe definitions from YAML files.
//
// resources.yaml:
//
//	resources:
//	  steel_ingot:
//	    name: Steel Ingot
//	    sell_price: 12
//	    external: {kind: MMOITEMS, id: STEEL}
//
// recipes.yaml:
//
//	recipes:
//	  smelt_steel:
//	    factory_type: WORKSHOP
//	    duration: 60
//	    inputs: {iron_ore: 5}
//	    outputs: {steel_ingot: 2}
//
// Each entry is checked against an embedded JSON schema; entries that fail
// are skipped with a warning and the rest still load.
package catalogfile

import (
	"bytes"
	"context"
	"embed"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"

	"github.com/factorycraft/factory-economy/internal/domain/catalog"
)

//go:embed schemas/*.json
var schemaFS embed.FS

// Source implements catalog.Source over two YAML files
type Source struct {
	resourcesPath string
	recipesPath   string

	resourceSchema *jsonschema.Schema
	recipeSchema   *jsonschema.Schema
}

// New compiles the entry schemas and returns a source for the given files
func New(resourcesPath, recipesPath string) (*Source, error) {
	resourceSchema, err := compileSchema("resource.schema.json")
	if err != nil {
		return nil, err
	}
	recipeSchema, err := compileSchema("recipe.schema.json")
	if err != nil {
		return nil, err
	}
	return &Source{
		resourcesPath:  resourcesPath,
		recipesPath:    recipesPath,
		resourceSchema: resourceSchema,
		recipeSchema:   recipeSchema,
	}, nil
}

func compileSchema(name string) (*jsonschema.Schema, error) {
	raw, err := schemaFS.ReadFile("schemas/" + name)
	if err != nil {
		return nil, fmt.Errorf("failed to read schema %s: %w", name, err)
	}
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(name, bytes.NewReader(raw)); err != nil {
		return nil, fmt.Errorf("failed to add schema %s: %w", name, err)
	}
	schema, err := compiler.Compile(name)
	if err != nil {
		return nil, fmt.Errorf("failed to compile schema %s: %w", name, err)
	}
	return schema, nil
}

type resourceDoc struct {
	Name            string       `json:"name"`
	SellPrice       float64      `json:"sell_price"`
	Material        string       `json:"material"`
	Lore            []string     `json:"lore"`
	CustomModelData int          `json:"custom_model_data"`
	External        *externalDoc `json:"external"`
}

type externalDoc struct {
	Kind string `json:"kind"`
	ID   string `json:"id"`
}

type recipeDoc struct {
	FactoryType string         `json:"factory_type"`
	Duration    int            `json:"duration"`
	Inputs      map[string]int `json:"inputs"`
	Outputs     map[string]int `json:"outputs"`
	Commands    []string       `json:"commands"`
}

func (s *Source) LoadResources(ctx context.Context) ([]catalog.ResourceEntry, []catalog.ConfigLoadWarning, error) {
	raw, err := readSection(s.resourcesPath, "resources")
	if err != nil {
		return nil, nil, err
	}

	var (
		entries  []catalog.ResourceEntry
		warnings []catalog.ConfigLoadWarning
	)
	for _, id := range sortedKeys(raw) {
		var doc resourceDoc
		if err := decodeEntry(s.resourceSchema, raw[id], &doc); err != nil {
			warnings = append(warnings, catalog.ConfigLoadWarning{Catalog: "resources", EntryID: id, Reason: err.Error()})
			continue
		}
		entry := catalog.ResourceEntry{
			ID:              id,
			DisplayName:     doc.Name,
			SellPrice:       doc.SellPrice,
			Material:        doc.Material,
			Lore:            doc.Lore,
			CustomModelData: doc.CustomModelData,
		}
		if doc.External != nil {
			entry.ExternalKind = strings.ToUpper(doc.External.Kind)
			entry.ExternalID = doc.External.ID
		}
		entries = append(entries, entry)
	}
	return entries, warnings, nil
}

func (s *Source) LoadRecipes(ctx context.Context) ([]catalog.RecipeEntry, []catalog.ConfigLoadWarning, error) {
	raw, err := readSection(s.recipesPath, "recipes")
	if err != nil {
		return nil, nil, err
	}

	var (
		entries  []catalog.RecipeEntry
		warnings []catalog.ConfigLoadWarning
	)
	for _, id := range sortedKeys(raw) {
		var doc recipeDoc
		if err := decodeEntry(s.recipeSchema, raw[id], &doc); err != nil {
			warnings = append(warnings, catalog.ConfigLoadWarning{Catalog: "recipes", EntryID: id, Reason: err.Error()})
			continue
		}
		entries = append(entries, catalog.RecipeEntry{
			ID:              id,
			FactoryType:     doc.FactoryType,
			DurationSeconds: doc.Duration,
			Inputs:          doc.Inputs,
			Outputs:         doc.Outputs,
			Commands:        doc.Commands,
		})
	}
	return entries, warnings, nil
}

// readSection returns the entries under the top-level key. A missing file
// or malformed YAML fails the whole load.
func readSection(path, key string) (map[string]any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	var doc map[string]any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	section, ok := doc[key]
	if !ok || section == nil {
		return map[string]any{}, nil
	}
	entries, ok := section.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%s: %q must be a mapping of id to entry", path, key)
	}
	return entries, nil
}

// decodeEntry validates one YAML value against schema and decodes it into out.
// Values go through JSON so the schema sees the same types encoding/json produces.
func decodeEntry(schema *jsonschema.Schema, value any, out any) error {
	if value == nil {
		value = map[string]any{}
	}
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("entry is not representable as JSON: %w", err)
	}
	var generic any
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&generic); err != nil {
		return err
	}
	if err := schema.Validate(generic); err != nil {
		return schemaError(err)
	}
	return json.Unmarshal(data, out)
}

// schemaError flattens a validation error to its most specific cause
func schemaError(err error) error {
	verr, ok := err.(*jsonschema.ValidationError)
	if !ok {
		return err
	}
	for len(verr.Causes) > 0 {
		verr = verr.Causes[0]
	}
	loc := verr.InstanceLocation
	if loc == "" {
		loc = "/"
	}
	return fmt.Errorf("%s: %s", loc, verr.Message)
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
