package export

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed schemas/*.json
var schemaFS embed.FS

var (
	siteSchema    = mustCompile("site.json")
	recordsSchema = mustCompile("records.json")
	customSchema  = mustCompile("custom.json")
	mediaSchema   = mustCompile("media.json")
)

type schema struct {
	compiled *jsonschema.Schema
}

func mustCompile(name string) *schema {
	data, err := schemaFS.ReadFile("schemas/" + name)
	if err != nil {
		panic(fmt.Sprintf("export: reading embedded schema %s: %v", name, err))
	}

	compiler := jsonschema.NewCompiler()
	compiler.Draft = jsonschema.Draft2020
	if err := compiler.AddResource(name, bytes.NewReader(data)); err != nil {
		panic(fmt.Sprintf("export: adding schema %s: %v", name, err))
	}
	compiled, err := compiler.Compile(name)
	if err != nil {
		panic(fmt.Sprintf("export: compiling schema %s: %v", name, err))
	}
	return &schema{compiled: compiled}
}

// validate checks a decoded document. Errors list the failing locations.
func (s *schema) validate(doc any) error {
	err := s.compiled.Validate(doc)
	if err == nil {
		return nil
	}
	var verr *jsonschema.ValidationError
	if errors.As(err, &verr) {
		return fmt.Errorf("%s", strings.Join(leafMessages(verr), "; "))
	}
	return err
}

// leafMessages flattens a validation error tree into "location: message"
// lines, deepest causes only.
func leafMessages(err *jsonschema.ValidationError) []string {
	if len(err.Causes) == 0 {
		loc := err.InstanceLocation
		if loc == "" {
			loc = "/"
		}
		return []string{loc + ": " + err.Message}
	}
	var out []string
	for _, cause := range err.Causes {
		out = append(out, leafMessages(cause)...)
	}
	return out
}
