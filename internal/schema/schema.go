// Package schema checks the shape of request bodies against JSON schemas
// before they are decoded into request structs.
//
// The schemas are embedded from schemas/. Files at the top level are the
// per-endpoint schemas; files under schemas/refs/ are shared fragments (the
// token object, the metadata object) that top-level schemas $ref by $id.
package schema

import (
	"embed"
	"fmt"
	"strings"

	"github.com/goccy/go-json"
	"github.com/xeipuuv/gojsonschema"

	"github.com/sakif/ess-backend/internal/apperror"
)

const base = "https://ess-backend/schemas/"

// Schema ids, one per request shape.
const (
	Credentials   = base + "credentials.json"
	Query         = base + "query.json"
	Food          = base + "food.json"
	Commute       = base + "commute.json"
	Journal       = base + "journal.json"
	Water         = base + "water.json"
	Showers       = base + "showers.json"
	Entertainment = base + "entertainment.json"
	Health        = base + "health.json"
)

// NoJSON is the message for a body that is absent, unparseable or not an
// object.
const NoJSON = "Where's the JSON?"

//go:embed schemas
var embedded embed.FS

// Validator validates JSON documents against a set of compiled schemas.
type Validator struct {
	schemas map[string]*gojsonschema.Schema
}

// New returns a Validator loaded with the embedded request schemas.
func New() (*Validator, error) {
	return NewValidatorFromFS(embedded, "schemas")
}

// NewValidatorFromFS compiles every .json file in dir as a top-level schema,
// with the files in dir/refs available as references.
func NewValidatorFromFS(fsys embed.FS, dir string) (*Validator, error) {
	readDir := func(dir string) ([]string, error) {
		var strs []string
		files, err := fsys.ReadDir(dir)
		if err != nil {
			return nil, fmt.Errorf("schema: reading dir %s: %w", dir, err)
		}
		for _, f := range files {
			if f.IsDir() || !strings.HasSuffix(f.Name(), ".json") {
				continue
			}
			b, err := fsys.ReadFile(dir + "/" + f.Name())
			if err != nil {
				return nil, fmt.Errorf("schema: reading %s: %w", f.Name(), err)
			}
			strs = append(strs, string(b))
		}
		return strs, nil
	}

	schemas, err := readDir(dir)
	if err != nil {
		return nil, err
	}
	refs, err := readDir(dir + "/refs")
	if err != nil {
		return nil, err
	}
	return NewValidator(schemas, refs)
}

// NewValidator compiles schemas, each of which must carry an $id. refs may be
// referenced from schemas but are not validated against directly.
func NewValidator(schemas, refs []string) (*Validator, error) {
	v := &Validator{schemas: make(map[string]*gojsonschema.Schema, len(schemas))}

	for _, str := range schemas {
		var head struct {
			ID string `json:"$id"`
		}
		if err := json.Unmarshal([]byte(str), &head); err != nil {
			return nil, fmt.Errorf("schema: parse error in schema: %w", err)
		}
		if head.ID == "" {
			return nil, fmt.Errorf("schema: schema does not contain $id: %q", str)
		}

		sl := gojsonschema.NewSchemaLoader()
		for _, ref := range refs {
			if err := sl.AddSchemas(gojsonschema.NewStringLoader(ref)); err != nil {
				return nil, fmt.Errorf("schema: adding ref: %w", err)
			}
		}
		compiled, err := sl.Compile(gojsonschema.NewStringLoader(str))
		if err != nil {
			return nil, fmt.Errorf("schema: compiling %s: %w", head.ID, err)
		}
		v.schemas[head.ID] = compiled
	}
	return v, nil
}

// HasSchema reports whether id is known.
func (v *Validator) HasSchema(id string) bool {
	_, ok := v.schemas[id]
	return ok
}

// Validate checks body against the schema id. A document that does not
// conform yields an *apperror.AppError describing the first problem:
//
//	Where's the JSON?                  body empty, malformed or not an object
//	Missing required field: content.name
//	Invalid field: content.calories    present with the wrong type
//
// An unknown id is a programming error and is returned as a plain error.
func (v *Validator) Validate(id string, body []byte) error {
	s, ok := v.schemas[id]
	if !ok {
		return fmt.Errorf("schema: there is no schema %s", id)
	}

	if len(body) == 0 {
		return apperror.ValidationFailed("", NoJSON)
	}
	result, err := s.Validate(gojsonschema.NewBytesLoader(body))
	if err != nil {
		// The loader failed to parse the document.
		return apperror.ValidationFailed("", NoJSON)
	}
	if result.Valid() {
		return nil
	}
	return describe(result.Errors()[0])
}

func describe(e gojsonschema.ResultError) error {
	path := e.Field()
	if path == gojsonschema.STRING_CONTEXT_ROOT {
		path = ""
	}

	if e.Type() == "required" {
		if prop, ok := e.Details()["property"].(string); ok && !strings.HasSuffix(path, prop) {
			path = join(path, prop)
		}
		return apperror.MissingField(path)
	}

	if path == "" {
		return apperror.ValidationFailed("", NoJSON)
	}
	return apperror.ValidationFailed(path, "Invalid field: "+path)
}

func join(parent, child string) string {
	if parent == "" {
		return child
	}
	return parent + "." + child
}
