package harness

import (
	_ "embed"
	"fmt"
	"strings"
	"sync"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
	"gopkg.in/yaml.v3"
)

//go:embed schema.cue
var schemaSource string

var (
	schemaOnce sync.Once
	schemaCtx  *cue.Context
	schemaDef  cue.Value
	schemaErr  error
	schemaMu   sync.Mutex
)

func loadSchema() (*cue.Context, cue.Value, error) {
	schemaOnce.Do(func() {
		schemaCtx = cuecontext.New()
		v := schemaCtx.CompileString(schemaSource, cue.Filename("schema.cue"))
		if err := v.Err(); err != nil {
			schemaErr = fmt.Errorf("compile scenario schema: %w", err)
			return
		}
		schemaDef = v.LookupPath(cue.ParsePath("#Scenario"))
		if err := schemaDef.Err(); err != nil {
			schemaErr = fmt.Errorf("lookup #Scenario: %w", err)
		}
	})
	return schemaCtx, schemaDef, schemaErr
}

// CheckSchema validates a raw scenario document against the embedded CUE
// schema. Field types, enum values and closedness are checked here; the
// one-action-per-step rule is left to Validate.
func CheckSchema(data []byte) error {
	ctx, def, err := loadSchema()
	if err != nil {
		return err
	}

	var doc map[string]any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("failed to parse YAML: %w", err)
	}

	// cue.Context is not safe for concurrent use.
	schemaMu.Lock()
	defer schemaMu.Unlock()

	val := ctx.Encode(doc)
	if err := val.Err(); err != nil {
		return ValidationError{Field: "document", Message: err.Error(), Code: ErrSchema}
	}
	if err := def.Unify(val).Validate(cue.Concrete(true)); err != nil {
		errs := cueerrors.Errors(err)
		field := "document"
		if len(errs) > 0 {
			if path := errs[0].Path(); len(path) > 0 {
				field = strings.Join(path, ".")
			}
		}
		return ValidationError{Field: field, Message: cueerrors.Details(err, nil), Code: ErrSchema}
	}
	return nil
}
