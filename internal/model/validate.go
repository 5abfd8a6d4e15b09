package model

import (
	_ "embed"
	"errors"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

//go:embed schema/resume.schema.json
var resumeSchema []byte

// ValidationMode selects how strictly documents are checked.
type ValidationMode string

const (
	// ModeSchema validates against the embedded JSON Resume schema.
	ModeSchema ValidationMode = "schema"
	// ModeBasic only checks the handful of fields the service relies on.
	ModeBasic ValidationMode = "basic"
)

// ErrMissingResume is the single error reported for an absent document.
const ErrMissingResume = "Resume data is required"

var (
	ErrUnknownMode   = errors.New("unknown validation mode")
	ErrSchemaCompile = errors.New("failed to compile resume schema")
	ErrSchemaRun     = errors.New("schema validation could not run")
)

// Result is the outcome of validating one document.
type Result struct {
	Valid  bool     `json:"valid"`
	Errors []string `json:"errors"`
}

// Validator checks a decoded JSON payload. A non-nil error means the check
// itself failed, not that the document is invalid.
type Validator interface {
	Validate(doc interface{}) (Result, error)
}

// ResumeValidator applies the skip flag, the basic field checks and, when a
// schema is configured, the full schema check.
type ResumeValidator struct {
	mode   ValidationMode
	schema *gojsonschema.Schema
}

var _ Validator = (*ResumeValidator)(nil)

// ParseMode normalizes a configured mode name. Empty means schema.
func ParseMode(s string) (ValidationMode, error) {
	switch ValidationMode(strings.ToLower(strings.TrimSpace(s))) {
	case "", ModeSchema:
		return ModeSchema, nil
	case ModeBasic:
		return ModeBasic, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownMode, s)
	}
}

// NewValidator builds a validator for mode. The schema is compiled once here
// so a broken schema fails at startup rather than per request.
func NewValidator(mode ValidationMode) (*ResumeValidator, error) {
	v := &ResumeValidator{mode: mode}
	switch mode {
	case ModeBasic:
		return v, nil
	case ModeSchema:
		schema, err := gojsonschema.NewSchema(gojsonschema.NewBytesLoader(resumeSchema))
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrSchemaCompile, err)
		}
		v.schema = schema
		return v, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownMode, mode)
	}
}

// Mode returns the configured validation mode.
func (v *ResumeValidator) Mode() ValidationMode { return v.mode }

// Validate checks doc. In schema mode the schema errors replace the basic
// ones entirely.
func (v *ResumeValidator) Validate(doc interface{}) (Result, error) {
	r, ok := AsResume(doc)
	if ok && r.SkipValidation() {
		return Result{Valid: true, Errors: []string{}}, nil
	}
	if !ok {
		return Result{Valid: false, Errors: []string{ErrMissingResume}}, nil
	}

	if v.schema == nil {
		basic := basicErrors(r)
		return Result{Valid: len(basic) == 0, Errors: basic}, nil
	}

	res, err := v.schema.Validate(gojsonschema.NewGoLoader(map[string]interface{}(r)))
	if err != nil {
		return Result{}, fmt.Errorf("%w: %v", ErrSchemaRun, err)
	}
	if res.Valid() {
		return Result{Valid: true, Errors: []string{}}, nil
	}
	msgs := make([]string, 0, len(res.Errors()))
	for _, e := range res.Errors() {
		msgs = append(msgs, e.String())
	}
	if len(msgs) == 0 {
		msgs = append(msgs, "Schema validation failed")
	}
	return Result{Valid: false, Errors: msgs}, nil
}

func basicErrors(r Resume) []string {
	errs := []string{}

	if basics := r["basics"]; !present(basics) {
		errs = append(errs, "basics section is required")
	} else {
		b, _ := basics.(map[string]interface{})
		if !present(b["name"]) {
			errs = append(errs, "basics.name is required")
		}
		if !present(b["email"]) {
			errs = append(errs, "basics.email is required")
		}
	}

	if w := r["work"]; present(w) && !isArray(w) {
		errs = append(errs, "work must be an array")
	}
	if e := r["education"]; present(e) && !isArray(e) {
		errs = append(errs, "education must be an array")
	}
	return errs
}
