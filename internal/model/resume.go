package model

// Resume is a JSON Resume document (https://jsonresume.org/schema).
// Only a handful of fields are interpreted here; the rest is passed to the
// theme templates as-is.
type Resume map[string]interface{}

// Basics returns the basics section, or nil when it is missing or not an
// object.
func (r Resume) Basics() map[string]interface{} {
	b, _ := r["basics"].(map[string]interface{})
	return b
}

// Name returns basics.name when it is a string.
func (r Resume) Name() string {
	s, _ := r.Basics()["name"].(string)
	return s
}

// SkipValidation reports whether meta.skipValidation is the boolean true.
func (r Resume) SkipValidation() bool {
	meta, ok := r["meta"].(map[string]interface{})
	if !ok {
		return false
	}
	skip, ok := meta["skipValidation"].(bool)
	return ok && skip
}

// AsResume returns v as a Resume if it is a JSON object.
func AsResume(v interface{}) (Resume, bool) {
	switch t := v.(type) {
	case Resume:
		return t, t != nil
	case map[string]interface{}:
		return Resume(t), t != nil
	default:
		return nil, false
	}
}

// present mirrors JSON truthiness: null, false, 0 and "" count as absent.
func present(v interface{}) bool {
	switch t := v.(type) {
	case nil:
		return false
	case bool:
		return t
	case string:
		return t != ""
	case float64:
		return t != 0
	case int:
		return t != 0
	default:
		return true
	}
}

func isArray(v interface{}) bool {
	_, ok := v.([]interface{})
	return ok
}

// FromBody picks the document out of a request body: a truthy "resume" field
// wins, otherwise the whole body is the document.
func FromBody(body interface{}) interface{} {
	if m, ok := body.(map[string]interface{}); ok && present(m["resume"]) {
		return m["resume"]
	}
	return body
}
