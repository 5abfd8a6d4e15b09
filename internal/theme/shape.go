package theme

// sections maps each top-level JSON Resume array to the fields of its items
// that hold arrays.
var sections = map[string][]string{
	"work":         {"highlights"},
	"volunteer":    {"highlights"},
	"education":    {"courses"},
	"awards":       nil,
	"certificates": nil,
	"publications": nil,
	"skills":       {"keywords"},
	"languages":    nil,
	"interests":    {"keywords"},
	"references":   nil,
	"projects":     {"highlights", "keywords", "roles"},
}

// List returns v when it is a JSON array and nil otherwise, so ranging over
// a malformed field renders nothing.
func List(v interface{}) []interface{} {
	l, _ := v.([]interface{})
	return l
}

// Object returns v when it is a JSON object and nil otherwise.
func Object(v interface{}) map[string]interface{} {
	m, _ := v.(map[string]interface{})
	return m
}

// conform returns a copy of resume in which every field the built-in themes
// range over or descend into has the JSON Resume shape. Values of the wrong
// type become empty; array items that are not objects are dropped. resume
// itself is not modified.
func conform(resume map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(resume))
	for k, v := range resume {
		out[k] = v
	}
	if v, ok := out["basics"]; ok {
		out["basics"] = conformBasics(v)
	}
	for name, nested := range sections {
		if v, ok := out[name]; ok {
			out[name] = objects(v, nested)
		}
	}
	return out
}

func conformBasics(v interface{}) map[string]interface{} {
	b := Object(v)
	if b == nil {
		return nil
	}
	out := copyObject(b)
	if loc, ok := out["location"]; ok {
		out["location"] = Object(loc)
	}
	if p, ok := out["profiles"]; ok {
		out["profiles"] = objects(p, nil)
	}
	return out
}

// objects keeps the object items of v, with each nested field forced to a list.
func objects(v interface{}, nested []string) []interface{} {
	items := List(v)
	out := make([]interface{}, 0, len(items))
	for _, it := range items {
		m := Object(it)
		if m == nil {
			continue
		}
		m = copyObject(m)
		for _, f := range nested {
			if x, ok := m[f]; ok {
				m[f] = List(x)
			}
		}
		out = append(out, m)
	}
	return out
}

func copyObject(m map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
