package theme

import (
	"bytes"
	"fmt"
	"html/template"
	"net/url"
	"strings"
	"time"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
	"golang.org/x/net/publicsuffix"
)

// Raw HTML in resume fields is dropped: goldmark runs without WithUnsafe.
var md = goldmark.New(
	goldmark.WithExtensions(extension.GFM),
	goldmark.WithRendererOptions(html.WithHardWraps()),
)

// Funcs is the function map every theme template is parsed with.
func Funcs() template.FuncMap {
	return template.FuncMap{
		"markdown":  Markdown,
		"domain":    DomainLabel,
		"date":      FormatDate,
		"dateRange": DateRange,
		"join":      Join,
		"initials":  Initials,
		"str":       str,
		"list":      List,
		"obj":       Object,
	}
}

func str(v interface{}) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	default:
		return fmt.Sprintf("%v", t)
	}
}

// Markdown renders a resume text field. Summaries and highlights in JSON
// Resume documents are commonly written in markdown.
func Markdown(v interface{}) template.HTML {
	s := strings.TrimSpace(str(v))
	if s == "" {
		return ""
	}
	var buf bytes.Buffer
	if err := md.Convert([]byte(s), &buf); err != nil {
		return template.HTML(template.HTMLEscapeString(s))
	}
	return template.HTML(buf.String())
}

// DomainLabel turns a URL into a short display label (eTLD+1 without www).
func DomainLabel(v interface{}) string {
	raw := strings.TrimSpace(str(v))
	if raw == "" {
		return ""
	}
	candidate := raw
	if !strings.HasPrefix(candidate, "http://") && !strings.HasPrefix(candidate, "https://") {
		candidate = "https://" + candidate
	}
	parsed, err := url.Parse(candidate)
	if err != nil || parsed.Hostname() == "" {
		return raw
	}
	host := parsed.Hostname()
	if etld, err := publicsuffix.EffectiveTLDPlusOne(host); err == nil {
		return strings.TrimPrefix(etld, "www.")
	}
	return strings.TrimPrefix(host, "www.")
}

// FormatDate renders ISO-8601 partial dates (2019-05-01, 2019-05, 2019).
// Anything else is returned unchanged.
func FormatDate(v interface{}) string {
	s := strings.TrimSpace(str(v))
	if s == "" {
		return ""
	}
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t.Format("Jan 2006")
	}
	if t, err := time.Parse("2006-01", s); err == nil {
		return t.Format("Jan 2006")
	}
	if t, err := time.Parse("2006", s); err == nil {
		return t.Format("2006")
	}
	return s
}

// DateRange formats start/end; a start without an end is ongoing.
func DateRange(start, end interface{}) string {
	from, to := FormatDate(start), FormatDate(end)
	switch {
	case from == "" && to == "":
		return ""
	case from == "":
		return to
	case to == "":
		return from + " – Present"
	default:
		return from + " – " + to
	}
}

// Join concatenates a JSON string array.
func Join(v interface{}, sep string) string {
	switch t := v.(type) {
	case []interface{}:
		parts := make([]string, 0, len(t))
		for _, it := range t {
			if s := str(it); s != "" {
				parts = append(parts, s)
			}
		}
		return strings.Join(parts, sep)
	case []string:
		return strings.Join(t, sep)
	default:
		return str(v)
	}
}

// Initials returns up to two leading letters of a name.
func Initials(v interface{}) string {
	var out []rune
	for _, f := range strings.Fields(str(v)) {
		out = append(out, []rune(strings.ToUpper(f))[0])
		if len(out) == 2 {
			break
		}
	}
	return string(out)
}
