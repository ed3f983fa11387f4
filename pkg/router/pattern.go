package router

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

// ParamType constrains and coerces a captured path segment.
type ParamType string

const (
	// ParamString accepts any non-empty segment unchanged.
	ParamString ParamType = "str"

	// ParamInt accepts a base-10 integer and stores its canonical form.
	ParamInt ParamType = "int"

	// ParamUUID accepts any UUID form understood by uuid.Parse and stores
	// the canonical lower-case hyphenated form.
	ParamUUID ParamType = "uuid"
)

// coerce converts a raw segment according to the parameter type.
func (t ParamType) coerce(raw string) (string, error) {
	switch t {
	case ParamString:
		return raw, nil
	case ParamInt:
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return "", err
		}
		return strconv.FormatInt(n, 10), nil
	case ParamUUID:
		id, err := uuid.Parse(raw)
		if err != nil {
			return "", err
		}
		return id.String(), nil
	}
	return "", fmt.Errorf("unknown parameter type %q", string(t))
}

func (t ParamType) valid() bool {
	switch t {
	case ParamString, ParamInt, ParamUUID:
		return true
	}
	return false
}

// segment is one "/"-delimited piece of a pattern.
type segment struct {
	literal string    // set for literal segments
	name    string    // set for captures
	typ     ParamType // set for captures
}

func (s segment) capture() bool {
	return s.name != ""
}

// Pattern is a parsed route pattern such as "/demo/counter/{direction:str}".
type Pattern struct {
	raw      string
	segments []segment
}

// ErrInvalidPattern is returned when a route pattern cannot be parsed.
var ErrInvalidPattern = errors.New("invalid route pattern")

// ParsePattern parses a route pattern. Patterns start with "/", contain no
// empty segments, and use {name:type} (or {name}, meaning str) for captures.
// The root pattern "/" has no segments.
func ParsePattern(raw string) (Pattern, error) {
	if !strings.HasPrefix(raw, "/") {
		return Pattern{}, fmt.Errorf("%w %q: must start with /", ErrInvalidPattern, raw)
	}

	p := Pattern{raw: raw}
	if raw == "/" {
		return p, nil
	}

	seen := make(map[string]bool)
	for _, part := range strings.Split(raw[1:], "/") {
		if part == "" {
			return Pattern{}, fmt.Errorf("%w %q: empty segment", ErrInvalidPattern, raw)
		}

		if !strings.HasPrefix(part, "{") {
			if strings.ContainsAny(part, "{}:*") {
				return Pattern{}, fmt.Errorf("%w %q: literal segment %q contains a reserved character", ErrInvalidPattern, raw, part)
			}
			p.segments = append(p.segments, segment{literal: part})
			continue
		}

		if !strings.HasSuffix(part, "}") {
			return Pattern{}, fmt.Errorf("%w %q: unterminated capture %q", ErrInvalidPattern, raw, part)
		}

		name, typ, found := strings.Cut(part[1:len(part)-1], ":")
		if !found {
			typ = string(ParamString)
		}
		if name == "" || strings.ContainsAny(name, "{}:*") {
			return Pattern{}, fmt.Errorf("%w %q: bad capture name in %q", ErrInvalidPattern, raw, part)
		}
		if !ParamType(typ).valid() {
			return Pattern{}, fmt.Errorf("%w %q: unknown parameter type %q", ErrInvalidPattern, raw, typ)
		}
		if seen[name] {
			return Pattern{}, fmt.Errorf("%w %q: duplicate capture %q", ErrInvalidPattern, raw, name)
		}
		seen[name] = true

		p.segments = append(p.segments, segment{name: name, typ: ParamType(typ)})
	}

	return p, nil
}

// String returns the pattern as written.
func (p Pattern) String() string {
	return p.raw
}

// treePath returns the pattern in httprouter syntax ("/demo/counter/:direction").
func (p Pattern) treePath() string {
	if len(p.segments) == 0 {
		return "/"
	}
	var b strings.Builder
	for _, s := range p.segments {
		b.WriteByte('/')
		if s.capture() {
			b.WriteByte(':')
			b.WriteString(s.name)
		} else {
			b.WriteString(s.literal)
		}
	}
	return b.String()
}

// segmentCount returns the number of "/"-delimited segments in a request
// path, counting empty ones. The root path has none.
func segmentCount(path string) int {
	path = strings.TrimPrefix(path, "/")
	if path == "" {
		return 0
	}
	return strings.Count(path, "/") + 1
}

// shape returns the pattern with capture names and types erased. Two patterns
// with the same shape match exactly the same paths.
func (p Pattern) shape() string {
	parts := make([]string, len(p.segments))
	for i, s := range p.segments {
		if s.capture() {
			parts[i] = "{}"
		} else {
			parts[i] = s.literal
		}
	}
	return "/" + strings.Join(parts, "/")
}

// overlaps reports whether some concrete path could match both patterns.
// Coercion failures are a 400, not a non-match, so a capture of any type
// overlaps any literal.
func (p Pattern) overlaps(q Pattern) bool {
	if len(p.segments) != len(q.segments) {
		return false
	}
	for i := range p.segments {
		a, b := p.segments[i], q.segments[i]
		if a.capture() || b.capture() {
			continue
		}
		if a.literal != b.literal {
			return false
		}
	}
	return true
}

// ParamError reports a captured segment that failed type coercion.
// The router answers it with 400 Bad Request.
type ParamError struct {
	Name  string
	Type  ParamType
	Value string
	Err   error
}

// Error implements the error interface.
func (e *ParamError) Error() string {
	return fmt.Sprintf("route parameter %q: cannot coerce %q to %s: %v", e.Name, e.Value, e.Type, e.Err)
}

// Unwrap returns the underlying coercion error.
func (e *ParamError) Unwrap() error {
	return e.Err
}

// bind coerces the values captured by the route tree.
func (p Pattern) bind(lookup func(name string) string) (map[string]string, error) {
	var params map[string]string
	for _, s := range p.segments {
		if !s.capture() {
			continue
		}
		raw := lookup(s.name)
		if raw == "" {
			return nil, errEmptyCapture
		}
		v, err := s.typ.coerce(raw)
		if err != nil {
			return nil, &ParamError{Name: s.name, Type: s.typ, Value: raw, Err: err}
		}
		if params == nil {
			params = make(map[string]string)
		}
		params[s.name] = v
	}
	return params, nil
}

var errEmptyCapture = errors.New("empty capture")
