// Package classify decides whether a container has the analytical store enabled.
//
// The management API reports the retention value either at the top level of a
// container document or nested under "resource", depending on API version.
// Both locations are resolved in a fixed order and the first present,
// non-disabled value wins.
package classify

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/cosmosops/analyticalctl/internal/cosmos"
	"github.com/jmespath/go-jmespath"
)

const (
	DefaultPrimaryPath      = "analyticalStorageTtl"
	DefaultFallbackPath     = "resource.analyticalStorageTtl"
	DefaultNamePath         = "name"
	DefaultNameFallbackPath = "resource.id"

	// DisabledSentinel is the retention value meaning "analytical store off".
	DisabledSentinel Retention = "0"
)

// Retention is the canonical text of a resolved retention value.
type Retention string

func (r Retention) String() string {
	return string(r)
}

// Paths is a pair of JMESPath expressions resolved primary first.
type Paths struct {
	Primary  string
	Fallback string
}

func DefaultRetentionPaths() Paths {
	return Paths{Primary: DefaultPrimaryPath, Fallback: DefaultFallbackPath}
}

func DefaultNamePaths() Paths {
	return Paths{Primary: DefaultNamePath, Fallback: DefaultNameFallbackPath}
}

// ErrInvalidPath reports a JMESPath expression that does not compile.
type ErrInvalidPath struct {
	Path string
	Err  error
}

func (e *ErrInvalidPath) Error() string {
	return fmt.Sprintf("invalid attribute path %q: %v", e.Path, e.Err)
}

func (e *ErrInvalidPath) Unwrap() error {
	return e.Err
}

type Classifier struct {
	retention []*jmespath.JMESPath
	name      []*jmespath.JMESPath
}

// New compiles the retention and name paths. Empty fallbacks are allowed.
func New(retention, name Paths) (*Classifier, error) {
	r, err := compile(retention)
	if err != nil {
		return nil, err
	}
	n, err := compile(name)
	if err != nil {
		return nil, err
	}
	return &Classifier{retention: r, name: n}, nil
}

// Default returns a classifier using the default attribute locations.
func Default() *Classifier {
	c, err := New(DefaultRetentionPaths(), DefaultNamePaths())
	if err != nil {
		panic(err)
	}
	return c
}

func compile(p Paths) ([]*jmespath.JMESPath, error) {
	var out []*jmespath.JMESPath
	for _, expr := range []string{p.Primary, p.Fallback} {
		expr = strings.TrimSpace(expr)
		if expr == "" {
			continue
		}
		jp, err := jmespath.Compile(expr)
		if err != nil {
			return nil, &ErrInvalidPath{Path: expr, Err: err}
		}
		out = append(out, jp)
	}
	if len(out) == 0 {
		return nil, &ErrInvalidPath{Path: "", Err: fmt.Errorf("at least one path is required")}
	}
	return out, nil
}

// Enabled returns the retention value when the analytical store is on. Absent
// and disabled values are not distinguished.
func (c *Classifier) Enabled(r cosmos.Resource) (Retention, bool) {
	for _, jp := range c.retention {
		v, ok := lookup(jp, r)
		if !ok || v == DisabledSentinel {
			continue
		}
		return v, true
	}
	return "", false
}

// Name resolves the resource's name; false when no location carries one.
func (c *Classifier) Name(r cosmos.Resource) (string, bool) {
	for _, jp := range c.name {
		v, ok := lookup(jp, r)
		if ok {
			return string(v), true
		}
	}
	return "", false
}

func lookup(jp *jmespath.JMESPath, r cosmos.Resource) (Retention, bool) {
	if r == nil {
		return "", false
	}
	// jmespath only walks plain maps, not named map types
	v, err := jp.Search(map[string]any(r))
	if err != nil {
		return "", false
	}
	return canonical(v)
}

func canonical(v any) (Retention, bool) {
	var s string
	switch val := v.(type) {
	case nil:
		return "", false
	case json.Number:
		s = val.String()
	case float64:
		s = strconv.FormatFloat(val, 'f', -1, 64)
	case int:
		s = strconv.Itoa(val)
	case int64:
		s = strconv.FormatInt(val, 10)
	case string:
		s = strings.TrimSpace(val)
	case bool:
		s = strconv.FormatBool(val)
	case map[string]any, []any:
		return "", false
	default:
		s = fmt.Sprint(val)
	}
	if s == "" {
		return "", false
	}
	return Retention(s), true
}
