package skill

import (
	"strings"

	"github.com/mitchellh/mapstructure"
	"github.com/pkg/errors"
)

// systemToolPrefixes are the platform-provided capability namespaces. A step or
// tool reference carrying one of these prefixes never needs a definition in the
// skill's own tool list.
var systemToolPrefixes = []string{"sys.", "ui.", "cp."}

// IsSystemTool reports whether ref names a platform-provided capability.
// Matching is a case-insensitive prefix check.
func IsSystemTool(ref string) bool {
	lower := strings.ToLower(ref)
	for _, prefix := range systemToolPrefixes {
		if strings.HasPrefix(lower, prefix) {
			return true
		}
	}
	return false
}

// Decode converts a raw JSON document into a typed Skill. Fields whose values
// do not match the declared types are left at their zero values; the returned
// error carries the mismatches but the partially decoded skill is always
// usable. Shape problems are the schema validator's job to report, so callers
// in the validation pipeline ignore the error.
func Decode(doc map[string]any) (*Skill, error) {
	if doc == nil {
		return nil, errors.New("document must be a non-nil object")
	}

	var s Skill
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:  &s,
		TagName: "json",
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to build skill decoder")
	}

	decodeErr := decoder.Decode(doc)
	return &s, decodeErr
}
