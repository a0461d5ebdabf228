package form

import (
	"net/url"

	"github.com/lirany1/stress-insight/pkg/models"
)

// Source is anything that can report the current value of a named field.
// url.Values satisfies it, so a parsed request form can be passed directly.
type Source interface {
	Get(key string) string
}

// Collect snapshots the recognized fields from src. Values are taken verbatim;
// a field missing from src is carried as "".
func Collect(src Source) models.FormInput {
	input := make(models.FormInput, len(models.FieldNames))
	for _, name := range models.FieldNames {
		if src == nil {
			input[name] = ""
			continue
		}
		input[name] = src.Get(name)
	}
	return input
}

// FromMap builds a Source from a plain map, e.g. values gathered from CLI flags.
func FromMap(values map[string]string) Source {
	src := url.Values{}
	for key, value := range values {
		src.Set(key, value)
	}
	return src
}
