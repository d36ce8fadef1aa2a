package option

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/prasenjit/swagger-hub/internal/config"
)

// parameterFields maps lower-cased configuration keys to the JSON field names
// of openapi3.Parameter.
var parameterFields = map[string]string{
	"name":            "name",
	"in":              "in",
	"description":     "description",
	"style":           "style",
	"explode":         "explode",
	"allowemptyvalue": "allowEmptyValue",
	"allowreserved":   "allowReserved",
	"deprecated":      "deprecated",
	"required":        "required",
	"schema":          "schema",
	"example":         "example",
	"examples":        "examples",
	"content":         "content",
}

var parameterFlags = map[string]bool{
	"explode":         true,
	"allowEmptyValue": true,
	"allowReserved":   true,
	"deprecated":      true,
	"required":        true,
}

// ParameterBinder binds a configuration section into an OpenAPI parameter.
// Keys are matched case-insensitively; unknown keys other than "x-"
// extensions fail the bind.
type ParameterBinder struct{}

var _ config.Binder[*openapi3.Parameter] = ParameterBinder{}

// Bind implements config.Binder
func (ParameterBinder) Bind(s config.Section) (*openapi3.Parameter, error) {
	raw, ok := s.Raw().(map[string]any)
	if !ok {
		return nil, fmt.Errorf("expected a mapping, got %T", s.Raw())
	}

	fields := make(map[string]any, len(raw))
	for key, value := range raw {
		if strings.HasPrefix(strings.ToLower(key), "x-") {
			fields[key] = value
			continue
		}

		name, known := parameterFields[strings.ToLower(key)]
		if !known {
			return nil, fmt.Errorf("unknown parameter field %q", key)
		}

		if parameterFlags[name] {
			flag, err := toBool(value)
			if err != nil {
				return nil, fmt.Errorf("field %q: %w", key, err)
			}
			value = flag
		}
		fields[name] = value
	}

	data, err := json.Marshal(fields)
	if err != nil {
		return nil, err
	}

	var p openapi3.Parameter
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func toBool(value any) (bool, error) {
	switch v := value.(type) {
	case bool:
		return v, nil
	case string:
		return strconv.ParseBool(v)
	default:
		return false, fmt.Errorf("expected a boolean, got %T", value)
	}
}
