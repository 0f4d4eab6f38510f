package params

import (
	"fmt"
	"os"

	"golang.org/x/exp/maps"
	"gopkg.in/yaml.v2"
)

type (
	// Source supplies parameter overrides as raw name -> value mapping
	Source interface {
		Values() (map[string]any, error)
	}

	// Map is an in-process override source
	Map map[string]any

	yamlSource struct {
		data []byte
		path string
	}
)

func (m Map) Values() (map[string]any, error) {
	return maps.Clone(m), nil
}

// FromYAML parses overrides from a YAML mapping. JSON objects are valid YAML, so both are accepted
func FromYAML(data []byte) Source {
	return &yamlSource{data: data}
}

// FromFile reads overrides from a YAML or JSON file. The file is read when values are requested
func FromFile(path string) Source {
	return &yamlSource{path: path}
}

func (s *yamlSource) Values() (map[string]any, error) {
	data := s.data
	if s.path != "" {
		var err error
		if data, err = os.ReadFile(s.path); err != nil {
			return nil, newParameterError("", "can't read parameter file: %v", err)
		}
	}
	ret := make(map[string]any)
	if err := yaml.Unmarshal(data, &ret); err != nil {
		return nil, newParameterError("", "can't parse parameter overrides: %v", err)
	}
	for k, v := range ret {
		switch v.(type) {
		case map[any]any, []any:
			return nil, newParameterError(k, "value must be a scalar, got %T", v)
		}
	}
	return ret, nil
}

func (s *yamlSource) String() string {
	if s.path != "" {
		return fmt.Sprintf("file(%s)", s.path)
	}
	return "yaml"
}
