package scenario

import (
	"embed"
	"fmt"
	"path"
	"sort"
	"strings"

	"cashflow/pkg/errors"
)

//go:embed samples/*.yaml
var samples embed.FS

// SampleNames lists the built-in scenarios in name order.
func SampleNames() []string {
	entries, err := samples.ReadDir("samples")
	if err != nil {
		return nil
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, strings.TrimSuffix(e.Name(), ".yaml"))
	}
	sort.Strings(names)
	return names
}

// Sample loads a built-in scenario by name.
func Sample(name string) (*File, error) {
	data, err := samples.ReadFile(path.Join("samples", name+".yaml"))
	if err != nil {
		return nil, errors.Wrap(errors.ErrInvalidScenario, fmt.Sprintf("no sample named %q", name))
	}
	return Parse(data, "yaml")
}
