package manage

import (
	"errors"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/oshokin/gradual/internal/domain/alarm"
)

// errMalformedArg is returned for arguments not in key=value form.
var errMalformedArg = errors.New("argument must be key=value")

// ParseArgs turns key=value pairs into an argument bag. Values are read as
// YAML scalars, so "600" becomes an int and "true" a bool.
func ParseArgs(pairs []string) (alarm.Args, error) {
	if len(pairs) == 0 {
		return nil, nil
	}

	args := make(alarm.Args, len(pairs))

	for _, pair := range pairs {
		key, raw, found := strings.Cut(pair, "=")

		key = strings.TrimSpace(key)
		if !found || key == "" {
			return nil, fmt.Errorf("%w: %q", errMalformedArg, pair)
		}

		var value any
		if err := yaml.Unmarshal([]byte(raw), &value); err != nil {
			return nil, fmt.Errorf("parse value of %s: %w", key, err)
		}

		args[key] = value
	}

	return args, nil
}
