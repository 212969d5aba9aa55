package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"regexp"
	"strconv"

	"github.com/readalong-cli/readalong/constant"
	"github.com/readalong-cli/readalong/where"
	"github.com/samber/lo"
	"github.com/sirupsen/logrus"
)

// ErrInvalidValue is returned when a value does not fit its field.
var ErrInvalidValue = errors.New("invalid value")

// File is the path of the configuration file.
func File() string {
	return filepath.Join(where.Config(), constant.Readalong+".toml")
}

// Parse converts raw command line values to the type of the field's default
// and checks them.
func (f *Field) Parse(raw []string) (any, error) {
	if len(raw) == 0 {
		return nil, fmt.Errorf("%s: %w: empty", f.Key, ErrInvalidValue)
	}

	var value any
	switch f.Value.(type) {
	case string:
		value = raw[0]
	case int:
		n, err := strconv.Atoi(raw[0])
		if err != nil {
			return nil, fmt.Errorf("%s: %w: %q is not an integer", f.Key, ErrInvalidValue, raw[0])
		}
		value = n
	case bool:
		b, err := strconv.ParseBool(raw[0])
		if err != nil {
			return nil, fmt.Errorf("%s: %w: %q is not a boolean", f.Key, ErrInvalidValue, raw[0])
		}
		value = b
	case []string:
		value = raw
	default:
		return nil, fmt.Errorf("%s: unsupported type %s", f.Key, f.typeName())
	}

	if f.check != nil {
		if err := f.check(value); err != nil {
			return nil, fmt.Errorf("%s: %w: %v", f.Key, ErrInvalidValue, err)
		}
	}
	return value, nil
}

var className = regexp.MustCompile(`^-?[_a-zA-Z][_a-zA-Z0-9-]*$`)

func cssClass(v any) error {
	if !className.MatchString(v.(string)) {
		return fmt.Errorf("%q is not a class name", v)
	}
	return nil
}

func between(min, max int) func(any) error {
	return func(v any) error {
		if n := v.(int); n < min || n > max {
			return fmt.Errorf("%d is outside %d..%d", n, min, max)
		}
		return nil
	}
}

func oneOf(options ...string) func(any) error {
	return func(v any) error {
		if !lo.Contains(options, v.(string)) {
			return fmt.Errorf("%q is not one of %v", v, options)
		}
		return nil
	}
}

func nonEmpty(v any) error {
	if v.(string) == "" {
		return errors.New("must not be empty")
	}
	return nil
}

// logLevels lists the names logrus.ParseLevel accepts.
func logLevels() []string {
	names := lo.Map(logrus.AllLevels, func(l logrus.Level, _ int) string {
		return l.String()
	})
	return append(names, "warn")
}
