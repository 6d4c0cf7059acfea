package config

import (
	"context"
	"errors"
	"fmt"
	"os"
	"reflect"
	"strconv"
	"strings"
	"time"
)

var (
	// ErrInvalidConfig is returned when the provided config is not a pointer to a struct
	// that embeds EnvConfig.
	ErrInvalidConfig = errors.New("config must be a pointer to a struct embedding EnvConfig")

	// ErrVarNotSet is returned when a required environment variable is not set and has no default.
	ErrVarNotSet = errors.New("env var not set")

	// ErrUnsupportedVarType is returned when trying to parse an environment variable
	// into an unsupported Go type.
	ErrUnsupportedVarType = errors.New("unsupported env var type")
)

//nolint:gochecknoglobals
var durationType = reflect.TypeOf(time.Duration(0))

// EnvConfig is a base type that must be embedded in configuration structs
// to enable environment variable parsing.
type EnvConfig struct {
	namespace string
}

// Namespace returns the prefix the configuration was parsed with.
func (c EnvConfig) Namespace() string {
	return c.namespace
}

//nolint:varnamelen
func getEnvConfig(cfg any) (*EnvConfig, error) {
	v := reflect.ValueOf(cfg)

	if v.Kind() != reflect.Ptr || v.Elem().Kind() != reflect.Struct {
		return nil, ErrInvalidConfig
	}

	v = v.Elem()
	t := v.Type()

	for i := range t.NumField() {
		field := t.Field(i)
		//nolint:exhaustruct,forcetypeassert
		if field.Anonymous && field.Type == reflect.TypeOf(EnvConfig{}) {
			if ev := v.Field(i); ev.CanAddr() {
				return ev.Addr().Interface().(*EnvConfig), nil
			}
		}
	}

	return nil, ErrInvalidConfig
}

// Parse loads configuration values from environment variables into the provided struct.
// The struct must embed EnvConfig and use `env` tags to specify variable names.
// The namespace parameter is used as a prefix for all environment variables; a variable
// is looked up under the full namespace first and then under each shorter prefix.
// Supports string, int, float, bool and time.Duration fields. Nested structs are supported.
func Parse(ctx context.Context, cfg any, namespace string) error {
	envConfig, err := getEnvConfig(cfg)
	if err != nil {
		return fmt.Errorf("get env config: %w", err)
	}

	envConfig.namespace = namespace

	return parse(namespace, "", cfg)
}

func parse(namespace, prefix string, c any) error {
	t := reflect.TypeOf(c).Elem()
	v := reflect.ValueOf(c).Elem()

	for i := range t.NumField() {
		field := t.Field(i)
		structField := v.Field(i)

		if field.Type.Kind() == reflect.Struct && field.Type != durationType {
			if err := parse(namespace, prefix+field.Tag.Get("envPrefix"), structField.Addr().Interface()); err != nil {
				return err
			}

			continue
		}

		if err := parseField(namespace, prefix, field, structField); err != nil {
			return fmt.Errorf("parse field: %w", err)
		}
	}

	return nil
}

// lookupEnv walks from the most to the least specific namespace prefix.
func lookupEnv(namespace, prefix, envTag string) (string, bool) {
	nsParts := strings.Split(namespace, "_")

	for i := len(nsParts); i > 0; i-- {
		envName := strings.Join(nsParts[:i], "_")

		if envName != "" {
			envName += "_"
		}

		if value, ok := os.LookupEnv(envName + prefix + envTag); ok {
			return value, true
		}
	}

	return "", false
}

func parseField(
	namespace string,
	prefix string,
	field reflect.StructField,
	structField reflect.Value,
) error {
	envTag := field.Tag.Get("env")
	if envTag == "" {
		return nil // Skip field if no env tag is set
	}

	envValue, envExists := lookupEnv(namespace, prefix, envTag)
	if !envExists {
		defaultValue, hasDefault := field.Tag.Lookup("default")
		if !hasDefault {
			return fmt.Errorf("%w: %s", ErrVarNotSet, envTag)
		}

		envValue = defaultValue
	}

	if err := setValue(structField, envValue); err != nil {
		return fmt.Errorf("%s: %w", envTag, err)
	}

	return nil
}

//nolint:cyclop
func setValue(structField reflect.Value, envValue string) error {
	if structField.Type() == durationType {
		duration, err := time.ParseDuration(envValue)
		if err != nil {
			return fmt.Errorf("invalid duration: %w", err)
		}

		structField.SetInt(int64(duration))

		return nil
	}

	//nolint:exhaustive
	switch structField.Kind() {
	case reflect.String:
		structField.SetString(envValue)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		intValue, err := strconv.ParseInt(envValue, 10, structField.Type().Bits())
		if err != nil {
			return fmt.Errorf("invalid int: %w", err)
		}

		structField.SetInt(intValue)
	case reflect.Float32, reflect.Float64:
		floatValue, err := strconv.ParseFloat(envValue, structField.Type().Bits())
		if err != nil {
			return fmt.Errorf("invalid float: %w", err)
		}

		structField.SetFloat(floatValue)
	case reflect.Bool:
		boolValue, err := strconv.ParseBool(envValue)
		if err != nil {
			return fmt.Errorf("invalid bool: %w", err)
		}

		structField.SetBool(boolValue)
	default:
		return fmt.Errorf("%w: %v", ErrUnsupportedVarType, structField.Kind())
	}

	return nil
}
