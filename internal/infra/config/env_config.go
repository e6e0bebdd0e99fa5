// Package config fills configuration structs from environment variables.
//
// Fields carry an `env` tag with the variable name and an optional `default`.
// Nested structs add their `envPrefix` to the names of their fields. Every
// variable is looked up from the most to the least specific namespace, so with
// the namespace MAILOSAURUS_MAILADM the field `env:"LEVEL"` in a struct with
// `envPrefix:"LOG_"` reads the first set of
//
//	MAILOSAURUS_MAILADM_LOG_LEVEL
//	MAILOSAURUS_LOG_LEVEL
//	LOG_LEVEL
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

	"github.com/joho/godotenv"
)

var (
	// ErrInvalidConfig is returned when the config is not a pointer to a struct embedding EnvConfig.
	ErrInvalidConfig = errors.New("config must be a pointer to a struct embedding EnvConfig")

	// ErrVarNotSet is returned when a variable without default is not set.
	ErrVarNotSet = errors.New("env var not set")

	// ErrInvalidValue is returned when a value cannot be converted to the field type.
	ErrInvalidValue = errors.New("invalid env var value")

	// ErrUnsupportedVarType is returned for fields of a type Parse cannot fill.
	ErrUnsupportedVarType = errors.New("unsupported env var type")
)

//nolint:gochecknoglobals
var (
	envConfigType = reflect.TypeOf(EnvConfig{})
	durationType  = reflect.TypeOf(time.Duration(0))
)

// EnvConfig must be embedded in configuration structs passed to Parse.
type EnvConfig struct {
	namespace string
}

// Namespace returns the namespace the config was parsed with.
func (c EnvConfig) Namespace() string {
	return c.namespace
}

// LoadDotEnv loads variables from the given dotenv files into the process environment.
// Variables that are already set win over the files. Missing files are ignored.
func LoadDotEnv(filenames ...string) error {
	for _, filename := range filenames {
		if _, err := os.Stat(filename); errors.Is(err, os.ErrNotExist) {
			continue
		}

		if err := godotenv.Load(filename); err != nil {
			return fmt.Errorf("load %s: %w", filename, err)
		}
	}

	return nil
}

// Parse fills cfg from the environment. Supported field types are string, bool,
// signed and unsigned integers, time.Duration and []string (comma separated).
func Parse(_ context.Context, cfg any, namespace string) error {
	v := reflect.ValueOf(cfg)
	if v.Kind() != reflect.Pointer || v.Elem().Kind() != reflect.Struct {
		return fmt.Errorf("%w: got %T", ErrInvalidConfig, cfg)
	}

	envConfig, ok := embeddedEnvConfig(v.Elem())
	if !ok {
		return fmt.Errorf("%w: got %T", ErrInvalidConfig, cfg)
	}

	envConfig.namespace = namespace

	return parseStruct(namespaces(namespace), "", v.Elem())
}

func embeddedEnvConfig(v reflect.Value) (*EnvConfig, bool) {
	for i := range v.NumField() {
		if field := v.Type().Field(i); field.Anonymous && field.Type == envConfigType {
			return v.Field(i).Addr().Interface().(*EnvConfig), true //nolint:forcetypeassert
		}
	}

	return nil, false
}

// namespaces lists the variable name prefixes from the most to the least specific.
func namespaces(namespace string) []string {
	var prefixes []string

	if namespace != "" {
		parts := strings.Split(namespace, "_")
		for i := len(parts); i > 0; i-- {
			prefixes = append(prefixes, strings.Join(parts[:i], "_")+"_")
		}
	}

	return append(prefixes, "")
}

func parseStruct(prefixes []string, envPrefix string, v reflect.Value) error {
	t := v.Type()

	for i := range t.NumField() {
		field := t.Field(i)
		if !field.IsExported() || field.Type == envConfigType {
			continue
		}

		if field.Type.Kind() == reflect.Struct && field.Type != durationType {
			if err := parseStruct(prefixes, envPrefix+field.Tag.Get("envPrefix"), v.Field(i)); err != nil {
				return err
			}

			continue
		}

		name, ok := field.Tag.Lookup("env")
		if !ok || name == "" {
			continue
		}

		value, found := lookup(prefixes, envPrefix+name)
		if !found {
			def, hasDefault := field.Tag.Lookup("default")
			if !hasDefault {
				return fmt.Errorf("%w: %s%s%s", ErrVarNotSet, prefixes[0], envPrefix, name)
			}

			value = def
		}

		if err := setValue(v.Field(i), value); err != nil {
			return fmt.Errorf("%s%s: %w", envPrefix, name, err)
		}
	}

	return nil
}

func lookup(prefixes []string, name string) (string, bool) {
	for _, prefix := range prefixes {
		if value, ok := os.LookupEnv(prefix + name); ok {
			return value, true
		}
	}

	return "", false
}

func setValue(field reflect.Value, value string) error {
	//nolint:exhaustive
	switch kind := field.Kind(); {
	case field.Type() == durationType:
		d, err := time.ParseDuration(value)
		if err != nil {
			return errors.Join(ErrInvalidValue, err)
		}

		field.SetInt(int64(d))
	case kind == reflect.String:
		field.SetString(value)
	case kind == reflect.Bool:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return errors.Join(ErrInvalidValue, err)
		}

		field.SetBool(b)
	case kind >= reflect.Int && kind <= reflect.Int64:
		n, err := strconv.ParseInt(value, 10, field.Type().Bits())
		if err != nil {
			return errors.Join(ErrInvalidValue, err)
		}

		field.SetInt(n)
	case kind >= reflect.Uint && kind <= reflect.Uint64:
		n, err := strconv.ParseUint(value, 10, field.Type().Bits())
		if err != nil {
			return errors.Join(ErrInvalidValue, err)
		}

		field.SetUint(n)
	case kind == reflect.Slice && field.Type().Elem().Kind() == reflect.String:
		items := reflect.MakeSlice(field.Type(), 0, 0)

		for _, item := range strings.Split(value, ",") {
			if item = strings.TrimSpace(item); item != "" {
				items = reflect.Append(items, reflect.ValueOf(item).Convert(field.Type().Elem()))
			}
		}

		field.Set(items)
	default:
		return fmt.Errorf("%w: %s", ErrUnsupportedVarType, field.Type())
	}

	return nil
}
