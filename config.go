package blaze

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// DefaultOptions are sensible limits for a typical 2D scene.
var DefaultOptions = Options{
	MaxBuckets:          16,
	MaxSpritesPerBucket: 2048,
	Flags:               InitDefault,
}

// ParseOptions decodes batch options from YAML and validates them. Fields
// missing from data keep their DefaultOptions value.
//
//	max_buckets: 8
//	max_sprites_per_bucket: 1000
//	flags: no_buffering
func ParseOptions(data []byte) (Options, error) {
	opts := DefaultOptions
	if err := yaml.Unmarshal(data, &opts); err != nil {
		return Options{}, fmt.Errorf("blaze: parse options: %w", err)
	}
	if err := opts.Validate(); err != nil {
		return Options{}, err
	}
	return opts, nil
}

// LoadOptions reads and parses a YAML options file.
func LoadOptions(path string) (Options, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Options{}, fmt.Errorf("blaze: read options: %w", err)
	}
	return ParseOptions(data)
}

func (f InitFlags) String() string {
	switch f {
	case InitDefault:
		return "default"
	case InitNoBuffering:
		return "no_buffering"
	default:
		return fmt.Sprintf("InitFlags(%d)", uint32(f))
	}
}

// ParseInitFlags accepts "default", "no_buffering" or a decimal bit value.
func ParseInitFlags(s string) (InitFlags, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "default":
		return InitDefault, nil
	case "no_buffering", "nobuffering", "no_triplebuffer":
		return InitNoBuffering, nil
	}
	n, err := strconv.ParseUint(s, 10, 32)
	if err != nil {
		return 0, invalidArg("unknown init flags %q", s)
	}
	return InitFlags(n), nil
}

// UnmarshalYAML lets flags be written by name or number.
func (f *InitFlags) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.ScalarNode {
		return fmt.Errorf("blaze: line %d: init flags must be a scalar", value.Line)
	}
	parsed, err := ParseInitFlags(value.Value)
	if err != nil {
		return err
	}
	*f = parsed
	return nil
}

// MarshalYAML writes flags by name.
func (f InitFlags) MarshalYAML() (any, error) {
	return f.String(), nil
}
