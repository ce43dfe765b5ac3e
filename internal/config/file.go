package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strconv"

	"github.com/invopop/jsonschema"
	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

// Keys lists the settings that can be read and written in the config file.
var Keys = []string{"server_url", "request_timeout", "render_markdown", "debug"}

var ErrUnknownKey = errors.New("unknown config key")

// SetField writes a single key into the config file in dataDir, leaving the
// rest of the file untouched. The value is checked by loading the result
// before anything is written.
func SetField(dataDir, key, value string) error {
	if !slices.Contains(Keys, key) {
		return fmt.Errorf("%w: %s", ErrUnknownKey, key)
	}
	path := filepath.Join(dataDir, FileName)

	data, err := os.ReadFile(path)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	if len(data) == 0 {
		data = []byte("{}")
	}

	var v any = value
	switch key {
	case "render_markdown", "debug":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid value for %s: %q is not a boolean", key, value)
		}
		v = b
	}

	updated, err := sjson.SetBytes(data, key, v)
	if err != nil {
		return fmt.Errorf("failed to set %s: %w", key, err)
	}

	cfg := defaults()
	if err := json.Unmarshal(updated, cfg); err != nil {
		return fmt.Errorf("invalid value for %s: %w", key, err)
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	if err := os.MkdirAll(dataDir, 0o700); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}
	pretty, err := prettyJSON(updated)
	if err != nil {
		return err
	}
	return os.WriteFile(path, pretty, 0o600)
}

// GetField reads a single key from the config file in dataDir. The second
// result is false when the key is not set in the file.
func GetField(dataDir, key string) (string, bool, error) {
	if !slices.Contains(Keys, key) {
		return "", false, fmt.Errorf("%w: %s", ErrUnknownKey, key)
	}
	data, err := os.ReadFile(filepath.Join(dataDir, FileName))
	if errors.Is(err, fs.ErrNotExist) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to read config file: %w", err)
	}
	res := gjson.GetBytes(data, key)
	if !res.Exists() {
		return "", false, nil
	}
	return res.String(), true, nil
}

// Schema returns the JSON schema of the config file.
func Schema() ([]byte, error) {
	r := &jsonschema.Reflector{
		DoNotReference: true,
	}
	s := r.Reflect(&Config{})
	s.Title = "docchat configuration"
	return json.MarshalIndent(s, "", "  ")
}

func prettyJSON(data []byte) ([]byte, error) {
	var v map[string]any
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(out, '\n'), nil
}
