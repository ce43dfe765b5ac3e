package env

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
)

type Env interface {
	Get(key string) string
	Env() []string
	Map() map[string]string
}

type osEnv struct{}

// Get implements Env.
func (o *osEnv) Get(key string) string {
	return os.Getenv(key)
}

func (o *osEnv) Env() []string {
	env := os.Environ()
	if len(env) == 0 {
		return nil
	}
	return env
}

func (o *osEnv) Map() map[string]string {
	return toMap(os.Environ())
}

func New() Env {
	return &osEnv{}
}

type mapEnv struct {
	m map[string]string
}

// Get implements Env.
func (m *mapEnv) Get(key string) string {
	if value, ok := m.m[key]; ok {
		return value
	}
	return ""
}

// Env implements Env.
func (m *mapEnv) Env() []string {
	if len(m.m) == 0 {
		return nil
	}
	env := make([]string, 0, len(m.m))
	for k, v := range m.m {
		env = append(env, k+"="+v)
	}
	return env
}

func (m *mapEnv) Map() map[string]string {
	out := make(map[string]string, len(m.m))
	for k, v := range m.m {
		out[k] = v
	}
	return out
}

func NewFromMap(m map[string]string) Env {
	if m == nil {
		m = make(map[string]string)
	}
	return &mapEnv{m: m}
}

func toMap(pairs []string) map[string]string {
	out := make(map[string]string, len(pairs))
	for _, kv := range pairs {
		k, v, ok := strings.Cut(kv, "=")
		if !ok {
			continue
		}
		out[k] = v
	}
	return out
}

// LoadDotEnv loads a .env file from the working directory or, failing that,
// from next to the executable. Variables already set are left alone. A
// missing file is not an error.
func LoadDotEnv() error {
	envPath := ".env"
	if _, err := os.Stat(envPath); errors.Is(err, fs.ErrNotExist) {
		exePath, err := os.Executable()
		if err != nil {
			return nil
		}
		envPath = filepath.Join(filepath.Dir(exePath), ".env")
		if _, err := os.Stat(envPath); err != nil {
			return nil
		}
	}
	return godotenv.Load(envPath)
}
