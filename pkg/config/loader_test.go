package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/lmskit/pkg/config"
)

type defaultsConfig struct {
	Name    string            `env:"LMSKIT_TEST_NAME" envDefault:"lms"`
	Timeout time.Duration     `env:"LMSKIT_TEST_TIMEOUT" envDefault:"30s"`
	Table   map[string]string `env:"LMSKIT_TEST_TABLE" envDefault:"ngo:NgoLms"`
}

type requiredConfig struct {
	URL string `env:"LMSKIT_TEST_REQUIRED_URL,required"`
}

type cachedConfig struct {
	Value string `env:"LMSKIT_TEST_CACHED"`
}

type fileConfig struct {
	FromFile string `env:"LMSKIT_TEST_FROM_FILE"`
	Preset   string `env:"LMSKIT_TEST_PRESET"`
}

func TestLoad(t *testing.T) {
	t.Run("applies defaults", func(t *testing.T) {
		config.ResetCache()

		var cfg defaultsConfig
		require.NoError(t, config.Load(&cfg))
		assert.Equal(t, "lms", cfg.Name)
		assert.Equal(t, 30*time.Second, cfg.Timeout)
		assert.Equal(t, map[string]string{"ngo": "NgoLms"}, cfg.Table)
	})

	t.Run("reads environment", func(t *testing.T) {
		config.ResetCache()
		t.Setenv("LMSKIT_TEST_TABLE", "ngo:NgoLms,acme:AcmeAcademy")

		var cfg defaultsConfig
		require.NoError(t, config.Load(&cfg))
		assert.Equal(t, map[string]string{"ngo": "NgoLms", "acme": "AcmeAcademy"}, cfg.Table)
	})

	t.Run("missing required value", func(t *testing.T) {
		config.ResetCache()

		var cfg requiredConfig
		err := config.Load(&cfg)
		assert.ErrorIs(t, err, config.ErrParsingConfig)
		assert.Panics(t, func() { config.MustLoad(&cfg) })
	})

	t.Run("caches per type", func(t *testing.T) {
		config.ResetCache()
		t.Setenv("LMSKIT_TEST_CACHED", "first")

		var a cachedConfig
		require.NoError(t, config.Load(&a))

		t.Setenv("LMSKIT_TEST_CACHED", "second")
		var b cachedConfig
		require.NoError(t, config.Load(&b))
		assert.Equal(t, "first", b.Value)

		config.ResetCache()
		var c cachedConfig
		require.NoError(t, config.Load(&c))
		assert.Equal(t, "second", c.Value)
	})

	t.Run("nil pointer", func(t *testing.T) {
		assert.ErrorIs(t, config.Load[defaultsConfig](nil), config.ErrNilPointer)
	})
}

func TestLoadEnv(t *testing.T) {
	config.ResetCache()
	t.Setenv("LMSKIT_TEST_PRESET", "process")
	t.Cleanup(func() { os.Unsetenv("LMSKIT_TEST_FROM_FILE") })

	require.NoError(t, config.LoadEnv("testdata/.env.test"))

	var cfg fileConfig
	require.NoError(t, config.Load(&cfg))
	assert.Equal(t, "from_file", cfg.FromFile)
	assert.Equal(t, "process", cfg.Preset)

	assert.ErrorIs(t, config.LoadEnv("testdata/missing.env"), config.ErrLoadingEnvFile)
}

func TestLoadYAML(t *testing.T) {
	t.Parallel()

	t.Run("decodes table", func(t *testing.T) {
		t.Parallel()

		var table map[string]string
		require.NoError(t, config.LoadYAML("testdata/tenants.yaml", &table))
		assert.Equal(t, map[string]string{"ngo": "NgoLms", "acme": "AcmeAcademy"}, table)
	})

	t.Run("missing file", func(t *testing.T) {
		t.Parallel()

		var table map[string]string
		err := config.LoadYAML(filepath.Join(t.TempDir(), "nope.yaml"), &table)
		assert.ErrorIs(t, err, config.ErrReadingFile)
	})

	t.Run("invalid yaml", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "bad.yaml")
		require.NoError(t, os.WriteFile(path, []byte("ngo: [unterminated"), 0o600))

		var table map[string]string
		assert.ErrorIs(t, config.LoadYAML(path, &table), config.ErrParsingFile)
	})

	t.Run("nil pointer", func(t *testing.T) {
		t.Parallel()

		assert.ErrorIs(t, config.LoadYAML[map[string]string]("testdata/tenants.yaml", nil), config.ErrNilPointer)
	})
}
