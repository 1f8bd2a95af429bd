package quill

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testConfigYAML = `
syntax: double
strictTypes: true
disabledCapabilities: [unicode]
linter: [sh, -c, "true"]
extensions: [probe]
`

func TestParseConfig(t *testing.T) {
	cfg, err := ParseConfig([]byte(testConfigYAML))
	require.NoError(t, err)
	assert.Equal(t, SyntaxDouble, cfg.Syntax)
	assert.True(t, cfg.StrictTypes)
	assert.False(t, cfg.StrictParsing)
	assert.Equal(t, []string{CapabilityUnicode}, cfg.DisabledCapabilities)
	assert.Equal(t, []string{"sh", "-c", "true"}, cfg.Linter)

	t.Run("unknown syntax", func(t *testing.T) {
		_, err := ParseConfig([]byte("syntax: klingon\n"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), ErrMsgUnknownSyntax)
	})

	t.Run("malformed yaml", func(t *testing.T) {
		_, err := ParseConfig([]byte("syntax: [double\n"))
		require.Error(t, err)
	})
}

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()

	t.Run("missing file", func(t *testing.T) {
		path := filepath.Join(dir, "missing.yaml")
		_, err := LoadConfig(path)
		require.Error(t, err)
		assert.Contains(t, err.Error(), ErrMsgConfigRead)
		requireMeta(t, err, MetaKeyPath, path)
	})

	t.Run("invalid file", func(t *testing.T) {
		path := filepath.Join(dir, "bad.yaml")
		require.NoError(t, os.WriteFile(path, []byte("strictTypes: [\n"), 0o644))
		_, err := LoadConfig(path)
		require.Error(t, err)
		assert.Contains(t, err.Error(), ErrMsgConfigParse)
	})

	t.Run("valid file", func(t *testing.T) {
		path := filepath.Join(dir, "quill.yaml")
		require.NoError(t, os.WriteFile(path, []byte(testConfigYAML), 0o644))
		cfg, err := LoadConfig(path)
		require.NoError(t, err)
		assert.Equal(t, []string{"probe"}, cfg.Extensions)
	})
}

func TestConfig_Options(t *testing.T) {
	cfg, err := ParseConfig([]byte(testConfigYAML))
	require.NoError(t, err)

	probe := &configProbe{}
	ext := probe.extension()

	t.Run("builds an engine", func(t *testing.T) {
		opts, err := cfg.Options(map[string]Extension{"probe": ext})
		require.NoError(t, err)
		engine, err := New(opts...)
		require.NoError(t, err)

		compiled, err := engine.CompileString("test", "{{probe}}{$a}")
		require.NoError(t, err)
		require.Len(t, probe.configs, 1)
		assert.Equal(t, "{{", probe.configs[0].OpenDelim)
		assert.True(t, compiled.StrictTypes)

		upper, ok := compiled.Tables.Filters.Get(FilterUpper)
		require.True(t, ok)
		assert.Equal(t, CallableKindStub, upper.Kind())
	})

	t.Run("unknown extension", func(t *testing.T) {
		_, err := cfg.Options(nil)
		require.Error(t, err)
		assert.Contains(t, err.Error(), ErrMsgConfigInvalid)
		requireMeta(t, err, MetaKeyPath, "probe")
	})

	t.Run("template directory", func(t *testing.T) {
		dir := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(dir, "page.tpl"), []byte("{$a}"), 0o644))
		cfg := &Config{TemplateDir: dir}
		opts, err := cfg.Options(nil)
		require.NoError(t, err)
		compiled, err := MustNew(opts...).Compile("page.tpl")
		require.NoError(t, err)
		assert.Equal(t, "{$a}", compiled.Source)
	})
}
