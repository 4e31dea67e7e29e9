package main

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"

	"shorturl/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// execute runs shorturlctl with args and returns what it printed to stdout
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func setupEnv(t *testing.T) {
	t.Helper()
	t.Setenv("STORAGE_DRIVER", "sqlite")
	t.Setenv("SQLITE_PATH", filepath.Join(t.TempDir(), "shorturl.db"))
	t.Setenv("BASE_URL", "https://sho.rt/")
	t.Setenv("REDIS_ENABLED", "false")
}

func TestInit(t *testing.T) {
	setupEnv(t)

	out, err := execute(t, "init")
	require.NoError(t, err)
	assert.Equal(t, "sqlite store ready\n", out)
}

func TestShortenThenResolve(t *testing.T) {
	setupEnv(t)

	out, err := execute(t, "shorten", "https://example.com/a")
	require.NoError(t, err)
	shortURL := strings.TrimSpace(out)
	require.True(t, strings.HasPrefix(shortURL, "https://sho.rt/"), shortURL)

	id := strings.TrimPrefix(shortURL, "https://sho.rt/")
	out, err = execute(t, "resolve", id)
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/a\n", out)

	out, err = execute(t, "shorten", "--id-only", "https://example.com/a")
	require.NoError(t, err)
	assert.Equal(t, id+"\n", out)
}

func TestShortenMany(t *testing.T) {
	setupEnv(t)

	out, err := execute(t, "shorten", "--id-only", "https://example.com/a", "https://example.com/b")
	require.NoError(t, err)

	ids := strings.Fields(out)
	require.Len(t, ids, 2)
	assert.NotEqual(t, ids[0], ids[1])
}

func TestShortenInvalidURL(t *testing.T) {
	setupEnv(t)

	_, err := execute(t, "shorten", "not a url")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestResolveUnknownID(t *testing.T) {
	setupEnv(t)

	_, err := execute(t, "resolve", "zzzzzz")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestBoltDriverFlag(t *testing.T) {
	setupEnv(t)
	path := filepath.Join(t.TempDir(), "shorturl.bolt")

	out, err := execute(t, "--driver", "bolt", "--path", path, "shorten", "--id-only", "https://example.com/a")
	require.NoError(t, err)
	id := strings.TrimSpace(out)

	out, err = execute(t, "--driver", "bolt", "--path", path, "resolve", id)
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/a\n", out)
}

func TestUnknownDriver(t *testing.T) {
	setupEnv(t)

	_, err := execute(t, "--driver", "mysql", "init")
	assert.Error(t, err)
}

func TestShortenAndResolveJSON(t *testing.T) {
	setupEnv(t)

	out, err := execute(t, "shorten", "--json", "https://example.com/a")
	require.NoError(t, err)

	var shortened domain.Mapping
	require.NoError(t, json.Unmarshal([]byte(out), &shortened))
	assert.Equal(t, "https://example.com/a", shortened.URL)
	require.NotEmpty(t, shortened.ID)

	out, err = execute(t, "resolve", "--json", shortened.ID)
	require.NoError(t, err)

	var resolved domain.Mapping
	require.NoError(t, json.Unmarshal([]byte(out), &resolved))
	assert.Equal(t, shortened, resolved)
}
