// Copyright (c) 2025 Csvflow
// Licensed under the MIT License. See LICENSE file in the project root for details.

package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func useDir(t *testing.T) string {
	t.Helper()
	d := t.TempDir()
	prev := dir
	dir = func() (string, error) { return d, nil }
	t.Cleanup(func() { dir = prev })
	return d
}

func TestLoad(t *testing.T) {
	tests := []struct {
		name  string
		files map[string]string
		env   map[string]string
		check func(t *testing.T, c Config)
	}{
		{
			name: "missing file returns defaults",
			check: func(t *testing.T, c Config) {
				assert.Equal(t, Default(), c)
			},
		},
		{
			name: "yaml file with partial settings",
			files: map[string]string{
				"config.yaml": "api_url: http://backend:9000\ntimeout: 5s\n",
			},
			check: func(t *testing.T, c Config) {
				assert.Equal(t, "http://backend:9000", c.APIURL)
				assert.Equal(t, 5*time.Second, c.Timeout)
				assert.Equal(t, DefaultTransformOp, c.TransformOp)
				assert.Equal(t, "/api/process/csv", c.Endpoints.Process)
			},
		},
		{
			name: "legacy json file",
			files: map[string]string{
				"config.json": `{"api_url":"http://legacy:8000","transform_default":"trim"}`,
			},
			check: func(t *testing.T, c Config) {
				assert.Equal(t, "http://legacy:8000", c.APIURL)
				assert.Equal(t, "trim", c.TransformOp)
				assert.Equal(t, DefaultListen, c.Web.Listen)
			},
		},
		{
			name: "yaml wins over json",
			files: map[string]string{
				"config.yaml": "api_url: http://yaml:1\n",
				"config.json": `{"api_url":"http://json:2"}`,
			},
			check: func(t *testing.T, c Config) {
				assert.Equal(t, "http://yaml:1", c.APIURL)
			},
		},
		{
			name: "environment overrides file",
			files: map[string]string{
				"config.yaml": "api_url: http://yaml:1\nlog_level: warn\n",
			},
			env: map[string]string{
				EnvAPIURL:   "http://env:3",
				EnvLogLevel: "debug",
			},
			check: func(t *testing.T, c Config) {
				assert.Equal(t, "http://env:3", c.APIURL)
				assert.Equal(t, "debug", c.LogLevel)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := useDir(t)
			for name, body := range tt.files {
				require.NoError(t, os.WriteFile(filepath.Join(d, name), []byte(body), 0o600))
			}
			t.Setenv(EnvAPIURL, "")
			t.Setenv(EnvLogLevel, "")
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			c, err := Load()
			require.NoError(t, err)
			tt.check(t, c)
		})
	}
}

func TestLoadInvalidYAML(t *testing.T) {
	d := useDir(t)
	require.NoError(t, os.WriteFile(filepath.Join(d, "config.yaml"), []byte("api_url: [\n"), 0o600))

	_, err := Load()
	assert.Error(t, err)
}

func TestLoadWithoutConfigDir(t *testing.T) {
	prev := dir
	dir = func() (string, error) { return "", errors.New("$HOME is not defined") }
	t.Cleanup(func() { dir = prev })
	t.Setenv(EnvAPIURL, "http://svc:9000")
	t.Setenv(EnvLogLevel, "")

	c, err := Load()
	require.ErrorIs(t, err, ErrNoConfigDir)
	assert.Equal(t, "http://svc:9000", c.APIURL)
	assert.Equal(t, DefaultListen, c.Web.Listen)

	assert.Error(t, Save(c))
}

func TestSaveRoundTrip(t *testing.T) {
	useDir(t)
	t.Setenv(EnvAPIURL, "")
	t.Setenv(EnvLogLevel, "")

	c := Default()
	c.APIURL = "http://saved:8000"
	c.Timeout = 12 * time.Second
	require.NoError(t, Save(c))

	got, err := Load()
	require.NoError(t, err)
	assert.Equal(t, c, got)
}
