package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTempJSON(t *testing.T, data map[string]any) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "cfg.json")
	b, err := json.Marshal(data)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, b, 0o600))
	return path
}

func Test_parseJson(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })

	path := writeTempJSON(t, map[string]any{
		"database_dsn":            "postgres://u:p@localhost/arthub",
		"secret_key":              "my_secret_key",
		"token_validity_duration": "45m",
		"s3_root_user":            "user",
		"s3_root_password":        "password",
		"s3_bucket":               "bucket",
		"s3_region":               "region",
		"s3_base_endpoint":        "http://127.0.0.1:9000/",
		"gravatar_base_url":       "http://gravatar.test",
		"share_base_url":          "http://share.test/s",
		"watch_poll_interval":     "250ms",
	})

	t.Run("loads from json", func(t *testing.T) {
		os.Args = []string{"testbin", "-config", path}

		config := &Config{}
		parseJson(config)

		assert.Equal(t, "postgres://u:p@localhost/arthub", config.DatabaseDSN)
		assert.Equal(t, "my_secret_key", config.SecretKey)
		assert.Equal(t, 45*time.Minute, config.TokenValidityDuration)
		assert.Equal(t, "user", config.S3RootUser)
		assert.Equal(t, "bucket", config.S3Bucket)
		assert.Equal(t, "http://gravatar.test", config.GravatarBaseURL)
		assert.Equal(t, "http://share.test/s", config.ShareBaseURL)
		assert.Equal(t, 250*time.Millisecond, config.WatchPollInterval)
	})

	t.Run("no config flag leaves config untouched", func(t *testing.T) {
		os.Args = []string{"testbin"}

		config := &Config{SecretKey: "unchanged"}
		parseJson(config)
		assert.Equal(t, "unchanged", config.SecretKey)
	})

	t.Run("missing file panics", func(t *testing.T) {
		os.Args = []string{"testbin", "-c", filepath.Join(t.TempDir(), "absent.json")}

		config := &Config{}
		require.Panics(t, func() { parseJson(config) })
	})
}
