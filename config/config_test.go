package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("TASKBOARD_API_URL", "http://api.local:8003/")
	t.Setenv("SESSION_STORE", "file")
	t.Setenv("CORS_ORIGINS", "http://a.test, http://b.test")

	require.NoError(t, LoadConfig())

	assert.Equal(t, "http://api.local:8003", AppConfig.Client.APIURL)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, AppConfig.CORSOrigins)
	assert.Equal(t, "uploads", AppConfig.UploadsDir)
}

func TestLoadConfigRejectsUnknownSessionStore(t *testing.T) {
	t.Setenv("SESSION_STORE", "cookie")
	require.Error(t, LoadConfig())
}

func TestValidateServer(t *testing.T) {
	cfg := Config{Environment: "development"}
	require.EqualError(t, cfg.ValidateServer(), "DB_PASSWORD is required")

	cfg.DBPassword = "secret"
	require.EqualError(t, cfg.ValidateServer(), "JWT_SECRET is required")

	cfg.JWTSecret = "short"
	require.NoError(t, cfg.ValidateServer())

	cfg.Environment = "production"
	require.Error(t, cfg.ValidateServer())
}

func TestMaskPassword(t *testing.T) {
	assert.Equal(t, "host=db password=***** dbname=x", maskPassword("host=db password=hunter2 dbname=x"))
	assert.Equal(t, "host=db password=*****", maskPassword("host=db password=hunter2"))
	assert.Equal(t, "host=db", maskPassword("host=db"))
}
