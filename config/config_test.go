package config_test

import (
	"os"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vgmello/momentum-go/config"
)

// unsetEnv makes key absent for the test while still restoring whatever
// value the process had before.
func unsetEnv(t *testing.T, key string) {
	t.Helper()
	t.Setenv(key, "")
	require.NoError(t, os.Unsetenv(key))
}

func writeFile(t *testing.T, fs afero.Fs, path, content string) {
	t.Helper()
	require.NoError(t, afero.WriteFile(fs, path, []byte(content), 0o644))
}

func TestLoad_ServiceFromYAML(t *testing.T) {
	unsetEnv(t, "SERVICE_NAME")
	unsetEnv(t, "SERVICE_ENVIRONMENT")

	fs := afero.NewMemMapFs()
	writeFile(t, fs, "appsettings.yaml", `
service:
  name: billing
  environment: Production
  version: 1.4.0
connectionStrings:
  Messaging: "broker-1:9092,broker-2:9092"
`)

	cfg, err := config.Load(config.WithFs(fs))
	require.NoError(t, err)

	assert.Equal(t, "billing", cfg.Service.Name)
	assert.Equal(t, "Production", cfg.Service.Environment)
	assert.Equal(t, "1.4.0", cfg.Service.Version)
	assert.Equal(t, "broker-1:9092,broker-2:9092", cfg.Viper().GetString("connectionStrings.Messaging"))
}

func TestLoad_DefaultEnvironment(t *testing.T) {
	unsetEnv(t, "SERVICE_ENVIRONMENT")

	fs := afero.NewMemMapFs()
	writeFile(t, fs, "appsettings.yaml", `
service:
  name: billing
`)

	cfg, err := config.Load(config.WithFs(fs))
	require.NoError(t, err)
	assert.Equal(t, config.DefaultEnvironment, cfg.Service.Environment)
}

func TestLoad_EnvVarsOverrideFile(t *testing.T) {
	t.Setenv("SERVICE_NAME", "from-env")

	fs := afero.NewMemMapFs()
	writeFile(t, fs, "appsettings.yaml", `
service:
  name: from-file
`)

	cfg, err := config.Load(config.WithFs(fs))
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.Service.Name)
}

func TestLoad_EnvironmentVariablesOnly(t *testing.T) {
	t.Setenv("SERVICE_NAME", "billing")
	t.Setenv("SERVICE_ENVIRONMENT", "Staging")
	t.Setenv("CONNECTIONSTRINGS_MESSAGING", "env-broker:9092")

	cfg, err := config.Load(config.WithFs(afero.NewMemMapFs()))
	require.NoError(t, err)

	assert.Equal(t, "billing", cfg.Service.Name)
	assert.Equal(t, "Staging", cfg.Service.Environment)
	assert.Equal(t, "env-broker:9092", cfg.Viper().GetString("connectionStrings.Messaging"))
}

func TestLoad_EnvironmentOverlay(t *testing.T) {
	unsetEnv(t, "SERVICE_ENVIRONMENT")

	fs := afero.NewMemMapFs()
	writeFile(t, fs, "appsettings.yaml", `
service:
  name: billing
  environment: Production
connectionStrings:
  Messaging: "base:9092"
kafka:
  autoProvision: false
`)
	writeFile(t, fs, "appsettings.Production.yaml", `
connectionStrings:
  Messaging: "prod-broker:9092"
`)

	cfg, err := config.Load(config.WithFs(fs))
	require.NoError(t, err)

	assert.Equal(t, "prod-broker:9092", cfg.Viper().GetString("connectionStrings.Messaging"))
	// Keys absent from the overlay keep their base values.
	assert.Equal(t, "billing", cfg.Service.Name)
	assert.False(t, cfg.Viper().GetBool("kafka.autoProvision"))
}

func TestLoad_DotEnv(t *testing.T) {
	unsetEnv(t, "SERVICE_NAME")
	unsetEnv(t, "CONNECTIONSTRINGS_MESSAGING")

	fs := afero.NewMemMapFs()
	writeFile(t, fs, ".env", `
SERVICE_NAME=billing
CONNECTIONSTRINGS_MESSAGING=dotenv-broker:9092
`)

	cfg, err := config.Load(config.WithFs(fs))
	require.NoError(t, err)

	assert.Equal(t, "billing", cfg.Service.Name)
	assert.Equal(t, "dotenv-broker:9092", cfg.Viper().GetString("connectionStrings.Messaging"))
}

func TestLoad_DotEnvNeverOverridesProcessEnv(t *testing.T) {
	t.Setenv("SERVICE_NAME", "from-process")

	fs := afero.NewMemMapFs()
	writeFile(t, fs, ".env", "SERVICE_NAME=from-dotenv\n")

	cfg, err := config.Load(config.WithFs(fs))
	require.NoError(t, err)
	assert.Equal(t, "from-process", cfg.Service.Name)
}

func TestLoad_MissingServiceName(t *testing.T) {
	unsetEnv(t, "SERVICE_NAME")

	_, err := config.Load(config.WithFs(afero.NewMemMapFs()))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Name")
}

func TestLoad_ServiceNameWithSpaceRejected(t *testing.T) {
	t.Setenv("SERVICE_NAME", "bad name")

	_, err := config.Load(config.WithFs(afero.NewMemMapFs()))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Name")
}

func TestLoad_ExplicitFile(t *testing.T) {
	unsetEnv(t, "SERVICE_ENVIRONMENT")

	fs := afero.NewMemMapFs()
	writeFile(t, fs, "conf/billing.yaml", `
service:
  name: billing
`)

	cfg, err := config.Load(config.WithFs(fs), config.WithFile("conf/billing.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "billing", cfg.Service.Name)

	_, err = config.Load(config.WithFs(fs), config.WithFile("conf/absent.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "conf/absent.yaml")
}

func TestLoad_MalformedSettingsFile(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeFile(t, fs, "appsettings.yaml", "service: [broken\n")

	_, err := config.Load(config.WithFs(fs))
	require.Error(t, err)
}

func TestLoad_WithDefault(t *testing.T) {
	t.Setenv("SERVICE_NAME", "billing")

	cfg, err := config.Load(
		config.WithFs(afero.NewMemMapFs()),
		config.WithDefault("kafka.connectionStringName", "Billing"),
	)
	require.NoError(t, err)
	assert.Equal(t, "Billing", cfg.Viper().GetString("kafka.connectionStringName"))
}

func TestLoad_CustomNameAndSearchDirs(t *testing.T) {
	unsetEnv(t, "SERVICE_ENVIRONMENT")

	fs := afero.NewMemMapFs()
	writeFile(t, fs, "deploy/settings.yaml", `
service:
  name: billing
`)

	cfg, err := config.Load(
		config.WithFs(fs),
		config.WithName("settings"),
		config.WithSearchDirs("deploy"),
	)
	require.NoError(t, err)
	assert.Equal(t, "billing", cfg.Service.Name)
}
