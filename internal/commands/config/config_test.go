package config

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/thomas-vilte/contextclue/internal/commands"
	cfgpkg "github.com/thomas-vilte/contextclue/internal/config"
	"github.com/thomas-vilte/contextclue/internal/di"
	"github.com/thomas-vilte/contextclue/internal/i18n"
	"github.com/urfave/cli/v3"
)

func TestMain(m *testing.M) {
	color.NoColor = true
	m.Run()
}

func setupConfigTest(t *testing.T, cfg *cfgpkg.Config) (*cli.Command, *bytes.Buffer) {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	for _, name := range []string{
		"CONTEXTCLUE_CONFIG", "AWS_ACCESS_KEY_ID", "AWS_SECRET_ACCESS_KEY", "AWS_SESSION_TOKEN",
		"AWS_REGION", "AWS_DEFAULT_REGION", "GEMINI_API_KEY", "GOOGLE_API_KEY",
	} {
		t.Setenv(name, "")
	}

	trans, err := i18n.NewTranslations("en")
	require.NoError(t, err)

	var out bytes.Buffer
	app := &cli.Command{
		Name:     "contextclue",
		Writer:   &out,
		Flags:    commands.GlobalFlags(trans),
		Commands: []*cli.Command{NewConfigCommandFactory().CreateCommand(trans, commands.StaticLoader(di.NewContainer(cfg)))},
	}
	return app, &out
}

func TestShowCommand(t *testing.T) {
	t.Run("masks secrets", func(t *testing.T) {
		// Arrange
		cfg := cfgpkg.Defaults()
		cfg.AWS.AccessKeyID = "AKIAEXAMPLEKEY"
		cfg.AWS.SecretAccessKey = "supersecretvalue"
		cfg.Gemini.APIKey = "gemini-key-123"
		app, out := setupConfigTest(t, &cfg)

		// Act
		err := app.Run(context.Background(), []string{"contextclue", "config", "show"})

		// Assert
		require.NoError(t, err)
		assert.Contains(t, out.String(), "AKIA****")
		assert.Contains(t, out.String(), "supe****")
		assert.NotContains(t, out.String(), "supersecretvalue")
		assert.NotContains(t, out.String(), "gemini-key-123")
		assert.Contains(t, out.String(), "No configuration file")
	})

	t.Run("names the loaded file", func(t *testing.T) {
		cfg := cfgpkg.Defaults()
		cfg.PathFile = "/etc/contextclue.yaml"
		app, out := setupConfigTest(t, &cfg)

		err := app.Run(context.Background(), []string{"contextclue", "config", "show"})

		require.NoError(t, err)
		assert.Contains(t, out.String(), "Loaded from: /etc/contextclue.yaml")
		assert.Contains(t, out.String(), ":3000")
	})
}

func TestInitCommand(t *testing.T) {
	t.Run("writes defaults that load back", func(t *testing.T) {
		// Arrange
		cfg := cfgpkg.Defaults()
		app, out := setupConfigTest(t, &cfg)
		path := filepath.Join(t.TempDir(), "nested", "config.yaml")

		// Act
		err := app.Run(context.Background(), []string{"contextclue", "--config", path, "config", "init"})

		// Assert
		require.NoError(t, err)
		assert.Contains(t, out.String(), "Configuration written to "+path)

		loaded, err := cfgpkg.Load(path)
		require.NoError(t, err)
		want := cfgpkg.Defaults()
		want.PathFile = path
		assert.Equal(t, want, *loaded)
	})

	t.Run("default location", func(t *testing.T) {
		cfg := cfgpkg.Defaults()
		app, _ := setupConfigTest(t, &cfg)

		err := app.Run(context.Background(), []string{"contextclue", "config", "init"})

		require.NoError(t, err)
		path, err := cfgpkg.DefaultPath()
		require.NoError(t, err)
		assert.FileExists(t, path)
	})

	t.Run("keeps an existing file without force", func(t *testing.T) {
		// Arrange
		cfg := cfgpkg.Defaults()
		app, out := setupConfigTest(t, &cfg)
		path := filepath.Join(t.TempDir(), "config.yaml")
		require.NoError(t, os.WriteFile(path, []byte("language: es\n"), 0600))

		// Act
		err := app.Run(context.Background(), []string{"contextclue", "--config", path, "config", "init"})

		// Assert
		require.NoError(t, err)
		assert.Contains(t, out.String(), "already exists")
		data, _ := os.ReadFile(path)
		assert.Equal(t, "language: es\n", string(data))
	})

	t.Run("overwrites with force", func(t *testing.T) {
		cfg := cfgpkg.Defaults()
		app, _ := setupConfigTest(t, &cfg)
		path := filepath.Join(t.TempDir(), "config.yaml")
		require.NoError(t, os.WriteFile(path, []byte("language: es\n"), 0600))

		err := app.Run(context.Background(), []string{"contextclue", "--config", path, "config", "init", "--force"})

		require.NoError(t, err)
		data, _ := os.ReadFile(path)
		assert.Contains(t, string(data), "language: en")
	})
}
