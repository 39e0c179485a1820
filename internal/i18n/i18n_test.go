package i18n

import (
	"testing"

	"github.com/BurntSushi/toml"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTranslations(t *testing.T) {
	t.Run("english", func(t *testing.T) {
		trans, err := NewTranslations("en")

		require.NoError(t, err)
		assert.Equal(t, "Diagnosis", trans.GetMessage("analyze_header", 0, nil))
	})

	t.Run("spanish", func(t *testing.T) {
		trans, err := NewTranslations("es")

		require.NoError(t, err)
		assert.Equal(t, "Diagnóstico", trans.GetMessage("analyze_header", 0, nil))
	})

	t.Run("empty language", func(t *testing.T) {
		trans, err := NewTranslations("")

		assert.Error(t, err)
		assert.Nil(t, trans)
	})

	t.Run("unsupported language", func(t *testing.T) {
		_, err := NewTranslations("fr")

		assert.ErrorContains(t, err, "not supported")
	})
}

func TestGetMessage(t *testing.T) {
	trans, err := NewTranslations("en")
	require.NoError(t, err)

	t.Run("template data", func(t *testing.T) {
		msg := trans.GetMessage("serve_listening", 0, map[string]interface{}{"Addr": ":3000", "Live": true})
		assert.Equal(t, "Listening on :3000 (live analysis: true)", msg)
	})

	t.Run("plural forms", func(t *testing.T) {
		assert.Equal(t, "1 live analysis recorded", trans.GetMessage("stats_calls", 1, map[string]interface{}{"Count": 1}))
		assert.Equal(t, "3 live analyses recorded", trans.GetMessage("stats_calls", 3, map[string]interface{}{"Count": 3}))
	})

	t.Run("missing id", func(t *testing.T) {
		assert.Equal(t, "Translation missing: nope", trans.GetMessage("nope", 0, nil))
	})
}

func TestSetLanguage(t *testing.T) {
	trans, err := NewTranslations("en")
	require.NoError(t, err)

	require.NoError(t, trans.SetLanguage("es"))
	assert.Equal(t, "Ubicación", trans.GetMessage("label_location", 0, nil))

	assert.Error(t, trans.SetLanguage("de"))
	assert.Equal(t, "Ubicación", trans.GetMessage("label_location", 0, nil), "failed switch keeps the current language")
}

func TestLocalesHaveTheSameKeys(t *testing.T) {
	load := func(name string) map[string]any {
		data, err := localeFS.ReadFile("locales/" + name)
		require.NoError(t, err)
		var m map[string]any
		require.NoError(t, toml.Unmarshal(data, &m))
		return m
	}

	en := load("active.en.toml")
	es := load("active.es.toml")

	for key := range en {
		assert.Contains(t, es, key, "spanish locale is missing %s", key)
	}
	for key := range es {
		assert.Contains(t, en, key, "english locale has no %s", key)
	}
}
