//go:build !integration

package i18n

import (
	"testing"

	"gopkg.in/yaml.v3"
)

func TestTranslator(t *testing.T) {
	translator, err := newTranslatorFromBytes([]byte("greeting: Привет\npublish_failed: \"Ошибка: %s\""))
	if err != nil {
		t.Fatalf("newTranslatorFromBytes failed: %v", err)
	}

	t.Run("should translate a simple key", func(t *testing.T) {
		if got := translator.T("greeting"); got != "Привет" {
			t.Errorf("wanted 'Привет', got '%s'", got)
		}
	})

	t.Run("should return key if not found", func(t *testing.T) {
		if got := translator.T("nonexistent_key"); got != "nonexistent_key" {
			t.Errorf("wanted 'nonexistent_key', got '%s'", got)
		}
	})

	t.Run("should format arguments correctly", func(t *testing.T) {
		if got := translator.T("publish_failed", "timeout"); got != "Ошибка: timeout" {
			t.Errorf("wanted 'Ошибка: timeout', got '%s'", got)
		}
	})
}

func TestEmbeddedLocalesHaveSameKeys(t *testing.T) {
	load := func(lang string) map[string]string {
		b, err := LocalesFS.ReadFile("locales/" + lang + ".yaml")
		if err != nil {
			t.Fatalf("read %s: %v", lang, err)
		}
		var m map[string]string
		if err := yaml.Unmarshal(b, &m); err != nil {
			t.Fatalf("parse %s: %v", lang, err)
		}
		return m
	}
	ru, en := load("ru"), load("en")
	for k := range ru {
		if _, ok := en[k]; !ok {
			t.Errorf("en.yaml misses key %q", k)
		}
	}
	for k := range en {
		if _, ok := ru[k]; !ok {
			t.Errorf("ru.yaml misses key %q", k)
		}
	}
	if _, err := NewTranslator(LocalesFS, "ru"); err != nil {
		t.Fatalf("NewTranslator(ru): %v", err)
	}
}
