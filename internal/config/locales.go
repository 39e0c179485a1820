package config

import (
	"log/slog"
	"strings"
)

const (
	LangEN = "en"
	LangES = "es"
)

func GetLocaleConfig(lang string) string {
	switch l := strings.ToLower(strings.TrimSpace(lang)); l {
	case LangEN, LangES:
		return l
	case "":
		return LangEN
	default:
		slog.Warn("unsupported language, falling back to English", "language", lang)
		return LangEN
	}
}
