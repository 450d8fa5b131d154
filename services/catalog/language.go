package catalog

import (
	"strings"

	"golang.org/x/text/language"
)

const defaultLanguage = "en-US"

// NormalizeLanguage turns user supplied locales ("en", "pt_br", "fr-CA") into
// the language-REGION form TMDB expects. Bare languages get their most likely
// region; unparseable input falls back to en-US.
func NormalizeLanguage(lang string) string {
	lang = strings.ReplaceAll(strings.TrimSpace(lang), "_", "-")
	if lang == "" {
		return defaultLanguage
	}
	tag, err := language.Parse(lang)
	if err != nil {
		return defaultLanguage
	}
	base, conf := tag.Base()
	if conf == language.No {
		return defaultLanguage
	}
	region, conf := tag.Region()
	if conf == language.No {
		return defaultLanguage
	}
	return base.String() + "-" + region.String()
}
