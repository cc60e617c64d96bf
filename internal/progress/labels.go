package progress

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"
)

var (
	supported = []language.Tag{language.English, language.French}
	matcher   = language.NewMatcher(supported)
	labels    = newCatalog()
)

func newCatalog() catalog.Catalog {
	b := catalog.NewBuilder(catalog.Fallback(language.English))
	for _, l := range []struct {
		step Step
		en   string
		fr   string
	}{
		{None, "Waiting", "En attente"},
		{ParsingGame, "Reading game data", "Lecture des données du jeu"},
		{ParsingSave, "Reading save", "Lecture de la sauvegarde"},
		{ParsingSaveInfo, "Reading save information", "Lecture des informations de la sauvegarde"},
		{ParsingSaveProvinces, "Reading provinces", "Lecture des provinces"},
		{ParsingSaveCountries, "Reading countries", "Lecture des pays"},
		{ParsingSaveWars, "Reading wars", "Lecture des guerres"},
		{GeneratingData, "Generating data", "Génération des données"},
		{GeneratingDataCountries, "Generating countries", "Génération des pays"},
		{SendingData, "Sending data", "Envoi des données"},
		{Finished, "Finished", "Terminé"},
	} {
		// Messages are constant strings: SetString only fails on invalid messages.
		_ = b.SetString(language.English, l.step.String(), l.en)
		_ = b.SetString(language.French, l.step.String(), l.fr)
	}
	return b
}

// Label returns the human readable name of step in locale, such as "fr" or "en-US".
// Unsupported locales fall back to English.
func Label(step Step, locale string) string {
	_, i := language.MatchStrings(matcher, locale)
	p := message.NewPrinter(supported[i], message.Catalog(labels))
	key := step.String()
	return p.Sprintf(message.Key(key, key))
}
