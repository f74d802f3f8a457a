package language

// English is the pivot language for engines that only ship X↔English models.
var English = MustNew("en")

// supportedCodes lists the language codes the local engine can load models for.
var supportedCodes = []string{
	"ar", "de", "en", "es", "fr", "hi", "it", "ja",
	"ko", "nl", "pl", "pt", "ru", "tr", "vi", "zh",
}

var supported = func() map[string]bool {
	m := make(map[string]bool, len(supportedCodes))
	for _, code := range supportedCodes {
		m[code] = true
	}
	return m
}()

// IsSupported checks if a language code can be used with the local engine.
func IsSupported(code string) bool {
	return supported[code]
}

// Available returns all supported languages sorted by display name.
func Available() []Language {
	langs := make([]Language, 0, len(supportedCodes))
	for _, code := range supportedCodes {
		langs = append(langs, Language{code: code})
	}
	Sort(langs)
	return langs
}

// Route returns the chain of model pairs needed to translate along p.
// Pairs that do not involve English are routed through it.
func Route(p Pair) []Pair {
	if p.Source == English || p.Target == English {
		return []Pair{p}
	}
	return []Pair{
		{Source: p.Source, Target: English},
		{Source: English, Target: p.Target},
	}
}
