package chi

import "golang.org/x/text/language"

// localeMatcher negotiates the request locale from Accept-Language.
type localeMatcher struct {
	fallback string
	locales  []string
	matcher  language.Matcher
}

func newLocaleMatcher(fallback string, locales []string) *localeMatcher {
	if fallback == "" {
		fallback = language.English.String()
	}
	// the fallback goes first: the matcher returns index 0 when nothing matches
	all := []string{fallback}
	for _, l := range locales {
		if l != fallback {
			all = append(all, l)
		}
	}
	tags := make([]language.Tag, 0, len(all))
	offered := make([]string, 0, len(all))
	for _, l := range all {
		t, err := language.Parse(l)
		if err != nil {
			continue
		}
		tags = append(tags, t)
		offered = append(offered, l)
	}
	return &localeMatcher{fallback: fallback, locales: offered, matcher: language.NewMatcher(tags)}
}

// negotiate returns the best offered locale for header, or the fallback.
func (m *localeMatcher) negotiate(header string) string {
	if header == "" || len(m.locales) == 0 {
		return m.fallback
	}
	desired, _, err := language.ParseAcceptLanguage(header)
	if err != nil || len(desired) == 0 {
		return m.fallback
	}
	_, idx, conf := m.matcher.Match(desired...)
	if conf == language.No || idx < 0 || idx >= len(m.locales) {
		return m.fallback
	}
	return m.locales[idx]
}
