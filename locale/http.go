package locale

import (
	"net/http"
	"strings"
	"time"
)

const (
	// LangParam is the query parameter used to select a language.
	LangParam = "lang"
	// LangCookieName stores the visitor's language preference.
	LangCookieName = "gg_lang"
)

// Resolve determines the language for r from the lang query parameter, the
// language cookie, then Accept-Language. persist reports whether the choice
// came from the query parameter and should be saved with SetCookie.
func (p *Provider) Resolve(r *http.Request) (lang string, persist bool) {
	if r == nil {
		return p.Default(), false
	}
	if value := strings.TrimSpace(r.URL.Query().Get(LangParam)); value != "" {
		if lang, ok := p.supported(value); ok {
			return lang, true
		}
	}
	if cookie, err := r.Cookie(LangCookieName); err == nil {
		if lang, ok := p.supported(cookie.Value); ok {
			return lang, false
		}
	}
	return p.Match(r.Header.Get("Accept-Language")), false
}

// SetCookie persists lang on the response.
func SetCookie(w http.ResponseWriter, lang string) {
	if w == nil {
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     LangCookieName,
		Value:    lang,
		Path:     "/",
		MaxAge:   int((365 * 24 * time.Hour).Seconds()),
		SameSite: http.SameSiteLaxMode,
	})
}

// supported maps value to a supported language only when it is a real match,
// not the default fallback.
func (p *Provider) supported(value string) (string, bool) {
	lang := p.Match(value)
	if lang == p.Default() && !strings.EqualFold(strings.TrimSpace(value), lang) {
		base := strings.SplitN(strings.TrimSpace(value), "-", 2)[0]
		if !strings.EqualFold(base, strings.SplitN(lang, "-", 2)[0]) {
			return "", false
		}
	}
	return lang, true
}
