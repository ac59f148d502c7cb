package html

import (
	stdhtml "html"
	"regexp"
	"strings"
	"sync"

	"github.com/flosch/pongo2/v6"
	"github.com/microcosm-cc/bluemonday"

	"github.com/goliatone/go-jobform/pkg/validation"
)

var (
	linkPolicyOnce sync.Once
	linkPolicy     *bluemonday.Policy
)

// filterPortfolioLink exposes portfolioLink to templates as portfolio_link.
func filterPortfolioLink(in *pongo2.Value, _ *pongo2.Value) (*pongo2.Value, *pongo2.Error) {
	return pongo2.AsSafeValue(portfolioLink(in.String())), nil
}

// portfolioLink renders raw as an external anchor that opens in a new tab.
// The markup goes through a policy that only admits the anchor itself, so a
// value that slipped past validation can never inject other markup.
//
// bluemonday drops href values net/url cannot parse (a stray "%zz" escape,
// for instance). Such a value was still accepted by validation, so the
// anchor is kept with the escaped href rather than degrading to plain text.
func portfolioLink(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return ""
	}
	escaped := stdhtml.EscapeString(raw)
	markup := anchor(escaped, escaped)

	cleaned := linkSanitizer().Sanitize(markup)
	if strings.Contains(cleaned, "href=") {
		return cleaned
	}
	if validation.URLPattern.MatchString(trimmed) {
		return anchor(stdhtml.EscapeString(trimmed), escaped)
	}
	return escaped
}

func anchor(href, text string) string {
	return `<a href="` + href + `" target="_blank" rel="noopener noreferrer">` + text + `</a>`
}

func linkSanitizer() *bluemonday.Policy {
	linkPolicyOnce.Do(func() {
		policy := bluemonday.NewPolicy()
		policy.AllowURLSchemes("ftp", "http", "https")
		policy.RequireParseableURLs(true)
		policy.AllowAttrs("href").OnElements("a")
		policy.AllowAttrs("target").Matching(regexp.MustCompile(`^_blank$`)).OnElements("a")
		policy.AllowAttrs("rel").Matching(regexp.MustCompile(`^noopener noreferrer$`)).OnElements("a")
		linkPolicy = policy
	})
	return linkPolicy
}
