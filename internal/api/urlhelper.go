package api

import (
	"net/url"
	"regexp"
	"strings"
)

var placeholderPattern = regexp.MustCompile(`\{[A-Za-z_][A-Za-z0-9_]*\}`)

// AddPathParameter replaces every {name} token in template with the
// path-escaped value. A template without the token is an error.
func AddPathParameter(template, name, value string) (string, error) {
	token := "{" + name + "}"
	if !strings.Contains(template, token) {
		return "", &TemplateError{Template: template, Placeholder: name, Reason: "placeholder not present"}
	}
	return strings.ReplaceAll(template, token, url.PathEscape(value)), nil
}

// AddQueryParameterToURL appends name=value to rawURL, choosing the separator
// from whether a query string already exists. Empty values are omitted.
func AddQueryParameterToURL(rawURL, name, value string) string {
	if value == "" {
		return rawURL
	}
	sep := "?"
	if strings.Contains(rawURL, "?") {
		sep = "&"
	}
	return rawURL + sep + url.QueryEscape(name) + "=" + url.QueryEscape(value)
}

// UnresolvedPlaceholders lists the {token} names still present in rawURL.
func UnresolvedPlaceholders(rawURL string) []string {
	matches := placeholderPattern.FindAllString(rawURL, -1)
	if len(matches) == 0 {
		return nil
	}
	names := make([]string, 0, len(matches))
	for _, m := range matches {
		names = append(names, strings.Trim(m, "{}"))
	}
	return names
}
