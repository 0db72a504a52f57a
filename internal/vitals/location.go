package vitals

import (
	"net/url"
	"strings"
)

// Origin extracts the scheme://host origin from a URL string.
// Persisted fields are scoped by this value.
func Origin(urlStr string) (string, error) {
	parsed, err := url.Parse(urlStr)
	if err != nil {
		return "", err
	}

	if parsed.Scheme == "" || parsed.Host == "" {
		return "", nil
	}

	return strings.ToLower(parsed.Scheme + "://" + parsed.Host), nil
}

// ShortLocation reduces a full URL to host+path for display,
// dropping the scheme, query and fragment.
// Example: https://example.com/docs/?q=1 -> example.com/docs
func ShortLocation(urlStr string) string {
	parsed, err := url.Parse(urlStr)
	if err != nil || parsed.Host == "" {
		return urlStr
	}

	short := strings.ToLower(parsed.Host) + parsed.Path
	return strings.TrimSuffix(short, "/")
}
