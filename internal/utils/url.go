package utils

import (
	"net/url"
	"regexp"
	"sort"
	"strings"

	"golang.org/x/net/idna"
)

var (
	urlRegex       = regexp.MustCompile(`https?://([\w_-]+(?:(?:\.[\w_-]+)+))([\w.,@?^=%&:/~+#-]*[\w@?^=%&/~+#-])`)
	inviteRegex    = regexp.MustCompile(`(?i)(?:https?://)?(?:www\.)?(?:discord\.(?:gg|io|me|li)|discord(?:app)?\.com/invite)/([\w-]+)`)
	fakeURLRegex   = regexp.MustCompile(`\[(\S*?\.\S{2,63})\]\(((?:https|http)://\S.*?)\)`)
	trackingParams = []string{"utm_source", "utm_medium", "utm_campaign", "utm_term", "utm_content", "fbclid", "gclid"}
)

func ExtractURLs(content string) []string {
	return urlRegex.FindAllString(content, -1)
}

func ContainsURL(content string) bool {
	return content != "" && urlRegex.MatchString(content)
}

// ExtractInvites returns every invite link found in content.
func ExtractInvites(content string) []string {
	return inviteRegex.FindAllString(content, -1)
}

func ContainsInvite(content string) bool {
	return content != "" && inviteRegex.MatchString(content)
}

// FakeLink is a markdown hyperlink whose visible label is itself shaped like a URL.
type FakeLink struct {
	Label  string
	Target string
}

func FindFakeLinks(content string) []FakeLink {
	if content == "" {
		return nil
	}
	matches := fakeURLRegex.FindAllStringSubmatch(content, -1)
	links := make([]FakeLink, 0, len(matches))
	for _, match := range matches {
		links = append(links, FakeLink{Label: match[1], Target: match[2]})
	}
	return links
}

func NormalizeURL(raw string) (string, string, error) {
	if !strings.HasPrefix(raw, "http://") && !strings.HasPrefix(raw, "https://") {
		raw = "https://" + raw
	}

	parsed, err := url.Parse(raw)
	if err != nil {
		return "", "", err
	}

	host := strings.ToLower(parsed.Hostname())
	asciiHost, err := idna.ToASCII(host)
	if err == nil {
		host = asciiHost
	}

	parsed.Host = host
	parsed.Fragment = ""
	parsed.User = nil

	query := parsed.Query()
	for _, key := range trackingParams {
		query.Del(key)
	}
	parsed.RawQuery = normalizeQuery(query)

	return parsed.String(), host, nil
}

// NormalizeAll normalizes each raw URL, keeping the raw value when parsing fails.
func NormalizeAll(raw []string) []string {
	out := make([]string, 0, len(raw))
	for _, item := range raw {
		normalized, _, err := NormalizeURL(item)
		if err != nil {
			normalized = item
		}
		out = append(out, normalized)
	}
	return out
}

func normalizeQuery(values url.Values) string {
	if len(values) == 0 {
		return ""
	}
	keys := make([]string, 0, len(values))
	for key := range values {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	clean := url.Values{}
	for _, key := range keys {
		clean[key] = values[key]
	}
	return clean.Encode()
}
