package utils

import "testing"

func TestNormalizeURL(t *testing.T) {
	normalized, domain, err := NormalizeURL("https://Example.com/path?utm_source=test&x=1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if domain != "example.com" {
		t.Fatalf("unexpected domain: %s", domain)
	}
	if normalized != "https://example.com/path?x=1" {
		t.Fatalf("unexpected normalized url: %s", normalized)
	}
}

func TestContainsURL(t *testing.T) {
	cases := map[string]bool{
		"see https://example.com":      true,
		"http://foo.bar/baz?q=1 cool":  true,
		"example.com without a scheme": false,
		"ftp://example.com":            false,
		"":                             false,
		"just words":                   false,
	}
	for content, want := range cases {
		if got := ContainsURL(content); got != want {
			t.Fatalf("ContainsURL(%q) = %v, want %v", content, got, want)
		}
	}
}

func TestContainsInvite(t *testing.T) {
	cases := map[string]bool{
		"join discord.gg/abc123":            true,
		"https://discord.gg/abc":            true,
		"https://www.discord.me/server":     true,
		"https://discordapp.com/invite/xyz": true,
		"https://discord.com/invite/xyz":    true,
		"discord.gg/":                       false,
		"https://discord.com/channels/1/2":  false,
		"nothing here":                      false,
	}
	for content, want := range cases {
		if got := ContainsInvite(content); got != want {
			t.Fatalf("ContainsInvite(%q) = %v, want %v", content, got, want)
		}
	}
	if invites := ExtractInvites("a discord.gg/one b discord.io/two"); len(invites) != 2 {
		t.Fatalf("expected 2 invites, got %v", invites)
	}
}

func TestFindFakeLinks(t *testing.T) {
	links := FindFakeLinks("claim [steamcommunity.com](https://steamcommunitty.ru/gift) now")
	if len(links) != 1 {
		t.Fatalf("expected 1 fake link, got %d", len(links))
	}
	if links[0].Label != "steamcommunity.com" || links[0].Target != "https://steamcommunitty.ru/gift" {
		t.Fatalf("unexpected match: %+v", links[0])
	}

	if links := FindFakeLinks("read [the docs](https://example.com/docs)"); len(links) != 0 {
		t.Fatalf("plain label must not match, got %+v", links)
	}
}

func TestCountMentions(t *testing.T) {
	mentions := []MentionedUser{
		{ID: "author"},
		{ID: "bot", Bot: true},
		{ID: "a"},
		{ID: "a"},
		{ID: "b"},
	}
	if count := CountMentions("author", mentions); count != 2 {
		t.Fatalf("expected 2, got %d", count)
	}
	if MentionsOnlyOthers("author", mentions) {
		t.Fatalf("self mention should disqualify")
	}
	if !MentionsOnlyOthers("author", []MentionedUser{{ID: "a"}}) {
		t.Fatalf("expected qualifying mentions")
	}
}
