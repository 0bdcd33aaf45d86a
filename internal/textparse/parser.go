// Package textparse extracts structured tokens (mentions, hashtags) from raw
// post text. All functions are pure: no storage access, no side effects.
package textparse

import (
	"regexp"
	"strings"
)

var (
	mentionPattern = regexp.MustCompile(`@([A-Za-z0-9_]+)`)
	hashtagPattern = regexp.MustCompile(`#([A-Za-z0-9_]+)`)
)

// Mentions returns the distinct candidate usernames referenced via @username
// tokens, in order of first appearance. Usernames are kept case-sensitive as
// typed; whether they resolve to real users is the caller's concern.
func Mentions(text string) []string {
	return distinct(mentionPattern.FindAllStringSubmatch(text, -1), false)
}

// Hashtags returns the distinct hashtag strings referenced via #tag tokens,
// stripped of the leading # and lowercased for normalization, in order of
// first appearance.
func Hashtags(text string) []string {
	return distinct(hashtagPattern.FindAllStringSubmatch(text, -1), true)
}

func distinct(matches [][]string, lower bool) []string {
	if len(matches) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(matches))
	out := make([]string, 0, len(matches))
	for _, m := range matches {
		token := m[1]
		if lower {
			token = strings.ToLower(token)
		}
		if _, dup := seen[token]; dup {
			continue
		}
		seen[token] = struct{}{}
		out = append(out, token)
	}
	return out
}
