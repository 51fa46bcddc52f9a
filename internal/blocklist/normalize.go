package blocklist

import (
	"bufio"
	"regexp"
	"strings"
)

var (
	domainPattern = regexp.MustCompile(`^[A-Za-z0-9.-]+\.[A-Za-z]{2,}$`)
	schemePattern = regexp.MustCompile(`^https?://`)
	ipv4Pattern   = regexp.MustCompile(`\b(?:(?:25[0-5]|2[0-4]\d|1\d{2}|[1-9]?\d)\.){3}(?:25[0-5]|2[0-4]\d|1\d{2}|[1-9]?\d)\b`)
)

// sinkholeAddrs are the redirect targets that mark a hosts-style line.
var sinkholeAddrs = map[string]struct{}{
	"0.0.0.0":   {},
	"127.0.0.1": {},
}

// Extractor turns one source's raw text into a set of canonical entries.
type Extractor func(text string) map[string]struct{}

// Normalize classifies one list line and returns its canonical entry.
// Classification order: blank/comment, hosts-style, adblock rule, plain
// domain. Lines matching no known format (wildcards, paths, malformed
// rules) are dropped; not every adblock rule reduces to a domain.
func Normalize(line string) (string, bool) {
	line = strings.TrimSpace(line)
	if line == "" || strings.HasPrefix(line, "#") {
		return "", false
	}

	parts := strings.Fields(line)
	if len(parts) >= 2 {
		if _, ok := sinkholeAddrs[parts[0]]; ok {
			return strings.ToLower(parts[1]), true
		}
	}
	if len(parts) == 1 {
		if entry, ok := normalizeRule(parts[0]); ok {
			return entry, true
		}
	}
	return normalizeRule(line)
}

// normalizeRule extracts a domain from an adblock rule or a plain domain
// line. A ||host^ rule that yields nothing falls through to the |host|
// handling, which also strips an http(s) scheme.
func normalizeRule(line string) (string, bool) {
	if strings.HasPrefix(line, "||") {
		host, _, _ := strings.Cut(line[2:], "^")
		host = strings.TrimSpace(host)
		if host != "" {
			return strings.ToLower(host), true
		}
	}
	if strings.HasPrefix(line, "|") {
		host := strings.Trim(line, "|")
		host = schemePattern.ReplaceAllString(host, "")
		host, _, _ = strings.Cut(host, "^")
		host = strings.TrimSpace(host)
		if host != "" {
			return strings.ToLower(host), true
		}
	}
	if line != "" && !strings.ContainsAny(line, "*/|^") {
		if domainPattern.MatchString(line) {
			return strings.ToLower(line), true
		}
	}
	return "", false
}

// ParseHosts applies Normalize to every line of a source's text and
// accumulates the unique canonical domains.
func ParseHosts(text string) map[string]struct{} {
	entries := make(map[string]struct{})
	scanner := bufio.NewScanner(strings.NewReader(text))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		if entry, ok := Normalize(scanner.Text()); ok {
			entries[entry] = struct{}{}
		}
	}
	return entries
}

// ExtractIPv4 scans the whole text for dotted-quad IPv4 addresses.
// Unlike ParseHosts it is not line-oriented: addresses may appear anywhere,
// including the middle of rules or comments.
func ExtractIPv4(text string) map[string]struct{} {
	entries := make(map[string]struct{})
	for _, ip := range ipv4Pattern.FindAllString(text, -1) {
		entries[ip] = struct{}{}
	}
	return entries
}
