package blocklist

import (
	"bytes"
	"fmt"
	"sort"
	"strings"
	"time"
)

// RenderOptions controls the merged-output header and line format.
type RenderOptions struct {
	Title       string
	Description string
	IndexURL    string
	// Sinkhole prefixes every entry ("0.0.0.0 <entry>"). Empty means bare
	// entries, as used for address lists.
	Sinkhole string
	// EntryLabel names the entries in the header, e.g. "domains".
	EntryLabel string
}

// Render produces the merged output artifact: a comment header with
// generation metadata and per-source counts, then every entry sorted
// ascending. Per-source lines follow the source list order so the output
// is reproducible.
func Render(res Result, sources []string, generatedAt time.Time, opts RenderOptions) []byte {
	label := opts.EntryLabel
	if label == "" {
		label = "domains"
	}

	var buf bytes.Buffer
	fmt.Fprintf(&buf, "# Title: %s\n", opts.Title)
	if opts.Description != "" {
		fmt.Fprintf(&buf, "# Description: %s\n", opts.Description)
	}
	if opts.IndexURL != "" {
		fmt.Fprintf(&buf, "# Sources list updated dynamically from: %s\n", opts.IndexURL)
	}
	fmt.Fprintf(&buf, "# Last updated: %s\n", generatedAt.UTC().Format("2006-01-02 15:04 UTC"))
	buf.WriteString("# Expires: 6 hours\n")
	fmt.Fprintf(&buf, "# Number of unique %s: %d\n", label, res.TotalUnique)
	buf.WriteString("#\n")
	fmt.Fprintf(&buf, "# %s per source:\n", capitalize(label))
	for _, url := range sources {
		fmt.Fprintf(&buf, "# %s -> %d %s\n", url, res.PerSource[url], label)
	}
	buf.WriteString("#\n\n")

	entries := make([]string, 0, len(res.Merged))
	for entry := range res.Merged {
		entries = append(entries, entry)
	}
	sort.Strings(entries)

	for _, entry := range entries {
		if opts.Sinkhole != "" {
			fmt.Fprintf(&buf, "%s %s\n", opts.Sinkhole, entry)
		} else {
			fmt.Fprintf(&buf, "%s\n", entry)
		}
	}
	return buf.Bytes()
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
