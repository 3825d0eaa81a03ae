package retrieval

import (
	"fmt"
	"sort"
	"strings"
)

const (
	sectionCap        = 5
	sectionCapVerbose = 10
)

// FormatContext renders a context bundle as plain text for an AI or
// human consumer. Sections appear in fixed order - interactions, facts,
// preferences, recommendations - each independently capped at 5 items,
// or 10 when verbose.
func FormatContext(c *Context, verbose bool) string {
	limit := sectionCap
	if verbose {
		limit = sectionCapVerbose
	}

	var b strings.Builder

	b.WriteString("# Contact Memory\n\n")
	b.WriteString(c.Summary)
	b.WriteString("\n")

	if len(c.Interactions) > 0 {
		b.WriteString("\n## Recent Interactions\n")
		for i, in := range c.Interactions {
			if i == limit {
				break
			}
			fmt.Fprintf(&b, "- [%s] %s/%s: %s\n",
				in.Timestamp.Format("2006-01-02"), in.Channel, in.Direction, in.Summary)
		}
	}

	if len(c.KeyFacts) > 0 {
		b.WriteString("\n## Key Facts\n")
		for i, f := range c.KeyFacts {
			if i == limit {
				break
			}
			fmt.Fprintf(&b, "- %s (confidence %.1f)\n", f.Fact, f.Confidence)
		}
	}

	if len(c.Preferences) > 0 {
		b.WriteString("\n## Preferences\n")
		written := 0
		for _, k := range sortedKeys(c.Preferences) {
			if written == limit {
				break
			}
			fmt.Fprintf(&b, "- %s: %s\n", k, c.Preferences[k])
			written++
		}
	}

	if len(c.Recommendations) > 0 {
		b.WriteString("\n## Recommendations\n")
		for i, r := range c.Recommendations {
			if i == limit {
				break
			}
			fmt.Fprintf(&b, "- %s\n", r)
		}
	}

	return b.String()
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
