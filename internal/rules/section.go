package rules

import "strings"

// region is a byte range of the checked text.
type region struct {
	start, end int
}

// sections maps lowercased markdown heading labels to the text below them.
// A region runs to the next heading of the same or a higher level. The first
// heading with a given label wins.
func sections(text string) map[string]region {
	type heading struct {
		label       string
		level       int
		start, body int // heading line start, body start
	}
	var hs []heading
	for off := 0; off < len(text); {
		end := strings.IndexByte(text[off:], '\n')
		next := len(text)
		if end >= 0 {
			next = off + end + 1
		}
		line := strings.TrimRight(text[off:next], "\r\n")
		if level, label, ok := parseHeading(line); ok {
			hs = append(hs, heading{label: label, level: level, start: off, body: next})
		}
		off = next
	}

	out := make(map[string]region, len(hs))
	for i, h := range hs {
		key := strings.ToLower(h.label)
		if _, dup := out[key]; dup {
			continue
		}
		end := len(text)
		for _, later := range hs[i+1:] {
			if later.level <= h.level {
				end = later.start
				break
			}
		}
		out[key] = region{start: h.body, end: end}
	}
	return out
}

func parseHeading(line string) (int, string, bool) {
	level := 0
	for level < len(line) && line[level] == '#' {
		level++
	}
	if level == 0 || level > 6 || level >= len(line) || line[level] != ' ' {
		return 0, "", false
	}
	label := strings.TrimSpace(strings.TrimRight(strings.TrimSpace(line[level:]), "#"))
	if label == "" {
		return 0, "", false
	}
	return level, label, true
}
