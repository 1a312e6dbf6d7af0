package p4

import (
	"sort"
	"strings"
)

// RenderForm renders a record as a spec form, as expected on the standard input of "p4 <spec> -i".
//
// Indexed fields (View0, View1, ...) are grouped into one multi-line field.
// Fields are rendered in sorted order.
func RenderForm(rec Record) string {
	lists := make(map[string][]string)
	scalars := make(map[string]string)

	for _, key := range rec.Fields() {
		base := listBase(key)
		if base == "" {
			scalars[key] = rec[key]
			continue
		}
		if _, done := lists[base]; done {
			continue
		}
		if values, ok := rec.List(base); ok {
			lists[base] = values
		}
	}
	// stray indexed fields, e.g. a gap in the indices
	for _, key := range rec.Fields() {
		base := listBase(key)
		if base == "" {
			continue
		}
		if _, ok := lists[base]; !ok {
			scalars[key] = rec[key]
		}
	}

	names := make([]string, 0, len(scalars)+len(lists))
	for k := range scalars {
		names = append(names, k)
	}
	for k := range lists {
		names = append(names, k)
	}
	sort.Strings(names)

	var b strings.Builder
	for _, name := range names {
		if values, ok := lists[name]; ok {
			writeMultiline(&b, name, values)
			continue
		}
		value := scalars[name]
		if strings.Contains(value, "\n") {
			writeMultiline(&b, name, strings.Split(strings.TrimRight(value, "\n"), "\n"))
			continue
		}
		b.WriteString(name)
		b.WriteString(":\t")
		b.WriteString(value)
		b.WriteString("\n\n")
	}
	return b.String()
}

func writeMultiline(b *strings.Builder, name string, lines []string) {
	b.WriteString(name)
	b.WriteString(":\n")
	for _, line := range lines {
		b.WriteString("\t")
		b.WriteString(line)
		b.WriteString("\n")
	}
	b.WriteString("\n")
}

// listBase yields "View" for "View12", and "" for a key without an index.
func listBase(key string) string {
	end := len(key)
	for end > 0 && key[end-1] >= '0' && key[end-1] <= '9' {
		end--
	}
	if end == len(key) || end == 0 {
		return ""
	}
	return key[:end]
}
