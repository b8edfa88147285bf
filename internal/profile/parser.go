package profile

import (
	"strconv"
	"strings"
)

// sections is the raw parse result: section name -> key -> coerced value.
// Values are string, int, bool, or []string.
type sections map[string]section

type section map[string]any

func (s sections) section(name string) section {
	if sec, ok := s[name]; ok {
		return sec
	}
	return section{}
}

func (s section) str(key string) string {
	if v, ok := s[key].(string); ok {
		return v
	}
	return ""
}

func (s section) intOr(key string, def int) int {
	switch v := s[key].(type) {
	case int:
		return v
	case string:
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func (s section) list(key string) []string {
	switch v := s[key].(type) {
	case []string:
		return v
	case string:
		if v != "" {
			return []string{v}
		}
	}
	return nil
}

// intMap flattens a section whose values are all integers (thermometer and
// social-distance blocks). Non-integer values are dropped.
func (s section) intMap() map[string]int {
	if len(s) == 0 {
		return nil
	}
	m := make(map[string]int, len(s))
	for k, v := range s {
		if n, ok := v.(int); ok {
			m[k] = n
		}
	}
	return m
}

// parseSections parses the line-oriented profile grammar. Comment lines
// start with '#'. A line ending in ':' whose head contains no space opens a
// section; "key: value" adds an entry; "- item" appends to the most recent
// key, promoting its value to a list.
func parseSections(content string) sections {
	secs := sections{}
	var cur section
	var lastKey string

	for _, raw := range strings.Split(content, "\n") {
		line := strings.TrimSpace(raw)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		if strings.HasSuffix(line, ":") && !strings.Contains(line[:len(line)-1], " ") {
			name := strings.ToLower(strings.TrimSuffix(line, ":"))
			cur = section{}
			secs[name] = cur
			lastKey = ""
			continue
		}

		if cur == nil {
			continue // content before any section header
		}

		if strings.HasPrefix(line, "- ") {
			if lastKey == "" {
				continue
			}
			item := strings.TrimSpace(line[2:])
			switch prev := cur[lastKey].(type) {
			case []string:
				cur[lastKey] = append(prev, item)
			case string:
				if prev == "" {
					cur[lastKey] = []string{item}
				} else {
					cur[lastKey] = []string{prev, item}
				}
			default:
				cur[lastKey] = []string{item}
			}
			continue
		}

		if idx := strings.Index(line, ":"); idx > 0 {
			key := strings.TrimSpace(line[:idx])
			cur[key] = coerce(strings.TrimSpace(line[idx+1:]))
			lastKey = key
		}
	}
	return secs
}

// coerce applies the value grammar: bracketed lists, digit-only integers,
// true/false booleans, else the raw string.
func coerce(v string) any {
	if strings.HasPrefix(v, "[") && strings.HasSuffix(v, "]") {
		inner := strings.TrimSpace(v[1 : len(v)-1])
		if inner == "" {
			return []string{}
		}
		parts := strings.Split(inner, ",")
		items := make([]string, 0, len(parts))
		for _, p := range parts {
			items = append(items, strings.Trim(strings.TrimSpace(p), `"'`))
		}
		return items
	}
	if n, err := strconv.Atoi(v); err == nil && v != "" {
		return n
	}
	switch v {
	case "true":
		return true
	case "false":
		return false
	}
	return v
}
