package replace

import (
	"regexp"
	"time"
)

// placeholderRegex matches {{name}} tokens in snippet content.
var placeholderRegex = regexp.MustCompile(`\{\{(\w+)\}\}`)

// Placeholders lists the distinct placeholder names in content, in order
// of first appearance.
func Placeholders(content string) []string {
	matches := placeholderRegex.FindAllStringSubmatch(content, -1)
	if len(matches) == 0 {
		return nil
	}

	seen := make(map[string]bool, len(matches))
	names := make([]string, 0, len(matches))
	for _, m := range matches {
		if seen[m[1]] {
			continue
		}
		seen[m[1]] = true
		names = append(names, m[1])
	}
	return names
}

// Render substitutes placeholder values into content. Tokens without a
// value stay verbatim so the host can prompt for them later.
func Render(content string, values map[string]string) string {
	if len(values) == 0 {
		return content
	}
	return placeholderRegex.ReplaceAllStringFunc(content, func(token string) string {
		name := token[2 : len(token)-2]
		if v, ok := values[name]; ok {
			return v
		}
		return token
	})
}

// AutoValues returns the clock-derived placeholder values for the given
// moment. Callers merge their own values over these.
func AutoValues(now time.Time) map[string]string {
	return map[string]string{
		"date":     now.Format("2006-01-02"),
		"time":     now.Format("15:04"),
		"datetime": now.Format("2006-01-02 15:04:05"),
		"year":     now.Format("2006"),
		"weekday":  now.Weekday().String(),
	}
}

// RenderAuto renders content with the clock values plus any overrides.
func RenderAuto(content string, now time.Time, overrides map[string]string) string {
	values := AutoValues(now)
	for k, v := range overrides {
		values[k] = v
	}
	return Render(content, values)
}
