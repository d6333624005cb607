package tmpl

import "strings"

// Tag returns the trimmed content of the first tag named name in s.
// A self-closing tag has empty content.
func Tag(s, name string) (string, bool) {
	e, ok := Parse(s).Find(name)
	if !ok {
		return "", false
	}
	return strings.TrimSpace(e.Content()), true
}

// HasTag reports whether s contains a tag named name.
func HasTag(s, name string) bool {
	return Parse(s).Has(name)
}

// RemoveTag drops every tag named name, with its content, from s.
func RemoveTag(s, name string) string {
	return Parse(s).Remove(name).String()
}

// ReplaceTag substitutes every tag named name in s with fn's result.
func ReplaceTag(s, name string, fn func(content string) string) string {
	return Parse(s).ReplaceText(name, func(e *Element) string {
		return fn(e.Content())
	}).String()
}

// Wrap returns s enclosed in a tag named name.
func Wrap(name, s string) string {
	return "<" + name + ">" + s + "</" + name + ">"
}
