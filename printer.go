// printer.go — human-readable rendering of runtime values.
package veureka

import (
	"strconv"
	"strings"
)

// formatNumber renders a number the way the language displays it: integer
// form when the value equals its truncation, shortest float otherwise.
func formatNumber(f float64) string {
	if f == float64(int64(f)) {
		return strconv.FormatInt(int64(f), 10)
	}
	return strconv.FormatFloat(f, 'g', -1, 64)
}

func quoteString(s string) string {
	var b strings.Builder
	b.WriteByte('"')
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '\\':
			b.WriteString(`\\`)
		case '"':
			b.WriteString(`\"`)
		case '\n':
			b.WriteString(`\n`)
		case '\t':
			b.WriteString(`\t`)
		default:
			b.WriteByte(s[i])
		}
	}
	b.WriteByte('"')
	return b.String()
}

// ToString is the string form used by print, str(), string concatenation,
// throw messages and map-key lookup. Strings render raw; inside lists and
// maps they are quoted.
func ToString(v Value) string {
	return FormatValue(v)
}

// FormatValue renders a value for display.
func FormatValue(v Value) string {
	switch v.Tag {
	case VTNil:
		return "nil"
	case VTNumber:
		return formatNumber(v.Data.(float64))
	case VTString:
		return v.Data.(string)
	case VTBool:
		if v.Data.(bool) {
			return "true"
		}
		return "false"
	case VTList:
		items := v.Data.([]Value)
		var b strings.Builder
		b.WriteByte('[')
		for i, item := range items {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(formatElement(item))
		}
		b.WriteByte(']')
		return b.String()
	case VTMap:
		mo := v.Data.(*MapObject)
		var b strings.Builder
		b.WriteByte('{')
		for i, key := range mo.Keys {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(key)
			b.WriteString(": ")
			b.WriteString(formatElement(mo.Entries[key]))
		}
		b.WriteByte('}')
		return b.String()
	case VTFunction:
		return "<function>"
	case VTClass:
		return "<class " + v.Data.(*Class).Name + ">"
	case VTInstance:
		return "<" + v.Data.(*Instance).Class.Name + " instance>"
	case VTNative:
		return "<native function>"
	default:
		return "<unknown>"
	}
}

// formatElement renders a container element: strings are quoted, anything
// else formats as usual.
func formatElement(v Value) string {
	if v.Tag == VTString {
		return quoteString(v.Data.(string))
	}
	return FormatValue(v)
}
