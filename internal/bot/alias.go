package bot

import "strings"

// NormalizeAlias splits a command string such as
// `reply Transferring && move 1238343847384` into the commands it chains.
// Separators inside double quotes are kept; a part that is fully quoted is
// unquoted. Empty parts are dropped.
func NormalizeAlias(alias string) []string {
	var parts []string
	var cur strings.Builder
	inQuote := false

	for i := 0; i < len(alias); {
		switch {
		case alias[i] == '"':
			inQuote = !inQuote
			cur.WriteByte('"')
			i++
		case !inQuote && strings.HasPrefix(alias[i:], "&&"):
			parts = append(parts, cur.String())
			cur.Reset()
			i += 2
		default:
			cur.WriteByte(alias[i])
			i++
		}
	}
	parts = append(parts, cur.String())

	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if len(p) >= 2 && p[0] == '"' && p[len(p)-1] == '"' && !strings.Contains(p[1:len(p)-1], `"`) {
			p = strings.TrimSpace(p[1 : len(p)-1])
		}
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
