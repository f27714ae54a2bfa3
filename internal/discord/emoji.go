package discord

import (
	"strings"

	"github.com/bwmarrin/discordgo"
)

// variationSelector is dropped from unicode keys so "❤" and "❤️" compare equal.
const variationSelector = "\uFE0F"

// Emoji is an emoji reference in one of the forms users type it:
// unicode ("👍"), message format ("<:name:id>", "<a:name:id>"),
// API form ("name:id") or a bare custom emoji id.
type Emoji struct {
	Name     string
	ID       string
	Animated bool
}

// ParseEmoji parses raw user input. It never fails; anything that is not a
// custom emoji is treated as unicode.
func ParseEmoji(raw string) Emoji {
	s := strings.TrimSpace(raw)

	if strings.HasPrefix(s, "<") && strings.HasSuffix(s, ">") {
		parts := strings.Split(s[1:len(s)-1], ":")
		if len(parts) == 3 && IsSnowflake(parts[2]) && (parts[0] == "" || parts[0] == "a") {
			return Emoji{Name: parts[1], ID: parts[2], Animated: parts[0] == "a"}
		}
	}

	if name, id, ok := strings.Cut(s, ":"); ok && name != "" && IsSnowflake(id) {
		return Emoji{Name: name, ID: id}
	}

	if IsSnowflake(s) {
		return Emoji{ID: s}
	}

	return Emoji{Name: s}
}

// IsCustom reports whether the emoji belongs to a guild.
func (e Emoji) IsCustom() bool {
	return e.ID != ""
}

// APIName is the form MessageReactionAdd expects.
func (e Emoji) APIName() string {
	if !e.IsCustom() {
		return e.Name
	}
	name := e.Name
	if name == "" {
		name = "_"
	}
	return name + ":" + e.ID
}

// Key identifies the emoji regardless of the form it was typed in.
func (e Emoji) Key() string {
	if e.IsCustom() {
		return e.ID
	}
	return strings.ReplaceAll(e.Name, variationSelector, "")
}

// ReactionKey returns the Key of an emoji carried by a gateway event.
func ReactionKey(e discordgo.Emoji) string {
	return Emoji{Name: e.Name, ID: e.ID}.Key()
}

// FromGuildEmoji converts an emoji looked up from a guild.
func FromGuildEmoji(e *discordgo.Emoji) Emoji {
	return Emoji{Name: e.Name, ID: e.ID, Animated: e.Animated}
}

// IsSnowflake reports whether s looks like a Discord id.
func IsSnowflake(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
