package menu

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/latoulicious/HokkoMail/internal/discord"
)

// Option maps an emoji, as the moderator typed it, to a command string
type Option struct {
	Emoji   string
	Command string
}

// Options is an emoji to command mapping. It encodes as a JSON object and
// keeps the order the options were configured in, which is the order the
// reactions are added.
type Options []Option

// Set adds or replaces the command for emoji. An emoji typed in another
// form (e.g. "<:name:id>" vs "name:id") replaces the existing entry.
func (o *Options) Set(emoji, command string) {
	key := discord.ParseEmoji(emoji).Key()
	for i, opt := range *o {
		if discord.ParseEmoji(opt.Emoji).Key() == key {
			(*o)[i] = Option{Emoji: emoji, Command: command}
			return
		}
	}
	*o = append(*o, Option{Emoji: emoji, Command: command})
}

// Lookup returns the command bound to the emoji with the given key
func (o Options) Lookup(key string) (string, bool) {
	for _, opt := range o {
		if discord.ParseEmoji(opt.Emoji).Key() == key {
			return opt.Command, true
		}
	}
	return "", false
}

// Emojis returns the parsed emoji in order
func (o Options) Emojis() []discord.Emoji {
	out := make([]discord.Emoji, 0, len(o))
	for _, opt := range o {
		out = append(out, discord.ParseEmoji(opt.Emoji))
	}
	return out
}

func (o Options) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, opt := range o {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(opt.Emoji)
		if err != nil {
			return nil, err
		}
		value, err := json.Marshal(opt.Command)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func (o *Options) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))

	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if tok == nil {
		*o = nil
		return nil
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("menu options: expected object, got %v", tok)
	}

	var out Options
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		emoji, ok := tok.(string)
		if !ok {
			return fmt.Errorf("menu options: expected string key, got %v", tok)
		}

		var command string
		if err := dec.Decode(&command); err != nil {
			return fmt.Errorf("menu options: command for %q: %w", emoji, err)
		}
		out.Set(emoji, command)
	}

	if _, err := dec.Token(); err != nil {
		return err
	}
	*o = out
	return nil
}
