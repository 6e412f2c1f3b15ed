package toolbar

import (
	"fmt"
	"strings"

	"github.com/BurntSushi/toml"
)

// Action names a built-in behavior a widget can trigger instead of
// inserting text.
type Action string

const (
	ActionNone    Action = ""
	ActionEnhance Action = "enhance"
	ActionUndo    Action = "undo"
	ActionCopy    Action = "copy"
	ActionReset   Action = "reset"
)

// Widget is one button on a floating bar. Insertion widgets wrap the
// composer selection in Prefix/Suffix; action widgets trigger the named
// built-in instead.
type Widget struct {
	ID      string `toml:"id"`
	Glyph   string `toml:"glyph"`
	Tooltip string `toml:"tooltip"`
	Prefix  string `toml:"prefix"`
	Suffix  string `toml:"suffix"`
	Action  Action `toml:"action"`
}

// Bar is a named group of widgets that floats as one unit.
type Bar struct {
	ID      string   `toml:"id"`
	Widgets []Widget `toml:"widgets"`
}

type barFile struct {
	Bars []Bar `toml:"bar"`
}

// Defaults returns the built-in bars: a formatting bar with the four
// classic insertion buttons, and an assist bar with the AI actions.
func Defaults() []Bar {
	return []Bar{
		{
			ID: "format",
			Widgets: []Widget{
				{ID: "italic", Glyph: "*", Tooltip: "Wrap in asterisks", Prefix: "*", Suffix: "*"},
				{ID: "quote", Glyph: "\"", Tooltip: "Wrap in quotes", Prefix: "\"", Suffix: "\""},
				{ID: "ooc", Glyph: "(", Tooltip: "Out of character", Prefix: "(OOC: ", Suffix: ")"},
				{ID: "code", Glyph: "`", Tooltip: "Code block", Prefix: "```\n", Suffix: "\n```"},
			},
		},
		{
			ID: "assist",
			Widgets: []Widget{
				{ID: "enhance", Glyph: "✦", Tooltip: "Enhance draft", Action: ActionEnhance},
				{ID: "undo", Glyph: "↩", Tooltip: "Undo enhance", Action: ActionUndo},
				{ID: "copy", Glyph: "⧉", Tooltip: "Copy draft", Action: ActionCopy},
			},
		},
	}
}

// Load reads bar definitions from a TOML file. The file fully replaces
// the defaults; an empty path keeps them.
func Load(path string) ([]Bar, error) {
	if path == "" {
		return Defaults(), nil
	}
	var parsed barFile
	if _, err := toml.DecodeFile(path, &parsed); err != nil {
		return nil, fmt.Errorf("load bars: %w", err)
	}
	if err := validate(parsed.Bars); err != nil {
		return nil, err
	}
	return parsed.Bars, nil
}

func validate(bars []Bar) error {
	if len(bars) == 0 {
		return fmt.Errorf("bar file defines no bars")
	}
	seen := map[string]bool{}
	for _, bar := range bars {
		if strings.TrimSpace(bar.ID) == "" {
			return fmt.Errorf("bar with empty id")
		}
		if seen[bar.ID] {
			return fmt.Errorf("duplicate bar id %q", bar.ID)
		}
		seen[bar.ID] = true
		if len(bar.Widgets) == 0 {
			return fmt.Errorf("bar %q has no widgets", bar.ID)
		}
		widgetIDs := map[string]bool{}
		for _, w := range bar.Widgets {
			if strings.TrimSpace(w.ID) == "" {
				return fmt.Errorf("bar %q has a widget with empty id", bar.ID)
			}
			if widgetIDs[w.ID] {
				return fmt.Errorf("bar %q has duplicate widget id %q", bar.ID, w.ID)
			}
			widgetIDs[w.ID] = true
			switch w.Action {
			case ActionNone, ActionEnhance, ActionUndo, ActionCopy, ActionReset:
			default:
				return fmt.Errorf("bar %q widget %q has unknown action %q", bar.ID, w.ID, w.Action)
			}
		}
	}
	return nil
}
