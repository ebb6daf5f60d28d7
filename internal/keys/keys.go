// Package keys defines the physical key enumeration and the raw press/release
// events produced by capture sources.
package keys

import (
	"fmt"
	"strings"
	"time"
)

// PhysicalKey identifies a hardware key. Values come from a fixed enumeration;
// see Parse.
type PhysicalKey string

// Event is a single physical press or release, as delivered by a capture source.
// Duplicate-state events are legal and are ignored downstream.
type Event struct {
	Key     PhysicalKey `json:"key"`
	Pressed bool        `json:"pressed"`
	Time    time.Time   `json:"time"`
}

func (e Event) String() string {
	state := "up"
	if e.Pressed {
		state = "down"
	}
	return fmt.Sprintf("%s %s @%s", e.Key, state, e.Time.Format("15:04:05.000"))
}

const (
	Space        PhysicalKey = "Space"
	Return       PhysicalKey = "Return"
	Tab          PhysicalKey = "Tab"
	Backspace    PhysicalKey = "Backspace"
	Escape       PhysicalKey = "Escape"
	ShiftLeft    PhysicalKey = "ShiftLeft"
	ShiftRight   PhysicalKey = "ShiftRight"
	ControlLeft  PhysicalKey = "ControlLeft"
	ControlRight PhysicalKey = "ControlRight"
	Alt          PhysicalKey = "Alt"
	AltGr        PhysicalKey = "AltGr"
	MetaLeft     PhysicalKey = "MetaLeft"
	MetaRight    PhysicalKey = "MetaRight"
	CapsLock     PhysicalKey = "CapsLock"
	UpArrow      PhysicalKey = "UpArrow"
	DownArrow    PhysicalKey = "DownArrow"
	LeftArrow    PhysicalKey = "LeftArrow"
	RightArrow   PhysicalKey = "RightArrow"
	SemiColon    PhysicalKey = "SemiColon"
	Quote        PhysicalKey = "Quote"
	Comma        PhysicalKey = "Comma"
	Dot          PhysicalKey = "Dot"
	Slash        PhysicalKey = "Slash"
	Minus        PhysicalKey = "Minus"
	Equal        PhysicalKey = "Equal"
	LeftBracket  PhysicalKey = "LeftBracket"
	RightBracket PhysicalKey = "RightBracket"
	BackSlash    PhysicalKey = "BackSlash"
	BackQuote    PhysicalKey = "BackQuote"
)

type keyInfo struct {
	display  string
	terminal string
}

// known maps every key of the enumeration to its label and the string
// bubbletea reports for it (empty when a terminal cannot deliver it).
var known = map[PhysicalKey]keyInfo{
	Space:        {"␣", " "},
	Return:       {"⏎", "enter"},
	Tab:          {"⇥", "tab"},
	Backspace:    {"⌫", "backspace"},
	Escape:       {"Esc", ""},
	ShiftLeft:    {"⇧", ""},
	ShiftRight:   {"⇧", ""},
	ControlLeft:  {"Ctrl", ""},
	ControlRight: {"Ctrl", ""},
	Alt:          {"Alt", ""},
	AltGr:        {"AltGr", ""},
	MetaLeft:     {"Meta", ""},
	MetaRight:    {"Meta", ""},
	CapsLock:     {"Caps", ""},
	UpArrow:      {"↑", "up"},
	DownArrow:    {"↓", "down"},
	LeftArrow:    {"←", "left"},
	RightArrow:   {"→", "right"},
	SemiColon:    {";", ";"},
	Quote:        {"'", "'"},
	Comma:        {",", ","},
	Dot:          {".", "."},
	Slash:        {"/", "/"},
	Minus:        {"-", "-"},
	Equal:        {"=", "="},
	LeftBracket:  {"[", "["},
	RightBracket: {"]", "]"},
	BackSlash:    {"\\", "\\"},
	BackQuote:    {"`", "`"},
}

var byTerminal = map[string]PhysicalKey{}

func init() {
	for c := 'A'; c <= 'Z'; c++ {
		k := PhysicalKey("Key" + string(c))
		known[k] = keyInfo{display: string(c), terminal: strings.ToLower(string(c))}
	}
	for c := '0'; c <= '9'; c++ {
		k := PhysicalKey("Num" + string(c))
		known[k] = keyInfo{display: string(c), terminal: string(c)}
	}
	for i := 1; i <= 12; i++ {
		name := fmt.Sprintf("F%d", i)
		known[PhysicalKey(name)] = keyInfo{display: name, terminal: strings.ToLower(name)}
	}
	for k, info := range known {
		if info.terminal != "" {
			byTerminal[info.terminal] = k
		}
	}
}

// Parse resolves a key name such as "KeyD" or "Space". Matching is case-insensitive.
func Parse(name string) (PhysicalKey, error) {
	trimmed := strings.TrimSpace(name)
	if _, ok := known[PhysicalKey(trimmed)]; ok {
		return PhysicalKey(trimmed), nil
	}
	for k := range known {
		if strings.EqualFold(string(k), trimmed) {
			return k, nil
		}
	}
	return "", fmt.Errorf("unknown key %q", name)
}

// Valid reports whether k belongs to the enumeration.
func (k PhysicalKey) Valid() bool {
	_, ok := known[k]
	return ok
}

// Display returns the short label used when a column has no explicit name.
func (k PhysicalKey) Display() string {
	if info, ok := known[k]; ok {
		return info.display
	}
	return string(k)
}

// FromTerminal maps a bubbletea key string ("d", " ", "enter") to a physical key.
// Shifted letters map to the same key as their lower-case form.
func FromTerminal(s string) (PhysicalKey, bool) {
	if k, ok := byTerminal[s]; ok {
		return k, true
	}
	if s == "space" {
		return Space, true
	}
	if len(s) == 1 && s[0] >= 'A' && s[0] <= 'Z' {
		k, ok := byTerminal[strings.ToLower(s)]
		return k, ok
	}
	return "", false
}

// Name joins the display labels of ks, e.g. "DF".
func Name(ks []PhysicalKey) string {
	var sb strings.Builder
	for _, k := range ks {
		sb.WriteString(k.Display())
	}
	return sb.String()
}
