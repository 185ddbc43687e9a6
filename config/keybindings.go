package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/BurntSushi/toml"
)

// KeyBindingsConfig holds modifier customization and optional per-action overrides
type KeyBindingsConfig struct {
	Modifiers ModifierConfig    `toml:"modifiers"`
	Actions   map[string]string `toml:"actions"`
}

type ModifierConfig struct {
	Primary   string `toml:"primary"`   // alt, ctrl, meta, super
	Secondary string `toml:"secondary"` // alt+shift, ctrl+shift
}

type actionDef struct {
	modifier string // "primary", "secondary" or "none"
	key      string
}

// actionRegistry maps action names to their default keybindings.
// Function toggles are not listed: they are always <primary>+<catalog position>.
var actionRegistry = map[string]actionDef{
	"help":              {"primary", "h"},
	"about":             {"secondary", "a"},
	"quit":              {"primary", "q"},
	"toggle_far":        {"primary", "r"},
	"function_picker":   {"primary", "f"},
	"attach_file":       {"primary", "a"},
	"clear_attachment":  {"primary", "x"},
	"yank_last_reply":   {"primary", "y"},
	"scroll_down":       {"primary", "j"},
	"scroll_up":         {"primary", "k"},
	"half_page_down":    {"secondary", "j"},
	"half_page_up":      {"secondary", "k"},
	"scroll_to_top":     {"primary", "g"},
	"scroll_to_bottom":  {"secondary", "g"},
	"clear_input":       {"primary", "u"},
	"picker_down":       {"none", "down"},
	"picker_up":         {"none", "up"},
	"picker_toggle":     {"none", " "},
	"close_modal":       {"none", "esc"},
	"acknowledge_modal": {"none", "enter"},
}

func DefaultKeybindings() *KeyBindingsConfig {
	return &KeyBindingsConfig{
		Modifiers: ModifierConfig{
			Primary:   "alt",
			Secondary: "alt+shift",
		},
	}
}

// LoadKeybindings loads keybindings.toml from the data directory, creating it when missing.
func LoadKeybindings(dataDir string) (*KeyBindingsConfig, error) {
	cfg := DefaultKeybindings()
	keybindingsPath := GetKeybindingsPath(dataDir)

	if !FileExists(keybindingsPath) {
		if err := os.WriteFile(keybindingsPath, []byte(GenerateKeybindingsTemplate()), 0600); err != nil {
			return nil, fmt.Errorf("failed to create keybindings: %w", err)
		}
		return cfg, nil
	}

	if _, err := toml.DecodeFile(keybindingsPath, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse keybindings: %w", err)
	}

	if ok, warning := cfg.Validate(); !ok {
		if DebugLog != nil {
			DebugLog.Warnf("Invalid keybindings (%s), falling back to defaults", warning)
		}
		return DefaultKeybindings(), nil
	}

	return cfg, nil
}

func GenerateKeybindingsTemplate() string {
	return `# farchat Keybindings Configuration
# Location: <data_directory>/keybindings.toml

[modifiers]
primary = "alt"          # Options: alt, ctrl, meta, super
secondary = "alt+shift"

# Function N of the catalog is toggled with <primary>+N (N = 1..9).

[actions]
# Override any action, for example:
#   toggle_far = "ctrl+r"
#   attach_file = "ctrl+o"
#
# Actions: help, about, quit, toggle_far, function_picker, attach_file, clear_attachment,
# yank_last_reply, scroll_down, scroll_up, half_page_down, half_page_up,
# scroll_to_top, scroll_to_bottom, clear_input
`
}

func (kb *KeyBindingsConfig) Primary() string {
	if kb.Modifiers.Primary == "" {
		return "alt"
	}
	return kb.Modifiers.Primary
}

func (kb *KeyBindingsConfig) Secondary() string {
	if kb.Modifiers.Secondary == "" {
		return "alt+shift"
	}
	return kb.Modifiers.Secondary
}

// PrimaryKey builds "<primary>+key", e.g. "alt+s".
func (kb *KeyBindingsConfig) PrimaryKey(key string) string {
	return kb.Primary() + "+" + key
}

// SecondaryKey builds the secondary binding. Terminals report shift+letter as the
// uppercase letter, so "alt+shift" + "j" becomes "alt+J".
func (kb *KeyBindingsConfig) SecondaryKey(key string) string {
	secondary := kb.Secondary()

	if strings.Contains(strings.ToLower(secondary), "shift") && len(key) == 1 && key[0] >= 'a' && key[0] <= 'z' {
		var mods []string
		for _, part := range strings.Split(secondary, "+") {
			if strings.ToLower(part) != "shift" {
				mods = append(mods, part)
			}
		}
		if len(mods) > 0 {
			return strings.Join(mods, "+") + "+" + strings.ToUpper(key)
		}
		return strings.ToUpper(key)
	}

	return secondary + "+" + key
}

// FunctionToggleKey returns the binding that toggles the catalog entry at index i.
// Only the first nine entries get a binding.
func (kb *KeyBindingsConfig) FunctionToggleKey(i int) string {
	if i < 0 || i > 8 {
		return ""
	}
	return kb.PrimaryKey(fmt.Sprintf("%d", i+1))
}

// GetActionKey returns the user override for action, or the registry default.
func (kb *KeyBindingsConfig) GetActionKey(action string) string {
	if override, ok := kb.Actions[action]; ok && override != "" {
		return override
	}

	def, ok := actionRegistry[action]
	if !ok {
		return ""
	}
	switch def.modifier {
	case "primary":
		return kb.PrimaryKey(def.key)
	case "secondary":
		return kb.SecondaryKey(def.key)
	default:
		return def.key
	}
}

// DisplayActionKey formats an action's binding for the help screen: "alt+J" -> "Alt+Shift+J".
func (kb *KeyBindingsConfig) DisplayActionKey(action string) string {
	return DisplayKey(kb.GetActionKey(action))
}

func DisplayKey(key string) string {
	if key == "" {
		return ""
	}
	if key == " " {
		return "Space"
	}
	parts := strings.Split(key, "+")
	hasShift := false
	for _, p := range parts {
		if strings.EqualFold(p, "shift") {
			hasShift = true
		}
	}

	var result []string
	for i, part := range parts {
		if part == "" {
			continue
		}
		if len(part) == 1 && part[0] >= 'A' && part[0] <= 'Z' && !hasShift && i > 0 {
			result = append(result, "Shift")
		}
		result = append(result, strings.ToUpper(part[:1])+part[1:])
	}
	return strings.Join(result, "+")
}

// Validate reports whether the modifiers are usable, plus an optional warning.
func (kb *KeyBindingsConfig) Validate() (bool, string) {
	primary := kb.Primary()
	secondary := kb.Secondary()

	if primary == "shift" || secondary == "shift" {
		return false, "Shift alone conflicts with typing"
	}
	if primary == secondary {
		return false, "Primary and secondary modifiers must differ"
	}
	if strings.Contains(primary, "ctrl") || strings.Contains(secondary, "ctrl") {
		return true, "Warning: Ctrl may conflict with terminal shortcuts (Ctrl+C, Ctrl+Z, Ctrl+D)"
	}

	return true, ""
}
