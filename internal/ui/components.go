package ui

// Discord component type and button style constants.
const (
	componentActionRow  = 1
	componentButton     = 2
	componentSelectMenu = 3

	StylePrimary   = 1
	StyleSecondary = 2
	StyleSuccess   = 3
	StyleDanger    = 4
	StyleLink      = 5
)

// Component is an action row member. Exactly one of the button and
// select-menu field sets is populated depending on Type.
type Component struct {
	Type        int            `json:"type"`
	Style       int            `json:"style,omitempty"`
	Label       string         `json:"label,omitempty"`
	Emoji       *Emoji         `json:"emoji,omitempty"`
	CustomID    string         `json:"custom_id,omitempty"`
	URL         string         `json:"url,omitempty"`
	Disabled    bool           `json:"disabled,omitempty"`
	Options     []SelectOption `json:"options,omitempty"`
	Placeholder string         `json:"placeholder,omitempty"`
}

type Emoji struct {
	Name string `json:"name"`
}

type SelectOption struct {
	Label       string `json:"label"`
	Value       string `json:"value"`
	Description string `json:"description,omitempty"`
	Emoji       *Emoji `json:"emoji,omitempty"`
	Default     bool   `json:"default,omitempty"`
}

// ActionRow wraps components into the row container Discord requires.
type ActionRow struct {
	Type       int         `json:"type"`
	Components []Component `json:"components"`
}

// MaxRowComponents is Discord's per-row component limit.
const MaxRowComponents = 5

func Row(components ...Component) ActionRow {
	return ActionRow{Type: componentActionRow, Components: components}
}

// Rows splits components into action rows of at most MaxRowComponents
// each. Discord rejects responses whose rows exceed the limit.
func Rows(components ...Component) []ActionRow {
	var rows []ActionRow
	for len(components) > 0 {
		n := min(len(components), MaxRowComponents)
		rows = append(rows, Row(components[:n]...))
		components = components[n:]
	}
	return rows
}

func Button(style int, label, customID string) Component {
	return Component{Type: componentButton, Style: style, Label: label, CustomID: customID}
}

func LinkButton(label, url string) Component {
	return Component{Type: componentButton, Style: StyleLink, Label: label, URL: url}
}

func Select(customID, placeholder string, options []SelectOption) Component {
	return Component{
		Type:        componentSelectMenu,
		CustomID:    customID,
		Placeholder: placeholder,
		Options:     options,
	}
}
