package router

// EventKind tells the router which dispatch table the event belongs to.
type EventKind int

const (
	KindCommand EventKind = iota
	KindButton
	KindSelect
)

func (k EventKind) String() string {
	switch k {
	case KindCommand:
		return "command"
	case KindButton:
		return "button"
	case KindSelect:
		return "select"
	default:
		return "unknown"
	}
}

// Attachment is a file the user attached to a command option.
type Attachment struct {
	ID          string
	Filename    string
	ContentType string
	URL         string
	Size        int64
}

// Event is a normalized interaction, decoupled from the gateway wire
// shape so handlers can be driven by fakes in tests.
type Event struct {
	Kind       EventKind
	Command    string
	Sub        string
	Options    map[string]string
	Attachment *Attachment
	CustomID   string
	Values     []string
	UserID     string
	Username   string
}

// Option returns a named command option, empty when absent.
func (e Event) Option(name string) string {
	return e.Options[name]
}
