package discord

import "encoding/json"

// Gateway op codes and interaction types, per the Discord v10 API.
const (
	opDispatch       = 0
	opHeartbeat      = 1
	opIdentify       = 2
	opReconnect      = 7
	opInvalidSession = 9
	opHello          = 10

	interactionTypePing      = 1
	interactionTypeCommand   = 2
	interactionTypeComponent = 3

	componentTypeButton     = 2
	componentTypeSelectMenu = 3

	callbackPong          = 1
	callbackReply         = 4
	callbackDeferredReply = 5
	callbackDeferredEdit  = 6

	flagEphemeral = 1 << 6

	optionTypeSubcommand = 1
	optionTypeAttachment = 11
)

type gatewayEnvelope struct {
	Op int             `json:"op"`
	T  string          `json:"t"`
	S  *int64          `json:"s"`
	D  json.RawMessage `json:"d"`
}

type gatewayHello struct {
	HeartbeatIntervalMS int64 `json:"heartbeat_interval"`
}

type gatewayReady struct {
	User wireUser `json:"user"`
}

type wireUser struct {
	ID         string `json:"id"`
	Username   string `json:"username"`
	GlobalName string `json:"global_name"`
	Bot        bool   `json:"bot"`
}

type wireMember struct {
	User wireUser `json:"user"`
}

type wireAttachment struct {
	ID          string `json:"id"`
	Filename    string `json:"filename"`
	ContentType string `json:"content_type"`
	URL         string `json:"url"`
	Size        int64  `json:"size"`
}

type wireOption struct {
	Name    string          `json:"name"`
	Type    int             `json:"type"`
	Value   json.RawMessage `json:"value"`
	Options []wireOption    `json:"options"`
}

type wireInteractionData struct {
	Name          string       `json:"name"`
	Options       []wireOption `json:"options"`
	CustomID      string       `json:"custom_id"`
	ComponentType int          `json:"component_type"`
	Values        []string     `json:"values"`
	Resolved      struct {
		Attachments map[string]wireAttachment `json:"attachments"`
	} `json:"resolved"`
}

type wireInteraction struct {
	ID     string              `json:"id"`
	Token  string              `json:"token"`
	Type   int                 `json:"type"`
	Data   wireInteractionData `json:"data"`
	Member *wireMember         `json:"member"`
	User   *wireUser           `json:"user"`
}

// author resolves the acting user from either the guild member or the
// DM user field.
func (i wireInteraction) author() wireUser {
	if i.Member != nil {
		return i.Member.User
	}
	if i.User != nil {
		return *i.User
	}
	return wireUser{}
}
