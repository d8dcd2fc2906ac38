package router

import (
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/hinabot/hinabot/internal/boterr"
)

// Delimiter separates the segments of a component custom id. Colon is
// safe because Drive file ids and the other embedded values never
// contain it; free text travels through EncodeParam.
const Delimiter = ":"

// ActionID is the decoded form of a component custom id:
// action[:sub[:params...]].
type ActionID struct {
	Action string
	Sub    string
	Params []string
}

// ParseActionID decodes a raw custom id. An empty id or empty leading
// segment is rejected; trailing segments may be empty.
func ParseActionID(raw string) (ActionID, error) {
	if raw == "" {
		return ActionID{}, fmt.Errorf("%w: empty custom id", boterr.ErrUnknownAction)
	}
	parts := strings.Split(raw, Delimiter)
	if parts[0] == "" {
		return ActionID{}, fmt.Errorf("%w: custom id %q has no action", boterr.ErrUnknownAction, raw)
	}
	id := ActionID{Action: parts[0]}
	if len(parts) > 1 {
		id.Sub = parts[1]
	}
	if len(parts) > 2 {
		id.Params = parts[2:]
	}
	return id, nil
}

// BuildActionID assembles a custom id, refusing segments that would
// corrupt the encoding.
func BuildActionID(action, sub string, params ...string) (string, error) {
	segments := append([]string{action, sub}, params...)
	for index, segment := range segments {
		if index == 0 && segment == "" {
			return "", fmt.Errorf("%w: action segment is empty", boterr.ErrValidation)
		}
		if strings.Contains(segment, Delimiter) {
			return "", fmt.Errorf("%w: segment %q contains %q", boterr.ErrValidation, segment, Delimiter)
		}
	}
	if sub == "" && len(params) == 0 {
		return action, nil
	}
	return strings.Join(segments, Delimiter), nil
}

// EncodeParam makes arbitrary text safe to embed in a custom id.
func EncodeParam(value string) string {
	return base64.RawURLEncoding.EncodeToString([]byte(value))
}

// DecodeParam reverses EncodeParam.
func DecodeParam(encoded string) (string, error) {
	raw, err := base64.RawURLEncoding.DecodeString(encoded)
	if err != nil {
		return "", fmt.Errorf("%w: malformed parameter", boterr.ErrUnknownAction)
	}
	return string(raw), nil
}
