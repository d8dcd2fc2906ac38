package boterr

import "errors"

var (
	ErrAuthExchange        = errors.New("authorization code rejected")
	ErrNotAuthenticated    = errors.New("not authenticated")
	ErrResourceNotFound    = errors.New("resource not found")
	ErrRemoteQuota         = errors.New("remote quota exceeded")
	ErrValidation          = errors.New("validation failed")
	ErrCredentialCorrupted = errors.New("credential corrupted")
	ErrUnknownAction       = errors.New("unknown action")
)
