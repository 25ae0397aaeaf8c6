// ABOUTME: JSON-lines wire protocol between the wizard and a remote host
// ABOUTME: Requests carry id/method/params; navigation arrives as an id-less notification

package host

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Methods.
const (
	MethodInit              = "init"
	MethodGetSourceSettings = "getSourceSettings"
	MethodSetSourceSettings = "setSourceSettings"
	MethodCreateSource      = "createSource"
	MethodGetScenes         = "getScenes"
	MethodGetActiveScene    = "getActiveScene"
	MethodCreateSceneItem   = "createSceneItem"
	MethodNavigate          = "navigate"
	MethodUploadAsset       = "uploadAsset"

	// NotifyNavigation is sent by the host without an id.
	NotifyNavigation = "navigation"
)

// Standard JSON-RPC 2.0 error codes.
const (
	ErrCodeParse          = -32700
	ErrCodeInvalidReq     = -32600
	ErrCodeMethodNotFound = -32601
	ErrCodeInvalidParams  = -32602
	ErrCodeInternal       = -32603
)

// Host error codes.
const (
	ErrCodeNotReady = -32001
	ErrCodeNotFound = -32002
)

const maxLineSize = 16 * 1024 * 1024

// Message is one line on the wire. Requests set ID and Method, responses set
// ID and Result or Error, notifications set Method only.
type Message struct {
	ID     string          `json:"id,omitempty"`
	Method string          `json:"method,omitempty"`
	Params json.RawMessage `json:"params,omitempty"`
	Result json.RawMessage `json:"result,omitempty"`
	Error  *Error          `json:"error,omitempty"`
}

// Error is a protocol error.
type Error struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *Error) Error() string {
	return fmt.Sprintf("host error %d: %s", e.Code, e.Message)
}

// Unwrap maps host error codes onto the package sentinels.
func (e *Error) Unwrap() error {
	switch e.Code {
	case ErrCodeNotReady:
		return ErrNotReady
	case ErrCodeNotFound:
		return ErrNotFound
	}
	return nil
}

// NewMethodNotFoundError returns an Error for an unknown method.
func NewMethodNotFoundError(method string) *Error {
	return &Error{Code: ErrCodeMethodNotFound, Message: "method not found: " + method}
}

// NewInvalidParamsError returns an Error for undecodable params.
func NewInvalidParamsError(msg string) *Error {
	return &Error{Code: ErrCodeInvalidParams, Message: msg}
}

// toError converts a bridge failure into a protocol error.
func toError(err error) *Error {
	var perr *Error
	switch {
	case errors.As(err, &perr):
		return perr
	case errors.Is(err, ErrNotReady):
		return &Error{Code: ErrCodeNotReady, Message: err.Error()}
	case errors.Is(err, ErrNotFound):
		return &Error{Code: ErrCodeNotFound, Message: err.Error()}
	default:
		return &Error{Code: ErrCodeInternal, Message: err.Error()}
	}
}

type sourceParams struct {
	SourceID string `json:"sourceId"`
	Settings string `json:"settings,omitempty"`
}

type settingsResult struct {
	Settings *string `json:"settings"`
}

type createSourceParams struct {
	Name     string `json:"name"`
	Template string `json:"template"`
}

type sceneItemParams struct {
	SceneID  string `json:"sceneId"`
	SourceID string `json:"sourceId"`
}

type navigateParams struct {
	Target string `json:"target"`
}
