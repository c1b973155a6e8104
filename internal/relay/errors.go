package relay

import "net/http"

// Kind classifies relay failures.
type Kind string

const (
	KindValidation Kind = "validation"
	KindNotFound   Kind = "not_found"
	KindTimeout    Kind = "timeout"
	KindUpstream   Kind = "upstream"
	KindInternal   Kind = "internal"
)

// Fallback texts shown to the user when the runtime cannot answer.
const (
	timeoutFallback  = "I apologize, but the service is currently not responding. Please try again later."
	internalFallback = "I encountered an error processing your message. Please try again later."
)

// Error is a classified relay failure. Message is the machine-readable
// error field; Text, when set, is the human-readable fallback a chat UI can
// display in place of a reply.
type Error struct {
	Kind    Kind
	Message string
	Text    string
}

func (e *Error) Error() string {
	return e.Message
}

// HTTPStatus maps the failure kind to its HTTP status code.
func (e *Error) HTTPStatus() int {
	switch e.Kind {
	case KindValidation:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindTimeout:
		return http.StatusRequestTimeout
	default:
		return http.StatusInternalServerError
	}
}
