package api

// HTTPError is returned by endpoint handlers. Message and Code are sent to
// the client; ErrorLog is only logged.
type HTTPError struct {
	StatusCode int
	Code       string
	Message    string
	ErrorLog   error
}

func (e *HTTPError) Error() string {
	return e.Message
}

func (e *HTTPError) Unwrap() error {
	return e.ErrorLog
}

type ApiError struct {
	Error string `json:"message"`
	Code  string `json:"code,omitempty"`
}
