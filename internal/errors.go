package internal

import "net/http"

const (
	// ErrCodeUnknown is the error code for unknown errors
	ErrCodeUnknown = "UNKNOWN_ERROR"
	// ErrCodeValidationFailed is returned when an incoming payload fails a field or
	// cross-field validation rule - the error message names the offending field
	ErrCodeValidationFailed = "VALIDATION_FAILED"
	// ErrCodeIllegalJSON is returned when the request did not contain a valid JSON body
	ErrCodeIllegalJSON = "ILLEGAL_JSON_REQUEST"
	// ErrCodeEventNotFound is returned when an operation works on an event that does not exist
	ErrCodeEventNotFound = "EVENT_NOT_FOUND"
	// ErrCodeStoreError is returned when reading or writing the event collection file fails
	ErrCodeStoreError = "STORE_ACCESS_FAILED"
	// ErrCodeStorageDeleteFailed is returned when the object storage refused to delete
	// a batch of no-longer-referenced assets - the triggering mutation is aborted
	ErrCodeStorageDeleteFailed = "STORAGE_DELETE_FAILED"
	// ErrCodeStorageUploadFailed is returned when storing an uploaded media file fails
	ErrCodeStorageUploadFailed = "STORAGE_UPLOAD_FAILED"
	// ErrCodeIllegalUpload is returned when an uploaded file is missing or not a
	// usable media file
	ErrCodeIllegalUpload = "ILLEGAL_UPLOAD"
	// ErrCodeLoginFailed is returned when the user fails to login for some reason
	ErrCodeLoginFailed = "LOGIN_FAILED"
	// ErrCodeNotLoggedIn is returned when the user tried to access an API that needs a
	// logged-in user, but the user has no authenticated session
	ErrCodeNotLoggedIn = "NOT_LOGGED_IN"
	// ErrCodeRepoError is returned when a request to a repo fails with an error
	ErrCodeRepoError = "STORAGE_QUERY_FAILED"
)

// HTTPError is an error that contains information about the error message to return to the client
type HTTPError struct {
	message string
	code    string
	status  int
	data    interface{}
}

// MakeError creates a new HTTPError with the given contents
func MakeError(status int, code, message string) *HTTPError {
	return MakeErrorWithData(status, code, message, nil)
}

// MakeErrorWithData creates a new HTTPError with the given contents and an additional data element
func MakeErrorWithData(status int, code, message string, data interface{}) *HTTPError {
	return &HTTPError{message, code, status, data}
}

// MakeValidationError creates the HTTPError used for all payload validation failures
func MakeValidationError(message string) *HTTPError {
	return MakeError(http.StatusBadRequest, ErrCodeValidationFailed, message)
}

// Error implements the errorer interface
func (e *HTTPError) Error() string {
	return e.message
}

// Status returns the HTTP status that should be returned
func (e *HTTPError) Status() int {
	return e.status
}

// ErrorCode returns the machine-readable error code
func (e *HTTPError) ErrorCode() string {
	return e.code
}

// Data returns additional data about the error
func (e *HTTPError) Data() interface{} {
	return e.data
}
