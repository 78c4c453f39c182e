package errors

import (
	"encoding/json"
	"fmt"
	"net/http"
)

var ErrNotFound = fmt.Errorf("not found")
var ErrValidation = fmt.Errorf("validation error")
var ErrComposition = fmt.Errorf("composition error")
var ErrRemoteCall = fmt.Errorf("remote call failure")
var ErrUnknownOperation = fmt.Errorf("unknown operation")
var ErrInternal = fmt.Errorf("internal error")
var ErrRequest = fmt.Errorf("request error")
var ErrBadResponse = fmt.Errorf("bad response")
var ErrUnauthorized = fmt.Errorf("unauthorized")

type myError struct {
	msg    string
	target error
}

func (m myError) Error() string        { return m.msg }
func (m myError) Is(target error) bool { return target == m.target }

func NewNotFoundError(msg string) error {
	return &myError{
		msg:    msg,
		target: ErrNotFound,
	}
}

func NewValidationError(msg string) error {
	return &myError{
		msg:    msg,
		target: ErrValidation,
	}
}

func NewCompositionError(msg string) error {
	return &myError{
		msg:    msg,
		target: ErrComposition,
	}
}

func NewRemoteCallError(msg string) error {
	return &myError{
		msg:    msg,
		target: ErrRemoteCall,
	}
}

func NewUnknownOperationError(msg string) error {
	return &myError{
		msg:    msg,
		target: ErrUnknownOperation,
	}
}

func NewUnauthorizedError(msg string) error {
	return &myError{
		msg:    msg,
		target: ErrUnauthorized,
	}
}

const (
	typeNotFound         string = "https://diwise.io/federation/errors/NotFound"
	typeValidation       string = "https://diwise.io/federation/errors/ValidationError"
	typeUnknownOperation string = "https://diwise.io/federation/errors/UnknownOperation"
	typeUnauthorized     string = "https://diwise.io/federation/errors/Unauthorized"
	typeInternal         string = "https://diwise.io/federation/errors/InternalError"
)

// NewErrorFromProblemReport converts a problem report returned by a subgraph
// into an error that matches one of the sentinel errors in this package.
func NewErrorFromProblemReport(code int, contentType string, body []byte) error {
	report := &struct {
		Type   string `json:"type"`
		Title  string `json:"title"`
		Detail string `json:"detail"`
	}{}

	err := json.Unmarshal(body, report)
	if err != nil {
		return fmt.Errorf("failed to process problem report (%s) from subgraph: %s (%w)", contentType, err.Error(), ErrBadResponse)
	}

	switch report.Type {
	case typeValidation:
		return NewValidationError(report.Detail)
	case typeUnknownOperation:
		return NewUnknownOperationError(report.Detail)
	case typeUnauthorized:
		return NewUnauthorizedError(report.Detail)
	case typeNotFound:
		return NewNotFoundError(report.Detail)
	}

	if code == http.StatusNotFound {
		return NewNotFoundError(report.Detail)
	}

	return NewInternalError(
		fmt.Sprintf("[code: %d] unknown problem report of type \"%s\" with detail \"%s\" received",
			code, report.Type, report.Detail,
		),
		"",
	)
}

// ProblemDetailsImpl stores details about a certain problem according to RFC7807
// See https://tools.ietf.org/html/rfc7807
type ProblemDetailsImpl struct {
	typ     string
	title   string
	detail  string
	code    int
	traceID string
}

const (
	// ProblemReportContentType as required by https://tools.ietf.org/html/rfc7807
	ProblemReportContentType string = "application/problem+json"
)

// ValidationProblem reports that the request contains malformed or missing arguments
type ValidationProblem struct {
	ProblemDetailsImpl
}

func NewValidationProblem(detail, traceID string) *ValidationProblem {
	return &ValidationProblem{
		ProblemDetailsImpl: ProblemDetailsImpl{
			typ:     typeValidation,
			title:   "Validation Error",
			detail:  detail,
			code:    http.StatusBadRequest,
			traceID: traceID,
		},
	}
}

func ReportValidationError(w http.ResponseWriter, detail, traceID string) {
	NewValidationProblem(detail, traceID).WriteResponse(w)
}

// UnknownOperation reports that the subgraph has no resolver for the requested
// operation, entity type or extension field
type UnknownOperation struct {
	ProblemDetailsImpl
}

func NewUnknownOperation(detail, traceID string) *UnknownOperation {
	return &UnknownOperation{
		ProblemDetailsImpl: ProblemDetailsImpl{
			typ:     typeUnknownOperation,
			title:   "Unknown Operation",
			detail:  detail,
			code:    http.StatusNotFound,
			traceID: traceID,
		},
	}
}

func ReportUnknownOperationError(w http.ResponseWriter, detail, traceID string) {
	NewUnknownOperation(detail, traceID).WriteResponse(w)
}

// NotFound reports that a resource, other than an entity, could not be found
type NotFound struct {
	ProblemDetailsImpl
}

func NewNotFound(detail, traceID string) *NotFound {
	return &NotFound{
		ProblemDetailsImpl: ProblemDetailsImpl{
			typ:     typeNotFound,
			title:   "Not Found",
			detail:  detail,
			code:    http.StatusNotFound,
			traceID: traceID,
		},
	}
}

func ReportNotFoundError(w http.ResponseWriter, detail, traceID string) {
	NewNotFound(detail, traceID).WriteResponse(w)
}

type UnauthorizedRequest struct {
	ProblemDetailsImpl
}

func NewUnauthorizedRequest(detail, traceID string) *UnauthorizedRequest {
	return &UnauthorizedRequest{
		ProblemDetailsImpl: ProblemDetailsImpl{
			typ:     typeUnauthorized,
			title:   "Unauthorized Request",
			detail:  detail,
			code:    http.StatusUnauthorized,
			traceID: traceID,
		},
	}
}

func ReportUnauthorizedRequest(w http.ResponseWriter, detail, traceID string) {
	NewUnauthorizedRequest(detail, traceID).WriteResponse(w)
}

// InternalError reports that there has been an error during the operation execution
type InternalError struct {
	ProblemDetailsImpl
}

func (ie InternalError) Error() string {
	return ie.detail
}

func (ie InternalError) Is(target error) bool {
	return target == ErrInternal
}

func NewInternalError(detail, traceID string) *InternalError {
	return &InternalError{
		ProblemDetailsImpl: ProblemDetailsImpl{
			typ:     typeInternal,
			title:   "Internal Error",
			detail:  detail,
			code:    http.StatusInternalServerError,
			traceID: traceID,
		},
	}
}

func ReportNewInternalError(w http.ResponseWriter, detail, traceID string) {
	NewInternalError(detail, traceID).WriteResponse(w)
}

func (p *ProblemDetailsImpl) ContentType() string {
	return ProblemReportContentType
}

func (p *ProblemDetailsImpl) Type() string {
	return p.typ
}

func (p *ProblemDetailsImpl) Title() string {
	return p.title
}

func (p *ProblemDetailsImpl) Detail() string {
	return p.detail
}

// MarshalJSON is called when a ProblemDetailsImpl instance should be serialized to JSON
func (p *ProblemDetailsImpl) MarshalJSON() ([]byte, error) {
	var traceID *string

	if p.traceID != "" {
		traceID = &p.traceID
	}

	return json.Marshal(struct {
		Type    string  `json:"type"`
		Title   string  `json:"title"`
		Detail  string  `json:"detail"`
		TraceID *string `json:"traceID,omitempty"`
	}{
		Type:    p.typ,
		Title:   p.title,
		Detail:  p.detail,
		TraceID: traceID,
	})
}

// ResponseCode returns the HTTP response code to be used when returning a specific problem
func (p *ProblemDetailsImpl) ResponseCode() int {
	if p.code != 0 {
		return p.code
	}

	return http.StatusBadRequest
}

// WriteResponse writes the contents of this instance to a http.ResponseWriter
func (p *ProblemDetailsImpl) WriteResponse(w http.ResponseWriter) {
	w.Header().Add("Content-Type", p.ContentType())
	w.Header().Add("Content-Language", "en")
	w.WriteHeader(p.ResponseCode())

	pdbytes, err := json.MarshalIndent(p, "", "  ")
	if err == nil {
		w.Write(pdbytes)
	}
}
