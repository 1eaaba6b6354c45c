// Package apperr defines the error kinds a report run can end with. Every
// kind carries a short user-facing message and a separate technical detail;
// the two are never merged so a caller can show one and hide the other.
package apperr

import (
	stderrs "errors"
	"fmt"
	"strings"
)

// Kind classifies an error for exit codes and presentation.
type Kind uint8

const (
	// KindUnknown is any error not produced by this package.
	KindUnknown Kind = iota

	// KindConnectivity means the relay could not be reached.
	KindConnectivity

	// KindUpstream means the relay answered with a non-success status.
	KindUpstream

	// KindProtocol means a response did not have the expected shape.
	KindProtocol

	// KindValidation means caller-supplied configuration is invalid.
	KindValidation

	// KindNotFound means identity resolution found no matching user.
	KindNotFound

	// KindNoData means the run finished without a single report row.
	KindNoData
)

func (k Kind) String() string {
	switch k {
	case KindConnectivity:
		return "connectivity"
	case KindUpstream:
		return "upstream"
	case KindProtocol:
		return "protocol"
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not_found"
	case KindNoData:
		return "no_data"
	default:
		return "unknown"
	}
}

// ConnectivityError is returned when the relay is unreachable.
type ConnectivityError struct {
	cause error
}

// NewConnectivity wraps a transport failure.
func NewConnectivity(cause error) *ConnectivityError {
	return &ConnectivityError{cause: cause}
}

func (e *ConnectivityError) Error() string {
	return "Unable to connect to server. Please check that the relay is running and your network connection."
}

func (e *ConnectivityError) Unwrap() error { return e.cause }

// Detail returns the transport failure text.
func (e *ConnectivityError) Detail() string {
	if e.cause == nil {
		return ""
	}
	return e.cause.Error()
}

// UpstreamError is returned when the relay reports a failed upstream call.
type UpstreamError struct {
	Message string
	Status  int
	Details string
}

// DefaultUpstreamMessage is used when the relay supplies no error text.
const DefaultUpstreamMessage = "Failed to fetch data from Jira"

func (e *UpstreamError) Error() string {
	return e.Message
}

// Detail returns the status and any details the relay supplied.
func (e *UpstreamError) Detail() string {
	var b strings.Builder
	fmt.Fprintf(&b, "HTTP status: %d", e.Status)
	if e.Details != "" {
		b.WriteString("\nResponse details:\n")
		b.WriteString(e.Details)
	}
	return b.String()
}

// ProtocolError is returned when a response violates the expected contract.
type ProtocolError struct {
	Message string
	Body    string
}

func (e *ProtocolError) Error() string { return e.Message }

// Detail returns the offending response body, if captured.
func (e *ProtocolError) Detail() string { return e.Body }

// ValidationError is returned before any network call when the supplied
// configuration is unusable.
type ValidationError struct {
	Message string
	Fields  []string
}

// Validationf builds a ValidationError with a formatted message.
func Validationf(format string, a ...any) *ValidationError {
	return &ValidationError{Message: fmt.Sprintf(format, a...)}
}

func (e *ValidationError) Error() string { return e.Message }

// Detail lists the offending fields, one per line.
func (e *ValidationError) Detail() string { return strings.Join(e.Fields, "\n") }

// NotFoundError is returned when no user matches the searched email.
type NotFoundError struct {
	Email string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("No user found with email %s", e.Email)
}

// Detail has nothing to add beyond the message.
func (e *NotFoundError) Detail() string { return "" }

// NoDataError ends a run that produced no report rows. AllFailed separates
// "every detail fetch failed" from "nothing matched".
type NoDataError struct {
	AllFailed bool
	Failures  []string
}

func (e *NoDataError) Error() string {
	if e.AllFailed {
		return "Failed to retrieve any work logs."
	}
	return "No work logs found for the specified user and time period."
}

// Detail lists the per-issue failures, if any.
func (e *NoDataError) Detail() string {
	if len(e.Failures) == 0 {
		return ""
	}
	return "Errors encountered:\n" + strings.Join(e.Failures, "\n")
}

// KindOf reports the kind of err, looking through wrapping.
func KindOf(err error) Kind {
	var (
		conn *ConnectivityError
		up   *UpstreamError
		prot *ProtocolError
		val  *ValidationError
		nf   *NotFoundError
		nd   *NoDataError
	)
	switch {
	case err == nil:
		return KindUnknown
	case stderrs.As(err, &val):
		return KindValidation
	case stderrs.As(err, &conn):
		return KindConnectivity
	case stderrs.As(err, &up):
		return KindUpstream
	case stderrs.As(err, &prot):
		return KindProtocol
	case stderrs.As(err, &nf):
		return KindNotFound
	case stderrs.As(err, &nd):
		return KindNoData
	default:
		return KindUnknown
	}
}

type detailer interface {
	error
	Detail() string
}

// Describe splits err into the short message shown to a user and the
// technical detail disclosed on request. For wrapped errors the message is
// the innermost error of ours; the detail adds the full wrapped chain.
func Describe(err error) (message, detail string) {
	if err == nil {
		return "", ""
	}
	var d detailer
	if !stderrs.As(err, &d) {
		return err.Error(), ""
	}
	message = d.Error()
	detail = d.Detail()
	if chain := err.Error(); chain != message {
		if detail != "" {
			detail = chain + "\n" + detail
		} else {
			detail = chain
		}
	}
	return message, detail
}

// ExitCode maps an error to the process exit status.
func ExitCode(err error) int {
	switch KindOf(err) {
	case KindValidation:
		return 2
	case KindNotFound:
		return 3
	case KindNoData:
		return 4
	default:
		return 1
	}
}
