// Package clustererr implements the error taxonomy kubectl-smart's core is
// built on (spec §7): InputError, NotFound, Forbidden, Timeout, Unavailable,
// ParseError and Fatal. Classification is grounded on the kind of error
// sniffing kcli's internal/k8sclient.wrapConfigErr/wrapConnErr already do for
// kubeconfig and connection failures; this package generalizes that pattern
// into a reusable, typed classifier used by the client, collector and
// orchestrator layers alike.
package clustererr

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"strings"

	apierrors "k8s.io/apimachinery/pkg/api/errors"
)

// Kind is one of the seven error classes named in spec §7.
type Kind string

const (
	KindInput       Kind = "InputError"
	KindNotFound    Kind = "NotFound"
	KindForbidden   Kind = "Forbidden"
	KindTimeout     Kind = "Timeout"
	KindUnavailable Kind = "Unavailable"
	KindParse       Kind = "ParseError"
	KindFatal       Kind = "Fatal"
)

// Error wraps an underlying error with its classified Kind and an optional
// Source component name (used in --debug output and notes[]).
type Error struct {
	Kind   Kind
	Source string
	Err    error
}

func (e *Error) Error() string {
	if e.Source != "" {
		return fmt.Sprintf("%s (%s): %v", e.Kind, e.Source, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Kind, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// New wraps err with an explicit Kind and Source.
func New(kind Kind, source string, err error) *Error {
	if err == nil {
		return nil
	}
	return &Error{Kind: kind, Source: source, Err: err}
}

// Is reports whether err was wrapped with the given Kind.
func Is(err error, kind Kind) bool {
	var ce *Error
	if errors.As(err, &ce) {
		return ce.Kind == kind
	}
	return false
}

// KindOf returns the Kind of err, classifying it if it isn't already a
// *Error. Unclassifiable errors default to KindFatal.
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	var ce *Error
	if errors.As(err, &ce) {
		return ce.Kind
	}
	return Classify(err)
}

// Classify inspects a raw client-go/net error and returns the taxonomy Kind
// it belongs to. It never returns an empty Kind for a non-nil error.
func Classify(err error) Kind {
	if err == nil {
		return ""
	}

	switch {
	case apierrors.IsNotFound(err):
		return KindNotFound
	case apierrors.IsForbidden(err), apierrors.IsUnauthorized(err):
		return KindForbidden
	case apierrors.IsTimeout(err), apierrors.IsServerTimeout(err):
		return KindTimeout
	case apierrors.IsServiceUnavailable(err), apierrors.IsTooManyRequests(err):
		return KindUnavailable
	}

	var uerr *url.Error
	if errors.As(err, &uerr) {
		if ne, ok := uerr.Err.(net.Error); ok && ne.Timeout() {
			return KindTimeout
		}
	}

	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "context deadline exceeded"), strings.Contains(msg, "timed out"):
		return KindTimeout
	case strings.Contains(msg, "unauthorized"), strings.Contains(msg, "forbidden"):
		return KindForbidden
	case strings.Contains(msg, "not found"):
		return KindNotFound
	case strings.Contains(msg, "no such host"), strings.Contains(msg, "dial tcp"), strings.Contains(msg, "connection refused"):
		return KindUnavailable
	default:
		return KindFatal
	}
}

// Wrap classifies err (unless already classified) and attaches Source.
func Wrap(source string, err error) *Error {
	if err == nil {
		return nil
	}
	var ce *Error
	if errors.As(err, &ce) {
		if ce.Source == "" {
			ce.Source = source
		}
		return ce
	}
	return New(Classify(err), source, err)
}

// RemediationHint returns a short, user-facing suggestion for Forbidden,
// Unavailable and Timeout errors (the Forbidden one matches spec §7's
// "run `kubectl auth can-i ...`" example), and "" for any other kind.
func RemediationHint(kind Kind, verb, resource, namespace string) string {
	switch kind {
	case KindForbidden:
		ns := namespace
		if ns == "" {
			ns = "<namespace>"
		}
		return fmt.Sprintf("run `kubectl auth can-i %s %s -n %s` to confirm RBAC access", verb, resource, ns)
	case KindUnavailable:
		return "check cluster connectivity and that the API server is reachable"
	case KindTimeout:
		return "the cluster may be under load; consider raising performance.run_timeout_seconds in the config file"
	default:
		return ""
	}
}
