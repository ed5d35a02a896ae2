package model

import (
	"errors"
	"fmt"
	"net/http"
)

// InjectedMarkerKey marks a FaultError context as deliberately injected.
// Genuine unexpected errors never carry it.
const InjectedMarkerKey = "busybox"

// FaultError is the typed error raised for every injected fault. It carries
// the complete external contract so no caller needs to switch on the kind to
// know how to respond.
type FaultError struct {
	Kind              FaultKind
	Code              string
	HTTPStatus        int
	Message           string
	RetryAfterSeconds int
	Context           map[string]interface{}
}

func (f *FaultError) Error() string {
	return fmt.Sprintf("%s: %s", f.Code, f.Message)
}

// NewFaultError builds a FaultError from a taxonomy record, attaching the
// caller-supplied diagnostic context plus the injected marker.
func NewFaultError(record FaultRecord, context map[string]interface{}) *FaultError {
	mergedContext := make(map[string]interface{}, len(context)+2)
	for key, value := range context {
		mergedContext[key] = value
	}
	mergedContext["kind"] = string(record.Kind)
	mergedContext[InjectedMarkerKey] = true

	retryAfter := 0
	if record.HTTPStatus == http.StatusTooManyRequests {
		retryAfter = defaultRetryAfterSeconds
	}

	return &FaultError{
		Kind:              record.Kind,
		Code:              record.ErrorCode,
		HTTPStatus:        record.HTTPStatus,
		Message:           formatMessage(record, context),
		RetryAfterSeconds: retryAfter,
		Context:           mergedContext,
	}
}

const defaultRetryAfterSeconds = 30

func formatMessage(record FaultRecord, context map[string]interface{}) string {
	if route, ok := context["route"]; ok {
		return fmt.Sprintf("%s (route %v)", record.MessageTemplate, route)
	}
	return record.MessageTemplate
}

// AsFaultError unwraps err into a FaultError if one is anywhere in its chain.
func AsFaultError(err error) (*FaultError, bool) {
	var faultErr *FaultError
	if errors.As(err, &faultErr) {
		return faultErr, true
	}
	return nil, false
}

// IsInjected reports whether err is a deliberately injected fault rather than
// a genuine failure.
func IsInjected(err error) bool {
	faultErr, ok := AsFaultError(err)
	if !ok {
		return false
	}
	marked, ok := faultErr.Context[InjectedMarkerKey].(bool)
	return ok && marked
}
