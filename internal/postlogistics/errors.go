package postlogistics

import (
	"fmt"
	"strings"
)

// ConfigurationError reports a carrier configuration field that must be
// set before labels can be generated. It is never retried; an
// administrator has to fix the delivery method configuration.
type ConfigurationError struct {
	Field string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("missing configuration: please verify the %s on the PostLogistics delivery carrier", e.Field)
}

// AuthorizationError reports that the token endpoint returned no usable
// access token.
type AuthorizationError struct{}

func (*AuthorizationError) Error() string {
	return "authorization required: please verify the PostLogistics client ID and client secret on the delivery carrier"
}

// ErrNoAccessToken is returned when the OAuth response carries an empty
// or absent access_token.
var ErrNoAccessToken = &AuthorizationError{}

// TransportError carries the raw body of a non-200 response from the
// label endpoint, surfaced verbatim to aid diagnosis.
type TransportError struct {
	StatusCode int
	Body       string
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("error when communicating with the carrier API: %s", e.Body)
}

// CarrierError is one structured error entry returned by the carrier in
// the label response.
type CarrierError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e CarrierError) Error() string {
	return fmt.Sprintf("carrier API returned an error:\nError code: %s\nError message: %s", e.Code, e.Message)
}

// ValidationError wraps the carrier's structured item errors. Each
// code/message pair is surfaced individually.
type ValidationError struct {
	Errors []CarrierError
}

func (e *ValidationError) Error() string {
	msgs := make([]string, len(e.Errors))
	for i, ce := range e.Errors {
		msgs[i] = ce.Error()
	}
	return strings.Join(msgs, "\n")
}

// DomainError marks a validation failure in the shipment data itself,
// detected before any carrier call is made.
type DomainError struct {
	Reason string
}

func (e *DomainError) Error() string { return e.Reason }

var (
	// ErrNoPackagingServices is returned when no package of the
	// shipment carries any carrier service code.
	ErrNoPackagingServices = &DomainError{"no PostLogistics packaging services found on this shipment"}

	// ErrCODMixedOrders is returned when the packages mix products
	// from several commercial orders, making the cash on delivery
	// amount ambiguous.
	ErrCODMixedOrders = &DomainError{
		"the cash on delivery amount must be specified manually on the packages " +
			"when a package contains products from different sales orders",
	}

	// ErrCODPartialDelivery is returned when the shipment covers only
	// part of the linked order's movement lines.
	ErrCODPartialDelivery = &DomainError{
		"the cash on delivery amount must be specified manually on the packages " +
			"when a sales order is delivered in several delivery orders",
	}
)
