package model

import "fmt"

// DiagnosticKind classifies a non-fatal failure.
type DiagnosticKind string

const (
	DiagRPCError          DiagnosticKind = "rpc_error"
	DiagUnsupported       DiagnosticKind = "unsupported"
	DiagAdapterFailed     DiagnosticKind = "adapter_failed"
	DiagPricingUnresolved DiagnosticKind = "pricing_unresolved"
	DiagCancelled         DiagnosticKind = "cancelled"
)

// Diagnostic records a non-fatal failure for one component.
type Diagnostic struct {
	Component string         `json:"component"`
	Kind      DiagnosticKind `json:"kind"`
	Message   string         `json:"message"`
}

// NewDiagnostic formats a diagnostic message.
func NewDiagnostic(component string, kind DiagnosticKind, format string, args ...interface{}) Diagnostic {
	return Diagnostic{Component: component, Kind: kind, Message: fmt.Sprintf(format, args...)}
}
