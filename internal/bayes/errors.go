package bayes

import (
	"errors"
	"fmt"
)

var (
	// ErrConfiguration is returned when a network's structure or tables are malformed.
	ErrConfiguration = errors.New("invalid network configuration")

	// ErrInvalidEvidence is returned when a query's evidence cannot be used.
	ErrInvalidEvidence = errors.New("invalid evidence")
)

// ConfigurationError describes a malformed variable, edge or CPT.
type ConfigurationError struct {
	Variable string
	Reason   string
}

func (e *ConfigurationError) Error() string {
	if e.Variable == "" {
		return fmt.Sprintf("%v: %s", ErrConfiguration, e.Reason)
	}
	return fmt.Sprintf("%v: %s: %s", ErrConfiguration, e.Variable, e.Reason)
}

func (e *ConfigurationError) Unwrap() error { return ErrConfiguration }

// EvidenceError describes why an evidence assignment was rejected.
type EvidenceError struct {
	Variable string
	Reason   string
}

func (e *EvidenceError) Error() string {
	if e.Variable == "" {
		return fmt.Sprintf("%v: %s", ErrInvalidEvidence, e.Reason)
	}
	return fmt.Sprintf("%v: %s: %s", ErrInvalidEvidence, e.Variable, e.Reason)
}

func (e *EvidenceError) Unwrap() error { return ErrInvalidEvidence }

func configErr(variable, format string, args ...interface{}) error {
	return &ConfigurationError{Variable: variable, Reason: fmt.Sprintf(format, args...)}
}

func evidenceErr(variable, format string, args ...interface{}) error {
	return &EvidenceError{Variable: variable, Reason: fmt.Sprintf(format, args...)}
}
