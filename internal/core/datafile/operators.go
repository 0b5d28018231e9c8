package datafile

import (
	"fmt"
	"time"
)

// Supported operators for dynamically defined operations.
const (
	OpLast   = "last"
	OpMulti  = "multi"
	OpStdDev = "stddev"
)

// OpSpec describes an operation built at runtime, e.g. from a stat
// definition file or from request parameters.
type OpSpec struct {
	Operator string
	Keys     []string
	Age      time.Duration // multi and stddev only
	Decorate []string
	Reverse  bool
}

type builder func(OpSpec) (Aggregator, error)

// Operators is the registry of operators available to Build.
var Operators = map[string]builder{
	OpLast: func(s OpSpec) (Aggregator, error) {
		return NewLast(s.Keys, s.Decorate...), nil
	},
	OpMulti: func(s OpSpec) (Aggregator, error) {
		if s.Age <= 0 {
			return nil, fmt.Errorf("multi: age must be positive, got %s", s.Age)
		}
		return NewMulti(s.Keys, s.Age, MultiOptions{Decorate: s.Decorate, Reverse: s.Reverse}), nil
	},
	OpStdDev: func(s OpSpec) (Aggregator, error) {
		if len(s.Decorate) > 0 {
			return nil, fmt.Errorf("stddev: %w", ErrDecorateUnsupported)
		}
		if len(s.Keys) != 1 {
			return nil, fmt.Errorf("stddev: exactly one key required, got %d", len(s.Keys))
		}
		if s.Age <= 0 {
			return nil, fmt.Errorf("stddev: age must be positive, got %s", s.Age)
		}
		return NewStdDev(s.Keys[0], s.Age), nil
	},
}

// ValidOperator reports whether op is a registered operator.
func ValidOperator(op string) bool {
	_, ok := Operators[op]
	return ok
}

// Build constructs the aggregator described by spec.
func Build(spec OpSpec) (Aggregator, error) {
	build, ok := Operators[spec.Operator]
	if !ok {
		return nil, fmt.Errorf("%w %q", ErrUnknownAggregator, spec.Operator)
	}
	if len(spec.Keys) == 0 {
		return nil, fmt.Errorf("%s: at least one key required", spec.Operator)
	}
	return build(spec)
}
