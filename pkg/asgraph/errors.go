package asgraph

import "errors"

var (
	// ErrBuilderSealed is returned when a builder is used after Build
	ErrBuilderSealed = errors.New("builder already sealed")
	// ErrInvalidFamily is returned for an address family outside V4/V6
	ErrInvalidFamily = errors.New("invalid address family")
)
