// Package contract reports programmer-contract violations.
//
// A violation is a caller bug, not a runtime condition: every assertion
// panics with a *Violation so that tests can recover and inspect it.
package contract

import "fmt"

// Kind tells which part of a contract was broken.
type Kind int

const (
	// KindParams marks an invalid argument.
	KindParams Kind = iota
	// KindState marks an operation called on an instance in the wrong state.
	KindState
	// KindInterface marks a driver lacking a required capability.
	KindInterface
)

func (k Kind) String() string {
	switch k {
	case KindParams:
		return "params"
	case KindState:
		return "state"
	case KindInterface:
		return "interface"
	default:
		return "unknown"
	}
}

// Violation is the panic value raised by the assertions in this package.
type Violation struct {
	Kind    Kind
	Message string
}

func (v *Violation) Error() string {
	return fmt.Sprintf("contract violation (%s): %s", v.Kind, v.Message)
}

// AssertParams panics when ok is false.
func AssertParams(ok bool, message string) {
	if !ok {
		panic(&Violation{Kind: KindParams, Message: message})
	}
}

// AssertState panics when ok is false.
func AssertState(ok bool, message string) {
	if !ok {
		panic(&Violation{Kind: KindState, Message: message})
	}
}

// AssertInterface panics when ok is false.
func AssertInterface(ok bool, message string) {
	if !ok {
		panic(&Violation{Kind: KindInterface, Message: message})
	}
}

// Recover converts a recovered panic value into a *Violation. It returns nil
// when v is nil and re-panics for any other value.
func Recover(v any) *Violation {
	if v == nil {
		return nil
	}
	if violation, ok := v.(*Violation); ok {
		return violation
	}
	panic(v)
}

// Catch runs fn and returns the violation it raised, or nil if it returned
// normally.
func Catch(fn func()) (v *Violation) {
	defer func() { v = Recover(recover()) }()
	fn()
	return nil
}
