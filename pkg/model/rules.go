package model

import (
	"fmt"

	"github.com/goliatone/go-docrules/pkg/visibility/expr"
)

// RuleKind identifies a validation rule.
type RuleKind string

const (
	RuleRequired  RuleKind = "required"
	RuleMaxLength RuleKind = "maxLength"
	RuleCustom    RuleKind = "custom"
)

// Severity classifies a validation finding.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// Rule is a single validation constraint. Custom rules fail when When holds
// (or is nil) and Assert does not; both predicates read document-level paths.
type Rule struct {
	Kind    RuleKind
	Max     int
	When    *expr.Expr
	Assert  *expr.Expr
	Message string
}

// Required fails on absent or empty values.
func Required() Rule {
	return Rule{Kind: RuleRequired}
}

// MaxLength fails when a string exceeds n runes. Failures are warnings.
func MaxLength(n int, message string) Rule {
	return Rule{Kind: RuleMaxLength, Max: n, Message: message}
}

// Custom fails when when holds and assert does not.
func Custom(when, assert *expr.Expr, message string) Rule {
	return Rule{Kind: RuleCustom, When: when, Assert: assert, Message: message}
}

// Severity reports the severity a failure of r carries. Length limits are
// advisory; everything else blocks.
func (r Rule) Severity() Severity {
	if r.Kind == RuleMaxLength {
		return SeverityWarning
	}
	return SeverityError
}

// DefaultMessage returns the message used when the rule does not set one.
func (r Rule) DefaultMessage() string {
	if r.Message != "" {
		return r.Message
	}
	switch r.Kind {
	case RuleRequired:
		return "Required"
	case RuleMaxLength:
		return fmt.Sprintf("Must be at most %d characters long", r.Max)
	default:
		return "Invalid value"
	}
}
