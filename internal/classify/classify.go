package classify

import (
	"tidy/internal/scan"
)

// Rule evaluates one descriptor. The boolean reports whether the rule
// claimed the file; a claimed file may still be skipped with a
// rule-specific reason.
type Rule interface {
	Name() string
	Evaluate(desc scan.Descriptor) (Decision, bool)
}

// Classify returns the decision of the first matching rule, in order.
func Classify(desc scan.Descriptor, rules []Rule) Decision {
	for _, rule := range rules {
		decision, ok := rule.Evaluate(desc)
		if !ok {
			continue
		}
		decision.Rule = rule.Name()
		return decision
	}
	return Skip(ReasonNoRule)
}
