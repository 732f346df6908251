// Package display provides human-readable names for machine codes.
//
// Rule: code is for machines, words are for humans.
// Use these functions in CLI output and reports. Keep raw codes for JSON
// fields, map keys, and equality comparisons.
package display

import "fmt"

// --- Case labels ---

var caseLabels = map[string]string{
	"reuse":   "Reuse as-is",
	"extend":  "Extend (last-mile steps needed)",
	"explore": "Explore (no known route)",
}

// CaseLabel returns the human-readable ranking tier. Unknown codes are
// returned as-is.
func CaseLabel(code string) string {
	if name, ok := caseLabels[code]; ok {
		return name
	}
	return code
}

// --- Verdicts ---

var verdicts = map[string]string{
	"approve": "Approved",
	"reject":  "Rejected",
	"note":    "Noted",
}

// Verdict returns the human-readable verdict name.
func Verdict(code string) string {
	if name, ok := verdicts[code]; ok {
		return name
	}
	return code
}

// --- Entity kinds ---

var entityKinds = map[string]string{
	"route":      "Scenario route",
	"target":     "Target page",
	"delta":      "Last-mile delta",
	"validation": "Validation",
	"plan":       "Plan",
}

// EntityKind returns the human-readable feedback namespace name.
func EntityKind(code string) string {
	if name, ok := entityKinds[code]; ok {
		return name
	}
	return code
}

// --- Invocation resolution states ---

// Resolution names the call-graph state for a candidate count:
// 0 unresolved, 1 resolved, >1 ambiguous.
func Resolution(candidates int) string {
	switch {
	case candidates == 0:
		return "unresolved"
	case candidates == 1:
		return "resolved"
	default:
		return fmt.Sprintf("ambiguous (%d candidates)", candidates)
	}
}

// Distance renders a graph distance, naming the unreachable sentinel.
func Distance(d int, unreachable int) string {
	if d == unreachable {
		return "unreachable"
	}
	return fmt.Sprintf("%d", d)
}
