// Package taxonomy defines the failure classification system and the
// deterministic lesson templates keyed by it.
//
// # Error Classes
//
// Failure events carry a free-form error type; the taxonomy folds it into
// one of nine canonical classes: validation, type, syntax, not-found,
// permission, timeout, network, memory, and unknown. Two additional
// synthetic classes cover groups without a dominant failure: success
// (success-dominant groups) and mixed (conflicting outcomes).
//
// # Templates
//
// Every class maps to a problem/condition/solution template rendered with
// the skill name. Rendering is purely deterministic: the same group
// always yields the same lesson text, which is what makes exact
// deduplication in the candidate pool possible.
package taxonomy

import (
	"fmt"
	"strings"
)

// ErrorClass is a canonical failure category.
type ErrorClass string

const (
	// ClassValidation covers schema and input validation failures.
	ClassValidation ErrorClass = "validation"

	// ClassType covers type mismatches and conversion failures.
	ClassType ErrorClass = "type"

	// ClassSyntax covers parse and syntax failures.
	ClassSyntax ErrorClass = "syntax"

	// ClassNotFound covers missing files, commands, and resources.
	ClassNotFound ErrorClass = "not-found"

	// ClassPermission covers access-denied failures.
	ClassPermission ErrorClass = "permission"

	// ClassTimeout covers deadline and hang failures.
	ClassTimeout ErrorClass = "timeout"

	// ClassNetwork covers connectivity failures.
	ClassNetwork ErrorClass = "network"

	// ClassMemory covers resource exhaustion.
	ClassMemory ErrorClass = "memory"

	// ClassUnknown is the fallback for unrecognized error types.
	ClassUnknown ErrorClass = "unknown"

	// ClassSuccess marks success-dominant groups.
	ClassSuccess ErrorClass = "success"

	// ClassMixed marks groups with conflicting outcomes.
	ClassMixed ErrorClass = "mixed"
)

// classAliases maps normalized error-type substrings to classes. Checked
// in order so the more specific markers win.
var classAliases = []struct {
	marker string
	class  ErrorClass
}{
	{"validation", ClassValidation},
	{"invalid", ClassValidation},
	{"schema", ClassValidation},
	{"typeerror", ClassType},
	{"type", ClassType},
	{"syntax", ClassSyntax},
	{"parse", ClassSyntax},
	{"not-found", ClassNotFound},
	{"not_found", ClassNotFound},
	{"notfound", ClassNotFound},
	{"enoent", ClassNotFound},
	{"missing", ClassNotFound},
	{"permission", ClassPermission},
	{"denied", ClassPermission},
	{"eacces", ClassPermission},
	{"forbidden", ClassPermission},
	{"timeout", ClassTimeout},
	{"timed out", ClassTimeout},
	{"deadline", ClassTimeout},
	{"network", ClassNetwork},
	{"connection", ClassNetwork},
	{"econnrefused", ClassNetwork},
	{"dns", ClassNetwork},
	{"memory", ClassMemory},
	{"oom", ClassMemory},
	{"enomem", ClassMemory},
}

// Classify folds a free-form error type into its canonical class.
// Empty input means the event succeeded and classifies as success.
func Classify(errorType string) ErrorClass {
	raw := strings.ToLower(strings.TrimSpace(errorType))
	if raw == "" {
		return ClassSuccess
	}
	for _, alias := range classAliases {
		if strings.Contains(raw, alias.marker) {
			return alias.class
		}
	}
	return ClassUnknown
}

// Template is a deterministic lesson text template. Each field is a
// fmt format string taking the skill name once.
type Template struct {
	// Problem describes what goes wrong.
	Problem string

	// Condition describes when the lesson applies.
	Condition string

	// Solution describes the remedy.
	Solution string
}

// Render fills the template with the skill name.
func (t Template) Render(skill string) (problem, condition, solution string) {
	return fmt.Sprintf(t.Problem, skill),
		fmt.Sprintf(t.Condition, skill),
		fmt.Sprintf(t.Solution, skill)
}

// templates is the class-keyed template table.
var templates = map[ErrorClass]Template{
	ClassValidation: {
		Problem:   "%s fails input validation",
		Condition: "when invoking %s with unchecked arguments",
		Solution:  "validate arguments against the expected schema before invoking %s",
	},
	ClassType: {
		Problem:   "%s fails with type mismatches",
		Condition: "when passing loosely-typed data to %s",
		Solution:  "check and convert value types explicitly before calling %s",
	},
	ClassSyntax: {
		Problem:   "%s fails with syntax errors",
		Condition: "when generating code or config consumed by %s",
		Solution:  "lint or parse the generated content before handing it to %s",
	},
	ClassNotFound: {
		Problem:   "%s fails because a file or resource is missing",
		Condition: "when %s references paths that may not exist",
		Solution:  "verify the target exists before running %s, and create it if absent",
	},
	ClassPermission: {
		Problem:   "%s fails with permission errors",
		Condition: "when %s touches protected files or directories",
		Solution:  "check access rights first and fall back to a user-writable location for %s",
	},
	ClassTimeout: {
		Problem:   "%s fails by exceeding its time limit",
		Condition: "when %s runs against large inputs or slow dependencies",
		Solution:  "raise the timeout or split the work into smaller %s invocations",
	},
	ClassNetwork: {
		Problem:   "%s fails with network errors",
		Condition: "when %s depends on remote endpoints",
		Solution:  "add a bounded retry with backoff around %s and confirm connectivity first",
	},
	ClassMemory: {
		Problem:   "%s fails by exhausting memory",
		Condition: "when %s processes large data sets",
		Solution:  "stream or chunk the input instead of loading it whole into %s",
	},
	ClassUnknown: {
		Problem:   "%s fails repeatedly for an unclassified reason",
		Condition: "when running %s",
		Solution:  "inspect recent %s failures and capture a more specific error type",
	},
	ClassSuccess: {
		Problem:   "%s succeeds consistently",
		Condition: "when running %s as currently configured",
		Solution:  "keep the current %s approach; it is working",
	},
	ClassMixed: {
		Problem:   "%s produces inconsistent results",
		Condition: "when running %s across varied inputs",
		Solution:  "compare failing and succeeding %s runs to isolate the varying factor",
	},
}

// TemplateFor returns the template for a class, falling back to the
// unknown-class template so rendering never fails.
func TemplateFor(class ErrorClass) Template {
	if t, ok := templates[class]; ok {
		return t
	}
	return templates[ClassUnknown]
}

// Classes lists every canonical class with a template, for docs and
// validation.
func Classes() []ErrorClass {
	return []ErrorClass{
		ClassValidation, ClassType, ClassSyntax, ClassNotFound,
		ClassPermission, ClassTimeout, ClassNetwork, ClassMemory,
		ClassUnknown, ClassSuccess, ClassMixed,
	}
}
