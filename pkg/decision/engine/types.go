package engine

import (
	"strings"
	"time"
)

// DecisionError is the decision reported when a walk terminates in a
// recoverable error state (no branch matched, or no answer was relevant
// to the current question).
const DecisionError = "Error"

// defaultReason is reported for leaf nodes whose text carries no
// " - Reason" suffix.
const defaultReason = "No specific reason provided."

// leafSeparator splits a leaf's decision text from its reason.
const leafSeparator = " - "

// Answer is a single named answer value supplied at lookup time.
type Answer struct {
	Name  string
	Value interface{}
}

// Answers is an ordered set of named answers. Order matters twice over:
// answers are matched against question text in this order, and the first
// answer whose term appears in the question wins. A slice rather than a
// map keeps that order explicit (Go map iteration is randomized).
type Answers []Answer

// NewAnswers constructs an answer set from the given answers in order.
func NewAnswers(answers ...Answer) Answers {
	return Answers(answers)
}

// Add appends an answer, or replaces the value in place if the name is
// already present, preserving the original position.
func (a Answers) Add(name string, value interface{}) Answers {
	for i := range a {
		if a[i].Name == name {
			a[i].Value = value
			return a
		}
	}
	return append(a, Answer{Name: name, Value: value})
}

// Get returns the value for name and whether it was present.
func (a Answers) Get(name string) (interface{}, bool) {
	for i := range a {
		if a[i].Name == name {
			return a[i].Value, true
		}
	}
	return nil, false
}

// Term returns the normalized question term for this answer: the name
// with separator characters replaced by spaces, e.g. "loan_amount"
// becomes "loan amount". The term is matched against question text by
// substring containment.
func (ans Answer) Term() string {
	return termReplacer.Replace(ans.Name)
}

var termReplacer = strings.NewReplacer("_", " ", "-", " ")

// Result is the outcome of walking a decision tree.
type Result struct {
	// Decision is the final decision text, or DecisionError for
	// recoverable failure states.
	Decision string `json:"decision"`

	// Reason explains the decision. For leaves without a reason suffix
	// it is the default sentence; for error states it describes what
	// went wrong.
	Reason string `json:"reason"`

	// PathTaken is the ordered trace of matched conditions, one entry
	// per branch descended. Error results preserve the path accumulated
	// up to the failure.
	PathTaken []string `json:"path_taken"`

	// EvaluationTime is the total time taken by the walk.
	EvaluationTime time.Duration `json:"evaluation_time"`
}

// IsError returns true if the result represents a recoverable error
// state rather than a leaf decision.
func (r *Result) IsError() bool {
	return r.Decision == DecisionError
}
