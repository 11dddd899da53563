package hotspot

import "github.com/OldStager01/monitor-platform/pkg/models"

const (
	MinSeverity = 1
	MaxSeverity = 5

	heavyCountThreshold = 20
	lightCountThreshold = 3
)

// Classification is the outcome of classifying one (class, method) pair.
type Classification struct {
	Issue      models.IssueType
	Severity   int
	Suggestion string
}

// Classifier runs a rule table over stack symbols. The zero value is not
// usable; use NewClassifier.
type Classifier struct {
	rules []Rule
}

func NewClassifier(rules []Rule) *Classifier {
	if rules == nil {
		rules = DefaultRules
	}
	return &Classifier{rules: rules}
}

// Classify never fails and has no side effects.
func (c *Classifier) Classify(className, methodName string, count int) Classification {
	issue := c.match(className, methodName, count)
	return Classification{
		Issue:      issue,
		Severity:   Severity(issue, count),
		Suggestion: Advice(issue, className, methodName, count),
	}
}

func (c *Classifier) match(className, methodName string, count int) models.IssueType {
	for _, r := range c.rules {
		if r.Match(className, methodName, count) {
			return r.Issue(className, methodName)
		}
	}
	return models.IssueRoutine
}

// Severity adjusts the base severity of issue by how often it was seen.
func Severity(issue models.IssueType, count int) int {
	s := BaseSeverity(issue)
	switch {
	case count >= heavyCountThreshold:
		s++
	case count <= lightCountThreshold:
		s--
	}

	if s < MinSeverity {
		return MinSeverity
	}
	if s > MaxSeverity {
		return MaxSeverity
	}
	return s
}
