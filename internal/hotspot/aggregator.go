package hotspot

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/OldStager01/monitor-platform/pkg/models"
	"github.com/OldStager01/monitor-platform/pkg/validation"
)

const (
	DefaultTopN = 10

	SummaryNoThreads  = "no thread data"
	SummaryNoHotspots = "no hotspots detected, process is healthy"
)

var severityPenalty = map[int]int{5: 20, 4: 15, 3: 10, 2: 5, 1: 2}

// FrameSource yields the current stack frames of one thread.
type FrameSource func(threadID int64) ([]models.StackFrame, error)

type AggregatorConfig struct {
	TopN       int
	Classifier *Classifier
	Now        func() time.Time
}

// Aggregator turns a snapshot of thread stacks into a ThreadHotspotAnalysis.
// Each call works on its own counters, so one Aggregator may be shared.
type Aggregator struct {
	topN       int
	classifier *Classifier
	now        func() time.Time
}

func NewAggregator(cfg AggregatorConfig) *Aggregator {
	if cfg.TopN <= 0 {
		cfg.TopN = DefaultTopN
	}
	if cfg.Classifier == nil {
		cfg.Classifier = NewClassifier(nil)
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &Aggregator{topN: cfg.TopN, classifier: cfg.Classifier, now: cfg.Now}
}

type methodKey struct {
	className  string
	methodName string
}

// Analyze counts (class, method) occurrences across the frames of threads and
// reports the most frequent ones. Errors from frames are returned as is apart
// from wrapping; malformed frames yield a *validation.InvalidInputError.
func (a *Aggregator) Analyze(processID int64, threads []models.ThreadInfo, frames FrameSource) (*models.ThreadHotspotAnalysis, error) {
	analysis := &models.ThreadHotspotAnalysis{
		ProcessID:    processID,
		AnalysisTime: a.now(),
		TotalThreads: len(threads),
		TopHotspots:  []models.HotspotMethod{},
	}

	if len(threads) == 0 {
		analysis.HealthScore = 100
		analysis.Summary = SummaryNoThreads
		return analysis, nil
	}

	counts := make(map[methodKey]int)
	for _, t := range threads {
		stack, err := frames(t.ThreadID)
		if err != nil {
			return nil, fmt.Errorf("failed to load frames of thread %d: %w", t.ThreadID, err)
		}
		for i, f := range stack {
			if err := validation.ValidateFrameSymbol("class_name", i, f.ClassName); err != nil {
				return nil, fmt.Errorf("thread %d: %w", t.ThreadID, err)
			}
			if err := validation.ValidateFrameSymbol("method_name", i, f.MethodName); err != nil {
				return nil, fmt.Errorf("thread %d: %w", t.ThreadID, err)
			}
			counts[methodKey{f.ClassName, f.MethodName}]++
		}
	}

	hotspots := make([]models.HotspotMethod, 0, len(counts))
	for k, n := range counts {
		c := a.classifier.Classify(k.className, k.methodName, n)
		hotspots = append(hotspots, models.HotspotMethod{
			ClassName:       k.className,
			MethodName:      k.methodName,
			OccurrenceCount: n,
			IssueType:       c.Issue,
			Severity:        c.Severity,
			Suggestion:      c.Suggestion,
		})
	}
	SortHotspots(hotspots)

	if len(hotspots) > a.topN {
		hotspots = hotspots[:a.topN]
	}

	analysis.TopHotspots = hotspots
	analysis.HealthScore = HealthScore(hotspots)
	analysis.Summary = Summarize(hotspots, analysis.HealthScore)
	return analysis, nil
}

// SortHotspots orders by occurrence count descending, then class and method
// name ascending.
func SortHotspots(hotspots []models.HotspotMethod) {
	sort.SliceStable(hotspots, func(i, j int) bool {
		a, b := hotspots[i], hotspots[j]
		if a.OccurrenceCount != b.OccurrenceCount {
			return a.OccurrenceCount > b.OccurrenceCount
		}
		if a.ClassName != b.ClassName {
			return a.ClassName < b.ClassName
		}
		return a.MethodName < b.MethodName
	})
}

func HealthScore(hotspots []models.HotspotMethod) int {
	score := 100
	for _, h := range hotspots {
		score -= severityPenalty[h.Severity]
	}
	if score < 0 {
		return 0
	}
	return score
}

func HealthBucket(score int) string {
	switch {
	case score >= 80:
		return "good"
	case score >= 60:
		return "fair"
	default:
		return "needs attention"
	}
}

func Summarize(hotspots []models.HotspotMethod, score int) string {
	if len(hotspots) == 0 {
		return SummaryNoHotspots
	}

	high, medium := 0, 0
	for _, h := range hotspots {
		switch {
		case h.Severity >= 4:
			high++
		case h.Severity == 3:
			medium++
		}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%d hotspot methods detected", len(hotspots))
	if high > 0 {
		fmt.Fprintf(&b, ", %d high priority", high)
	}
	if medium > 0 {
		fmt.Fprintf(&b, ", %d medium priority", medium)
	}
	fmt.Fprintf(&b, ". Health score: %d (%s)", score, HealthBucket(score))
	return b.String()
}
