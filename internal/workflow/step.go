// Package workflow implements the generation pipeline: a forward-only step
// machine over upload, analyze, generate and scoring, with a per-user
// session that caches each step's artifact and invalidates downstream
// artifacts when an upstream one is reset.
package workflow

// Step identifies one state of the pipeline. Dashboard sits outside the
// linear sequence: it is the entry and exit point, never part of a run.
type Step string

const (
	StepDashboard Step = "dashboard"
	StepUpload    Step = "upload"
	StepAnalyze   Step = "analyze"
	StepGenerate  Step = "generate"
	StepScoring   Step = "scoring"
	StepFinal     Step = "final"
)

// stepOrder is the linear sequence a run walks through.
var stepOrder = []Step{StepUpload, StepAnalyze, StepGenerate, StepScoring, StepFinal}

// dependents lists, per step, the steps whose artifacts are derived from its
// artifact. Cascade invalidation traverses this graph rather than relying on
// hand-written per-step reset calls. Final carries no artifact of its own;
// the edge from scoring re-locks it when any upstream step is reset.
var dependents = map[Step][]Step{
	StepUpload:  {StepAnalyze},
	StepAnalyze: {StepGenerate, StepScoring},
	StepGenerate: {
		StepScoring,
	},
	StepScoring: {StepFinal},
}

// Valid reports whether s names a known step.
func Valid(s Step) bool {
	if s == StepDashboard {
		return true
	}
	return s.Index() >= 0
}

// Index returns the position of s in the linear sequence, or -1 for
// dashboard and unknown steps.
func (s Step) Index() int {
	for i, step := range stepOrder {
		if step == s {
			return i
		}
	}
	return -1
}

// Next returns the step after s, or s itself when s is already final.
func (s Step) Next() Step {
	i := s.Index()
	if i < 0 || i == len(stepOrder)-1 {
		return s
	}
	return stepOrder[i+1]
}

// Downstream returns every step transitively dependent on s, in a stable
// order following the linear sequence.
func Downstream(s Step) []Step {
	seen := map[Step]bool{}
	var walk func(Step)
	walk = func(cur Step) {
		for _, dep := range dependents[cur] {
			if !seen[dep] {
				seen[dep] = true
				walk(dep)
			}
		}
	}
	walk(s)

	out := make([]Step, 0, len(seen))
	for _, step := range stepOrder {
		if seen[step] {
			out = append(out, step)
		}
	}
	return out
}
