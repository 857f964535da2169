package phase

// NotOnFeatureBranchMessage is reported when the worktree has no active
// feature, so there is no document directory to inspect.
const NotOnFeatureBranchMessage = "Not on a feature branch. " +
	"Use speckit with action 'new' and a feature name to create one."

// Gate pairs a gating document with the phase that produces it.
// While the document is missing, that phase is the one being worked on.
type Gate struct {
	Document Document
	Producer Phase
}

// constitutionGate is only part of the walk when constitution gating is on.
var constitutionGate = Gate{Document: DocConstitution, Producer: Constitution}

var featureGates = []Gate{
	{Document: DocSpec, Producer: Specify},
	{Document: DocPlan, Producer: Plan},
	{Document: DocTasks, Producer: Tasks},
}

// Engine maps observed artifacts to a workflow phase. The zero value
// infers without constitution gating.
type Engine struct {
	// ConstitutionGating makes constitution.md the first gate, so a
	// feature cannot report past the constitution phase without it.
	ConstitutionGating bool
}

// NewEngine creates an Engine with the given gating policy.
func NewEngine(constitutionGating bool) *Engine {
	return &Engine{ConstitutionGating: constitutionGating}
}

// Gates returns the ordered gating documents for this engine's policy.
// The returned slice is a copy.
func (e *Engine) Gates() []Gate {
	gates := make([]Gate, 0, len(featureGates)+1)
	if e.ConstitutionGating {
		gates = append(gates, constitutionGate)
	}
	return append(gates, featureGates...)
}

// Infer computes the phase report for a feature context and the
// documents found in its directory. A nil context means the worktree is
// not on a feature branch; docs is ignored in that case.
func (e *Engine) Infer(fc *FeatureContext, docs ArtifactSet) Report {
	if fc == nil {
		return Report{
			Phase:    Specify,
			ReadyFor: []Phase{},
			Message:  NotOnFeatureBranchMessage,
			Docs:     []Document{},
		}
	}

	gates := e.Gates()
	return Report{
		Phase:    walkPhase(gates, docs),
		ReadyFor: readyFor(gates, docs),
		Docs:     docs.Sorted(),
	}
}

// walkPhase advances through the gates in order and stops at the first
// missing document. A later document never compensates for an earlier
// missing one.
func walkPhase(gates []Gate, docs ArtifactSet) Phase {
	current := gates[0].Producer
	for _, g := range gates {
		if !docs.Has(g.Document) {
			break
		}
		current = next(g.Producer)
	}
	return current
}

// readyFor returns the phase that produces the first missing gate
// document, or implement once every gate is satisfied.
func readyFor(gates []Gate, docs ArtifactSet) []Phase {
	for _, g := range gates {
		if !docs.Has(g.Document) {
			return []Phase{g.Producer}
		}
	}
	return []Phase{Implement}
}

// next returns the phase after p, capped at implement.
func next(p Phase) Phase {
	idx := p.Index()
	if idx < 0 || idx >= len(Phases)-1 {
		return Implement
	}
	return Phases[idx+1]
}
