// Package phase infers where a feature stands in the spec-kit workflow.
//
// The workflow is a fixed sequence of phases:
//
//	constitution → specify → plan → tasks → implement
//
// The current phase is never stored. It is derived on every inspection
// from two observations: the name of the checked-out branch and the set
// of documents present in the feature's document directory.
//
// Design principles:
// - SRP: types, engine, guidance, and inspector in separate files
// - DIP: the inspector depends on resolver/prober interfaces, not on git or the filesystem
// - The engine is pure: same inputs, same report, no I/O
package phase

import "regexp"

// --- Phase enum ---

// Phase is a discrete stage of the spec-kit workflow.
type Phase string

const (
	Constitution Phase = "constitution"
	Specify      Phase = "specify"
	Plan         Phase = "plan"
	Tasks        Phase = "tasks"
	Implement    Phase = "implement"
)

// Ordinal positions of the phases. phaseCount sizes every per-phase
// table, so a new phase must be added here before it can be used.
const (
	ordConstitution = iota
	ordSpecify
	ordPlan
	ordTasks
	ordImplement
	phaseCount
)

// Phases is the canonical workflow order.
var Phases = [phaseCount]Phase{
	ordConstitution: Constitution,
	ordSpecify:      Specify,
	ordPlan:         Plan,
	ordTasks:        Tasks,
	ordImplement:    Implement,
}

// Index returns the ordinal position of the phase, or -1 if unknown.
func (p Phase) Index() int {
	for i, candidate := range Phases {
		if candidate == p {
			return i
		}
	}
	return -1
}

// --- Document enum ---

// Document is the filename of an artifact the toolchain writes into a
// feature directory.
type Document string

const (
	DocConstitution Document = "constitution.md"
	DocSpec         Document = "spec.md"
	DocPlan         Document = "plan.md"
	DocTasks        Document = "tasks.md"
	DocResearch     Document = "research.md"
	DocDataModel    Document = "data-model.md"
	DocQuickstart   Document = "quickstart.md"
)

// AllDocuments lists every document kind in probe and report order.
var AllDocuments = []Document{
	DocSpec,
	DocPlan,
	DocTasks,
	DocResearch,
	DocDataModel,
	DocQuickstart,
	DocConstitution,
}

// Gating reports whether the document's presence can advance the phase.
// The rest are informational only.
func (d Document) Gating() bool {
	switch d {
	case DocConstitution, DocSpec, DocPlan, DocTasks:
		return true
	}
	return false
}

// --- Artifact set ---

// ArtifactSet is the set of documents confirmed present at inspection
// time. Membership is an exact filename match.
type ArtifactSet map[Document]bool

// NewArtifactSet builds a set from the given documents.
func NewArtifactSet(docs ...Document) ArtifactSet {
	s := make(ArtifactSet, len(docs))
	for _, d := range docs {
		s[d] = true
	}
	return s
}

// Add marks a document as present.
func (s ArtifactSet) Add(d Document) {
	s[d] = true
}

// Has reports whether the document is present. Safe on a nil set.
func (s ArtifactSet) Has(d Document) bool {
	return s[d]
}

// Sorted returns the present documents in AllDocuments order. Never nil,
// so it serializes as [].
func (s ArtifactSet) Sorted() []Document {
	out := make([]Document, 0, len(s))
	for _, d := range AllDocuments {
		if s[d] {
			out = append(out, d)
		}
	}
	return out
}

// --- Branch identity ---

var featureBranchPattern = regexp.MustCompile(`^[0-9]{3}-`)

// IsFeatureBranch reports whether a branch name denotes a numbered
// feature, e.g. "001-login-flow". "main" and everything else is not.
func IsFeatureBranch(branch string) bool {
	return featureBranchPattern.MatchString(branch)
}

// FeatureContext locates the active feature. A nil *FeatureContext means
// the worktree is not on a feature branch.
type FeatureContext struct {
	Branch string `json:"branch"`
	DocDir string `json:"doc_dir"`
}

// Report is the outcome of phase inference.
type Report struct {
	Phase    Phase      `json:"phase"`
	ReadyFor []Phase    `json:"ready_for"`
	Message  string     `json:"message,omitempty"`
	Docs     []Document `json:"docs"`
}
