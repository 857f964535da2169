package dispatch

import (
	"github.com/HendryAvila/speckit-mcp/internal/journal"
	"github.com/HendryAvila/speckit-mcp/internal/phase"
)

// Response is the outcome of one action. Only the fields relevant to the
// action are set; PhaseReport fields are inlined for status and phase,
// HistoryReport for history.
type Response struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
	Message string `json:"message,omitempty"`
	Output  string `json:"output,omitempty"`

	*PhaseReport
	*HistoryReport
}

// HistoryReport is the payload of the history action. History is never
// nil, so an empty journal serializes as [].
type HistoryReport struct {
	History []journal.Entry `json:"history"`
}

// PhaseReport is the payload of the status and phase actions.
type PhaseReport struct {
	Phase         phase.Phase      `json:"phase"`
	Docs          []phase.Document `json:"docs"`
	ReadyFor      []phase.Phase    `json:"readyFor"`
	Guidance      GuidanceView     `json:"guidance"`
	Workflow      WorkflowView     `json:"workflow"`
	Branch        string           `json:"branch"`
	FeatureDir    string           `json:"featureDir,omitempty"`
	PreviousPhase phase.Phase      `json:"previousPhase,omitempty"`
}

// GuidanceView is the guidance block of a PhaseReport.
type GuidanceView struct {
	CurrentPhase phase.Phase   `json:"currentPhase"`
	Description  string        `json:"description"`
	Command      string        `json:"command"`
	Next         []phase.Phase `json:"next"`
	Optional     []string      `json:"optional,omitempty"`
	Message      string        `json:"message,omitempty"`
}

// WorkflowView describes the fixed phase order.
type WorkflowView struct {
	Phases      []phase.Phase `json:"phases"`
	Description string        `json:"description"`
}

// Workflow returns the static workflow block.
func Workflow() WorkflowView {
	phases := make([]phase.Phase, len(phase.Phases))
	copy(phases, phase.Phases[:])
	return WorkflowView{Phases: phases, Description: phase.WorkflowDescription}
}

func newPhaseReport(in *phase.Inspection, previous phase.Phase) *PhaseReport {
	g, _ := phase.GuidanceFor(in.Phase)
	next := g.Next
	if next == nil {
		next = []phase.Phase{}
	}
	docs := in.Docs
	if docs == nil {
		docs = []phase.Document{}
	}
	readyFor := in.ReadyFor
	if readyFor == nil {
		readyFor = []phase.Phase{}
	}

	return &PhaseReport{
		Phase:    in.Phase,
		Docs:     docs,
		ReadyFor: readyFor,
		Guidance: GuidanceView{
			CurrentPhase: in.Phase,
			Description:  g.Description,
			Command:      g.Command,
			Next:         next,
			Optional:     g.Optional,
			Message:      in.Message,
		},
		Workflow:      Workflow(),
		Branch:        in.Branch,
		FeatureDir:    in.FeatureDir,
		PreviousPhase: previous,
	}
}

func failure(msg string) *Response {
	return &Response{Success: false, Error: msg}
}
