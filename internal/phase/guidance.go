package phase

// Guidance tells the user what a phase means and which slash command
// drives it. It is presentation only and never affects inference.
type Guidance struct {
	Description string   `json:"description"`
	Command     string   `json:"command"`
	Next        []Phase  `json:"next"`
	Optional    []string `json:"optional,omitempty"`
}

// guidanceTable is indexed by Phase.Index().
var guidanceTable = [...]Guidance{
	ordConstitution: {
		Description: "Project principles established",
		Command:     "/speckit.constitution",
		Next:        []Phase{Specify},
	},
	ordSpecify: {
		Description: "Requirements defined",
		Command:     "/speckit.specify",
		Next:        []Phase{Plan},
		Optional:    []string{"/speckit.clarify"},
	},
	ordPlan: {
		Description: "Technical plan created",
		Command:     "/speckit.plan",
		Next:        []Phase{Tasks},
	},
	ordTasks: {
		Description: "Tasks broken down",
		Command:     "/speckit.tasks",
		Next:        []Phase{Implement},
		Optional:    []string{"/speckit.analyze"},
	},
	ordImplement: {
		Description: "Implementation in progress",
		Command:     "/speckit.implement",
		Next:        []Phase{},
	},
}

// Fails to compile unless the table ends at the last phase ordinal.
var _ [len(guidanceTable)]struct{} = [phaseCount]struct{}{}

// GuidanceFor returns the guidance record for a phase. The boolean is
// false only for phases outside the workflow.
func GuidanceFor(p Phase) (Guidance, bool) {
	idx := p.Index()
	if idx < 0 {
		return Guidance{}, false
	}
	return guidanceTable[idx], true
}

// WorkflowDescription is the one-line summary shown with every report.
const WorkflowDescription = "Run the appropriate /speckit.* command for each phase. " +
	"Use speckit with action 'phase' to check progress."
