package domain

// ModelDescriptor is the pre-parsed form of a hybrid-system model. Parsing
// the textual model format is an external collaborator; the engine only
// ever sees this structure.
type ModelDescriptor struct {
	Name       string                `json:"name"`
	File       string                `json:"file"`
	Modes      []ModeDescriptor      `json:"modes,omitempty"`
	Parameters []ParameterDescriptor `json:"parameters,omitempty"`
	Flows      []FlowDescriptor      `json:"flows,omitempty"`
	Jumps      []JumpDescriptor      `json:"jumps,omitempty"`
	Goals      []GoalDescriptor      `json:"goals,omitempty"`
}

type ModeDescriptor struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

type ParameterDescriptor struct {
	Name        string   `json:"name"`
	Value       float64  `json:"value"`
	Bounds      Interval `json:"bounds"`
	Uncertainty float64  `json:"uncertainty"`
}

type FlowDescriptor struct {
	Mode     string `json:"mode"`
	Variable string `json:"variable"`
	Equation string `json:"equation"`
}

type JumpDescriptor struct {
	FromMode string `json:"from_mode"`
	ToMode   string `json:"to_mode"`
	Guard    string `json:"guard"`
}

type GoalDescriptor struct {
	Name              string  `json:"name"`
	Condition         string  `json:"condition"`
	TargetProbability float64 `json:"target_probability"`
}
