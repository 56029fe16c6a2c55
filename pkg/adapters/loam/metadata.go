package loam

// MachineMetadata is the front matter (or document body, for yaml/json files)
// of a machine document. Symbol fields stay loosely typed so that a YAML 0 is
// accepted as the symbol "0".
type MachineMetadata struct {
	ID            string `json:"id" mapstructure:"id"`
	Name          string `json:"name" mapstructure:"name"`
	Description   string `json:"description" mapstructure:"description"`
	States        []any  `json:"states" mapstructure:"states"`
	InputAlphabet []any  `json:"input_alphabet" mapstructure:"input_alphabet"`
	TapeAlphabet  []any  `json:"tape_alphabet" mapstructure:"tape_alphabet"`
	Blank         any    `json:"blank" mapstructure:"blank"`
	InitialState  any    `json:"initial_state" mapstructure:"initial_state"`
	FinalStates   []any  `json:"final_states" mapstructure:"final_states"`
	Transitions   []any  `json:"transitions" mapstructure:"transitions"`
}

func (m MachineMetadata) raw() map[string]any {
	return map[string]any{
		"name":           m.Name,
		"description":    m.Description,
		"states":         m.States,
		"input_alphabet": m.InputAlphabet,
		"tape_alphabet":  m.TapeAlphabet,
		"blank":          m.Blank,
		"initial_state":  m.InitialState,
		"final_states":   m.FinalStates,
		"transitions":    m.Transitions,
	}
}
