package schema

// TransitionSpec is one transition rule as submitted by a client.
type TransitionSpec struct {
	CurrentState string `json:"current_state" yaml:"current_state" mapstructure:"current_state"`
	ReadSymbol   string `json:"read_symbol" yaml:"read_symbol" mapstructure:"read_symbol"`
	NextState    string `json:"next_state" yaml:"next_state" mapstructure:"next_state"`
	WriteSymbol  string `json:"write_symbol" yaml:"write_symbol" mapstructure:"write_symbol"`
	Move         string `json:"move" yaml:"move" mapstructure:"move"`
}

// DefinitionSpec is a candidate machine definition.
type DefinitionSpec struct {
	Name          string           `json:"name" yaml:"name" mapstructure:"name"`
	Description   string           `json:"description,omitempty" yaml:"description,omitempty" mapstructure:"description"`
	States        []string         `json:"states" yaml:"states" mapstructure:"states"`
	InputAlphabet []string         `json:"input_alphabet" yaml:"input_alphabet" mapstructure:"input_alphabet"`
	TapeAlphabet  []string         `json:"tape_alphabet" yaml:"tape_alphabet" mapstructure:"tape_alphabet"`
	Blank         string           `json:"blank" yaml:"blank" mapstructure:"blank"`
	InitialState  string           `json:"initial_state" yaml:"initial_state" mapstructure:"initial_state"`
	FinalStates   []string         `json:"final_states" yaml:"final_states" mapstructure:"final_states"`
	Transitions   []TransitionSpec `json:"transitions" yaml:"transitions" mapstructure:"transitions"`
}
