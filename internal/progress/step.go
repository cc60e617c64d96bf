package progress

import "fmt"

// Step is a stage or sub-stage of an extraction, in execution order.
type Step int

// Steps of an extraction. Sub-steps follow the stage they belong to.
const (
	None Step = iota
	ParsingGame
	ParsingSave
	ParsingSaveInfo
	ParsingSaveProvinces
	ParsingSaveCountries
	ParsingSaveWars
	GeneratingData
	GeneratingDataCountries
	SendingData
	Finished
)

var steps = [...]struct {
	name  string
	floor int
	stage Step
}{
	None:                    {"NONE", 0, None},
	ParsingGame:             {"PARSING_GAME", 0, ParsingGame},
	ParsingSave:             {"PARSING_SAVE", 35, ParsingSave},
	ParsingSaveInfo:         {"PARSING_SAVE_INFO", 35, ParsingSave},
	ParsingSaveProvinces:    {"PARSING_SAVE_PROVINCES", 40, ParsingSave},
	ParsingSaveCountries:    {"PARSING_SAVE_COUNTRIES", 50, ParsingSave},
	ParsingSaveWars:         {"PARSING_SAVE_WARS", 60, ParsingSave},
	GeneratingData:          {"GENERATING_DATA", 65, GeneratingData},
	GeneratingDataCountries: {"GENERATING_DATA_COUNTRIES", 75, GeneratingData},
	SendingData:             {"SENDING_DATA", 90, SendingData},
	Finished:                {"FINISHED", 100, Finished},
}

func (s Step) valid() bool {
	return s >= None && int(s) < len(steps)
}

// String returns the name of the step, as known by observers.
func (s Step) String() string {
	if !s.valid() {
		return fmt.Sprintf("Step(%d)", int(s))
	}
	return steps[s].name
}

// Floor is the percentage reached when the step starts.
func (s Step) Floor() int {
	if !s.valid() {
		return 0
	}
	return steps[s].floor
}

// Next returns the step following s. Finished is its own successor.
func (s Step) Next() Step {
	if s >= Finished {
		return Finished
	}
	return s + 1
}

// Stage returns the stage s belongs to, s itself for a stage.
func (s Step) Stage() Step {
	if !s.valid() {
		return None
	}
	return steps[s].stage
}

// IsSub reports whether s is a sub-stage.
func (s Step) IsSub() bool {
	return s.Stage() != s
}

// MarshalText implements encoding.TextMarshaler.
func (s Step) MarshalText() ([]byte, error) {
	if !s.valid() {
		return nil, fmt.Errorf("unknown step %d", int(s))
	}
	return []byte(s.String()), nil
}

// ParseStep returns the step named name.
func ParseStep(name string) (Step, error) {
	for i, st := range steps {
		if st.name == name {
			return Step(i), nil
		}
	}
	return None, fmt.Errorf("unknown step %q", name)
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *Step) UnmarshalText(b []byte) (err error) {
	*s, err = ParseStep(string(b))
	return err
}
