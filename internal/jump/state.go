package jump

// State is the cross-call session state: user variables and counters written
// by condition side effects, persisted sequence indices, and the condition
// source and direction remembered from the previous invocation. One State
// serves one editing session and may outlive any single table or engine;
// conditions are therefore persisted as source text and recompiled by
// whichever engine runs next. Execution is single-threaded, so there is no
// locking; a re-entrant jump is rejected instead.
type State struct {
	vars     map[string]string
	counters map[string]int
	seqs     map[string]int
	condSrc  string
	dir      Direction
	busy     bool
}

// NewState returns an empty session state.
func NewState() *State {
	s := &State{}
	s.Reset()
	return s
}

// Reset clears variables, counters, sequence indices, and the persisted
// condition and direction.
func (s *State) Reset() {
	s.vars = make(map[string]string)
	s.counters = make(map[string]int)
	s.seqs = make(map[string]int)
	s.condSrc = ""
	s.dir = ""
	s.busy = false
}

// Var returns the named variable, or "" when unset.
func (s *State) Var(name string) string {
	return s.vars[name]
}

// SetVar stores a variable.
func (s *State) SetVar(name, val string) {
	s.vars[name] = val
}

// Counter increments the named counter and returns its new value; the first
// call yields 1.
func (s *State) Counter(name string) int {
	s.counters[name]++
	return s.counters[name]
}

// Condition returns the persisted condition source, or "" when none.
func (s *State) Condition() string {
	return s.condSrc
}

// Direction returns the persisted direction, or "" when none.
func (s *State) Direction() Direction {
	return s.dir
}

func (s *State) seqIndex(key string) int {
	return s.seqs[key]
}

func (s *State) setSeqIndex(key string, v int) {
	s.seqs[key] = v
}
