package game

// Listener is the closed set of callbacks the orchestrator fires on state
// changes. Implementations must not call back into the Game from within a
// callback; callbacks run after the aggregate lock is released but on the
// mutating goroutine.
type Listener interface {
	StateChanged(s Snapshot)
	TimerTick(round, secondsRemaining int)
	RoundEnded(r RoundResults)
	GameEnded(f FinalResults)
}

// NopListener discards every event.
type NopListener struct{}

func (NopListener) StateChanged(Snapshot)   {}
func (NopListener) TimerTick(int, int)      {}
func (NopListener) RoundEnded(RoundResults) {}
func (NopListener) GameEnded(FinalResults)  {}

// MultiListener fans events out to several listeners in order.
type MultiListener []Listener

func (m MultiListener) StateChanged(s Snapshot) {
	for _, l := range m {
		l.StateChanged(s)
	}
}

func (m MultiListener) TimerTick(round, remaining int) {
	for _, l := range m {
		l.TimerTick(round, remaining)
	}
}

func (m MultiListener) RoundEnded(r RoundResults) {
	for _, l := range m {
		l.RoundEnded(r)
	}
}

func (m MultiListener) GameEnded(f FinalResults) {
	for _, l := range m {
		l.GameEnded(f)
	}
}
