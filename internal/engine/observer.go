package engine

// Observer receives state-change notifications. Callbacks run synchronously on
// the goroutine that issued the command or tick.
type Observer interface {
	PhaseChanged(phase Phase)
	ScoreChanged(score, highScore int)
	LivesChanged(lives int)
	ComboChanged(combo int)
}

// ObserverFuncs adapts optional callbacks to the Observer interface.
// Nil callbacks are skipped.
type ObserverFuncs struct {
	OnPhase func(phase Phase)
	OnScore func(score, highScore int)
	OnLives func(lives int)
	OnCombo func(combo int)
}

func (f ObserverFuncs) PhaseChanged(phase Phase) {
	if f.OnPhase != nil {
		f.OnPhase(phase)
	}
}

func (f ObserverFuncs) ScoreChanged(score, highScore int) {
	if f.OnScore != nil {
		f.OnScore(score, highScore)
	}
}

func (f ObserverFuncs) LivesChanged(lives int) {
	if f.OnLives != nil {
		f.OnLives(lives)
	}
}

func (f ObserverFuncs) ComboChanged(combo int) {
	if f.OnCombo != nil {
		f.OnCombo(combo)
	}
}

type subscription struct {
	id  int
	obs Observer
}

// Subscribe registers obs and returns a function that removes it again.
// Calling the returned function more than once is harmless.
func (e *Engine) Subscribe(obs Observer) func() {
	if e.tornDown || obs == nil {
		return func() {}
	}
	e.nextSubID++
	id := e.nextSubID
	e.subs = append(e.subs, subscription{id: id, obs: obs})

	return func() {
		for i, s := range e.subs {
			if s.id == id {
				// Copy so an in-flight notification loop keeps its snapshot.
				subs := make([]subscription, 0, len(e.subs)-1)
				subs = append(subs, e.subs[:i]...)
				e.subs = append(subs, e.subs[i+1:]...)
				return
			}
		}
	}
}

func (e *Engine) notifyPhase() {
	for _, s := range e.subs {
		s.obs.PhaseChanged(e.phase)
	}
}

func (e *Engine) notifyScore() {
	for _, s := range e.subs {
		s.obs.ScoreChanged(e.score, e.highScore)
	}
}

func (e *Engine) notifyLives() {
	for _, s := range e.subs {
		s.obs.LivesChanged(e.lives)
	}
}

func (e *Engine) notifyCombo() {
	for _, s := range e.subs {
		s.obs.ComboChanged(e.combo)
	}
}
