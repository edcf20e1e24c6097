package engine

type GameState uint8

const (
	// No simulation is running; scenes tick in editor mode only.
	GameStateStopped GameState = iota
	// A play-mode transition is in flight; scene and scripts are loading.
	GameStateLoading
	// The simulation is live; subsystems and fixed updates run.
	GameStatePlaying
)

func (s GameState) String() string {
	switch s {
	case GameStateStopped:
		return "stopped"
	case GameStateLoading:
		return "loading"
	case GameStatePlaying:
		return "playing"
	default:
		return "unknown"
	}
}
