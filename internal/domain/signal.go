package domain

// SignalAction is the action recommended by a strategy evaluation.
type SignalAction string

const (
	ActionBuy  SignalAction = "buy"
	ActionSell SignalAction = "sell"
	ActionHold SignalAction = "hold"
)

// Signal is the output of a single strategy evaluation at one candle index.
type Signal struct {
	Action     SignalAction           // Recommended action
	Confidence float64                // Confidence in the signal, 0..100
	Metadata   map[string]interface{} // Optional indicator values backing the signal
}

// Hold returns the neutral signal emitted when a strategy has no opinion,
// including whenever the history window is too short to evaluate.
func Hold() Signal {
	return Signal{Action: ActionHold, Confidence: 0}
}
