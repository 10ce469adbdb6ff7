package protocol

// RollInput is a player's answer to a challenge prompt: either a value
// read off physical dice or a formula the client evaluates before
// sending. Both reach the Engine as a plain ChallengeRoll frame.
type RollInput interface {
	isRollInput()
}

// ManualRoll is a roll value entered directly by the player.
type ManualRoll struct {
	Value int
}

// FormulaRoll is a dice expression (e.g. "d20", "2d6+3") evaluated
// client-side at submission time.
type FormulaRoll struct {
	Expression string
}

func (ManualRoll) isRollInput()  {}
func (FormulaRoll) isRollInput() {}
