package extension

// Action describes what the host should do after a handler runs.
type Action string

// ActionContinue tells the host to proceed with normal processing.
const ActionContinue Action = "continue"

// Instruction is the optional result of an event handler. A nil
// Instruction is equivalent to Continue(): the host proceeds as if the
// handler had not run. An Instruction with Block set vetoes the
// operation that triggered the event; Reason carries a human-readable
// explanation surfaced to the user.
type Instruction struct {
	Action Action
	Block  bool
	Reason string
}

// Continue returns an Instruction that lets the host proceed.
func Continue() *Instruction {
	return &Instruction{Action: ActionContinue}
}

// BlockTool returns an Instruction that vetoes a tool call with the
// given reason.
func BlockTool(reason string) *Instruction {
	return &Instruction{Block: true, Reason: reason}
}
