package binder

// BindError reports a parsed command that cannot be matched to its declaration.
// Help carries the generated help text the user should see next to the message:
// the global command list for an unknown command, the command's own help otherwise.
type BindError struct {
	Command string
	Message string
	Help    string
}

func (e *BindError) Error() string {
	if e.Command == "" {
		return e.Message
	}
	return e.Command + ": " + e.Message
}
