package session

// State is a step of the login flow
type State int

const (
	StateIdle State = iota
	StateConnecting
	StateAutoLogin
	StateAwaitingInput
	StateAuthenticating
	StatePlayerSelection
	StateProvisioning
	StateCompleted
	StateFailed
	StateUnsupported
)

var stateNames = map[State]string{
	StateIdle:            "idle",
	StateConnecting:      "connecting",
	StateAutoLogin:       "auto_login",
	StateAwaitingInput:   "awaiting_input",
	StateAuthenticating:  "authenticating",
	StatePlayerSelection: "player_selection",
	StateProvisioning:    "provisioning",
	StateCompleted:       "completed",
	StateFailed:          "failed",
	StateUnsupported:     "unsupported",
}

func (s State) String() string {
	if name, ok := stateNames[s]; ok {
		return name
	}
	return "unknown"
}

// Terminal reports whether no further transitions happen from s.
func (s State) Terminal() bool {
	return s == StateCompleted || s == StateUnsupported
}

// Action is the submit button pressed on the login form
type Action string

const (
	ActionLogin    Action = "login"
	ActionPlay     Action = "play"
	ActionRegister Action = "register"
)
