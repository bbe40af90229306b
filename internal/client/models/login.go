package models

// LoginPhase is the step a login attempt is in.
type LoginPhase int

const (
	LoginIdle LoginPhase = iota
	LoginAuthenticating
	LoginAuthenticated
	LoginFailed
)

func (p LoginPhase) String() string {
	switch p {
	case LoginIdle:
		return "idle"
	case LoginAuthenticating:
		return "authenticating"
	case LoginAuthenticated:
		return "authenticated"
	case LoginFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// LoginState is the observable state of the latest login attempt.
//
// Attempt numbers increase monotonically; a state always belongs to the
// attempt that produced it.
type LoginState struct {
	Phase    LoginPhase
	Attempt  uint64
	ServerID string
	Message  string
}

// Terminal reports whether the attempt has finished.
func (s LoginState) Terminal() bool {
	return s.Phase == LoginAuthenticated || s.Phase == LoginFailed
}
