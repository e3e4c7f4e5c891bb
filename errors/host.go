package errors

// HostException is the host-observable form of a native failure. Only the
// message text is guaranteed to survive the crossing; the native
// discriminant does not cross.
type HostException struct {
	Message string
}

// Error implements the error interface so a HostException can flow through
// Go call chains on the host side of the boundary.
func (e *HostException) Error() string {
	return e.Message
}

// Is reports whether target is also a HostException.
func (e *HostException) Is(target error) bool {
	_, ok := target.(*HostException)
	return ok
}

// ToHost converts a native error into the exception the host observes.
// A crossing in the failure direction never swallows the error: errors
// without a conversion rule are wrapped generically, keeping their
// original message.
func ToHost(err error) *HostException {
	if err == nil {
		return nil
	}
	if he, ok := err.(*HostException); ok {
		return he
	}
	if e, ok := err.(*Error); ok {
		return &HostException{Message: e.Message()}
	}
	return &HostException{Message: err.Error()}
}

// FromHost converts an exception thrown by host code back into a native
// error value.
func FromHost(exc *HostException) *Error {
	if exc == nil {
		return nil
	}
	return HostThrew(exc.Message)
}
