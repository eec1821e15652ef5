package errcode

// Error code convention:
// - 0: no error
// - 4xxx: recoverable business warnings (a resource was missing but the flow continued)
// - 5xxx: system errors that abort the flow
const (
	OK              = 0
	ResourceMissing = 4004
	SystemError     = 5000
)
