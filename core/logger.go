package core

// Logger is implemented by services/logger.
// args may hold errors, map[string]interface{} extras and at most one Principal (the authenticated caller).
type Logger interface {
	Debug(msg string, args ...interface{})
	Info(msg string, args ...interface{})
	Warn(msg string, args ...interface{})
	Error(msg string, args ...interface{})
	Fatal(msg string, args ...interface{})
}

// Principal identifies the caller a bearer token was issued to.
type Principal struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}
