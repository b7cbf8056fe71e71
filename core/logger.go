package core

// Logger is the app-wide logging contract.
// args may carry anything worth reporting alongside the message; implementations
// may special-case some types (eg. an authenticated principal).
type Logger interface {
	Enable(enabled bool)
	Debug(msg string, args ...interface{})
	Info(msg string, args ...interface{})
	Warn(msg string, args ...interface{})
	Error(msg string, args ...interface{})
	Fatal(msg string, args ...interface{})
}
