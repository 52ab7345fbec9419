package ports

// Logger defines the interface for logging.
//
//go:generate go run go.uber.org/mock/mockgen -source=logger.go -destination=mocks/mock_logger.go -package=mocks
type Logger interface {
	// Debug traces a pipeline decision. Silent unless DEBUG is set.
	Debug(msg string, kv ...any)
	Info(msg string)
	Warn(msg string)
	Error(err error)
}
