package dbdock

import "errors"

var (
	// ErrSQLFileNotSupported is returned when an init SQL file is executed
	// against an engine that has no in-container SQL client wired up. It is
	// raised only when the unsupported path is actually exercised, never at
	// construction time.
	ErrSQLFileNotSupported = errors.New("sql file execution not supported on this platform")

	// ErrNotSQLPlatform is returned by Connect for engines that do not
	// speak database/sql, such as redis.
	ErrNotSQLPlatform = errors.New("platform has no database/sql driver")

	// errNotReady drives another poll iteration inside the readiness loop.
	errNotReady = errors.New("not ready")
)
