package node

import "errors"

var (
	// ErrResetRequested is returned by Run when a skill or command asked
	// for a node restart. The wrapping error carries the reason.
	ErrResetRequested = errors.New("node: reset requested")

	// ErrUnknownBoard is returned for an unsupported hardware.board value.
	ErrUnknownBoard = errors.New("node: unknown board")
)
