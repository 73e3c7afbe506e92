package node

import "context"

// Updater checks for and installs new firmware. It runs once at boot,
// before any skill starts.
type Updater interface {
	// CheckAndInstall reports whether a new image was installed. A true
	// result makes the node reset so the new image runs.
	CheckAndInstall(ctx context.Context, repoURL string) (bool, error)
}

// NoopUpdater never installs anything.
type NoopUpdater struct{}

// CheckAndInstall always reports no update.
func (NoopUpdater) CheckAndInstall(context.Context, string) (bool, error) { return false, nil }
