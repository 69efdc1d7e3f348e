package repositories

import "context"

// StorageStrategy publishes finished outputs somewhere outside the working
// folder and returns the published location. Publishing the same file again
// replaces the earlier copy.
type StorageStrategy interface {
	Publish(ctx context.Context, localPath, folder string) (string, error)
}
