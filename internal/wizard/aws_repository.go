package wizard

import "context"

// ArtifactRepository resolves produced artifact paths into URLs the
// browser can stream.
type ArtifactRepository interface {
	PresignArtifact(ctx context.Context, path string) (string, error)
}
