package adapter

import "context"

// FileStore abstracts the temporary storage uploaded files pass through on
// their way into the pipeline. The pipeline always removes the file when the
// job finishes, regardless of outcome.
type FileStore interface {
	Write(ctx context.Context, ref string, content []byte) error
	ReadText(ctx context.Context, ref string) (string, error)
	Delete(ctx context.Context, ref string) error
}
