package repository

import "context"

// Document names of the three persisted giveaway documents.
const (
	DocUsers  = "users"
	DocCodes  = "codes"
	DocBanned = "banned"
)

// DocumentStore is the only durable I/O boundary: whole named documents, loaded and
// overwritten as a unit. Implementations provide no locking; callers serialize access.
type DocumentStore interface {
	// Load returns domain.ErrDocumentNotFound when the document has never been saved.
	Load(ctx context.Context, name string) ([]byte, error)
	// Save replaces the named document entirely.
	Save(ctx context.Context, name string, body []byte) error
}
