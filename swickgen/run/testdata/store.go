package store

// Store persists documents by id.
type Store interface {
	Get(id string) (*Document, error)
	Delete(id string)
}

type Document struct {
	Body []byte
}
