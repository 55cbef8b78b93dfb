package store

var (
	ErrNotFound      = &RepositoryError{"record not found"}
	ErrAlreadyExists = &RepositoryError{"record already exists"}
	ErrConflict      = &RepositoryError{"record changed concurrently"}
)

type RepositoryError struct {
	message string
}

func (e *RepositoryError) Error() string {
	return e.message
}
