package models

import "fmt"

// AppError kinds. Controllers map these onto HTTP statuses: validation 400,
// permission 403, not-found 404, upload errors surface as warnings without
// failing the enclosing operation.
const (
	KindValidation = "validation"
	KindUpload     = "upload"
	KindPermission = "permission"
	KindNotFound   = "not_found"
)

// AppError is the application error taxonomy.
type AppError struct {
	Kind    string
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error { return e.Err }

func NewValidationError(message string) *AppError {
	return &AppError{Kind: KindValidation, Message: message}
}

func NewUploadError(message string, err error) *AppError {
	return &AppError{Kind: KindUpload, Message: message, Err: err}
}

func NewPermissionError(message string) *AppError {
	return &AppError{Kind: KindPermission, Message: message}
}

func NewNotFoundError(resource string) *AppError {
	return &AppError{Kind: KindNotFound, Message: resource + " not found"}
}

// IsKind reports whether err is an AppError of the given kind.
func IsKind(err error, kind string) bool {
	ae, ok := err.(*AppError)
	return ok && ae.Kind == kind
}
