package upload

import "errors"

var (
	ErrNotFound         = errors.New("upload record not found")
	ErrDuplicateKey     = errors.New("upload record already exists")
	ErrPermissionDenied = errors.New("only the uploader or an admin can delete this file")
	ErrFileTooLarge     = errors.New("file exceeds maximum allowed size")
	ErrRateLimited      = errors.New("upload rate limit exceeded")
	ErrGateway          = errors.New("messaging gateway request failed")
)
