package models

import "errors"

// ErrorResponse defines API error response format
type ErrorResponse struct {
	Code  string `json:"code"`
	Error string `json:"error"`
}

// ErrorResponse.Code 的取值
const (
	CodeNotFound       = "notexist"
	CodeExists         = "exists"
	CodeServerRunning  = "server.running"
	CodeServerStopped  = "server.stopped"
	CodePropertyError  = "property.invalid"
	CodeChecksum       = "download.checksum"
	CodeTransport      = "download.transport"
	CodeProcessSpawn   = "process.spawn"
	CodeInvalidRequest = "request.invalid"
	CodeInternal       = "internal"
)

var codeErrors = map[string]error{
	CodeNotFound:      ErrNotFound,
	CodeExists:        ErrAlreadyExists,
	CodeServerRunning: ErrServerRunning,
	CodeServerStopped: ErrServerStopped,
	CodePropertyError: ErrValidation,
	CodeChecksum:      ErrIntegrityMismatch,
	CodeTransport:     ErrTransport,
	CodeProcessSpawn:  ErrProcessSpawn,
}

// ErrorForCode 返回错误代码对应的哨兵错误，未知代码返回 nil
func ErrorForCode(code string) error {
	return codeErrors[code]
}

// CodeForError 返回 err 对应的错误代码
func CodeForError(err error) string {
	for _, code := range []string{
		CodeNotFound, CodeExists, CodeServerRunning, CodeServerStopped,
		CodePropertyError, CodeChecksum, CodeTransport, CodeProcessSpawn,
	} {
		if errors.Is(err, codeErrors[code]) {
			return code
		}
	}
	return CodeInternal
}
