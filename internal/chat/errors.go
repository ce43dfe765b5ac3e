package chat

import "errors"

var (
	ErrUploadInProgress = errors.New("an upload is already in progress")
	ErrNotPDF           = errors.New("file is not a PDF document")
	ErrFileTooLarge     = errors.New("file exceeds the upload size limit")
	ErrNoFile           = errors.New("no file selected")
)

// Text shown to the user for local and remote failures.
const (
	MsgUploadFirst      = "Please upload a PDF document first."
	MsgNetworkError     = "Sorry, I encountered a network error. Please try again."
	msgErrorPrefix      = "Sorry, I encountered an error: "
	StatusNotPDF        = "Please upload a PDF file"
	StatusTooLarge      = "File exceeds the 16 MB upload limit"
	StatusUploadFailed  = "Upload failed"
	StatusUploadNetwork = "Failed to upload file. Please try again."
	unknownReason       = "unknown error"
)

// ErrorText formats a server-reported failure reason as a chat reply.
func ErrorText(reason string) string {
	if reason == "" {
		reason = unknownReason
	}
	return msgErrorPrefix + reason
}
