package chat

import (
	"fmt"
	"strings"
)

// MaxUploadSize mirrors the server's request size limit.
const MaxUploadSize = 16 << 20

const mediaTypePDF = "application/pdf"

type UploadPhase int

const (
	UploadIdle UploadPhase = iota
	UploadUploading
	UploadSucceeded
	UploadFailed
)

func (p UploadPhase) String() string {
	switch p {
	case UploadUploading:
		return "uploading"
	case UploadSucceeded:
		return "success"
	case UploadFailed:
		return "failure"
	default:
		return "idle"
	}
}

type StatusKind int

const (
	StatusNone StatusKind = iota
	StatusSuccess
	StatusError
)

// UploadStatus is the one-line message shown under the upload widget.
type UploadStatus struct {
	Kind StatusKind
	Text string
}

// File describes a candidate upload. MediaType is the declared or detected
// content type.
type File struct {
	Path      string
	Name      string
	Size      int64
	MediaType string
}

// IsPDF reports whether the declared media type is PDF.
func (f File) IsPDF() bool {
	mt := strings.ToLower(strings.TrimSpace(f.MediaType))
	if i := strings.IndexByte(mt, ';'); i >= 0 {
		mt = strings.TrimSpace(mt[:i])
	}
	return mt == mediaTypePDF
}

// Document is the uploaded document the document channel talks about.
type Document struct {
	DocID    string
	Filename string
}

// Present reports whether a server-side document identifier is held.
func (d Document) Present() bool {
	return d.DocID != ""
}

// Upload is the state of the upload widget.
type Upload struct {
	Phase    UploadPhase
	File     File
	Progress Progress
	Status   UploadStatus
}

// UploadResult is what the server said about an upload attempt.
type UploadResult struct {
	Success     bool
	DocID       string
	Filename    string
	ChunksCount int
	Message     string
	// Reason is the server-provided failure reason, if any.
	Reason string
	// Network is set when the request itself failed.
	Network bool
}

// BeginUpload moves the widget from idle to uploading. It rejects a second
// concurrent upload and any non-PDF file without changing state, except for
// the status line on a type or size rejection.
func (s *State) BeginUpload(f File) error {
	if s.upload.Phase == UploadUploading {
		return ErrUploadInProgress
	}
	if f.Name == "" && f.Path == "" {
		return ErrNoFile
	}
	if !f.IsPDF() {
		s.upload.Status = UploadStatus{Kind: StatusError, Text: StatusNotPDF}
		return fmt.Errorf("%w: %s", ErrNotPDF, f.MediaType)
	}
	if f.Size > MaxUploadSize {
		s.upload.Status = UploadStatus{Kind: StatusError, Text: StatusTooLarge}
		return ErrFileTooLarge
	}
	s.upload = Upload{
		Phase: UploadUploading,
		File:  f,
	}
	return nil
}

// TickUpload advances the simulated progress while uploading.
func (s *State) TickUpload() {
	if s.upload.Phase != UploadUploading {
		return
	}
	s.upload.Progress.Tick()
}

// CompleteUpload applies the server's verdict. It is ignored unless an upload
// is in flight.
func (s *State) CompleteUpload(res UploadResult) {
	if s.upload.Phase != UploadUploading {
		return
	}
	s.upload.Progress.Finish()

	if !res.Success {
		s.resetUpload()
		s.upload.Phase = UploadFailed
		text := res.Reason
		switch {
		case res.Network:
			text = StatusUploadNetwork
		case text == "":
			text = StatusUploadFailed
		}
		s.upload.Status = UploadStatus{Kind: StatusError, Text: text}
		return
	}

	filename := res.Filename
	if filename == "" {
		filename = s.upload.File.Name
	}
	s.document = Document{DocID: res.DocID, Filename: filename}
	s.upload.Phase = UploadSucceeded
	s.upload.Status = UploadStatus{Kind: StatusSuccess, Text: res.Message}

	now := s.now()
	s.history[ChannelDocument] = append(s.history[ChannelDocument],
		NewMessage(RoleSystem, fmt.Sprintf("Processed document \"%s\" (%d chunks)", filename, res.ChunksCount), nil, now),
		NewMessage(RoleAssistant, fmt.Sprintf(
			"I've processed your document \"%s\". Created %d text chunks for analysis. Feel free to ask me any questions about the content!",
			filename, res.ChunksCount), nil, now),
	)
}

// RemoveDocument forgets the uploaded document and resets the widget.
func (s *State) RemoveDocument() error {
	if s.upload.Phase == UploadUploading {
		return ErrUploadInProgress
	}
	s.resetUpload()
	return nil
}

func (s *State) resetUpload() {
	s.document = Document{}
	s.upload = Upload{}
}

// Upload returns the upload widget state.
func (s *State) Upload() Upload {
	return s.upload
}

// Document returns the uploaded document, if any.
func (s *State) Document() Document {
	return s.document
}

// Uploading reports whether an upload is in flight.
func (s *State) Uploading() bool {
	return s.upload.Phase == UploadUploading
}

// AttachDocument makes d the current document without an upload, as when the
// user names a document the server already holds.
func (s *State) AttachDocument(d Document) error {
	if s.upload.Phase == UploadUploading {
		return ErrUploadInProgress
	}
	if !d.Present() {
		return ErrNoFile
	}
	s.upload = Upload{}
	s.document = d
	return nil
}
