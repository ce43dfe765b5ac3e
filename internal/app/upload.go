package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/chasedut/docchat/internal/api"
	"github.com/chasedut/docchat/internal/chat"
	"github.com/chasedut/docchat/internal/db"
)

const (
	keyDocID       = "last_doc_id"
	keyDocFilename = "last_doc_filename"

	pdfMagic = "%PDF-"
)

// PrepareFile stats path and works out its media type from the extension and
// the first bytes of the file.
func PrepareFile(path string) (chat.File, error) {
	f, err := os.Open(path)
	if err != nil {
		return chat.File{}, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return chat.File{}, fmt.Errorf("failed to stat %s: %w", path, err)
	}
	if info.IsDir() {
		return chat.File{}, fmt.Errorf("%s is a directory", path)
	}

	head := make([]byte, 512)
	n, err := io.ReadFull(f, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return chat.File{}, fmt.Errorf("failed to read %s: %w", path, err)
	}

	return chat.File{
		Path:      path,
		Name:      filepath.Base(path),
		Size:      info.Size(),
		MediaType: detectMediaType(filepath.Ext(path), head[:n]),
	}, nil
}

// detectMediaType trusts the content over the extension. A PDF renamed to
// .txt is still a PDF; a text file named .pdf is not.
func detectMediaType(ext string, head []byte) string {
	if strings.HasPrefix(string(head), pdfMagic) {
		return "application/pdf"
	}
	if len(head) > 0 {
		return http.DetectContentType(head)
	}
	if mt := mime.TypeByExtension(strings.ToLower(ext)); mt != "" {
		return mt
	}
	return "application/octet-stream"
}

// PerformUpload sends f to the server. It never fails: errors become failed
// results.
func (app *App) PerformUpload(ctx context.Context, f chat.File) chat.UploadResult {
	file, err := os.Open(f.Path)
	if err != nil {
		slog.Error("Failed to open upload", "path", f.Path, "error", err)
		return chat.UploadResult{Reason: fmt.Sprintf("Could not read %s", f.Name)}
	}
	defer file.Close()

	resp, err := app.Client.Upload(ctx, f.Name, file)
	if err != nil {
		if apiErr, ok := api.IsApplicationError(err); ok {
			slog.Warn("Upload rejected", "file", f.Name, "reason", apiErr.Reason)
			return chat.UploadResult{Reason: apiErr.Reason}
		}
		slog.Error("Upload failed", "file", f.Name, "error", err)
		return chat.UploadResult{Network: true}
	}

	slog.Info("Upload processed", "file", f.Name, "doc_id", resp.DocID, "chunks", resp.ChunksCount)
	return chat.UploadResult{
		Success:     true,
		DocID:       resp.DocID,
		Filename:    resp.Filename,
		ChunksCount: resp.ChunksCount,
		Message:     resp.Message,
	}
}

// RememberDocument stores d as the document command-line questions default to.
func (app *App) RememberDocument(ctx context.Context, d chat.Document) error {
	if err := app.store.Set(ctx, keyDocID, d.DocID); err != nil {
		return err
	}
	return app.store.Set(ctx, keyDocFilename, d.Filename)
}

// LastDocument returns the remembered document. ok is false when none is
// stored.
func (app *App) LastDocument(ctx context.Context) (chat.Document, bool, error) {
	id, err := app.store.Get(ctx, keyDocID)
	if errors.Is(err, db.ErrNotFound) {
		return chat.Document{}, false, nil
	}
	if err != nil {
		return chat.Document{}, false, err
	}
	name, err := app.store.Get(ctx, keyDocFilename)
	if err != nil && !errors.Is(err, db.ErrNotFound) {
		return chat.Document{}, false, err
	}
	return chat.Document{DocID: id, Filename: name}, id != "", nil
}

// ForgetDocument removes the remembered document.
func (app *App) ForgetDocument(ctx context.Context) error {
	if err := app.store.Delete(ctx, keyDocID); err != nil {
		return err
	}
	return app.store.Delete(ctx, keyDocFilename)
}
