// Package docstore uploads issued documents to Google Drive.
package docstore

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/kirinyoku/tourdesk/internal/quote"
	"google.golang.org/api/drive/v3"
	"google.golang.org/api/option"
)

type Config struct {
	CredentialsJSON string
	FolderID        string
}

// Drive implements quote.DocumentStore. A zero Drive (no credentials) is
// valid and reports every upload as quote.ErrStoreUnavailable.
type Drive struct {
	files    *drive.FilesService
	folderID string
}

func New(ctx context.Context, cfg Config) (*Drive, error) {
	const op = "docstore.New"

	if cfg.CredentialsJSON == "" {
		return &Drive{}, nil
	}

	svc, err := drive.NewService(ctx,
		option.WithCredentialsJSON([]byte(cfg.CredentialsJSON)),
		option.WithScopes(drive.DriveFileScope),
	)
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, err)
	}

	return &Drive{files: svc.Files, folderID: cfg.FolderID}, nil
}

func (d *Drive) Configured() bool { return d != nil && d.files != nil }

// Upload stores a PDF and returns its web view link.
func (d *Drive) Upload(ctx context.Context, file []byte, fileName string) (string, error) {
	const op = "docstore.Drive.Upload"

	if !d.Configured() {
		return "", fmt.Errorf("%s:%w", op, quote.ErrStoreUnavailable)
	}

	meta := &drive.File{Name: fileName, MimeType: "application/pdf"}
	if d.folderID != "" {
		meta.Parents = []string{d.folderID}
	}

	f, err := d.files.Create(meta).
		Media(bytes.NewReader(file)).
		Fields("id, webViewLink").
		Context(ctx).
		Do()
	if err != nil {
		return "", fmt.Errorf("%s:%w", op, err)
	}

	return f.WebViewLink, nil
}

type File struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	WebViewLink  string    `json:"web_view_link"`
	IconLink     string    `json:"icon_link,omitempty"`
	ModifiedTime time.Time `json:"modified_time"`
}

// Recent lists the most recently modified files. Unconfigured stores
// return an empty list.
func (d *Drive) Recent(ctx context.Context, limit int) ([]File, error) {
	const op = "docstore.Drive.Recent"

	if !d.Configured() {
		return []File{}, nil
	}

	if limit <= 0 {
		limit = 5
	}

	res, err := d.files.List().
		PageSize(int64(limit)).
		OrderBy("modifiedTime desc").
		Fields("files(id, name, webViewLink, iconLink, modifiedTime)").
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, err)
	}

	out := make([]File, 0, len(res.Files))
	for _, f := range res.Files {
		mt, _ := time.Parse(time.RFC3339, f.ModifiedTime)
		out = append(out, File{
			ID:           f.Id,
			Name:         f.Name,
			WebViewLink:  f.WebViewLink,
			IconLink:     f.IconLink,
			ModifiedTime: mt,
		})
	}

	return out, nil
}
