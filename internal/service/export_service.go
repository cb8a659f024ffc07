package service

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"time"

	log "github.com/sirupsen/logrus"

	"blogstats/internal/config"
	"blogstats/internal/metrics"
	"blogstats/internal/models"
	"blogstats/internal/relations"
	"blogstats/internal/repository"
	"blogstats/internal/storage"
)

var ErrStorageDisabled = errors.New("export storage is not configured")

// RowSink receives export rows one at a time.
type RowSink interface {
	WriteRow(row models.ExportRow) error
}

type ExportService interface {
	// ExportUserActivity streams one row per comment into sink and returns the row count.
	ExportUserActivity(ctx context.Context, sink RowSink) (int, error)
	// ExportToStorage writes the export as CSV to object storage and returns the object name.
	ExportToStorage(ctx context.Context) (string, int, error)
}

type exportService struct {
	postRepo  repository.PostRepository
	loader    *relations.Loader
	storage   storage.Storage
	batchSize int
}

func NewExportService(postRepo repository.PostRepository, loader *relations.Loader, store storage.Storage, cfg *config.Config) ExportService {
	return &exportService{
		postRepo:  postRepo,
		loader:    loader,
		storage:   store,
		batchSize: cfg.Batch.Size,
	}
}

func (s *exportService) ExportUserActivity(ctx context.Context, sink RowSink) (int, error) {
	defer metrics.ObserveSince("export_user_activity", time.Now())

	total := 0
	var afterID int64
	for {
		posts, err := s.postRepo.Page(ctx, afterID, s.batchSize)
		if err != nil {
			return total, fmt.Errorf("failed to load posts after %d: %w", afterID, err)
		}
		if len(posts) == 0 {
			break
		}

		idx, err := s.loader.Load(ctx, posts, relations.Authors|relations.Comments)
		if err != nil {
			return total, err
		}

		written := 0
		for _, post := range posts {
			var name, email string
			if author := idx.Author(post); author != nil {
				name, email = author.Name, author.Email
			}

			for _, c := range idx.Comments(post.ID) {
				row := models.ExportRow{
					AuthorName:       name,
					AuthorEmail:      email,
					PostTitle:        post.Title,
					CommentContent:   c.Content,
					CommentCreatedAt: c.CreatedAt,
				}
				if err := sink.WriteRow(row); err != nil {
					return total + written, fmt.Errorf("failed to write export row: %w", err)
				}
				written++
			}
		}
		total += written
		metrics.ExportRows.Add(float64(written))

		if len(posts) < s.batchSize {
			break
		}
		afterID = posts[len(posts)-1].ID
	}

	return total, nil
}

func (s *exportService) ExportToStorage(ctx context.Context) (string, int, error) {
	if s.storage == nil {
		return "", 0, ErrStorageDisabled
	}

	pr, pw := io.Pipe()

	type exportResult struct {
		rows int
		err  error
	}
	done := make(chan exportResult, 1)

	go func() {
		sink := NewCSVSink(pw)
		rows, err := s.ExportUserActivity(ctx, sink)
		if err == nil {
			err = sink.Flush()
		}
		pw.CloseWithError(err)
		done <- exportResult{rows: rows, err: err}
	}()

	objectName, uploadErr := s.storage.UploadExport(ctx, pr, -1)
	// unblock the writer if the upload stopped reading early
	pr.CloseWithError(uploadErr)

	res := <-done
	// an export failure surfaces in the upload too, so report it first
	if res.err != nil && (uploadErr == nil || !errors.Is(res.err, uploadErr)) {
		return "", res.rows, res.err
	}
	if uploadErr != nil {
		return "", res.rows, uploadErr
	}

	log.WithFields(log.Fields{
		"object": objectName,
		"rows":   res.rows,
	}).Info("activity export uploaded")

	return objectName, res.rows, nil
}

var exportHeader = []string{"author_name", "author_email", "post_title", "comment_content", "comment_created_at"}

// CSVSink writes export rows as CSV with a header line. Call Flush when done.
type CSVSink struct {
	w             *csv.Writer
	headerWritten bool
}

func NewCSVSink(w io.Writer) *CSVSink {
	return &CSVSink{w: csv.NewWriter(w)}
}

func (s *CSVSink) WriteRow(row models.ExportRow) error {
	if err := s.writeHeader(); err != nil {
		return err
	}
	return s.w.Write([]string{
		row.AuthorName,
		row.AuthorEmail,
		row.PostTitle,
		row.CommentContent,
		row.CommentCreatedAt.UTC().Format(time.RFC3339),
	})
}

// Flush writes the header if no row was written, then flushes buffered data.
func (s *CSVSink) Flush() error {
	if err := s.writeHeader(); err != nil {
		return err
	}
	s.w.Flush()
	return s.w.Error()
}

func (s *CSVSink) writeHeader() error {
	if s.headerWritten {
		return nil
	}
	s.headerWritten = true
	return s.w.Write(exportHeader)
}

// SliceSink collects rows in memory.
type SliceSink struct {
	Rows []models.ExportRow
}

func (s *SliceSink) WriteRow(row models.ExportRow) error {
	s.Rows = append(s.Rows, row)
	return nil
}
