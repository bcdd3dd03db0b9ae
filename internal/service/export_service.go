package service

import (
	"errors"
	"fmt"
	"os"
	"path"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/forum-submission-api/pkg/export"
	appErrors "github.com/noah-isme/forum-submission-api/pkg/errors"
	"github.com/noah-isme/forum-submission-api/pkg/storage"
	"github.com/noah-isme/forum-submission-api/pkg/text"
)

type fileStorage interface {
	Save(rel string, data []byte) (string, error)
	Open(rel string) (*os.File, error)
	List(dir string) ([]storage.FileInfo, error)
	DeleteDir(rel string) error
}

type htmlRenderer interface {
	Render(doc export.Document) []byte
}

type pdfRenderer interface {
	Render(doc export.Document) ([]byte, error)
}

// ExportConfig tunes export behaviour.
type ExportConfig struct {
	APIPrefix  string
	IncludePDF bool
}

// ExportedFile is a stored file reachable through a signed download URL.
type ExportedFile struct {
	Name         string
	RelativePath string
	Size         int64
	Token        string
	URL          string
	ExpiresAt    time.Time
}

// ExportService writes submission documents to storage and signs download links.
type ExportService struct {
	storage fileStorage
	signer  *storage.SignedURLSigner
	html    htmlRenderer
	pdf     pdfRenderer
	cfg     ExportConfig
	logger  *zap.Logger
}

// NewExportService constructs an ExportService.
func NewExportService(store fileStorage, signer *storage.SignedURLSigner, cfg ExportConfig, logger *zap.Logger, html htmlRenderer, pdf pdfRenderer) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if html == nil {
		html = export.NewHTMLExporter()
	}
	if pdf == nil {
		pdf = export.NewPDFExporter()
	}
	cfg.APIPrefix = strings.TrimRight(cfg.APIPrefix, "/")
	if cfg.APIPrefix == "" {
		cfg.APIPrefix = "/api/v1"
	}
	return &ExportService{storage: store, signer: signer, html: html, pdf: pdf, cfg: cfg, logger: logger}
}

// SubmissionFileArea is the storage directory holding files of a submission.
func SubmissionFileArea(submissionID int64) string {
	return fmt.Sprintf("submissions_forum/%d", submissionID)
}

// ExportDirectory is the storage directory holding the current export of a
// submission. Each export replaces the previous one.
func ExportDirectory(assignmentID, submissionID int64) string {
	return fmt.Sprintf("exports/%d/%d", assignmentID, submissionID)
}

// ExportDocument stores the captured text as a standalone HTML page, plus a
// PDF rendering when enabled. Files of an earlier export are removed first.
func (s *ExportService) ExportDocument(assignmentID, submissionID int64, filename, title, body string) ([]ExportedFile, error) {
	owner := strconv.FormatInt(submissionID, 10)
	dir := ExportDirectory(assignmentID, submissionID)
	if err := s.storage.DeleteDir(dir); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to clear previous export")
	}
	doc := export.Document{Title: title, Body: text.RelativePluginFileURLs(body)}

	files := make([]ExportedFile, 0, 2)
	file, err := s.store(owner, path.Join(dir, filename), s.html.Render(doc))
	if err != nil {
		return nil, err
	}
	files = append(files, *file)

	if s.cfg.IncludePDF {
		data, err := s.pdf.Render(doc)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render pdf")
		}
		pdfName := strings.TrimSuffix(filename, path.Ext(filename)) + ".pdf"
		file, err := s.store(owner, path.Join(dir, pdfName), data)
		if err != nil {
			return nil, err
		}
		files = append(files, *file)
	}

	s.logger.Info("submission exported", zap.Int64("submission_id", submissionID), zap.Int("files", len(files)))
	return files, nil
}

// DeleteAssignmentExports removes the exports of every submission of an assignment.
func (s *ExportService) DeleteAssignmentExports(assignmentID int64) error {
	if err := s.storage.DeleteDir(fmt.Sprintf("exports/%d", assignmentID)); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete exports")
	}
	return nil
}

// SubmissionFiles signs every file of the submission file area, oldest first.
func (s *ExportService) SubmissionFiles(submissionID int64) ([]ExportedFile, error) {
	owner := strconv.FormatInt(submissionID, 10)
	area, err := s.storage.List(SubmissionFileArea(submissionID))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list submission files")
	}
	files := make([]ExportedFile, 0, len(area))
	for _, info := range area {
		signed, err := s.sign(owner, info.Path)
		if err != nil {
			return nil, err
		}
		signed.Name = info.Name
		signed.Size = info.Size
		files = append(files, *signed)
	}
	return files, nil
}

// Open resolves a download token to the stored file.
func (s *ExportService) Open(token string) (*os.File, string, error) {
	_, relPath, _, err := s.signer.Parse(token)
	if err != nil {
		if errors.Is(err, storage.ErrTokenExpired) {
			return nil, "", appErrors.Clone(appErrors.ErrUnauthorized, "download link expired")
		}
		return nil, "", appErrors.Clone(appErrors.ErrUnauthorized, "invalid download link")
	}
	f, err := s.storage.Open(relPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, "", appErrors.Clone(appErrors.ErrNotFound, "file not found")
		}
		return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to open file")
	}
	return f, path.Base(relPath), nil
}

func (s *ExportService) store(owner, rel string, data []byte) (*ExportedFile, error) {
	stored, err := s.storage.Save(rel, data)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store export")
	}
	file, err := s.sign(owner, stored)
	if err != nil {
		return nil, err
	}
	file.Name = path.Base(stored)
	file.Size = int64(len(data))
	return file, nil
}

func (s *ExportService) sign(owner, rel string) (*ExportedFile, error) {
	token, expiresAt, err := s.signer.Generate(owner, rel)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to sign download")
	}
	return &ExportedFile{
		RelativePath: rel,
		Token:        token,
		URL:          fmt.Sprintf("%s/forum/exports/download?token=%s", s.cfg.APIPrefix, token),
		ExpiresAt:    expiresAt,
	}, nil
}
