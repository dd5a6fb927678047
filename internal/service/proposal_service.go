package service

import (
	"context"
	"io"
	"net/url"
	"strings"

	"proposal-client/internal/domain"
	apperrors "proposal-client/pkg/errors"
)

const downloadPrefix = "/api/download/"

// ProposalService lists generated proposals and saves them locally.
// It is the download capability handed to the workflow controller.
type ProposalService struct {
	catalog domain.ProposalCatalog
	storage StorageService
	logger  domain.Logger
}

func NewProposalService(catalog domain.ProposalCatalog, storage StorageService, logger domain.Logger) *ProposalService {
	return &ProposalService{
		catalog: catalog,
		storage: storage,
		logger:  logger,
	}
}

// List returns one page of proposals.
func (s *ProposalService) List(ctx context.Context, page, perPage int) (*domain.ProposalPage, error) {
	result, err := s.catalog.ListProposals(ctx, page, perPage)
	if err != nil {
		s.logger.Error("Failed to list proposals", err, "page", page)
		return nil, err
	}
	return result, nil
}

// Download fetches fileURL and returns the local path it was saved to.
func (s *ProposalService) Download(ctx context.Context, fileURL string) (string, error) {
	if strings.TrimSpace(fileURL) == "" {
		return "", apperrors.NewNotFoundError("no file url")
	}
	path, err := s.storage.Store(ctx, func(w io.Writer) (string, error) {
		return s.catalog.Fetch(ctx, fileURL, w)
	})
	if err != nil {
		if _, ok := apperrors.As(err); ok {
			return "", err
		}
		return "", apperrors.NewInternalError("save download", err)
	}
	s.logger.Info("Proposal saved", "url", fileURL, "path", path)
	return path, nil
}

// DownloadByName fetches a proposal by the file name the list reports.
func (s *ProposalService) DownloadByName(ctx context.Context, filename string) (string, error) {
	filename = strings.TrimSpace(filename)
	if filename == "" || strings.ContainsAny(filename, "/\\") {
		return "", apperrors.NewNotFoundError("invalid file name")
	}
	return s.Download(ctx, downloadPrefix+url.PathEscape(filename))
}
