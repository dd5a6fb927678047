package service

import (
	"context"
	"os"
	"testing"

	"proposal-client/internal/domain"
	apperrors "proposal-client/pkg/errors"
)

var _ domain.Downloader = (*ProposalService)(nil)

func TestProposalService_Download(t *testing.T) {
	catalog := NewMockCatalog()
	catalog.files["/files/a.pdf"] = "PDF"
	svc := NewProposalService(catalog, NewStorageService(t.TempDir()), NewMockLogger())

	path, err := svc.Download(context.Background(), "/files/a.pdf")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil || string(data) != "PDF" {
		t.Fatalf("unexpected content %q (%v)", data, err)
	}

	if _, err := svc.Download(context.Background(), "/files/missing.pdf"); !apperrors.IsType(err, apperrors.ErrorTypeInternal) {
		t.Fatalf("expected internal error for plain failure, got %v", err)
	}
	if _, err := svc.Download(context.Background(), " "); !apperrors.IsType(err, apperrors.ErrorTypeNotFound) {
		t.Fatalf("expected not found for empty url, got %v", err)
	}
}

func TestProposalService_DownloadByName(t *testing.T) {
	catalog := NewMockCatalog()
	catalog.files["/api/download/proposal%201.docx"] = "DOCX"
	svc := NewProposalService(catalog, NewStorageService(t.TempDir()), NewMockLogger())

	if _, err := svc.DownloadByName(context.Background(), "proposal 1.docx"); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if _, err := svc.DownloadByName(context.Background(), "../secret"); !apperrors.IsType(err, apperrors.ErrorTypeNotFound) {
		t.Fatalf("expected rejection of path names, got %v", err)
	}
	if len(catalog.fetched) != 1 {
		t.Fatalf("expected one fetch, got %v", catalog.fetched)
	}
}

func TestProposalService_List(t *testing.T) {
	catalog := NewMockCatalog()
	svc := NewProposalService(catalog, NewStorageService(t.TempDir()), NewMockLogger())

	if _, err := svc.List(context.Background(), 1, 10); err == nil {
		t.Fatal("expected error when catalog fails")
	}

	catalog.page = &domain.ProposalPage{Total: 1, Items: []domain.ProposalSummary{{ID: 1, Filename: "kp.xlsx"}}}
	page, err := svc.List(context.Background(), 1, 10)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if page.Total != 1 || page.Items[0].Filename != "kp.xlsx" {
		t.Fatalf("unexpected page %+v", page)
	}
}
