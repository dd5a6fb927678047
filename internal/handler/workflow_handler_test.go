package handler

import (
	"net/http"
	"os"
	"path/filepath"
	"testing"

	"proposal-client/internal/domain"
	"proposal-client/internal/notify"
)

func drainTargets(t *testing.T, a *agent) []domain.View {
	t.Helper()
	var body struct {
		Navigations []domain.Navigation `json:"navigations"`
	}
	decodeBody(t, a.do(t, http.MethodGet, "/navigation", ""), &body)
	out := make([]domain.View, 0, len(body.Navigations))
	for _, n := range body.Navigations {
		out = append(out, n.To)
	}
	return out
}

func TestWorkflow_FullFlow(t *testing.T) {
	a := newAgent(t)
	a.login(t)
	drainTargets(t, a)

	rr := a.upload(t, "report.xlsx", []byte("workbook"))
	if rr.Code != http.StatusAccepted {
		t.Fatalf("expected status %d, got %d: %s", http.StatusAccepted, rr.Code, rr.Body.String())
	}
	a.container.Controller.Wait()

	var snap domain.Snapshot
	decodeBody(t, a.do(t, http.MethodGet, "/preview", ""), &snap)
	if snap.State != domain.StateValidated {
		t.Fatalf("expected validated, got %s (%s)", snap.State, snap.Error)
	}
	if len(snap.Validation.PreviewRows) != 1 || snap.Validation.PreviewRows[0][0].Column != "sku" {
		t.Fatalf("unexpected preview %+v", snap.Validation)
	}

	rr = a.do(t, http.MethodPost, "/preview/confirm", "")
	if rr.Code != http.StatusAccepted {
		t.Fatalf("expected status %d, got %d", http.StatusAccepted, rr.Code)
	}
	a.container.Controller.Wait()

	snap = a.container.Controller.Current()
	if snap.State != domain.StateCompleted {
		t.Fatalf("expected completed, got %s (%s)", snap.State, snap.Error)
	}
	data, err := os.ReadFile(filepath.Join(a.downloads, "proposal_1.docx"))
	if err != nil || string(data) != "DOCX" {
		t.Fatalf("expected downloaded proposal, got %q (%v)", data, err)
	}

	got := drainTargets(t, a)
	want := []domain.View{domain.ViewPreview, domain.ViewProposals}
	if len(got) != len(want) || got[0] != want[0] || got[1] != want[1] {
		t.Fatalf("expected navigations %v, got %v", want, got)
	}
	if again := drainTargets(t, a); len(again) != 0 {
		t.Fatalf("expected redirects to fire once, got %v", again)
	}
}

func TestWorkflow_RejectedValidation(t *testing.T) {
	a := newAgent(t)
	a.login(t)
	a.service.rejectValidation.Store(true)

	a.upload(t, "report.xlsx", []byte("workbook"))
	a.container.Controller.Wait()

	snap := a.container.Controller.Current()
	if snap.State != domain.StateValidationFailed || snap.Error != "bad headers" {
		t.Fatalf("expected validation failure with server message, got %s %q", snap.State, snap.Error)
	}

	var body struct {
		Notifications []notify.Notification `json:"notifications"`
	}
	decodeBody(t, a.do(t, http.MethodGet, "/notifications", ""), &body)
	last := body.Notifications[len(body.Notifications)-1]
	if last.Level != notify.LevelError || last.Message != "bad headers" {
		t.Fatalf("unexpected notification %+v", last)
	}
}

func TestWorkflow_InvalidFileType(t *testing.T) {
	a := newAgent(t)
	a.login(t)

	rr := a.upload(t, "notes.txt", []byte("hello"))
	if rr.Code != http.StatusUnsupportedMediaType {
		t.Fatalf("expected status %d, got %d", http.StatusUnsupportedMediaType, rr.Code)
	}
	if a.container.Controller.Current().State != domain.StateIdle {
		t.Fatalf("expected idle, got %s", a.container.Controller.Current().State)
	}
}

func TestWorkflow_MissingFile(t *testing.T) {
	a := newAgent(t)
	a.login(t)

	rr := a.do(t, http.MethodPost, "/create/file", "")
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected status %d, got %d", http.StatusBadRequest, rr.Code)
	}
}

func TestWorkflow_ConfirmBeforeValidation(t *testing.T) {
	a := newAgent(t)
	a.login(t)

	rr := a.do(t, http.MethodPost, "/preview/confirm", "")
	if rr.Code != http.StatusConflict {
		t.Fatalf("expected status %d, got %d", http.StatusConflict, rr.Code)
	}
}

func TestWorkflow_CancelWhenIdleIsNoOp(t *testing.T) {
	a := newAgent(t)
	a.login(t)

	var body struct {
		Cancelled bool `json:"cancelled"`
	}
	decodeBody(t, a.do(t, http.MethodPost, "/create/cancel", ""), &body)
	if body.Cancelled {
		t.Fatal("expected cancel to be a no-op when idle")
	}
}

func TestWorkflow_LeavePreviewDiscardsFile(t *testing.T) {
	a := newAgent(t)
	a.login(t)
	a.upload(t, "report.xlsx", []byte("workbook"))
	a.container.Controller.Wait()

	var body struct {
		Redirect string          `json:"redirect"`
		Workflow domain.Snapshot `json:"workflow"`
	}
	decodeBody(t, a.do(t, http.MethodPost, "/preview/cancel", ""), &body)
	if body.Redirect != "/create" || body.Workflow.State != domain.StateIdle || body.Workflow.FileName != "" {
		t.Fatalf("unexpected response %+v", body)
	}
}

func TestWorkflow_UnauthorizedForcesLogout(t *testing.T) {
	a := newAgent(t)
	a.login(t)
	drainTargets(t, a)
	a.service.expired.Store(true)

	if rr := a.upload(t, "report.xlsx", []byte("workbook")); rr.Code != http.StatusAccepted {
		t.Fatalf("expected status %d, got %d", http.StatusAccepted, rr.Code)
	}
	a.container.Controller.Wait()

	if _, ok := a.container.Sessions.Current(); ok {
		t.Fatal("expected the 401 to clear the session")
	}
	if rr := a.do(t, http.MethodGet, "/create", ""); rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected guard to block /create, got %d", rr.Code)
	}
	got := drainTargets(t, a)
	if len(got) == 0 || got[len(got)-1] != domain.ViewLogin {
		t.Fatalf("expected redirect to login, got %v", got)
	}
}

func TestWorkflow_ProposalsAndDownload(t *testing.T) {
	a := newAgent(t)
	a.login(t)

	var page domain.ProposalPage
	decodeBody(t, a.do(t, http.MethodGet, "/proposals?page=1&per_page=5", ""), &page)
	if page.Total != 1 || page.Items[0].FilePath != "proposal_1.docx" {
		t.Fatalf("unexpected page %+v", page)
	}

	var body map[string]string
	rr := a.do(t, http.MethodGet, "/proposals/download/proposal_1.docx", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d: %s", http.StatusOK, rr.Code, rr.Body.String())
	}
	decodeBody(t, rr, &body)
	if filepath.Dir(body["path"]) != a.downloads {
		t.Fatalf("expected download inside %s, got %s", a.downloads, body["path"])
	}
}
