//go:build !integration

package api_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"telegram-news-editor/internal/domain/model"
	"telegram-news-editor/internal/infra/api"
	"telegram-news-editor/internal/usecase"
)

const (
	owner  int64 = 1001
	secret       = "test-secret"
)

type stubGateway struct{}

func (stubGateway) Generate(ctx context.Context, prompt string) (string, error) {
	return "Налог повышен.\nМой комментарий:\nЭто плохо.", nil
}

type stubChannel struct{}

func (stubChannel) Publish(ctx context.Context, text string, media *model.Media) (model.MessageHandle, error) {
	return model.MessageHandle{ChannelUsername: "@news", MessageID: 1}, nil
}

func (stubChannel) Retract(ctx context.Context, h model.MessageHandle) error { return nil }

type memAudit struct{ rows []*model.AuditEntry }

func (m *memAudit) Append(ctx context.Context, e *model.AuditEntry) error {
	m.rows = append(m.rows, e)
	return nil
}

func (m *memAudit) ListAll(ctx context.Context) ([]*model.AuditEntry, error) { return m.rows, nil }

type fixture struct {
	handler http.Handler
	editor  usecase.EditorUseCase
	token   string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	logger := zerolog.Nop()
	audit := &memAudit{}
	editor := usecase.NewEditorUseCase(usecase.NewSessionRegistry(), stubGateway{}, stubChannel{}, audit, nil, nil, usecase.EditorOptions{}, &logger)
	auth := api.NewAuthManager(secret, time.Hour)
	tok, err := auth.Mint("ops")
	if err != nil {
		t.Fatal(err)
	}
	srv := api.NewServer(editor, usecase.NewAuditUseCase(audit, &logger), auth, owner, time.Second, &logger)
	return &fixture{handler: srv.Router(), editor: editor, token: tok}
}

func (fx *fixture) get(path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	fx.handler.ServeHTTP(rec, req)
	return rec
}

func TestServer_HealthAndMetricsAreOpen(t *testing.T) {
	fx := newFixture(t)
	if rec := fx.get("/health", ""); rec.Code != http.StatusOK || rec.Body.String() != "OK" {
		t.Fatalf("health = %d %q", rec.Code, rec.Body.String())
	}
	if rec := fx.get("/metrics", ""); rec.Code != http.StatusOK {
		t.Fatalf("metrics = %d", rec.Code)
	}
	if rec := fx.get("/health", ""); rec.Header().Get("X-Request-ID") == "" {
		t.Fatal("missing request id header")
	}
}

func TestServer_RequiresToken(t *testing.T) {
	fx := newFixture(t)
	other, _ := api.NewAuthManager("other-secret", time.Hour).Mint("ops")

	for _, tok := range []string{"", "garbage", other} {
		if rec := fx.get("/api/v1/audit.csv", tok); rec.Code != http.StatusUnauthorized {
			t.Fatalf("token %q: code = %d", tok, rec.Code)
		}
	}
}

func TestServer_AuditCSV(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()

	if rec := fx.get("/api/v1/audit.csv", fx.token); rec.Code != http.StatusNotFound {
		t.Fatalf("empty log code = %d", rec.Code)
	}

	if _, err := fx.editor.SubmitSeed(ctx, owner, "Правительство повысило налог на прибыль", nil); err != nil {
		t.Fatal(err)
	}
	if _, err := fx.editor.Publish(ctx, owner); err != nil {
		t.Fatal(err)
	}

	rec := fx.get("/api/v1/audit.csv", fx.token)
	if rec.Code != http.StatusOK {
		t.Fatalf("code = %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/csv") {
		t.Fatalf("content type = %q", ct)
	}
	lines := strings.Split(strings.TrimSpace(rec.Body.String()), "\n")
	if lines[0] != "timestamp,user_id,news,response" {
		t.Fatalf("header = %q", lines[0])
	}
	if !strings.Contains(rec.Body.String(), "Правительство повысило налог на прибыль") {
		t.Fatal("row missing")
	}
}

func TestServer_Draft(t *testing.T) {
	fx := newFixture(t)

	if rec := fx.get("/api/v1/draft", fx.token); rec.Code != http.StatusNotFound {
		t.Fatalf("no draft code = %d", rec.Code)
	}
	if rec := fx.get("/api/v1/draft?operator=abc", fx.token); rec.Code != http.StatusBadRequest {
		t.Fatalf("bad operator code = %d", rec.Code)
	}

	if _, err := fx.editor.SubmitSeed(context.Background(), owner, "Правительство повысило налог на прибыль", nil); err != nil {
		t.Fatal(err)
	}
	rec := fx.get("/api/v1/draft", fx.token)
	if rec.Code != http.StatusOK {
		t.Fatalf("code = %d", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "<strong>❗️Налог повышен.</strong>") {
		t.Fatalf("draft not rendered: %s", body)
	}
	if !strings.Contains(body, "mode: drafted") {
		t.Fatalf("mode missing: %s", body)
	}
}

func TestAuthManager_ExpiredToken(t *testing.T) {
	fx := newFixture(t)
	expired, err := api.NewAuthManager(secret, time.Nanosecond).Mint("ops")
	if err != nil {
		t.Fatal(err)
	}
	time.Sleep(5 * time.Millisecond)
	if rec := fx.get("/api/v1/draft", expired); rec.Code != http.StatusUnauthorized {
		t.Fatalf("code = %d", rec.Code)
	}
}
