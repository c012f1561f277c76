package api

import (
	"bytes"
	"errors"
	"html/template"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/yuin/goldmark"

	"telegram-news-editor/internal/application"
	"telegram-news-editor/internal/domain"
	"telegram-news-editor/internal/infra/logging"
	"telegram-news-editor/internal/usecase"
)

// Server is the admin HTTP surface: health, metrics, the publish log and a draft preview.
type Server struct {
	editorUC usecase.EditorUseCase
	auditUC  usecase.AuditUseCase
	auth     *AuthManager
	ownerID  int64
	timeout  time.Duration
	log      *zerolog.Logger
}

func NewServer(editorUC usecase.EditorUseCase, auditUC usecase.AuditUseCase, auth *AuthManager, ownerID int64, timeout time.Duration, logger *zerolog.Logger) *Server {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Server{
		editorUC: editorUC,
		auditUC:  auditUC,
		auth:     auth,
		ownerID:  ownerID,
		timeout:  timeout,
		log:      logger,
	}
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(s.auth.Require)
		r.Get("/audit.csv", s.handleAuditCSV)
		r.Get("/draft", s.handleDraft)
	})

	return Chain(r, TraceID(), RequestLog(s.log), Recover(s.log), Timeout(s.timeout))
}

func (s *Server) handleAuditCSV(w http.ResponseWriter, r *http.Request) {
	data, err := s.auditUC.ExportCSV(r.Context())
	if errors.Is(err, domain.ErrNotFound) {
		http.Error(w, "no entries", http.StatusNotFound)
		return
	}
	if err != nil {
		logging.With(r.Context(), s.log).Error().Err(err).Msg("export audit csv")
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+application.AuditFileName+`"`)
	_, _ = w.Write(data)
}

// handleDraft renders the operator's current draft as HTML. ?operator= selects the session,
// the configured owner by default.
func (s *Server) handleDraft(w http.ResponseWriter, r *http.Request) {
	op := s.ownerID
	if v := r.URL.Query().Get("operator"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			http.Error(w, "bad operator id", http.StatusBadRequest)
			return
		}
		op = id
	}

	sess, ok := s.editorUC.Snapshot(op)
	if !ok || !sess.HasDraft() {
		http.Error(w, "no draft", http.StatusNotFound)
		return
	}

	var body bytes.Buffer
	if err := goldmark.Convert([]byte(sess.Draft), &body); err != nil {
		logging.With(r.Context(), s.log).Error().Err(err).Msg("render draft")
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_ = draftPage.Execute(w, struct {
		Mode  string
		Kind  string
		Style string
		Body  template.HTML
	}{
		Mode:  string(sess.Mode),
		Kind:  string(sess.Kind),
		Style: string(sess.Style),
		// goldmark escapes raw HTML unless WithUnsafe is set
		Body: template.HTML(body.String()),
	})
}

var draftPage = template.Must(template.New("draft").Parse(`<!doctype html>
<html>
<head>
<meta charset="utf-8" />
<meta name="viewport" content="width=device-width,initial-scale=1" />
<title>Draft preview</title>
<style>
body{font-family:system-ui,Arial,sans-serif;margin:2rem;}
.card{max-width:640px;border:1px solid #ddd;border-radius:12px;padding:24px;}
.small{font-size:12px;color:#666}
</style>
</head>
<body>
<div class="card">
  <div class="small">mode: {{.Mode}} · kind: {{.Kind}}{{if .Style}} · style: {{.Style}}{{end}}</div>
  {{.Body}}
</div>
</body>
</html>`))
