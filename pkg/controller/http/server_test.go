package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gt"
	controller "github.com/secmon-lab/intake/pkg/controller/http"
	"github.com/secmon-lab/intake/pkg/domain/interfaces"
	"github.com/secmon-lab/intake/pkg/domain/interfaces/mocks"
	"github.com/secmon-lab/intake/pkg/domain/model"
	"github.com/secmon-lab/intake/pkg/repository"
	"github.com/secmon-lab/intake/pkg/service/extract"
	"github.com/secmon-lab/intake/pkg/service/repair"
	"github.com/secmon-lab/intake/pkg/usecase"
)

const zabbixReport = "A las 09:15 se detectó alerta en Zabbix por caída de VPN en La Paz. Se reinició el servicio a las 09:40."

func newTestServer(t *testing.T, repo interfaces.Repository) http.Handler {
	t.Helper()

	loc, err := time.LoadLocation("America/La_Paz")
	gt.NoError(t, err)
	now := time.Date(2026, time.March, 7, 12, 0, 0, 0, loc)
	clock := func() time.Time { return now }

	vocab, err := model.DefaultVocabulary()
	gt.NoError(t, err)
	x, err := extract.New(vocab, extract.WithLocation(loc), extract.WithClock(clock))
	gt.NoError(t, err)

	uc := usecase.NewIntake(x, repair.New(x, model.DefaultPolicy()), repo, usecase.WithClock(clock))

	ctx := ctxlog.With(context.Background(), slog.New(slog.NewTextHandler(os.Stdout, nil)))
	return controller.NewServer(ctx, ":0", uc).Router()
}

func doJSON(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		gt.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	gt.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func TestHealth(t *testing.T) {
	h := newTestServer(t, repository.NewMemory())
	w := doJSON(t, h, http.MethodGet, "/health", nil)
	gt.Equal(t, w.Code, http.StatusOK)
	gt.Equal(t, decodeBody(t, w)["status"], any("healthy"))
}

func TestSubmitIncident(t *testing.T) {
	t.Run("created", func(t *testing.T) {
		repo := repository.NewMemory()
		h := newTestServer(t, repo)

		w := doJSON(t, h, http.MethodPost, "/api/incidents", map[string]any{"text": zabbixReport})
		gt.Equal(t, w.Code, http.StatusCreated)

		var resp controller.RecordResponse
		gt.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		gt.Equal(t, resp.Code, "INC-07-03-001")
		gt.True(t, resp.Saved)
		gt.Equal(t, len(resp.Fields), 21)
		gt.Equal(t, resp.Record["system"], "VPN")
		gt.Equal(t, resp.Record["location"], "La Paz, Bolivia")
		gt.S(t, resp.Summary).Contains("Sistema: VPN.")
		gt.Equal(t, len(repo.Entries()), 1)

		t.Run("lookup by id", func(t *testing.T) {
			w := doJSON(t, h, http.MethodGet, "/api/incidents/"+resp.ID, nil)
			gt.Equal(t, w.Code, http.StatusOK)
			gt.Equal(t, decodeBody(t, w)["code"], any("INC-07-03-001"))

			w = doJSON(t, h, http.MethodGet, "/api/incidents/unknown", nil)
			gt.Equal(t, w.Code, http.StatusNotFound)
		})
	})

	t.Run("dry run", func(t *testing.T) {
		repo := repository.NewMemory()
		h := newTestServer(t, repo)

		w := doJSON(t, h, http.MethodPost, "/api/incidents", map[string]any{"text": zabbixReport, "dry_run": true})
		gt.Equal(t, w.Code, http.StatusOK)
		gt.Equal(t, decodeBody(t, w)["saved"], any(false))
		gt.Equal(t, len(repo.Entries()), 0)
	})

	t.Run("missing fields", func(t *testing.T) {
		h := newTestServer(t, repository.NewMemory())

		w := doJSON(t, h, http.MethodPost, "/api/incidents", map[string]any{"text": "Se reportó un problema"})
		gt.Equal(t, w.Code, http.StatusUnprocessableEntity)

		body := decodeBody(t, w)
		gt.Equal(t, body["error"], any("missing system, missing location"))
		gt.Equal(t, body["missing"], any([]any{"missing system", "missing location"}))
	})

	t.Run("long report is accepted", func(t *testing.T) {
		h := newTestServer(t, repository.NewMemory())

		long := zabbixReport + strings.Repeat(" Se revisaron los registros del concentrador.", 600)
		gt.True(t, len(long) > 20000)

		w := doJSON(t, h, http.MethodPost, "/api/incidents", map[string]any{"text": long, "dry_run": true})
		gt.Equal(t, w.Code, http.StatusOK)
		gt.Equal(t, decodeBody(t, w)["code"], any("INC-07-03-001"))
	})

	t.Run("invalid body", func(t *testing.T) {
		h := newTestServer(t, repository.NewMemory())

		w := doJSON(t, h, http.MethodPost, "/api/incidents", map[string]any{"dry_run": true})
		gt.Equal(t, w.Code, http.StatusBadRequest)

		req := httptest.NewRequest(http.MethodPost, "/api/incidents", bytes.NewBufferString("{not json"))
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		gt.Equal(t, rec.Code, http.StatusBadRequest)
	})

	t.Run("append failure", func(t *testing.T) {
		repo := &mocks.RepositoryMock{
			ListCodesFunc: func(ctx context.Context) ([]string, error) { return nil, nil },
			AppendRecordFunc: func(ctx context.Context, entry *model.Entry) error {
				return goerr.New("sheet is read-only")
			},
		}
		h := newTestServer(t, repo)

		w := doJSON(t, h, http.MethodPost, "/api/incidents", map[string]any{"text": zabbixReport})
		gt.Equal(t, w.Code, http.StatusInternalServerError)
		gt.Equal(t, decodeBody(t, w)["error"], any("internal server error"))
	})
}

func TestRows(t *testing.T) {
	row := "| |2026-03-07 09:15|VPN|Incident|Caída del túnel|||la paz|alto|"

	t.Run("repair only", func(t *testing.T) {
		repo := repository.NewMemory()
		h := newTestServer(t, repo)

		w := doJSON(t, h, http.MethodPost, "/api/rows", map[string]any{"row": row})
		gt.Equal(t, w.Code, http.StatusOK)

		var resp controller.RecordResponse
		gt.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		gt.Equal(t, resp.Record["system"], "VPN")
		gt.Equal(t, resp.Record["channel"], "")
		gt.Equal(t, resp.Record["location"], "La Paz, Bolivia")
		gt.A(t, resp.Advisories).Longer(0)
		gt.False(t, resp.Saved)
		gt.Equal(t, len(repo.Entries()), 0)
	})

	t.Run("save", func(t *testing.T) {
		repo := repository.NewMemory()
		h := newTestServer(t, repo)

		w := doJSON(t, h, http.MethodPost, "/api/rows", map[string]any{"row": row, "save": true})
		gt.Equal(t, w.Code, http.StatusCreated)
		gt.Equal(t, decodeBody(t, w)["code"], any("INC-07-03-001"))
		gt.Equal(t, len(repo.Entries()), 1)
	})

	t.Run("empty row", func(t *testing.T) {
		h := newTestServer(t, repository.NewMemory())
		w := doJSON(t, h, http.MethodPost, "/api/rows", map[string]any{"row": "| | |"})
		gt.Equal(t, w.Code, http.StatusBadRequest)
	})
}

func TestParse(t *testing.T) {
	repo := &mocks.RepositoryMock{}
	h := newTestServer(t, repo)

	w := doJSON(t, h, http.MethodPost, "/api/parse", map[string]any{"text": zabbixReport})
	gt.Equal(t, w.Code, http.StatusOK)

	body := decodeBody(t, w)
	gt.Equal(t, body["code"], nil)
	gt.Equal(t, len(repo.AppendRecordCalls()), 0)
}

func TestLookupUnsupported(t *testing.T) {
	h := newTestServer(t, &mocks.RepositoryMock{})
	w := doJSON(t, h, http.MethodGet, "/api/incidents/abc", nil)
	gt.Equal(t, w.Code, http.StatusNotImplemented)
}

func TestMetricsEndpoint(t *testing.T) {
	h := newTestServer(t, repository.NewMemory())
	_ = doJSON(t, h, http.MethodGet, "/health", nil)

	w := doJSON(t, h, http.MethodGet, "/metrics", nil)
	gt.Equal(t, w.Code, http.StatusOK)
	gt.S(t, w.Body.String()).Contains("intake_http_requests_total")
}
