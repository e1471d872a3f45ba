package repository_test

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"slices"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/intake/pkg/domain/interfaces"
	"github.com/secmon-lab/intake/pkg/domain/model"
	"github.com/secmon-lab/intake/pkg/domain/types"
	"github.com/secmon-lab/intake/pkg/repository"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

func newEntry(t *testing.T, code string) *model.Entry {
	t.Helper()

	id, err := types.NewSubmissionID()
	gt.NoError(t, err)

	var rec model.Record
	rec.Set(types.ColumnCode, code)
	rec.Set(types.ColumnOpenedAt, "2026-03-07 09:15")
	rec.Set(types.ColumnSystem, "VPN")
	rec.Set(types.ColumnLocation, "La Paz, Bolivia")
	rec.Set(types.ColumnStatus, "Under investigation")

	return &model.Entry{
		ID:         id,
		Record:     rec,
		ReportedAt: time.Now(),
	}
}

func uniqueCode(n int) string {
	// varies per run so shared backends see distinct codes
	now := time.Now()
	return fmt.Sprintf("INC-%02d-%02d-%03d", now.Day(), now.Month(), (now.Nanosecond()/1000+n)%1000)
}

func testRepository(t *testing.T, newRepo func(t *testing.T) interfaces.Repository) {
	t.Run("AppendRecord and ListCodes", func(t *testing.T) {
		repo := newRepo(t)
		defer repo.Close()

		ctx := context.Background()
		e1 := newEntry(t, uniqueCode(1))
		e2 := newEntry(t, uniqueCode(2))

		gt.NoError(t, repo.AppendRecord(ctx, e1))
		gt.NoError(t, repo.AppendRecord(ctx, e2))

		codes, err := repo.ListCodes(ctx)
		gt.NoError(t, err)
		gt.True(t, slices.Contains(codes, e1.Code()))
		gt.True(t, slices.Contains(codes, e2.Code()))
	})

	t.Run("AppendRecord_Nil", func(t *testing.T) {
		repo := newRepo(t)
		defer repo.Close()

		err := repo.AppendRecord(context.Background(), nil)
		gt.Error(t, err)
	})

	t.Run("GetRecord", func(t *testing.T) {
		repo := newRepo(t)
		defer repo.Close()

		reader, ok := repo.(interfaces.RecordReader)
		if !ok {
			t.Skip("backend does not support record lookup")
		}

		ctx := context.Background()
		entry := newEntry(t, uniqueCode(3))
		gt.NoError(t, repo.AppendRecord(ctx, entry))

		got, err := reader.GetRecord(ctx, entry.ID)
		gt.NoError(t, err)
		gt.Equal(t, got.ID, entry.ID)
		gt.Equal(t, got.Record, entry.Record)
		gt.True(t, entry.ReportedAt.Sub(got.ReportedAt).Abs() < time.Second)
	})

	t.Run("GetRecord_NotFound", func(t *testing.T) {
		repo := newRepo(t)
		defer repo.Close()

		reader, ok := repo.(interfaces.RecordReader)
		if !ok {
			t.Skip("backend does not support record lookup")
		}

		id, err := types.NewSubmissionID()
		gt.NoError(t, err)
		_, err = reader.GetRecord(context.Background(), id)
		gt.Error(t, err)
		gt.S(t, err.Error()).Contains("record not found")
	})
}

func TestMemoryRepository(t *testing.T) {
	testRepository(t, func(t *testing.T) interfaces.Repository {
		return repository.NewMemory()
	})
}

func TestMemoryRepositoryRejectsDuplicateID(t *testing.T) {
	repo := repository.NewMemory()
	ctx := context.Background()

	entry := newEntry(t, "INC-07-03-001")
	gt.NoError(t, repo.AppendRecord(ctx, entry))
	gt.Error(t, repo.AppendRecord(ctx, entry))
	gt.Equal(t, len(repo.Entries()), 1)
}

func TestFirestoreRepository(t *testing.T) {
	// Skip test if Firestore test environment variables are not set
	projectID := os.Getenv("TEST_FIRESTORE_PROJECT")
	databaseID := os.Getenv("TEST_FIRESTORE_DATABASE")

	if projectID == "" || databaseID == "" {
		t.Skip("Skipping Firestore test: TEST_FIRESTORE_PROJECT and TEST_FIRESTORE_DATABASE must be set")
	}

	testRepository(t, func(t *testing.T) interfaces.Repository {
		ctx := context.Background()
		logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
		ctx = ctxlog.With(ctx, logger)

		repo, err := repository.NewFirestore(ctx, projectID, databaseID,
			repository.WithCollection("records_test"))
		gt.NoError(t, err)
		return repo
	})
}

// fakeSheets serves the subset of the Sheets values API used by the repository
type fakeSheets struct {
	mu   sync.Mutex
	rows [][]any
}

func (f *fakeSheets) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	path := r.URL.Path
	w.Header().Set("Content-Type", "application/json")

	switch {
	case r.Method == http.MethodGet && strings.HasSuffix(path, "!1:1"):
		resp := sheets.ValueRange{}
		if len(f.rows) > 0 {
			resp.Values = [][]any{f.rows[0]}
		}
		_ = json.NewEncoder(w).Encode(resp)

	case r.Method == http.MethodGet && strings.HasSuffix(path, "!A2:A"):
		resp := sheets.ValueRange{}
		for i, row := range f.rows {
			if i == 0 || len(row) == 0 {
				continue
			}
			resp.Values = append(resp.Values, []any{row[0]})
		}
		_ = json.NewEncoder(w).Encode(resp)

	case r.Method == http.MethodPut:
		var body sheets.ValueRange
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if len(f.rows) == 0 {
			f.rows = append(f.rows, nil)
		}
		f.rows[0] = body.Values[0]
		_, _ = w.Write([]byte(`{}`))

	case r.Method == http.MethodPost && strings.HasSuffix(path, ":append"):
		var body sheets.ValueRange
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		f.rows = append(f.rows, body.Values...)
		_, _ = w.Write([]byte(`{}`))

	default:
		http.Error(w, "unexpected request "+r.Method+" "+path, http.StatusNotFound)
	}
}

func (f *fakeSheets) snapshot() [][]any {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([][]any(nil), f.rows...)
}

func newSheets(t *testing.T, fake *fakeSheets) *repository.Sheets {
	t.Helper()

	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)

	repo, err := repository.NewSheets(context.Background(), "sheet-id", "Reportes",
		option.WithEndpoint(srv.URL+"/"),
		option.WithHTTPClient(srv.Client()),
	)
	gt.NoError(t, err)
	return repo
}

func TestSheetsRepository(t *testing.T) {
	testRepository(t, func(t *testing.T) interfaces.Repository {
		return newSheets(t, &fakeSheets{})
	})
}

func TestSheetsRepositoryLayout(t *testing.T) {
	fake := &fakeSheets{}
	repo := newSheets(t, fake)

	t.Run("header row written once", func(t *testing.T) {
		rows := fake.snapshot()
		gt.Equal(t, len(rows), 1)
		gt.Equal(t, len(rows[0]), types.ColumnCount+1)
		gt.Equal(t, rows[0][0], any("CODIGO"))
		gt.Equal(t, rows[0][types.ColumnCount], any(types.ReportedAtHeader))

		// A second repository on the same worksheet keeps the existing header
		_ = newSheets(t, fake)
		gt.Equal(t, len(fake.snapshot()), 1)
	})

	t.Run("append writes 22 cells", func(t *testing.T) {
		entry := newEntry(t, "INC-07-03-001")
		gt.NoError(t, repo.AppendRecord(context.Background(), entry))

		rows := fake.snapshot()
		last := rows[len(rows)-1]
		gt.Equal(t, len(last), types.ColumnCount+1)
		gt.Equal(t, last[0], any("INC-07-03-001"))
		gt.Equal(t, last[types.ColumnCount], any(entry.ReportedAt.Format(repository.ReportedAtLayout)))

		codes, err := repo.ListCodes(context.Background())
		gt.NoError(t, err)
		gt.Equal(t, codes, []string{"INC-07-03-001"})
	})
}
