package repository

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/intake/pkg/domain/interfaces"
	"github.com/secmon-lab/intake/pkg/domain/model"
	"github.com/secmon-lab/intake/pkg/domain/types"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const (
	// Collection names
	recordsCollection = "records"

	// Field names
	fieldCode = "code"
)

// recordDoc is the stored shape of an entry. Fields is keyed by column name.
type recordDoc struct {
	ID         string            `firestore:"id"`
	Code       string            `firestore:"code"`
	Fields     map[string]string `firestore:"fields"`
	ReportedAt time.Time         `firestore:"reported_at"`
}

// Firestore implements Repository interface with Firestore
type Firestore struct {
	client     *firestore.Client
	collection string
}

// FirestoreOption configures the Firestore repository
type FirestoreOption func(*Firestore)

// WithCollection overrides the records collection name
func WithCollection(name string) FirestoreOption {
	return func(f *Firestore) {
		if name != "" {
			f.collection = name
		}
	}
}

// NewFirestore creates a new Firestore repository
func NewFirestore(ctx context.Context, projectID, databaseID string, opts ...FirestoreOption) (*Firestore, error) {
	logger := ctxlog.From(ctx)

	client, err := firestore.NewClientWithDatabase(ctx, projectID, databaseID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create firestore client")
	}

	f := &Firestore{
		client:     client,
		collection: recordsCollection,
	}
	for _, opt := range opts {
		opt(f)
	}

	// Fail fast on permission problems; an empty collection is fine
	_, err = client.Collection(f.collection).Limit(1).Documents(ctx).Next()
	if err != nil && err != iterator.Done {
		if status.Code(err) == codes.PermissionDenied || status.Code(err) == codes.Unauthenticated {
			_ = client.Close()
			return nil, goerr.Wrap(err, "failed to connect to firestore project",
				goerr.V("firestore error code", status.Code(err).String()),
			)
		}
		logger.Debug("Firestore connection test returned error (may be empty collection)",
			"error", err,
			"errorCode", status.Code(err).String(),
		)
	}

	logger.Info("Firestore repository initialized successfully",
		"projectID", projectID,
		"databaseID", databaseID,
		"collection", f.collection,
	)

	return f, nil
}

// ListCodes returns every stored code
func (f *Firestore) ListCodes(ctx context.Context) ([]string, error) {
	iter := f.client.Collection(f.collection).Select(fieldCode).Documents(ctx)
	defer iter.Stop()

	var codes []string
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate records")
		}

		v, err := doc.DataAt(fieldCode)
		if err != nil {
			continue
		}
		if code, ok := v.(string); ok && code != "" {
			codes = append(codes, code)
		}
	}

	return codes, nil
}

// AppendRecord stores the entry under its submission ID
func (f *Firestore) AppendRecord(ctx context.Context, entry *model.Entry) error {
	if entry == nil {
		return goerr.New("entry is nil")
	}
	if entry.ID == "" {
		return goerr.New("entry ID is empty")
	}

	doc := recordDoc{
		ID:         entry.ID.String(),
		Code:       entry.Code(),
		Fields:     entry.Record.Map(),
		ReportedAt: entry.ReportedAt,
	}

	_, err := f.client.Collection(f.collection).Doc(doc.ID).Create(ctx, doc)
	if err != nil {
		if status.Code(err) == codes.AlreadyExists {
			return goerr.Wrap(err, "record already exists", goerr.V("id", doc.ID))
		}
		return goerr.Wrap(err, "failed to append record", goerr.V("code", doc.Code))
	}

	return nil
}

// GetRecord retrieves an entry by submission ID
func (f *Firestore) GetRecord(ctx context.Context, id types.SubmissionID) (*model.Entry, error) {
	if id == "" {
		return nil, goerr.New("entry ID is empty")
	}

	snap, err := f.client.Collection(f.collection).Doc(id.String()).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, goerr.Wrap(model.ErrRecordNotFound, "failed to get record", goerr.V("id", id))
		}
		return nil, goerr.Wrap(err, "failed to get record")
	}

	var doc recordDoc
	if err := snap.DataTo(&doc); err != nil {
		return nil, goerr.Wrap(err, "failed to decode record")
	}

	return doc.entry(), nil
}

func (d *recordDoc) entry() *model.Entry {
	e := &model.Entry{
		ID:         types.SubmissionID(d.ID),
		ReportedAt: d.ReportedAt,
	}
	for _, c := range types.Columns() {
		e.Record.Set(c, d.Fields[c.String()])
	}
	return e
}

// Close closes the Firestore client
func (f *Firestore) Close() error {
	if f.client != nil {
		return f.client.Close()
	}
	return nil
}

var _ interfaces.Repository = (*Firestore)(nil) // Compile-time interface check
