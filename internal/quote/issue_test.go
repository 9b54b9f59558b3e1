package quote

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"math"
	"testing"
	"time"

	"github.com/kirinyoku/tourdesk/internal/domain"
	"github.com/kirinyoku/tourdesk/internal/money"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStore struct {
	err     error
	uploads []string
}

func (s *fakeStore) Upload(_ context.Context, _ []byte, fileName string) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	s.uploads = append(s.uploads, fileName)
	return "https://drive.example/" + fileName, nil
}

type fakeRegistry struct {
	docs map[string]domain.IssuedDocument
	err  error
}

func newFakeRegistry() *fakeRegistry {
	return &fakeRegistry{docs: map[string]domain.IssuedDocument{}}
}

func (r *fakeRegistry) Save(_ context.Context, doc domain.IssuedDocument) (domain.IssuedDocument, error) {
	if r.err != nil {
		return domain.IssuedDocument{}, r.err
	}
	r.docs[doc.ID] = doc
	return doc, nil
}

func (r *fakeRegistry) ListByGig(_ context.Context, gigID string) ([]domain.IssuedDocument, error) {
	var out []domain.IssuedDocument
	for _, d := range r.docs {
		if d.GigID == gigID {
			out = append(out, d)
		}
	}
	return out, nil
}

type fakeQueue struct {
	ids []string
}

func (q *fakeQueue) EnqueueSync(_ context.Context, docID, _ string, _ []byte) error {
	q.ids = append(q.ids, docID)
	return nil
}

func newTestIssuer(store DocumentStore, reg DocumentRegistry, queue SyncQueue) *Issuer {
	i := NewIssuer(store, reg, queue, nil, slog.New(slog.NewTextHandler(io.Discard, nil)), IssuerConfig{})
	i.now = func() time.Time { return time.Date(2026, 11, 1, 15, 30, 0, 0, time.UTC) }
	return i
}

func scenarioDraft(t *testing.T) *Draft {
	t.Helper()

	d := NewDraft(testGig(), "")
	require.NoError(t, d.AddCatalogItem(cdjPair))
	require.NoError(t, d.AddCatalogItem(cdjPair))
	_, err := d.AddCustomLineItem("Transport", 5000, "")
	require.NoError(t, err)
	require.NoError(t, d.SetPerformanceFee(true, nil))

	return d
}

func TestIssueInvoiceWithPerformanceFee(t *testing.T) {
	store := &fakeStore{}
	reg := newFakeRegistry()
	issuer := newTestIssuer(store, reg, nil)
	d := scenarioDraft(t)

	res, err := issuer.Issue(context.Background(), IssueRequest{
		Draft:    d,
		File:     []byte("%PDF"),
		FileName: FileName(testGig()),
		Mode:     Create(),
	})
	require.NoError(t, err)

	doc := res.Document
	assert.False(t, res.SyncPending)
	assert.Equal(t, domain.DocumentInvoice, doc.Type)
	assert.Equal(t, domain.DocumentPaid, doc.Status)
	assert.Equal(t, money.Amount(205000), doc.TotalAmount)
	assert.Equal(t, money.Amount(150000), doc.PerformanceFee)
	assert.Equal(t, "Quote_Cloud_Nine_Lounge_2026-11-20.pdf", doc.FileName)
	assert.Equal(t, time.Date(2026, 11, 1, 0, 0, 0, 0, time.UTC), doc.DateIssued)
	require.NotNil(t, doc.DocumentStoreRef)
	assert.Equal(t, "https://drive.example/Quote_Cloud_Nine_Lounge_2026-11-20.pdf", *doc.DocumentStoreRef)
	assert.Len(t, reg.docs, 1)

	var sum money.Amount
	for _, li := range doc.LineItems {
		lt, err := li.Total()
		require.NoError(t, err)
		sum += lt
	}
	assert.Equal(t, doc.TotalAmount, sum+doc.PerformanceFee)
}

func TestIssueQuotationWithoutFee(t *testing.T) {
	reg := newFakeRegistry()
	issuer := newTestIssuer(&fakeStore{}, reg, nil)

	d := NewDraft(testGig(), "")
	require.NoError(t, d.AddCatalogItem(mixer))

	res, err := issuer.Issue(context.Background(), IssueRequest{Draft: d, FileName: "q.pdf"})
	require.NoError(t, err)
	assert.Equal(t, domain.DocumentQuotation, res.Document.Type)
	assert.Equal(t, domain.DocumentApproved, res.Document.Status)
}

func TestIssueEmptyDraftIsRejected(t *testing.T) {
	store := &fakeStore{}
	reg := newFakeRegistry()
	issuer := newTestIssuer(store, reg, nil)

	_, err := issuer.Issue(context.Background(), IssueRequest{Draft: NewDraft(testGig(), ""), FileName: "q.pdf"})
	assert.ErrorIs(t, err, ErrEmptyDocument)
	assert.Empty(t, reg.docs)
	assert.Empty(t, store.uploads)
}

func TestIssueFallsBackWhenStoreFails(t *testing.T) {
	reg := newFakeRegistry()
	queue := &fakeQueue{}
	issuer := newTestIssuer(&fakeStore{err: errors.New("quota exceeded")}, reg, queue)

	res, err := issuer.Issue(context.Background(), IssueRequest{
		Draft:    scenarioDraft(t),
		File:     []byte("%PDF"),
		FileName: "q.pdf",
	})
	require.NoError(t, err)

	assert.True(t, res.SyncPending)
	assert.ErrorIs(t, res.StoreErr, ErrStoreUnavailable)
	assert.Nil(t, res.Document.DocumentStoreRef)
	assert.Contains(t, reg.docs, res.Document.ID)
	assert.Equal(t, []string{res.Document.ID}, queue.ids)
}

func TestIssueWithoutStoreConfigured(t *testing.T) {
	reg := newFakeRegistry()
	issuer := newTestIssuer(nil, reg, nil)

	res, err := issuer.Issue(context.Background(), IssueRequest{Draft: scenarioDraft(t), FileName: "q.pdf"})
	require.NoError(t, err)
	assert.True(t, res.SyncPending)
	assert.Nil(t, res.Document.DocumentStoreRef)
}

func TestIssueReplaceKeepsIdentity(t *testing.T) {
	reg := newFakeRegistry()
	issuer := newTestIssuer(&fakeStore{}, reg, nil)
	ctx := context.Background()

	first, err := issuer.Issue(ctx, IssueRequest{Draft: scenarioDraft(t), FileName: "q.pdf"})
	require.NoError(t, err)

	edit := DraftFromDocument(testGig(), first.Document)
	edit.RemoveLineItem(edit.LineItems[1].ID)

	second, err := issuer.Issue(ctx, IssueRequest{
		Draft:    edit,
		FileName: "q.pdf",
		Type:     edit.DocumentType,
		Mode:     Replace(first.Document.ID, ""),
	})
	require.NoError(t, err)

	assert.Equal(t, first.Document.ID, second.Document.ID)
	assert.Len(t, reg.docs, 1)
	assert.Equal(t, money.Amount(200000), reg.docs[first.Document.ID].TotalAmount)
}

func TestIssueReplaceKeepsExistingStatus(t *testing.T) {
	reg := newFakeRegistry()
	issuer := newTestIssuer(&fakeStore{}, reg, nil)
	ctx := context.Background()

	first, err := issuer.Issue(ctx, IssueRequest{Draft: scenarioDraft(t), FileName: "q.pdf"})
	require.NoError(t, err)
	require.Equal(t, domain.DocumentPaid, first.Document.Status)

	sent := first.Document
	sent.Status = domain.DocumentSent

	edit := DraftFromDocument(testGig(), sent)
	_, err = edit.AddCustomLineItem("Fuel", 2000, "")
	require.NoError(t, err)

	second, err := issuer.Issue(ctx, IssueRequest{
		Draft:    edit,
		FileName: "q.pdf",
		Type:     edit.DocumentType,
		Mode:     Replace(sent.ID, edit.DocumentStatus),
	})
	require.NoError(t, err)
	assert.Equal(t, domain.DocumentSent, second.Document.Status)
	assert.Equal(t, money.Amount(207000), second.Document.TotalAmount)
}

func TestIssueRejectsOutOfRangeTotals(t *testing.T) {
	reg := newFakeRegistry()
	store := &fakeStore{}
	issuer := newTestIssuer(store, reg, nil)

	// bypasses the draft methods, as a corrupted stored session would
	d := NewDraft(testGig(), "")
	d.LineItems = []domain.LineItem{
		{ID: "a", Description: "CDJ", Quantity: math.MaxInt64 / 25000, Rate: 25000},
		{ID: "b", Description: "CDJ", Quantity: math.MaxInt64 / 25000, Rate: 25000},
	}

	_, err := issuer.Issue(context.Background(), IssueRequest{Draft: d, FileName: "q.pdf"})
	assert.ErrorIs(t, err, ErrValidation)
	assert.NotErrorIs(t, err, ErrEmptyDocument)
	assert.Empty(t, reg.docs)
	assert.Empty(t, store.uploads)
}

func TestIssueRegistryFailureIsReturned(t *testing.T) {
	reg := newFakeRegistry()
	reg.err = errors.New("connection refused")
	issuer := newTestIssuer(&fakeStore{}, reg, nil)

	_, err := issuer.Issue(context.Background(), IssueRequest{Draft: scenarioDraft(t), FileName: "q.pdf"})
	assert.Error(t, err)
}

func TestIssueLeavesDraftIntact(t *testing.T) {
	issuer := newTestIssuer(&fakeStore{}, newFakeRegistry(), nil)
	d := scenarioDraft(t)

	res, err := issuer.Issue(context.Background(), IssueRequest{Draft: d, FileName: "q.pdf"})
	require.NoError(t, err)

	require.NoError(t, d.SetQuantity(d.LineItems[0].ID, 9))
	assert.Equal(t, 2, res.Document.LineItems[0].Quantity)
}

func TestStaticPolicy(t *testing.T) {
	p := StaticPolicy{Invoice: domain.DocumentSent, Quotation: domain.DocumentDraft}
	assert.Equal(t, domain.DocumentSent, p.InitialStatus(domain.DocumentInvoice))
	assert.Equal(t, domain.DocumentDraft, p.InitialStatus(domain.DocumentQuotation))
}
