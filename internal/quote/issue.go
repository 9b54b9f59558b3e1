package quote

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"time"

	"github.com/google/uuid"
	"github.com/kirinyoku/tourdesk/internal/domain"
)

// DocumentStore uploads a rendered document and returns a durable link.
type DocumentStore interface {
	Upload(ctx context.Context, file []byte, fileName string) (string, error)
}

// DocumentRegistry persists issued documents. Save replaces a record with
// the same id wholesale.
type DocumentRegistry interface {
	Save(ctx context.Context, doc domain.IssuedDocument) (domain.IssuedDocument, error)
	ListByGig(ctx context.Context, gigID string) ([]domain.IssuedDocument, error)
}

// SyncQueue schedules a later upload for documents saved without a store reference.
type SyncQueue interface {
	EnqueueSync(ctx context.Context, docID, fileName string, file []byte) error
}

// StatusPolicy decides the status a freshly issued document gets.
type StatusPolicy interface {
	InitialStatus(t domain.DocumentType) domain.DocumentStatus
}

// StaticPolicy maps each document type to a fixed initial status.
type StaticPolicy struct {
	Invoice   domain.DocumentStatus
	Quotation domain.DocumentStatus
}

// DefaultPolicy records invoices as Paid and quotations as Approved on issue.
func DefaultPolicy() StaticPolicy {
	return StaticPolicy{Invoice: domain.DocumentPaid, Quotation: domain.DocumentApproved}
}

func (p StaticPolicy) InitialStatus(t domain.DocumentType) domain.DocumentStatus {
	if t == domain.DocumentInvoice {
		return p.Invoice
	}
	return p.Quotation
}

// Mode is either Create() or Replace(existingID, status).
type Mode struct {
	replaceID string
	status    domain.DocumentStatus
}

func Create() Mode { return Mode{} }

// Replace re-issues an existing document. A non-empty status is kept on the
// new version instead of the policy's initial status.
func Replace(existingID string, status domain.DocumentStatus) Mode {
	return Mode{replaceID: existingID, status: status}
}

// Existing reports the id being replaced, if any.
func (m Mode) Existing() (string, bool) {
	return m.replaceID, m.replaceID != ""
}

type IssueRequest struct {
	Draft *Draft
	// File is the rendered document. It is opaque to the issuer.
	File     []byte
	FileName string
	// Type may be empty: Invoice is inferred when a performance fee is charged.
	Type        domain.DocumentType
	Mode        Mode
	BillToName  string
	BillToVenue string
}

type IssueResult struct {
	Document    domain.IssuedDocument
	SyncPending bool
	// StoreErr is set when the upload failed and the document was saved locally.
	StoreErr error
}

type IssuerConfig struct {
	UploadTimeout time.Duration
}

type Issuer struct {
	store    DocumentStore
	registry DocumentRegistry
	queue    SyncQueue
	policy   StatusPolicy
	logger   *slog.Logger
	cfg      IssuerConfig
	now      func() time.Time
}

// NewIssuer wires the issuance workflow. store and queue may be nil.
func NewIssuer(
	store DocumentStore,
	registry DocumentRegistry,
	queue SyncQueue,
	policy StatusPolicy,
	logger *slog.Logger,
	cfg IssuerConfig,
) *Issuer {
	if policy == nil {
		policy = DefaultPolicy()
	}

	if logger == nil {
		logger = slog.Default()
	}

	if cfg.UploadTimeout <= 0 {
		cfg.UploadTimeout = 30 * time.Second
	}

	return &Issuer{
		store:    store,
		registry: registry,
		queue:    queue,
		policy:   policy,
		logger:   logger,
		cfg:      cfg,
		now:      time.Now,
	}
}

// InferType returns Invoice when totals carry a performance fee, Quotation otherwise.
func InferType(t Totals) domain.DocumentType {
	if t.PerformanceFeeAmount > 0 {
		return domain.DocumentInvoice
	}
	return domain.DocumentQuotation
}

// Issue snapshots the draft, uploads the rendered file and persists the
// document. An upload failure degrades to a local-only record with a nil
// store reference; the caller learns about it through SyncPending.
func (i *Issuer) Issue(ctx context.Context, req IssueRequest) (IssueResult, error) {
	const op = "quote.Issuer.Issue"

	if req.Draft == nil {
		return IssueResult{}, fmt.Errorf("%s:%w", op, ValidationError{Field: "draft", Reason: "missing"})
	}

	totals, err := req.Draft.Totals()
	if err != nil {
		return IssueResult{}, fmt.Errorf("%s:%w", op, err)
	}
	if totals.GrandTotal <= 0 {
		return IssueResult{}, fmt.Errorf("%s:%w", op, ErrEmptyDocument)
	}

	docType := req.Type
	if docType == "" {
		docType = InferType(totals)
	}
	if !docType.Valid() {
		return IssueResult{}, fmt.Errorf("%s:%w", op, ValidationError{Field: "type", Reason: "unsupported document type"})
	}

	id, replacing := req.Mode.Existing()
	if !replacing {
		id = uuid.NewString()
	}

	status := i.policy.InitialStatus(docType)
	if replacing && req.Mode.status != "" {
		status = req.Mode.status
	}

	doc := domain.IssuedDocument{
		ID:                    id,
		GigID:                 req.Draft.GigID,
		Type:                  docType,
		DateIssued:            i.now().UTC().Truncate(24 * time.Hour),
		Status:                status,
		FileName:              req.FileName,
		Currency:              req.Draft.Currency,
		TotalAmount:           totals.GrandTotal,
		LineItems:             req.Draft.Snapshot(),
		IncludePerformanceFee: req.Draft.IncludePerformanceFee,
		PerformanceFee:        totals.PerformanceFeeAmount,
		BillToName:            req.BillToName,
		BillToVenue:           req.BillToVenue,
	}

	ref, storeErr := i.upload(ctx, req.File, req.FileName)
	if storeErr == nil {
		doc.DocumentStoreRef = &ref
	} else {
		i.logger.Warn("document store upload failed, saving locally",
			"document_id", doc.ID,
			"gig_id", doc.GigID,
			"error", storeErr,
		)
	}

	saved, err := i.registry.Save(ctx, doc)
	if err != nil {
		return IssueResult{}, fmt.Errorf("%s:%w", op, err)
	}

	res := IssueResult{Document: saved}

	if storeErr != nil {
		res.SyncPending = true
		res.StoreErr = storeErr

		if i.queue != nil && len(req.File) > 0 {
			if err := i.queue.EnqueueSync(ctx, saved.ID, saved.FileName, req.File); err != nil {
				i.logger.Error("failed to schedule document sync", "document_id", saved.ID, "error", err)
			}
		}
	}

	return res, nil
}

func (i *Issuer) upload(ctx context.Context, file []byte, fileName string) (string, error) {
	if i.store == nil {
		return "", ErrStoreUnavailable
	}

	ctx, cancel := context.WithTimeout(ctx, i.cfg.UploadTimeout)
	defer cancel()

	ref, err := i.store.Upload(ctx, file, fileName)
	if err != nil {
		if errors.Is(err, ErrStoreUnavailable) {
			return "", err
		}
		return "", fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
	}

	if ref == "" {
		return "", fmt.Errorf("%w: empty reference", ErrStoreUnavailable)
	}

	return ref, nil
}

var whitespaceRun = regexp.MustCompile(`\s+`)

// FileName builds the conventional document file name for a gig.
func FileName(gig domain.Gig) string {
	return fmt.Sprintf("Quote_%s_%s.pdf",
		whitespaceRun.ReplaceAllString(gig.Venue, "_"),
		gig.Date.Format(domain.DateLayout),
	)
}
