package quotes

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/kirinyoku/tourdesk/internal/domain"
	"github.com/kirinyoku/tourdesk/internal/money"
	"github.com/kirinyoku/tourdesk/internal/quote"
	redisx "github.com/kirinyoku/tourdesk/internal/redis"
	"github.com/kirinyoku/tourdesk/internal/render"
	"github.com/kirinyoku/tourdesk/internal/repository"
	redisrepo "github.com/kirinyoku/tourdesk/internal/repository/redis"
	"github.com/shopspring/decimal"
)

type GigReader interface {
	Get(ctx context.Context, id string) (domain.Gig, error)
}

type ClientReader interface {
	Get(ctx context.Context, id string) (domain.Client, error)
}

type CatalogReader interface {
	Get(ctx context.Context, id string) (domain.CatalogItem, error)
}

// DraftStore returns repository.ErrNotFound for unknown drafts.
type DraftStore interface {
	Save(ctx context.Context, d *quote.Draft) error
	Get(ctx context.Context, id string) (*quote.Draft, error)
	Delete(ctx context.Context, id string) error
}

type DocumentReader interface {
	Get(ctx context.Context, id string) (domain.IssuedDocument, error)
	ListByGig(ctx context.Context, gigID string) ([]domain.IssuedDocument, error)
}

type Renderer interface {
	Render(in render.Input) ([]byte, error)
}

type Config struct {
	DocumentsCacheTTL time.Duration
}

type Service struct {
	gigs     GigReader
	clients  ClientReader
	catalog  CatalogReader
	drafts   DraftStore
	docs     DocumentReader
	renderer Renderer
	issuer   *quote.Issuer
	cache    *redisrepo.Cache
	logger   *slog.Logger
	cfg      Config
	now      func() time.Time
}

// Deps groups the collaborators of the quote workflow. Cache may be nil.
type Deps struct {
	Gigs     GigReader
	Clients  ClientReader
	Catalog  CatalogReader
	Drafts   DraftStore
	Docs     DocumentReader
	Renderer Renderer
	Issuer   *quote.Issuer
	Cache    *redisrepo.Cache
	Logger   *slog.Logger
}

func New(d Deps, cfg Config) *Service {
	if cfg.DocumentsCacheTTL <= 0 {
		cfg.DocumentsCacheTTL = time.Minute
	}

	logger := d.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Service{
		gigs:     d.Gigs,
		clients:  d.Clients,
		catalog:  d.Catalog,
		drafts:   d.Drafts,
		docs:     d.Docs,
		renderer: d.Renderer,
		issuer:   d.Issuer,
		cache:    d.Cache,
		logger:   logger,
		cfg:      cfg,
		now:      time.Now,
	}
}

// View is a draft together with its derived totals.
type View struct {
	Draft  *quote.Draft `json:"draft"`
	Totals quote.Totals `json:"totals"`
}

func viewOf(d *quote.Draft) View {
	return View{Draft: d, Totals: d.ComputeTotals()}
}

type StartDraft struct {
	GigID      string
	ClientID   string
	DocumentID string
}

// StartDraft opens an editing session. With DocumentID set the draft is
// seeded from that document and issuing it replaces the document in place.
func (s *Service) StartDraft(ctx context.Context, in StartDraft) (View, error) {
	const op = "service.quotes.StartDraft"

	var d *quote.Draft

	if in.DocumentID != "" {
		doc, err := s.docs.Get(ctx, in.DocumentID)
		if err != nil {
			return View{}, fmt.Errorf("%s:%w", op, notFound(err, ErrDocumentNotFound))
		}

		gig, err := s.gigs.Get(ctx, doc.GigID)
		if err != nil {
			return View{}, fmt.Errorf("%s:%w", op, notFound(err, ErrGigNotFound))
		}

		d = quote.DraftFromDocument(gig, doc)
	} else {
		if strings.TrimSpace(in.GigID) == "" {
			return View{}, fmt.Errorf("%s:%w", op, quote.ValidationError{Field: "gig_id", Reason: "is required"})
		}

		gig, err := s.gigs.Get(ctx, in.GigID)
		if err != nil {
			return View{}, fmt.Errorf("%s:%w", op, notFound(err, ErrGigNotFound))
		}

		d = quote.NewDraft(gig, "")
	}

	if in.ClientID != "" {
		if _, err := s.clients.Get(ctx, in.ClientID); err != nil {
			return View{}, fmt.Errorf("%s:%w", op, notFound(err, ErrClientNotFound))
		}
		d.ClientID = in.ClientID
	}

	if err := s.drafts.Save(ctx, d); err != nil {
		return View{}, fmt.Errorf("%s:%w", op, err)
	}

	return viewOf(d), nil
}

func (s *Service) GetDraft(ctx context.Context, draftID string) (View, error) {
	const op = "service.quotes.GetDraft"

	d, err := s.loadDraft(ctx, draftID)
	if err != nil {
		return View{}, fmt.Errorf("%s:%w", op, err)
	}

	return viewOf(d), nil
}

func (s *Service) AddCatalogItem(ctx context.Context, draftID, itemID string) (View, error) {
	const op = "service.quotes.AddCatalogItem"

	v, err := s.mutate(ctx, draftID, func(ctx context.Context, d *quote.Draft) error {
		item, err := s.catalog.Get(ctx, itemID)
		if err != nil {
			return notFound(err, ErrCatalogItemNotFound)
		}
		return d.AddCatalogItem(item)
	})
	if err != nil {
		return View{}, fmt.Errorf("%s:%w", op, err)
	}

	return v, nil
}

type CustomItem struct {
	Description string
	Rate        decimal.Decimal
	// Currency defaults to the draft currency.
	Currency string
}

func (s *Service) AddCustomItem(ctx context.Context, draftID string, in CustomItem) (View, error) {
	const op = "service.quotes.AddCustomItem"

	v, err := s.mutate(ctx, draftID, func(_ context.Context, d *quote.Draft) error {
		rate, err := money.FromDecimal(in.Rate, d.Currency)
		if err != nil {
			return quote.ValidationError{Field: "rate", Reason: err.Error()}
		}
		_, err = d.AddCustomLineItem(in.Description, rate, in.Currency)
		return err
	})
	if err != nil {
		return View{}, fmt.Errorf("%s:%w", op, err)
	}

	return v, nil
}

func (s *Service) SetQuantity(ctx context.Context, draftID, lineItemID string, quantity int) (View, error) {
	const op = "service.quotes.SetQuantity"

	v, err := s.mutate(ctx, draftID, func(_ context.Context, d *quote.Draft) error {
		return d.SetQuantity(lineItemID, quantity)
	})
	if err != nil {
		return View{}, fmt.Errorf("%s:%w", op, err)
	}

	return v, nil
}

func (s *Service) RemoveItem(ctx context.Context, draftID, lineItemID string) (View, error) {
	const op = "service.quotes.RemoveItem"

	v, err := s.mutate(ctx, draftID, func(_ context.Context, d *quote.Draft) error {
		d.RemoveLineItem(lineItemID)
		return nil
	})
	if err != nil {
		return View{}, fmt.Errorf("%s:%w", op, err)
	}

	return v, nil
}

// SetPerformanceFee toggles the fee. override is a major-unit amount in the
// draft currency; nil keeps the current one.
func (s *Service) SetPerformanceFee(ctx context.Context, draftID string, enabled bool, override *decimal.Decimal) (View, error) {
	const op = "service.quotes.SetPerformanceFee"

	v, err := s.mutate(ctx, draftID, func(_ context.Context, d *quote.Draft) error {
		var amt *money.Amount
		if override != nil {
			a, err := money.FromDecimal(*override, d.Currency)
			if err != nil {
				return quote.ValidationError{Field: "performance_fee", Reason: err.Error()}
			}
			amt = &a
		}
		return d.SetPerformanceFee(enabled, amt)
	})
	if err != nil {
		return View{}, fmt.Errorf("%s:%w", op, err)
	}

	return v, nil
}

func (s *Service) DiscardDraft(ctx context.Context, draftID string) error {
	const op = "service.quotes.DiscardDraft"

	if err := s.drafts.Delete(ctx, draftID); err != nil {
		return fmt.Errorf("%s:%w", op, err)
	}

	return nil
}

type IssueOptions struct {
	// Type overrides the inferred document type.
	Type domain.DocumentType
}

// Issue renders the draft, uploads it and records the document. The draft
// is discarded once the document is saved, degraded or not.
func (s *Service) Issue(ctx context.Context, draftID string, opts IssueOptions) (quote.IssueResult, error) {
	const op = "service.quotes.Issue"

	d, err := s.loadDraft(ctx, draftID)
	if err != nil {
		return quote.IssueResult{}, fmt.Errorf("%s:%w", op, err)
	}

	totals, err := d.Totals()
	if err != nil {
		return quote.IssueResult{}, fmt.Errorf("%s:%w", op, err)
	}
	if totals.GrandTotal <= 0 {
		return quote.IssueResult{}, fmt.Errorf("%s:%w", op, quote.ErrEmptyDocument)
	}

	gig, err := s.gigs.Get(ctx, d.GigID)
	if err != nil {
		return quote.IssueResult{}, fmt.Errorf("%s:%w", op, notFound(err, ErrGigNotFound))
	}

	client := s.billTo(ctx, d.ClientID)

	docType := opts.Type
	if docType == "" {
		docType = d.DocumentType
	}
	if docType == "" {
		docType = quote.InferType(totals)
	}

	file, err := s.renderer.Render(render.Input{
		Type:           docType,
		IssuedOn:       s.now().UTC().Truncate(24 * time.Hour),
		Gig:            gig,
		Client:         client,
		Currency:       d.Currency,
		LineItems:      d.Snapshot(),
		PerformanceFee: totals.PerformanceFeeAmount,
		Total:          totals.GrandTotal,
	})
	if err != nil {
		return quote.IssueResult{}, fmt.Errorf("%s:%w", op, err)
	}

	mode := quote.Create()
	if d.DocumentID != "" {
		mode = quote.Replace(d.DocumentID, d.DocumentStatus)
	}

	req := quote.IssueRequest{
		Draft:       d,
		File:        file,
		FileName:    quote.FileName(gig),
		Type:        docType,
		Mode:        mode,
		BillToVenue: gig.Venue,
	}
	if client != nil {
		req.BillToName = client.Name
	}

	res, err := s.issuer.Issue(ctx, req)
	if err != nil {
		return quote.IssueResult{}, fmt.Errorf("%s:%w", op, err)
	}

	if err := s.drafts.Delete(ctx, d.ID); err != nil {
		s.logger.Warn("failed to discard issued draft", "draft_id", d.ID, "error", err)
	}

	return res, nil
}

// ListDocuments lists a gig's documents newest first. An empty gigID lists all.
func (s *Service) ListDocuments(ctx context.Context, gigID string) ([]domain.IssuedDocument, error) {
	const op = "service.quotes.ListDocuments"

	if s.cache == nil || gigID == "" {
		docs, err := s.docs.ListByGig(ctx, gigID)
		if err != nil {
			return nil, fmt.Errorf("%s:%w", op, err)
		}
		return docs, nil
	}

	docs, err := redisrepo.GetOrSetJSON(ctx, s.cache, redisx.KeyGigDocuments(gigID), s.cfg.DocumentsCacheTTL,
		func(ctx context.Context) ([]domain.IssuedDocument, error) {
			return s.docs.ListByGig(ctx, gigID)
		})
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, err)
	}

	return docs, nil
}

func (s *Service) GetDocument(ctx context.Context, id string) (domain.IssuedDocument, error) {
	const op = "service.quotes.GetDocument"

	d, err := s.docs.Get(ctx, id)
	if err != nil {
		return domain.IssuedDocument{}, fmt.Errorf("%s:%w", op, notFound(err, ErrDocumentNotFound))
	}

	return d, nil
}

// mutate applies fn to a stored draft and writes it back only on success,
// so a rejected edit leaves the stored draft unchanged.
func (s *Service) mutate(ctx context.Context, draftID string, fn func(ctx context.Context, d *quote.Draft) error) (View, error) {
	d, err := s.loadDraft(ctx, draftID)
	if err != nil {
		return View{}, err
	}

	if err := fn(ctx, d); err != nil {
		return View{}, err
	}

	if err := s.drafts.Save(ctx, d); err != nil {
		return View{}, err
	}

	return viewOf(d), nil
}

func (s *Service) loadDraft(ctx context.Context, draftID string) (*quote.Draft, error) {
	d, err := s.drafts.Get(ctx, draftID)
	if err != nil {
		return nil, notFound(err, ErrDraftNotFound)
	}
	return d, nil
}

// billTo returns nil when the draft has no client or it has since vanished;
// the document then bills the venue.
func (s *Service) billTo(ctx context.Context, clientID string) *domain.Client {
	if clientID == "" {
		return nil
	}

	c, err := s.clients.Get(ctx, clientID)
	if err != nil {
		s.logger.Warn("bill-to client unavailable, billing venue", "client_id", clientID, "error", err)
		return nil
	}

	return &c
}

func notFound(err, target error) error {
	if errors.Is(err, repository.ErrNotFound) || errors.Is(err, quote.ErrNotFound) {
		return target
	}
	return err
}
