package quote

import (
	"slices"
	"strings"

	"github.com/google/uuid"
	"github.com/kirinyoku/tourdesk/internal/domain"
	"github.com/kirinyoku/tourdesk/internal/money"
)

// Draft is the editable state of one quote or invoice. It is owned by a
// single editing session and never shared.
type Draft struct {
	ID       string `json:"id"`
	GigID    string `json:"gig_id"`
	ClientID string `json:"client_id,omitempty"`
	Currency string `json:"currency"`

	// GigFee is the linked gig's fee at the time the draft was opened. It
	// only seeds the performance fee override once.
	GigFee money.Amount `json:"gig_fee"`

	LineItems              []domain.LineItem `json:"line_items"`
	IncludePerformanceFee  bool              `json:"include_performance_fee"`
	PerformanceFeeOverride *money.Amount     `json:"performance_fee_override,omitempty"`

	// Set in edit mode: the issued document this draft will replace.
	DocumentID     string                `json:"document_id,omitempty"`
	DocumentType   domain.DocumentType   `json:"document_type,omitempty"`
	DocumentStatus domain.DocumentStatus `json:"document_status,omitempty"`
}

type Totals struct {
	LineItemsSubtotal    money.Amount `json:"line_items_subtotal"`
	PerformanceFeeAmount money.Amount `json:"performance_fee_amount"`
	GrandTotal           money.Amount `json:"grand_total"`
}

// NewDraft opens an empty draft for a gig.
func NewDraft(gig domain.Gig, clientID string) *Draft {
	if clientID == "" {
		clientID = gig.ClientID
	}

	return &Draft{
		ID:        uuid.NewString(),
		GigID:     gig.ID,
		ClientID:  clientID,
		Currency:  gig.Currency,
		GigFee:    gig.Fee,
		LineItems: []domain.LineItem{},
	}
}

// DraftFromDocument opens a draft seeded from an issued document (edit mode).
func DraftFromDocument(gig domain.Gig, doc domain.IssuedDocument) *Draft {
	d := NewDraft(gig, "")
	d.DocumentID = doc.ID
	d.DocumentType = doc.Type
	d.DocumentStatus = doc.Status
	d.LineItems = slices.Clone(doc.LineItems)
	if d.LineItems == nil {
		d.LineItems = []domain.LineItem{}
	}
	if doc.Currency != "" {
		d.Currency = doc.Currency
	}

	// The fee is whatever the issued total carried beyond its lines.
	d.IncludePerformanceFee = doc.IncludePerformanceFee
	if doc.IncludePerformanceFee {
		fee := doc.TotalAmount - d.ComputeTotals().LineItemsSubtotal
		d.PerformanceFeeOverride = &fee
	}

	return d
}

// AddCatalogItem merges repeated adds of the same catalog item into one row.
// The rate is copied; later catalog changes do not affect the line.
func (d *Draft) AddCatalogItem(item domain.CatalogItem) error {
	if item.Currency != "" && !strings.EqualFold(item.Currency, d.Currency) {
		return CurrencyMismatchError{Draft: d.Currency, Got: item.Currency}
	}

	return d.guard("quantity", func() {
		for i := range d.LineItems {
			if d.LineItems[i].SourceCatalogID == item.ID {
				d.LineItems[i].Quantity++
				return
			}
		}

		d.LineItems = append(d.LineItems, domain.LineItem{
			ID:              uuid.NewString(),
			SourceCatalogID: item.ID,
			Description:     item.Name,
			Quantity:        1,
			Rate:            item.DailyRate,
		})
	})
}

// AddCustomLineItem appends a one-off line. currency may be empty, meaning
// the draft currency.
func (d *Draft) AddCustomLineItem(description string, rate money.Amount, currency string) (domain.LineItem, error) {
	description = strings.TrimSpace(description)
	if description == "" {
		return domain.LineItem{}, ValidationError{Field: "description", Reason: "must not be empty"}
	}

	if rate <= 0 {
		return domain.LineItem{}, ValidationError{Field: "rate", Reason: "must be a positive amount"}
	}

	if currency != "" && !strings.EqualFold(currency, d.Currency) {
		return domain.LineItem{}, CurrencyMismatchError{Draft: d.Currency, Got: currency}
	}

	li := domain.LineItem{
		ID:          uuid.NewString(),
		Description: description,
		Quantity:    1,
		Rate:        rate,
	}

	if err := d.guard("rate", func() { d.LineItems = append(d.LineItems, li) }); err != nil {
		return domain.LineItem{}, err
	}

	return li, nil
}

// SetQuantity clamps quantity to at least 1. Removal is RemoveLineItem's job.
func (d *Draft) SetQuantity(lineItemID string, quantity int) error {
	for i := range d.LineItems {
		if d.LineItems[i].ID == lineItemID {
			return d.guard("quantity", func() { d.LineItems[i].Quantity = max(1, quantity) })
		}
	}

	return LineItemNotFoundError{ID: lineItemID}
}

// RemoveLineItem is idempotent: unknown ids are ignored.
func (d *Draft) RemoveLineItem(lineItemID string) {
	d.LineItems = slices.DeleteFunc(d.LineItems, func(li domain.LineItem) bool {
		return li.ID == lineItemID
	})
}

// SetPerformanceFee toggles the fee. On the first false→true transition
// without any override, the override is seeded from the gig fee.
func (d *Draft) SetPerformanceFee(enabled bool, override *money.Amount) error {
	if override != nil && *override < 0 {
		return ValidationError{Field: "performance_fee", Reason: "must not be negative"}
	}

	return d.guard("performance_fee", func() {
		if override != nil {
			v := *override
			d.PerformanceFeeOverride = &v
		} else if enabled && !d.IncludePerformanceFee && d.PerformanceFeeOverride == nil {
			v := d.GigFee
			d.PerformanceFeeOverride = &v
		}

		d.IncludePerformanceFee = enabled
	})
}

// ComputeTotals assumes the draft was built through its methods, which keep
// every total in range. Use Totals where that is not guaranteed.
func (d *Draft) ComputeTotals() Totals {
	t, _ := d.Totals()
	return t
}

// Totals computes the draft totals with overflow checks. An out-of-range
// total is a ValidationError.
func (d *Draft) Totals() (Totals, error) {
	var t Totals
	for _, li := range d.LineItems {
		lt, err := li.Total()
		if err != nil {
			return Totals{}, outOfRange("quantity")
		}
		if t.LineItemsSubtotal, err = t.LineItemsSubtotal.Add(lt); err != nil {
			return Totals{}, outOfRange("quantity")
		}
	}

	if d.IncludePerformanceFee {
		if d.PerformanceFeeOverride != nil {
			t.PerformanceFeeAmount = *d.PerformanceFeeOverride
		} else {
			t.PerformanceFeeAmount = d.GigFee
		}
	}

	grand, err := t.LineItemsSubtotal.Add(t.PerformanceFeeAmount)
	if err != nil {
		return Totals{}, outOfRange("performance_fee")
	}
	t.GrandTotal = grand

	return t, nil
}

// guard applies fn and rolls the draft back when the result no longer has
// representable totals.
func (d *Draft) guard(field string, fn func()) error {
	lines := slices.Clone(d.LineItems)
	include, override := d.IncludePerformanceFee, d.PerformanceFeeOverride

	fn()

	if _, err := d.Totals(); err != nil {
		d.LineItems = lines
		d.IncludePerformanceFee, d.PerformanceFeeOverride = include, override
		return outOfRange(field)
	}

	return nil
}

func outOfRange(field string) error {
	return ValidationError{Field: field, Reason: money.ErrOverflow.Error()}
}

// Snapshot returns a deep copy of the line items.
func (d *Draft) Snapshot() []domain.LineItem {
	out := make([]domain.LineItem, len(d.LineItems))
	copy(out, d.LineItems)
	return out
}
