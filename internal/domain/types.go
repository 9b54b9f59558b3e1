package domain

import (
	"time"

	"github.com/kirinyoku/tourdesk/internal/money"
)

// DateLayout is the calendar date format used across the API and documents.
const DateLayout = "2006-01-02"

type GigStatus string

const (
	GigConfirmed GigStatus = "Confirmed"
	GigPending   GigStatus = "Pending"
	GigCanceled  GigStatus = "Canceled"
)

func (s GigStatus) Valid() bool {
	switch s {
	case GigConfirmed, GigPending, GigCanceled:
		return true
	}
	return false
}

type Gig struct {
	ID        string       `json:"id"`
	Venue     string       `json:"venue"`
	City      string       `json:"city"`
	Date      time.Time    `json:"date"`
	StartTime string       `json:"start_time,omitempty"`
	EndTime   string       `json:"end_time,omitempty"`
	Status    GigStatus    `json:"status"`
	Fee       money.Amount `json:"fee"`
	Currency  string       `json:"currency"`
	Notes     string       `json:"notes,omitempty"`
	ClientID  string       `json:"client_id,omitempty"`
	CreatedAt time.Time    `json:"created_at"`
}

// GigUpdate carries a partial update; nil fields are left untouched.
type GigUpdate struct {
	Venue     *string
	City      *string
	Date      *time.Time
	StartTime *string
	EndTime   *string
	Status    *GigStatus
	Fee       *money.Amount
	Currency  *string
	Notes     *string
	ClientID  *string
}

type ClientCategory string

const (
	ClientPromoter  ClientCategory = "Promoter"
	ClientVenue     ClientCategory = "Venue"
	ClientCorporate ClientCategory = "Corporate"
	ClientAgency    ClientCategory = "Agency"
)

func (c ClientCategory) Valid() bool {
	switch c {
	case ClientPromoter, ClientVenue, ClientCorporate, ClientAgency:
		return true
	}
	return false
}

type Client struct {
	ID       string         `json:"id"`
	Name     string         `json:"name"`
	Company  string         `json:"company"`
	Email    string         `json:"email"`
	Phone    string         `json:"phone"`
	Category ClientCategory `json:"category"`
}

type EquipmentCategory string

const (
	EquipmentAudio    EquipmentCategory = "Audio"
	EquipmentLighting EquipmentCategory = "Lighting"
	EquipmentDJ       EquipmentCategory = "DJ"
	EquipmentBackline EquipmentCategory = "Backline"
	EquipmentStage    EquipmentCategory = "Stage"
)

func (c EquipmentCategory) Valid() bool {
	switch c {
	case EquipmentAudio, EquipmentLighting, EquipmentDJ, EquipmentBackline, EquipmentStage:
		return true
	}
	return false
}

// CatalogItem is an inventory entry. It is append-only.
type CatalogItem struct {
	ID        string            `json:"id"`
	Name      string            `json:"name"`
	Category  EquipmentCategory `json:"category"`
	DailyRate money.Amount      `json:"daily_rate"`
	Currency  string            `json:"currency"`
}

type LineItem struct {
	ID              string       `json:"id"`
	SourceCatalogID string       `json:"source_catalog_id,omitempty"`
	Description     string       `json:"description"`
	Quantity        int          `json:"quantity"`
	Rate            money.Amount `json:"rate"`
}

// Total is quantity × rate. It fails with money.ErrOverflow when the
// product is out of range.
func (li LineItem) Total() (money.Amount, error) {
	return li.Rate.Mul(li.Quantity)
}

type DocumentType string

const (
	DocumentQuotation DocumentType = "Quotation"
	DocumentInvoice   DocumentType = "Invoice"
)

func (t DocumentType) Valid() bool {
	return t == DocumentQuotation || t == DocumentInvoice
}

type DocumentStatus string

const (
	DocumentDraft    DocumentStatus = "Draft"
	DocumentSent     DocumentStatus = "Sent"
	DocumentApproved DocumentStatus = "Approved"
	DocumentPaid     DocumentStatus = "Paid"
)

func (s DocumentStatus) Valid() bool {
	switch s {
	case DocumentDraft, DocumentSent, DocumentApproved, DocumentPaid:
		return true
	}
	return false
}

// IssuedDocument is the persisted record of a finalized quote or invoice.
// LineItems is a point-in-time copy and is never mutated after issuance.
type IssuedDocument struct {
	ID                    string         `json:"id"`
	GigID                 string         `json:"gig_id"`
	Type                  DocumentType   `json:"type"`
	DateIssued            time.Time      `json:"date_issued"`
	Status                DocumentStatus `json:"status"`
	FileName              string         `json:"file_name"`
	Currency              string         `json:"currency"`
	TotalAmount           money.Amount   `json:"total_amount"`
	LineItems             []LineItem     `json:"line_items"`
	IncludePerformanceFee bool           `json:"include_performance_fee"`
	PerformanceFee        money.Amount   `json:"performance_fee"`
	DocumentStoreRef      *string        `json:"document_store_ref"`
	BillToName            string         `json:"bill_to_name,omitempty"`
	BillToVenue           string         `json:"bill_to_venue,omitempty"`
}

type ExpenseCategory string

const (
	ExpenseTravel     ExpenseCategory = "Travel"
	ExpenseGear       ExpenseCategory = "Gear"
	ExpenseMarketing  ExpenseCategory = "Marketing"
	ExpenseProduction ExpenseCategory = "Production"
	ExpenseStaff      ExpenseCategory = "Staff"
	ExpenseOther      ExpenseCategory = "Other"
)

func (c ExpenseCategory) Valid() bool {
	switch c {
	case ExpenseTravel, ExpenseGear, ExpenseMarketing, ExpenseProduction, ExpenseStaff, ExpenseOther:
		return true
	}
	return false
}

type Expense struct {
	ID          string          `json:"id"`
	Date        time.Time       `json:"date"`
	Category    ExpenseCategory `json:"category"`
	Description string          `json:"description"`
	Amount      money.Amount    `json:"amount"`
	Currency    string          `json:"currency"`
	GigID       string          `json:"gig_id,omitempty"`
	ReceiptURL  string          `json:"receipt_url,omitempty"`
}

// CurrencyTotals is one currency's row of the financial summary.
type CurrencyTotals struct {
	Currency string       `json:"currency"`
	Revenue  money.Amount `json:"revenue"`
	Expenses money.Amount `json:"expenses"`
	Net      money.Amount `json:"net"`
}
