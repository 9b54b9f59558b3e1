package httpgin

import (
	"github.com/kirinyoku/tourdesk/internal/domain"
	"github.com/kirinyoku/tourdesk/internal/service/bookings"
	"github.com/kirinyoku/tourdesk/internal/service/catalog"
	"github.com/kirinyoku/tourdesk/internal/service/clients"
	"github.com/kirinyoku/tourdesk/internal/service/ledger"
	"github.com/shopspring/decimal"
)

// Amounts in requests are decimal strings (or numbers) in major units of
// the relevant currency. Responses carry integer minor units.

type CreateGigRequest struct {
	Venue     string          `json:"venue"`
	City      string          `json:"city"`
	Date      string          `json:"date"`
	StartTime string          `json:"start_time"`
	EndTime   string          `json:"end_time"`
	Status    string          `json:"status"`
	Fee       decimal.Decimal `json:"fee" swaggertype:"string"`
	Currency  string          `json:"currency"`
	Notes     string          `json:"notes"`
	ClientID  string          `json:"client_id"`
}

func (r CreateGigRequest) toInput() bookings.NewGig {
	return bookings.NewGig{
		Venue:     r.Venue,
		City:      r.City,
		Date:      r.Date,
		StartTime: r.StartTime,
		EndTime:   r.EndTime,
		Status:    r.Status,
		Fee:       r.Fee,
		Currency:  r.Currency,
		Notes:     r.Notes,
		ClientID:  r.ClientID,
	}
}

type UpdateGigRequest struct {
	Venue     *string          `json:"venue"`
	City      *string          `json:"city"`
	Date      *string          `json:"date"`
	StartTime *string          `json:"start_time"`
	EndTime   *string          `json:"end_time"`
	Status    *string          `json:"status"`
	Fee       *decimal.Decimal `json:"fee" swaggertype:"string"`
	Currency  *string          `json:"currency"`
	Notes     *string          `json:"notes"`
	ClientID  *string          `json:"client_id"`
}

func (r UpdateGigRequest) toPatch() bookings.GigPatch {
	return bookings.GigPatch{
		Venue:     r.Venue,
		City:      r.City,
		Date:      r.Date,
		StartTime: r.StartTime,
		EndTime:   r.EndTime,
		Status:    r.Status,
		Fee:       r.Fee,
		Currency:  r.Currency,
		Notes:     r.Notes,
		ClientID:  r.ClientID,
	}
}

type CreateClientRequest struct {
	Name     string `json:"name"`
	Company  string `json:"company"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Category string `json:"category"`
}

func (r CreateClientRequest) toInput() clients.NewClient {
	return clients.NewClient(r)
}

type CreateCatalogItemRequest struct {
	Name      string          `json:"name"`
	Category  string          `json:"category"`
	DailyRate decimal.Decimal `json:"daily_rate" swaggertype:"string"`
	Currency  string          `json:"currency"`
}

func (r CreateCatalogItemRequest) toInput() catalog.NewItem {
	return catalog.NewItem(r)
}

type CreateExpenseRequest struct {
	Date        string          `json:"date"`
	Category    string          `json:"category"`
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount" swaggertype:"string"`
	Currency    string          `json:"currency"`
	GigID       string          `json:"gig_id"`
	ReceiptURL  string          `json:"receipt_url"`
}

func (r CreateExpenseRequest) toInput() ledger.NewExpense {
	return ledger.NewExpense(r)
}

type StartDraftRequest struct {
	GigID      string `json:"gig_id"`
	ClientID   string `json:"client_id"`
	DocumentID string `json:"document_id"`
}

type AddCatalogItemRequest struct {
	ItemID string `json:"item_id" binding:"required"`
}

type AddCustomItemRequest struct {
	Description string          `json:"description"`
	Rate        decimal.Decimal `json:"rate" swaggertype:"string"`
	Currency    string          `json:"currency"`
}

type SetQuantityRequest struct {
	Quantity int `json:"quantity"`
}

type SetPerformanceFeeRequest struct {
	Enabled  *bool            `json:"enabled" binding:"required"`
	Override *decimal.Decimal `json:"override" swaggertype:"string"`
}

type IssueRequest struct {
	// Type is optional: Invoice when a performance fee is charged, Quotation otherwise.
	Type string `json:"type" binding:"omitempty,oneof=Quotation Invoice"`
}

type IssueResponse struct {
	Document    domain.IssuedDocument `json:"document"`
	SyncPending bool                  `json:"sync_pending"`
	Warning     string                `json:"warning,omitempty"`
}

type ChatRequest struct {
	Message string `json:"message"`
}

type ChatResponse struct {
	Messages []bookings.Message `json:"messages"`
}

type BioRequest struct {
	Details string `json:"details" binding:"required"`
}

type BioResponse struct {
	Bio string `json:"bio"`
}

type ErrorResponse struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields,omitempty"`
}
