package quotes

import (
	"fmt"

	"github.com/kirinyoku/tourdesk/internal/quote"
)

// All of these match quote.ErrNotFound as well.
var (
	ErrDraftNotFound       = fmt.Errorf("draft %w", quote.ErrNotFound)
	ErrGigNotFound         = fmt.Errorf("gig %w", quote.ErrNotFound)
	ErrClientNotFound      = fmt.Errorf("client %w", quote.ErrNotFound)
	ErrCatalogItemNotFound = fmt.Errorf("catalog item %w", quote.ErrNotFound)
	ErrDocumentNotFound    = fmt.Errorf("document %w", quote.ErrNotFound)
)
