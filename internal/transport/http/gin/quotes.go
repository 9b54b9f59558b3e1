package httpgin

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/kirinyoku/tourdesk/internal/domain"
	redisx "github.com/kirinyoku/tourdesk/internal/redis"
	"github.com/kirinyoku/tourdesk/internal/repository"
	redisrepo "github.com/kirinyoku/tourdesk/internal/repository/redis"
	"github.com/kirinyoku/tourdesk/internal/service"
	"github.com/kirinyoku/tourdesk/internal/service/quotes"
)

const syncPendingWarning = "saved locally, sync pending"

// @Summary  Open a quote draft
// @Description  With document_id the draft is seeded from that document and issuing it replaces the document.
// @Param    req  body  StartDraftRequest  true  "payload"
// @Success  201  {object}  quotes.View
// @Failure  404  {object}  ErrorResponse
// @Router   /quotes/drafts [post]
func handleStartDraft(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req StartDraftRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err.Error())
			return
		}
		v, err := svcs.Quotes.StartDraft(c.Request.Context(), quotes.StartDraft(req))
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusCreated, v)
	}
}

// @Summary  Get draft with totals
// @Param    id  path  string  true  "Draft ID"
// @Success  200  {object}  quotes.View
// @Failure  404  {object}  ErrorResponse
// @Router   /quotes/drafts/{id} [get]
func handleGetDraft(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		v, err := svcs.Quotes.GetDraft(c.Request.Context(), c.Param("id"))
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusOK, v)
	}
}

// @Summary  Discard draft
// @Param    id  path  string  true  "Draft ID"
// @Success  204
// @Router   /quotes/drafts/{id} [delete]
func handleDiscardDraft(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := svcs.Quotes.DiscardDraft(c.Request.Context(), c.Param("id")); err != nil {
			respondErr(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}

// @Summary  Add catalog item to draft (repeated adds bump quantity)
// @Param    id   path  string                 true  "Draft ID"
// @Param    req  body  AddCatalogItemRequest  true  "payload"
// @Success  200  {object}  quotes.View
// @Failure  400  {object}  ErrorResponse  "currency mismatch"
// @Failure  404  {object}  ErrorResponse
// @Router   /quotes/drafts/{id}/catalog-items [post]
func handleDraftAddCatalogItem(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req AddCatalogItemRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err.Error())
			return
		}
		v, err := svcs.Quotes.AddCatalogItem(c.Request.Context(), c.Param("id"), req.ItemID)
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusOK, v)
	}
}

// @Summary  Add custom line item
// @Param    id   path  string                true  "Draft ID"
// @Param    req  body  AddCustomItemRequest  true  "payload"
// @Success  200  {object}  quotes.View
// @Failure  400  {object}  ErrorResponse
// @Router   /quotes/drafts/{id}/custom-items [post]
func handleDraftAddCustomItem(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req AddCustomItemRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err.Error())
			return
		}
		v, err := svcs.Quotes.AddCustomItem(c.Request.Context(), c.Param("id"), quotes.CustomItem(req))
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusOK, v)
	}
}

// @Summary  Set line item quantity (clamped to 1)
// @Param    id       path  string              true  "Draft ID"
// @Param    item_id  path  string              true  "Line item ID"
// @Param    req      body  SetQuantityRequest  true  "payload"
// @Success  200  {object}  quotes.View
// @Failure  404  {object}  ErrorResponse
// @Router   /quotes/drafts/{id}/items/{item_id} [patch]
func handleDraftSetQuantity(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req SetQuantityRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err.Error())
			return
		}
		v, err := svcs.Quotes.SetQuantity(c.Request.Context(), c.Param("id"), c.Param("item_id"), req.Quantity)
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusOK, v)
	}
}

// @Summary  Remove line item (idempotent)
// @Param    id       path  string  true  "Draft ID"
// @Param    item_id  path  string  true  "Line item ID"
// @Success  200  {object}  quotes.View
// @Router   /quotes/drafts/{id}/items/{item_id} [delete]
func handleDraftRemoveItem(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		v, err := svcs.Quotes.RemoveItem(c.Request.Context(), c.Param("id"), c.Param("item_id"))
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusOK, v)
	}
}

// @Summary  Toggle performance fee
// @Param    id   path  string                    true  "Draft ID"
// @Param    req  body  SetPerformanceFeeRequest  true  "payload"
// @Success  200  {object}  quotes.View
// @Failure  400  {object}  ErrorResponse
// @Router   /quotes/drafts/{id}/performance-fee [put]
func handleDraftSetPerformanceFee(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req SetPerformanceFeeRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err.Error())
			return
		}
		v, err := svcs.Quotes.SetPerformanceFee(c.Request.Context(), c.Param("id"), *req.Enabled, req.Override)
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusOK, v)
	}
}

// @Summary  Issue draft as quotation or invoice (idempotent)
// @Param    id   path  string        true   "Draft ID"
// @Param    req  body  IssueRequest  false  "payload"
// @Param    Idempotency-Key  header  string  false  "replay protection"
// @Header   201 {string} Idempotency-Key "echo"
// @Success  201  {object}  IssueResponse
// @Failure  404  {object}  ErrorResponse
// @Failure  409  {object}  ErrorResponse  "idem in progress"
// @Failure  422  {object}  ErrorResponse  "empty document"
// @Router   /quotes/drafts/{id}/issue [post]
func handleIssueDraft(svcs *service.Services, idem *redisrepo.IdempotencyStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		draftID := c.Param("id")

		var req IssueRequest
		if c.Request.ContentLength != 0 {
			if err := c.ShouldBindJSON(&req); err != nil {
				badRequest(c, err.Error())
				return
			}
		}

		idemKey := strings.TrimSpace(c.GetHeader("Idempotency-Key"))
		var idemStorageKey string
		if idem != nil && idemKey != "" {
			idemStorageKey = redisx.KeyIdempotency("issue:"+draftID, idemKey)

			if status, payload, ok, _ := idem.GetResult(c.Request.Context(), idemStorageKey); ok {
				c.Header("Idempotency-Key", idemKey)
				c.Data(status, "application/json; charset=utf-8", payload)
				return
			}

			locked, err := idem.AcquireLock(c.Request.Context(), idemStorageKey, 60*time.Second)
			if err != nil {
				respondErr(c, err)
				return
			}
			if !locked {
				if status, payload, ok, _ := idem.GetResult(c.Request.Context(), idemStorageKey); ok {
					c.Header("Idempotency-Key", idemKey)
					c.Data(status, "application/json; charset=utf-8", payload)
					return
				}
				c.Header("Retry-After", "1")
				c.JSON(http.StatusConflict, ErrorResponse{Error: repository.ErrIdemInProgress.Error()})
				return
			}
		}

		res, err := svcs.Quotes.Issue(c.Request.Context(), draftID, quotes.IssueOptions{
			Type: domain.DocumentType(req.Type),
		})
		if err != nil {
			if idemStorageKey != "" {
				_ = idem.Release(c.Request.Context(), idemStorageKey)
			}
			respondErr(c, err)
			return
		}

		svcs.Metrics.DocumentIssued(string(res.Document.Type), !res.SyncPending)

		resp := IssueResponse{Document: res.Document, SyncPending: res.SyncPending}
		if res.SyncPending {
			resp.Warning = syncPendingWarning
		}

		b, err := json.Marshal(resp)
		if err != nil {
			respondErr(c, err)
			return
		}

		if idemStorageKey != "" {
			_ = idem.SaveResult(c.Request.Context(), idemStorageKey, http.StatusCreated, b)
			c.Header("Idempotency-Key", idemKey)
		}

		c.Data(http.StatusCreated, "application/json; charset=utf-8", b)
	}
}
