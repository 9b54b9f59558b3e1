package httpgin

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/kirinyoku/tourdesk/internal/service"
)

// @Summary  List gigs ordered by date
// @Success  200  {array}  domain.Gig
// @Router   /gigs [get]
func handleListGigs(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		gigs, err := svcs.Bookings.ListGigs(c.Request.Context())
		if err != nil {
			respondErr(c, err)
			return
		}
		writeJSONWithCache(c, http.StatusOK, gigs, "private, max-age=15", true)
	}
}

// @Summary  Create gig
// @Param    req  body  CreateGigRequest  true  "payload"
// @Success  201  {object}  domain.Gig
// @Failure  400  {object}  ErrorResponse
// @Router   /gigs [post]
func handleCreateGig(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req CreateGigRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err.Error())
			return
		}
		g, err := svcs.Bookings.CreateGig(c.Request.Context(), req.toInput())
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusCreated, g)
	}
}

// @Summary  Get gig
// @Param    id  path  string  true  "Gig ID"
// @Success  200  {object}  domain.Gig
// @Failure  404  {object}  ErrorResponse
// @Router   /gigs/{id} [get]
func handleGetGig(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		g, err := svcs.Bookings.GetGig(c.Request.Context(), c.Param("id"))
		if err != nil {
			respondErr(c, err)
			return
		}
		writeJSONWithCache(c, http.StatusOK, g, "private, max-age=15", true)
	}
}

// @Summary  Update gig (partial)
// @Param    id   path  string            true  "Gig ID"
// @Param    req  body  UpdateGigRequest  true  "fields to change"
// @Success  200  {object}  domain.Gig
// @Failure  400  {object}  ErrorResponse
// @Failure  404  {object}  ErrorResponse
// @Router   /gigs/{id} [patch]
func handleUpdateGig(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req UpdateGigRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err.Error())
			return
		}
		g, err := svcs.Bookings.UpdateGig(c.Request.Context(), c.Param("id"), req.toPatch())
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusOK, g)
	}
}

// @Summary  List clients
// @Success  200  {array}  domain.Client
// @Router   /clients [get]
func handleListClients(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		out, err := svcs.Clients.List(c.Request.Context())
		if err != nil {
			respondErr(c, err)
			return
		}
		writeJSONWithCache(c, http.StatusOK, out, "private, max-age=30", true)
	}
}

// @Summary  Create client
// @Param    req  body  CreateClientRequest  true  "payload"
// @Success  201  {object}  domain.Client
// @Failure  400  {object}  ErrorResponse
// @Router   /clients [post]
func handleCreateClient(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req CreateClientRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err.Error())
			return
		}
		cl, err := svcs.Clients.Create(c.Request.Context(), req.toInput())
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusCreated, cl)
	}
}

// @Summary  Get client
// @Param    id  path  string  true  "Client ID"
// @Success  200  {object}  domain.Client
// @Failure  404  {object}  ErrorResponse
// @Router   /clients/{id} [get]
func handleGetClient(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		cl, err := svcs.Clients.Get(c.Request.Context(), c.Param("id"))
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusOK, cl)
	}
}

// @Summary  List inventory catalog
// @Success  200  {array}  domain.CatalogItem
// @Router   /catalog [get]
func handleListCatalog(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		items, err := svcs.Catalog.List(c.Request.Context())
		if err != nil {
			respondErr(c, err)
			return
		}
		writeJSONWithCache(c, http.StatusOK, items, "private, max-age=60", true)
	}
}

// @Summary  Add catalog item
// @Param    req  body  CreateCatalogItemRequest  true  "payload"
// @Success  201  {object}  domain.CatalogItem
// @Failure  400  {object}  ErrorResponse
// @Router   /catalog [post]
func handleAddCatalogItem(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req CreateCatalogItemRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err.Error())
			return
		}
		it, err := svcs.Catalog.Add(c.Request.Context(), req.toInput())
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusCreated, it)
	}
}

// @Summary  List expenses
// @Success  200  {array}  domain.Expense
// @Router   /expenses [get]
func handleListExpenses(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		out, err := svcs.Ledger.ListExpenses(c.Request.Context())
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusOK, out)
	}
}

// @Summary  Record expense
// @Param    req  body  CreateExpenseRequest  true  "payload"
// @Success  201  {object}  domain.Expense
// @Failure  400  {object}  ErrorResponse
// @Router   /expenses [post]
func handleAddExpense(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req CreateExpenseRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err.Error())
			return
		}
		e, err := svcs.Ledger.AddExpense(c.Request.Context(), req.toInput())
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusCreated, e)
	}
}

// @Summary  Revenue, expenses and net per currency
// @Success  200  {array}  domain.CurrencyTotals
// @Router   /finance/summary [get]
func handleFinanceSummary(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		sum, err := svcs.Ledger.Summary(c.Request.Context())
		if err != nil {
			respondErr(c, err)
			return
		}
		writeJSONWithCache(c, http.StatusOK, sum, "private, max-age=15", true)
	}
}

// @Summary  List issued documents, newest first
// @Param    gig_id  query  string  false  "only this gig"
// @Success  200  {array}  domain.IssuedDocument
// @Router   /documents [get]
func handleListDocuments(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		docs, err := svcs.Quotes.ListDocuments(c.Request.Context(), c.Query("gig_id"))
		if err != nil {
			respondErr(c, err)
			return
		}
		writeJSONWithCache(c, http.StatusOK, docs, "private, max-age=15", true)
	}
}

// @Summary  Get issued document
// @Param    id  path  string  true  "Document ID"
// @Success  200  {object}  domain.IssuedDocument
// @Failure  404  {object}  ErrorResponse
// @Router   /documents/{id} [get]
func handleGetDocument(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		d, err := svcs.Quotes.GetDocument(c.Request.Context(), c.Param("id"))
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusOK, d)
	}
}
