package httpgin

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/kirinyoku/tourdesk/internal/assistant"
	"github.com/kirinyoku/tourdesk/internal/service"
)

// @Summary  iCalendar feed of confirmed gigs
// @Produce  text/calendar
// @Success  200  {string}  string
// @Router   /calendar.ics [get]
func handleCalendar(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		feed, err := svcs.Calendar.Feed(c.Request.Context())
		if err != nil {
			respondErr(c, err)
			return
		}
		c.Header("Content-Disposition", `attachment; filename="calendar.ics"`)
		writeWithCache(c, http.StatusOK, "text/calendar; charset=utf-8", []byte(feed), "private, max-age=300", true)
	}
}

// @Summary  Push gigs and expenses to Google Sheets
// @Success  200  {object}  map[string]string
// @Failure  501  {object}  ErrorResponse  "not configured"
// @Router   /sync/sheets [post]
func handleSyncSheets(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := svcs.Export.Sync(c.Request.Context()); err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Financials synchronized to Google Sheets"})
	}
}

// @Summary  Recently modified Drive files
// @Param    limit  query  int  false  "max files (default 5)"
// @Success  200  {array}  docstore.File
// @Router   /drive/files [get]
func handleDriveFiles(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		files, err := svcs.Drive.Recent(c.Request.Context(), parseIntDefault(c.Query("limit"), 5))
		if err != nil {
			// the dashboard widget treats Drive as optional
			_ = c.Error(err)
			c.JSON(http.StatusOK, []any{})
			return
		}
		c.JSON(http.StatusOK, files)
	}
}

// @Summary  Chat with the booking assistant
// @Param    req  body  ChatRequest  true  "payload"
// @Success  200  {object}  ChatResponse
// @Failure  429  {object}  ErrorResponse  "rate limited"
// @Failure  501  {object}  ErrorResponse  "not configured"
// @Failure  502  {object}  ErrorResponse  "assistant failure"
// @Router   /assistant/chat [post]
func handleChat(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req ChatRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err.Error())
			return
		}
		msgs, err := svcs.Intents.Chat(c.Request.Context(), "ip:"+c.ClientIP(), req.Message)
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusOK, ChatResponse{Messages: msgs})
	}
}

// @Summary  Draft a press bio
// @Param    req  body  BioRequest  true  "payload"
// @Success  200  {object}  BioResponse
// @Failure  501  {object}  ErrorResponse  "not configured"
// @Router   /assistant/bio [post]
func handleBio(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		if svcs.Assistant == nil {
			respondErr(c, assistant.ErrNotConfigured)
			return
		}
		var req BioRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err.Error())
			return
		}
		bio, err := svcs.Assistant.Bio(c.Request.Context(), req.Details)
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusOK, BioResponse{Bio: bio})
	}
}
