package handler

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopdesk/backend/internal/application/receipt"
)

// writeDocument streams a rendered PDF, or returns its archived download link
// when the caller asks for ?format=link and the document was archived
func (h *BaseHandler) writeDocument(c *gin.Context, doc *receipt.Document) {
	if c.Query("format") == "link" && doc.URL != "" {
		h.Success(c, doc)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("inline; filename=%q", doc.FileName))
	c.Data(http.StatusOK, doc.ContentType, doc.Data)
}
