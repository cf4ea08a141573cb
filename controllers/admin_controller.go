// controllers/admin_controller.go
package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/ronit-gandhi/meal-shame-tracker/services"
)

// AdminController triggers the scheduled jobs by hand. Either service may be
// nil when its AWS settings are missing.
type AdminController struct {
	Export *services.ExportService
	Digest *services.DigestService
}

func NewAdminController(x *services.ExportService, d *services.DigestService) *AdminController {
	return &AdminController{Export: x, Digest: d}
}

func (a *AdminController) RunExport(c *gin.Context) {
	if a.Export == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "export is not configured (S3_BUCKET)"})
		return
	}
	res, err := a.Export.Export(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (a *AdminController) RunDigest(c *gin.Context) {
	if a.Digest == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "digest is not configured (SES_EMAIL)"})
		return
	}
	res, err := a.Digest.Send(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}
