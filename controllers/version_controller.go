package controllers

import (
	"github.com/System-rat/mcsmp/internal/models"
	"github.com/System-rat/mcsmp/internal/versions"
	"github.com/System-rat/mcsmp/services"

	"github.com/gin-gonic/gin"
)

type VersionController struct {
	catalog services.VersionCatalog
}

func NewVersionController(catalog services.VersionCatalog) *VersionController {
	return &VersionController{catalog: catalog}
}

func (v *VersionController) RegisterRoutes(r *gin.Engine) {
	api := r.Group("/mcsmp/api/v1")
	api.GET("/versions/latest", v.Latest)
	api.POST("/versions/invalidate", v.Invalidate)
}

// Latest returns the latest release and snapshot ids
//
//	@Summary		Latest versions
//	@Tags			Versions
//	@Produce		json
//	@Success		200	{object}	models.LatestVersions
//	@Failure		502	{object}	models.ErrorResponse	"Manifest could not be fetched"
//	@Router			/mcsmp/api/v1/versions/latest [get]
func (v *VersionController) Latest(c *gin.Context) {
	ctx := c.Request.Context()
	release, err := v.catalog.Latest(ctx, versions.ChannelRelease)
	if err != nil {
		respondError(c, err)
		return
	}
	snapshot, err := v.catalog.Latest(ctx, versions.ChannelSnapshot)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(200, models.LatestVersions{Release: release.ID, Snapshot: snapshot.ID})
}

// Invalidate drops the cached version manifest
//
//	@Summary		Invalidate version cache
//	@Tags			Versions
//	@Success		200	{object}	map[string]interface{}
//	@Router			/mcsmp/api/v1/versions/invalidate [post]
func (v *VersionController) Invalidate(c *gin.Context) {
	v.catalog.Invalidate()
	c.JSON(200, gin.H{"status": "success"})
}
