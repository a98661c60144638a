package handlers

import (
	"net/http"

	"bhutantours/middleware"
	"bhutantours/models"
	"bhutantours/services/tourpackage"

	"github.com/gin-gonic/gin"
)

// PackageHandler serves /api/packages.
type PackageHandler struct {
	Packages tourpackage.PackageService
}

// NewPackageHandler creates a new PackageHandler.
func NewPackageHandler(svc tourpackage.PackageService) *PackageHandler {
	return &PackageHandler{Packages: svc}
}

func (h *PackageHandler) ListPackagesHandler(c *gin.Context) {
	list, err := h.Packages.ListActive(c.Request.Context())
	if err != nil {
		writePackageError(c, err)
		return
	}
	if list == nil {
		list = []models.TourPackage{}
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "count": len(list), "data": list})
}

// GetPackageHandler hides inactive packages from everyone but admins.
// The route is public, so the role is only present when a token was sent.
func (h *PackageHandler) GetPackageHandler(c *gin.Context) {
	isAdmin := c.GetString(middleware.CtxRole) == models.RoleAdmin
	pkg, err := h.Packages.Get(c.Request.Context(), c.Param("id"), isAdmin)
	if err != nil {
		writePackageError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": pkg})
}

func (h *PackageHandler) CreatePackageHandler(c *gin.Context) {
	var in models.TourPackageInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, err)
		return
	}
	pkg, err := h.Packages.Create(c.Request.Context(), in)
	if err != nil {
		writePackageError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": true, "data": pkg})
}

func (h *PackageHandler) UpdatePackageHandler(c *gin.Context) {
	var in models.TourPackageInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, err)
		return
	}
	pkg, err := h.Packages.Update(c.Request.Context(), c.Param("id"), in)
	if err != nil {
		writePackageError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": pkg})
}

func (h *PackageHandler) DeletePackageHandler(c *gin.Context) {
	if err := h.Packages.Delete(c.Request.Context(), c.Param("id")); err != nil {
		writePackageError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Package deleted"})
}
