package handlers

import (
	"net/http"

	referencesRepo "radbook/database/repository/references"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ReferencesRepo is injected at startup.
var ReferencesRepo referencesRepo.ReferencesRepository

// ListOrganizations returns active imaging organizations.
func ListOrganizations(c *gin.Context) {
	orgs, err := ReferencesRepo.FindOrganizations(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, orgs)
}

// ListBranches returns active branches of an organization.
func ListBranches(c *gin.Context) {
	orgID, err := primitive.ObjectIDFromHex(c.Param("organizationID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid organization id"})
		return
	}

	branches, err := ReferencesRepo.FindBranches(c.Request.Context(), orgID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, branches)
}

// ListServices returns active imaging services at a branch.
func ListServices(c *gin.Context) {
	branchID, err := primitive.ObjectIDFromHex(c.Param("branchID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid branch id"})
		return
	}

	services, err := ReferencesRepo.FindServices(c.Request.Context(), branchID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, services)
}

// ListProcedures returns active procedures bookable on a service.
func ListProcedures(c *gin.Context) {
	serviceID, err := primitive.ObjectIDFromHex(c.Param("serviceID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid service id"})
		return
	}

	procedures, err := ReferencesRepo.FindProcedures(c.Request.Context(), serviceID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, procedures)
}
