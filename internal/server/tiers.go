package server

import (
	"strings"

	"github.com/gin-gonic/gin"

	tierdomain "github.com/appoetlabs/appoet/internal/tier/domain"
)

// ListTiers returns the active pricing tiers, cheapest first.
func (s *Server) ListTiers(c *gin.Context) {
	resp, err := s.tierSvc.ListActive(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}
	respondData(c, resp)
}

// CreateTier adds a new pricing tier to the catalog.
func (s *Server) CreateTier(c *gin.Context) {
	var req tierdomain.CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.tierSvc.Create(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	respondData(c, resp)
}

// UpdateTier changes the mutable fields of a tier, typically to retire it.
func (s *Server) UpdateTier(c *gin.Context) {
	var req tierdomain.UpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.tierSvc.Update(c.Request.Context(), strings.TrimSpace(c.Param("id")), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	respondData(c, resp)
}

// ListSamples returns the visible sample poems in display order.
func (s *Server) ListSamples(c *gin.Context) {
	resp, err := s.sampleSvc.ListVisible(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}
	respondData(c, resp)
}
