package server

import (
	"github.com/gin-gonic/gin"

	requestdomain "github.com/appoetlabs/appoet/internal/poemrequest/domain"
)

// SubmitPoemRequest spends one credit of a paid order on a poem request.
func (s *Server) SubmitPoemRequest(c *gin.Context) {
	var req requestdomain.SubmitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.requestSvc.Submit(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	respondData(c, resp)
}
