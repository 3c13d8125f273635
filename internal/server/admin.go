package server

import (
	"strings"

	"github.com/gin-gonic/gin"

	adminkeydomain "github.com/appoetlabs/appoet/internal/adminkey/domain"
	orderdomain "github.com/appoetlabs/appoet/internal/order/domain"
	requestdomain "github.com/appoetlabs/appoet/internal/poemrequest/domain"
)

// AdminListOrders pages through orders, optionally filtered by status.
func (s *Server) AdminListOrders(c *gin.Context) {
	var query orderdomain.AdminListRequest
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.orderSvc.AdminList(c.Request.Context(), query)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	respondList(c, resp.Orders, &resp.PageInfo)
}

// AdminListRequests lists poem requests for fulfillment, newest first.
func (s *Server) AdminListRequests(c *gin.Context) {
	resp, err := s.requestSvc.AdminList(c.Request.Context(), c.Query("status"))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	respondData(c, resp)
}

// AdminUpdateRequest moves a request through the fulfillment pipeline. An
// empty body claims the request (IN_PROGRESS); an explicit status is
// validated against the enum.
func (s *Server) AdminUpdateRequest(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))

	var body struct {
		Status string `json:"status"`
	}
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&body); err != nil {
			AbortWithError(c, invalidRequestError())
			return
		}
	}

	status := strings.ToUpper(strings.TrimSpace(body.Status))
	var (
		resp *requestdomain.Response
		err  error
	)
	if status == "" || status == string(requestdomain.RequestStatusInProgress) {
		resp, err = s.requestSvc.MarkInProgress(c.Request.Context(), id)
	} else {
		resp, err = s.requestSvc.UpdateStatus(c.Request.Context(), id, requestdomain.RequestStatus(status))
	}
	if err != nil {
		AbortWithError(c, err)
		return
	}
	respondData(c, resp)
}

// AdminDeliverRequest attaches the finished poem and delivers it.
func (s *Server) AdminDeliverRequest(c *gin.Context) {
	var req requestdomain.DeliverRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.requestSvc.Deliver(c.Request.Context(), strings.TrimSpace(c.Param("id")), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	respondData(c, resp)
}

// IssueAdminKey mints a new admin key. The plaintext appears only in this
// response.
func (s *Server) IssueAdminKey(c *gin.Context) {
	var req adminkeydomain.IssueRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.adminKeySvc.Issue(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	respondData(c, resp)
}

func (s *Server) ListAdminKeys(c *gin.Context) {
	resp, err := s.adminKeySvc.List(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}
	respondData(c, resp)
}

func (s *Server) RevokeAdminKey(c *gin.Context) {
	if err := s.adminKeySvc.Revoke(c.Request.Context(), strings.TrimSpace(c.Param("id"))); err != nil {
		AbortWithError(c, err)
		return
	}
	respondData(c, gin.H{"revoked": true})
}
