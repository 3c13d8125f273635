package server

import (
	"strings"

	"github.com/gin-gonic/gin"

	orderdomain "github.com/appoetlabs/appoet/internal/order/domain"
)

// CreateOrder opens a PENDING order and a matching remote payment order.
func (s *Server) CreateOrder(c *gin.Context) {
	var req orderdomain.CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.orderSvc.Create(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	respondData(c, resp)
}

// CaptureOrder finalizes payment for a pending order.
func (s *Server) CaptureOrder(c *gin.Context) {
	var req orderdomain.CaptureRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	req.OrderID = strings.TrimSpace(c.Param("id"))

	resp, err := s.orderSvc.Capture(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	respondData(c, resp)
}

// GetOrder returns the request-form view of a paid order with credits left.
func (s *Server) GetOrder(c *gin.Context) {
	resp, err := s.orderSvc.Get(c.Request.Context(), strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	respondData(c, resp)
}

// CheckOrders looks up orders by order number or email.
func (s *Server) CheckOrders(c *gin.Context) {
	var req orderdomain.CheckRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.orderSvc.Check(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	respondData(c, resp)
}
