package server

import (
	"io"
	"net/http"
	"strings"

	checkoutdomain "github.com/coursely/payrelay/internal/checkout/domain"
	"github.com/gin-gonic/gin"
)

// signatureHeader carries the gateway's hex HMAC-SHA-512 digest of the body.
const signatureHeader = "x-paystack-signature"

type initializePaymentRequest struct {
	Email    string `json:"email"`
	FullName string `json:"fullName"`
	Amount   int64  `json:"amount"`
	GCLID    string `json:"gclid"`
}

func (s *Server) InitializePayment(c *gin.Context) {
	var req initializePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	if field, ok := firstMissing(map[string]bool{
		"email":    strings.TrimSpace(req.Email) == "",
		"fullName": strings.TrimSpace(req.FullName) == "",
		"amount":   req.Amount <= 0,
	}); ok {
		AbortWithError(c, missingFieldError(field))
		return
	}

	result, err := s.checkoutSvc.Initialize(c.Request.Context(), checkoutdomain.InitializeRequest{
		Email:       req.Email,
		FullName:    req.FullName,
		AmountMajor: req.Amount,
		GCLID:       req.GCLID,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

func (s *Server) VerifyPayment(c *gin.Context) {
	reference := strings.TrimSpace(c.Param("reference"))
	if reference == "" {
		AbortWithError(c, missingFieldError("reference"))
		return
	}

	payment, err := s.checkoutSvc.Verify(c.Request.Context(), reference)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, payment)
}

type processOrderRequest struct {
	Email     string `json:"email"`
	FullName  string `json:"fullName"`
	Reference string `json:"reference"`
	GCLID     string `json:"gclid"`
	IPAddress string `json:"ipAddress"`
	Country   string `json:"country"`
}

func (s *Server) ProcessOrder(c *gin.Context) {
	var req processOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	if field, ok := firstMissing(map[string]bool{
		"email":     strings.TrimSpace(req.Email) == "",
		"fullName":  strings.TrimSpace(req.FullName) == "",
		"reference": strings.TrimSpace(req.Reference) == "",
	}); ok {
		AbortWithError(c, missingFieldError(field))
		return
	}

	outcome, err := s.checkoutSvc.ProcessOrder(c.Request.Context(), checkoutdomain.ProcessRequest{
		Email:     req.Email,
		FullName:  req.FullName,
		Reference: req.Reference,
		GCLID:     req.GCLID,
		IP:        req.IPAddress,
		Country:   req.Country,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, outcome)
}

// HandleGatewayWebhook reads the exact body bytes for signature verification
// and always acks with 200 once the signature checks out; fan-out runs off
// the response path and its failures are only logged.
func (s *Server) HandleGatewayWebhook(c *gin.Context) {
	payload, err := io.ReadAll(c.Request.Body)
	if err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	err = s.checkoutSvc.IngestWebhook(c.Request.Context(), payload, c.GetHeader(signatureHeader))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// firstMissing reports the first missing required field in a stable order.
func firstMissing(missing map[string]bool) (string, bool) {
	for _, field := range []string{"email", "fullName", "amount", "reference"} {
		if missing[field] {
			return field, true
		}
	}
	return "", false
}
