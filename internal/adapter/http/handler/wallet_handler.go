package handler

import (
	"catalystwells-core/internal/adapter/http/dto"
	"catalystwells-core/internal/adapter/http/middleware"
	"catalystwells-core/internal/core/domain"
	"catalystwells-core/internal/core/ports"
	"catalystwells-core/pkg/apperror"
	"catalystwells-core/pkg/response"

	"github.com/gin-gonic/gin"
)

// WalletHandler handles wallet endpoints.
type WalletHandler struct {
	walletSvc ports.WalletService
}

// NewWalletHandler creates a new WalletHandler.
func NewWalletHandler(walletSvc ports.WalletService) *WalletHandler {
	return &WalletHandler{walletSvc: walletSvc}
}

// Send handles POST /api/v1/wallet/send.
func (h *WalletHandler) Send(c *gin.Context) {
	user := middleware.SessionUser(c)
	if user == nil {
		response.Error(c, apperror.ErrUnauthorized())
		return
	}

	var req dto.SendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}

	receipt, err := h.walletSvc.Transfer(c.Request.Context(), ports.TransferRequest{
		StudentID:    user.ID,
		ToAddress:    req.ToAddress,
		ToStudentTag: req.ToStudentTag,
		Amount:       req.Amount,
		Currency:     domain.Currency(req.CurrencyType),
		Memo:         req.Memo,
		Password:     req.Password,
		RequestID:    req.RequestID,
		ClientIP:     c.ClientIP(),
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, dto.SendResponse{Success: true, Transaction: receipt})
}

// GetBalances handles GET /api/v1/wallet.
func (h *WalletHandler) GetBalances(c *gin.Context) {
	user := middleware.SessionUser(c)
	if user == nil {
		response.Error(c, apperror.ErrUnauthorized())
		return
	}

	balances, err := h.walletSvc.GetBalances(c.Request.Context(), user.ID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, balances)
}
