// Package transferdelivery manages delivery layer of transfers.
package transferdelivery

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/go-petr/bank-registry/internal/domain"
	"github.com/go-petr/bank-registry/internal/middleware"
	"github.com/go-petr/bank-registry/pkg/errorspkg"
	"github.com/go-petr/bank-registry/pkg/web"
)

// Service provides service layer interface needed by transfer delivery layer.
//
//go:generate mockgen -source http.go -destination http_mock.go -package transferdelivery
type Service interface {
	Transfer(ctx context.Context, fromPassport string, arg domain.CreateTransferParams) (domain.TransferResult, error)
	List(ctx context.Context, owner, requisite string, pageSize, pageID int32) ([]domain.Transfer, error)
}

// Handler facilitates transfer delivery layer logic.
type Handler struct {
	service Service
}

// NewHandler returns transfer handler.
func NewHandler(ts Service) *Handler {
	return &Handler{
		service: ts,
	}
}

func bindError(gctx *gin.Context, err error) {
	var ve validator.ValidationErrors
	if errors.As(err, &ve) {
		gctx.JSON(http.StatusBadRequest, web.Response{Error: web.GetErrorMsg(ve)})
		return
	}

	gctx.JSON(http.StatusBadRequest, web.Error(err))
}

type request struct {
	FromRequisite string `json:"from_requisite" binding:"required,alphanum"`
	ToPassport    string `json:"to_passport" binding:"required,numeric"`
	ToRequisite   string `json:"to_requisite" binding:"required,alphanum"`
	Amount        string `json:"amount" binding:"required,money"`
}

type data struct {
	Transfer domain.TransferResult `json:"transfer"`
}

type response struct {
	Data data `json:"data"`
}

// Create handles http request to transfer money from an account of the authenticated user.
func (h *Handler) Create(gctx *gin.Context) {
	ctx := gctx.Request.Context()
	l := zerolog.Ctx(ctx)

	var req request
	if err := gctx.ShouldBindJSON(&req); err != nil {
		l.Info().Err(err).Send()
		bindError(gctx, err)

		return
	}

	passport := middleware.Passport(gctx)

	arg := domain.CreateTransferParams{
		FromPassport:  passport,
		FromRequisite: req.FromRequisite,
		ToPassport:    req.ToPassport,
		ToRequisite:   req.ToRequisite,
		Amount:        req.Amount,
	}

	result, err := h.service.Transfer(ctx, passport, arg)
	if err != nil {
		l.Info().Err(err).Send()

		switch err {
		case
			domain.ErrInvalidOwner:
			gctx.JSON(http.StatusUnauthorized, web.Error(err))

			return
		case
			domain.ErrAccountNotFound:
			gctx.JSON(http.StatusNotFound, web.Error(err))

			return
		case
			domain.ErrInvalidAmount,
			domain.ErrNegativeAmount,
			domain.ErrInsufficientBalance:
			gctx.JSON(http.StatusBadRequest, web.Error(err))

			return
		}

		gctx.JSON(http.StatusInternalServerError, web.Error(errorspkg.ErrInternal))

		return
	}

	res := response{
		Data: data{result},
	}

	gctx.JSON(http.StatusOK, res)
}

type listRequest struct {
	Requisite string `form:"requisite" binding:"required,alphanum"`
	PageID    int32  `form:"page_id" binding:"required,min=1"`
	PageSize  int32  `form:"page_size" binding:"required,min=1,max=100"`
}

type dataTransfers struct {
	Transfers []domain.Transfer `json:"transfers"`
}

type responseTransfers struct {
	Data dataTransfers `json:"data"`
}

// List handles http request to list transfers of an account of the authenticated user.
func (h *Handler) List(gctx *gin.Context) {
	ctx := gctx.Request.Context()
	l := zerolog.Ctx(ctx)

	var req listRequest
	if err := gctx.ShouldBindQuery(&req); err != nil {
		l.Info().Err(err).Send()
		bindError(gctx, err)

		return
	}

	transfers, err := h.service.List(ctx, middleware.Passport(gctx), req.Requisite, req.PageSize, req.PageID)
	if err != nil {
		if err == domain.ErrAccountNotFound {
			gctx.JSON(http.StatusNotFound, web.Error(err))
			return
		}

		gctx.JSON(http.StatusInternalServerError, web.Error(errorspkg.ErrInternal))

		return
	}

	gctx.JSON(http.StatusOK, responseTransfers{Data: dataTransfers{transfers}})
}
