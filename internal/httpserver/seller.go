package httpserver

import (
	"net/http"

	"marketplace-backend/internal/domain"
	sellersvc "marketplace-backend/internal/service/seller"

	"github.com/gin-gonic/gin"
)

func createSellerHandler(deps Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req sellersvc.CreateInput
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, "invalid seller payload")
			return
		}
		seller, err := deps.SellerSvc.Create(c.Request.Context(), req)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, seller)
	}
}

func getSellerHandler(deps Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		seller, err := deps.SellerSvc.Get(c.Request.Context(), c.Param("id"))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, seller)
	}
}

// sellerTransitionHandler dispatches the named verification transition.
func sellerTransitionHandler(deps Deps, action string) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		id := c.Param("id")

		var (
			seller *domain.Seller
			err    error
		)
		switch action {
		case "approve":
			seller, err = deps.SellerSvc.Approve(ctx, id)
		case "reject":
			seller, err = deps.SellerSvc.Reject(ctx, id)
		case "suspend":
			seller, err = deps.SellerSvc.Suspend(ctx, id)
		case "reactivate":
			seller, err = deps.SellerSvc.Reactivate(ctx, id)
		case "deactivate":
			seller, err = deps.SellerSvc.Deactivate(ctx, id)
		default:
			c.Status(http.StatusNotFound)
			return
		}
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, seller)
	}
}

type vacationRequest struct {
	Enabled *bool `json:"enabled" binding:"required"`
}

func setVacationModeHandler(deps Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req vacationRequest
		if err := c.ShouldBindJSON(&req); err != nil || req.Enabled == nil {
			badRequest(c, "enabled is required")
			return
		}
		seller, err := deps.SellerSvc.SetVacationMode(c.Request.Context(), c.Param("id"), *req.Enabled)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, seller)
	}
}

func deleteSellerHandler(deps Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := deps.SellerSvc.Delete(c.Request.Context(), c.Param("id")); err != nil {
			respondError(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}

func restoreSellerHandler(deps Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := deps.SellerSvc.Restore(c.Request.Context(), c.Param("id")); err != nil {
			respondError(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}
