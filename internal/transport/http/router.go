package http

import (
	"log/slog"

	"github.com/gin-gonic/gin"

	"github.com/ayushmohite/auctionhouse/internal/users"
	"github.com/ayushmohite/auctionhouse/pkg/auth"
)

// RouterConfig collects everything the HTTP surface needs
type RouterConfig struct {
	Auctions  *AuctionHandler
	Auth      *AuthHandler
	Dashboard *DashboardHandler
	Signer    *auth.Signer
	Logger    *slog.Logger

	// UploadDir, when set, is served under UploadURLPath for listing images
	UploadDir     string
	UploadURLPath string
}

// NewRouter wires the route tree. Public routes cover browsing and
// authentication; the vendor, customer and admin groups are gated by
// token role.
func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	if cfg.Logger != nil {
		router.Use(RequestLogger(cfg.Logger))
	}

	if cfg.UploadDir != "" && cfg.UploadURLPath != "" {
		router.Static(cfg.UploadURLPath, cfg.UploadDir)
	}

	api := router.Group("/api")
	{
		api.GET("/auctions", cfg.Auctions.ListAuctions)
		api.GET("/auctions/active", cfg.Auctions.ListActiveAuctions)
		api.GET("/auctions/:id", cfg.Auctions.GetAuction)
		api.GET("/auctions/:id/bids", cfg.Auctions.ListBids)

		authGroup := api.Group("/auth")
		{
			authGroup.POST("/register", cfg.Auth.Register)
			authGroup.POST("/login/:role", cfg.Auth.Login)
			authGroup.GET("/profile", RequireAuth(cfg.Signer), cfg.Auth.Profile)
		}

		vendor := api.Group("/vendor")
		vendor.Use(RequireAuth(cfg.Signer), RequireRole(string(users.RoleVendor)))
		{
			vendor.POST("/auctions", cfg.Auctions.CreateAuction)
			vendor.GET("/auctions", cfg.Auctions.VendorAuctions)
			vendor.POST("/auctions/:id/lock", cfg.Auctions.LockAuction)
			vendor.DELETE("/auctions/:id", cfg.Auctions.DeleteAuction)
		}

		customer := api.Group("/customer")
		customer.Use(RequireAuth(cfg.Signer), RequireRole(string(users.RoleCustomer)))
		{
			customer.POST("/bid", cfg.Auctions.PlaceBid)
		}

		// Dashboard routes authenticate but authorize per request so
		// admins can inspect any customer's data.
		dashboard := api.Group("/dashboard")
		dashboard.Use(RequireAuth(cfg.Signer))
		{
			dashboard.GET("/customer/:userId/bids", cfg.Dashboard.BidHistory)
			dashboard.GET("/customer/:userId/wins", cfg.Dashboard.Wins)
			dashboard.GET("/customer/:userId/stats", cfg.Dashboard.Stats)
		}

		admin := api.Group("/admin")
		admin.Use(RequireAuth(cfg.Signer), RequireRole(string(users.RoleAdmin)))
		{
			admin.PATCH("/auctions/:id/status", cfg.Auctions.SetStatus)
			admin.GET("/stats", cfg.Dashboard.MarketplaceStats)
		}
	}

	return router
}
