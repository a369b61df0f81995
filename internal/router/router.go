package router

import (
	"net/http"

	"github.com/senyabanana/marketplace-service/internal/handlers"
	"github.com/senyabanana/marketplace-service/internal/metrics"
)

// Handlers - набор обработчиков, из которых собираются маршруты.
type Handlers struct {
	Requests *handlers.RequestHandler
	Offers   *handlers.OfferHandler
	Orders   *handlers.OrderHandler
	Products *handlers.ProductHandler
	Users    *handlers.UserHandler
	Auth     *handlers.AuthHandler
	Admin    *handlers.AdminHandler
	AuthMW   *handlers.AuthMiddleware
	Metrics  *metrics.Metrics
}

func InitRoutes(h Handlers) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/ping", handlers.PingHandler)
	mux.Handle("GET /metrics", h.Metrics.Handler())

	mux.HandleFunc("POST /api/requests", h.Requests.CreateRequest)
	mux.HandleFunc("GET /api/requests", h.Requests.GetRequests)
	mux.HandleFunc("GET /api/requests/{requestId}", h.Requests.GetRequest)
	mux.HandleFunc("PATCH /api/requests/{requestId}", h.Requests.UpdateRequest)
	mux.HandleFunc("DELETE /api/requests/{requestId}", h.Requests.DeleteRequest)
	mux.HandleFunc("PUT /api/requests/{requestId}/status", h.Requests.UpdateRequestStatus)
	mux.HandleFunc("GET /api/requests/matching/{supplierId}", h.Requests.GetMatchingRequests)

	mux.HandleFunc("POST /api/offers/{requestId}", h.Offers.CreateOffer)
	mux.HandleFunc("GET /api/offers/request/{requestId}", h.Offers.GetRequestOffers)
	mux.HandleFunc("PATCH /api/offers/{offerId}/respond", h.Offers.RespondToOffer)

	mux.HandleFunc("GET /api/orders/{userId}", h.Orders.GetActiveOrders)
	mux.HandleFunc("GET /api/orders/history/{userId}", h.Orders.GetOrderHistory)
	mux.HandleFunc("PATCH /api/orders/{orderId}/status", h.Orders.UpdateOrderStatus)

	mux.HandleFunc("POST /api/products", h.Products.CreateProduct)
	mux.HandleFunc("GET /api/products", h.Products.GetProducts)
	mux.HandleFunc("GET /api/products/count", h.Products.CountProducts)
	mux.HandleFunc("GET /api/products/{productId}", h.Products.GetProduct)
	mux.HandleFunc("PUT /api/products/{productId}", h.Products.UpdateProduct)
	mux.HandleFunc("DELETE /api/products/{productId}", h.Products.DeleteProduct)
	mux.HandleFunc("GET /api/products/supplier/{supplierId}", h.Products.GetSupplierProducts)
	mux.HandleFunc("GET /api/products/supplier/{supplierId}/count", h.Products.CountSupplierProducts)
	mux.HandleFunc("GET /api/products/category/{category}", h.Products.GetCategoryProducts)
	mux.HandleFunc("GET /api/products/search/{query}", h.Products.SearchProducts)

	mux.HandleFunc("POST /api/users", h.Users.CreateUser)
	mux.HandleFunc("GET /api/users", h.Users.ListUsers)
	mux.HandleFunc("GET /api/users/{userId}", h.Users.GetUser)
	mux.HandleFunc("PUT /api/users/{email}", h.Users.UpdateUser)
	mux.HandleFunc("GET /api/users/username/{username}", h.Users.GetUsersByUsername)
	mux.HandleFunc("GET /api/users/exists/{email}", h.Users.EmailExists)
	mux.HandleFunc("DELETE /api/users/{userId}", h.Users.DeleteUser)
	mux.HandleFunc("POST /api/users/{userId}/image", h.Users.UploadProfileImage)

	mux.HandleFunc("PUT /api/supplier/business/{userId}", h.Users.UpsertBusiness)
	mux.HandleFunc("GET /api/supplier/business/{userId}", h.Users.GetBusiness)
	mux.HandleFunc("DELETE /api/supplier/business/{userId}", h.Users.DeleteBusiness)
	mux.HandleFunc("POST /api/supplier/business/{userId}/image", h.Users.UploadBusinessImage)

	mux.HandleFunc("POST /api/auth/create_password", h.Auth.CreatePassword)
	mux.HandleFunc("POST /api/auth/access", h.Auth.Login)
	mux.HandleFunc("POST /api/auth/change-password", h.Auth.ChangePassword)
	mux.HandleFunc("POST /api/auth/forgot-password", h.Auth.ForgotPassword)

	mux.Handle("GET /api/admin/users", h.AuthMW.Admin(h.Admin.ListUsers))
	mux.Handle("GET /api/admin/users/{userId}", h.AuthMW.Admin(h.Admin.GetUser))
	mux.Handle("PATCH /api/admin/users/{userId}", h.AuthMW.Admin(h.Admin.UpdateUser))
	mux.Handle("DELETE /api/admin/users/{userId}", h.AuthMW.Admin(h.Admin.DeleteUser))
	mux.Handle("GET /api/admin/stats/users", h.AuthMW.Admin(h.Admin.UserStats))
	mux.Handle("POST /api/admin/offers/accept", h.AuthMW.Admin(h.Offers.AdminAcceptOffer))
	mux.Handle("POST /api/admin/offers/reject", h.AuthMW.Admin(h.Offers.AdminRejectOffer))

	return h.Metrics.InstrumentHandler(mux)
}
