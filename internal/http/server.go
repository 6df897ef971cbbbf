package httpapi

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"requisition/internal/domain"
	"requisition/internal/report"
	"requisition/internal/repository"
	"requisition/internal/service"
)

// Services зависимости HTTP-слоя
type Services struct {
	Products      *service.ProductService
	Orders        *service.OrderService
	Carts         *service.CartService
	Auth          *service.AuthService
	Announcements *service.AnnouncementService
	AutoLock      *service.AutoLockScheduler
	Feed          repository.OrderFeed
}

// Options ограничение частоты запросов с одного адреса; RateLimit <= 0 отключает его
type Options struct {
	RateLimit float64
	RateBurst int
}

type Server struct {
	engine *gin.Engine
	Services
}

func NewServer(svc Services, opts Options) *Server {
	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())
	if opts.RateLimit > 0 {
		r.Use(newIPRateLimiter(opts.RateLimit, opts.RateBurst).middleware())
	}
	s := &Server{engine: r, Services: svc}
	s.registerRoutes()
	return s
}

func (s *Server) Engine() *gin.Engine { return s.engine }

func (s *Server) registerRoutes() {
	// Swagger UI
	s.engine.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	v1 := s.engine.Group("/api/v1")
	{
		v1.POST("/login", s.login)
		v1.GET("/products", s.catalog)
		v1.GET("/products/:id", s.getProduct)
		v1.GET("/brands", s.brands)

		user := v1.Group("", s.requireUser)
		user.GET("/announcement", s.getAnnouncement)

		cart := user.Group("/cart")
		cart.GET("", s.viewCart)
		cart.POST("/items", s.addToCart)
		cart.PATCH("/items", s.adjustCart)
		cart.DELETE("", s.clearCart)
		cart.GET("/preview", s.previewCheckout)
		cart.POST("/checkout", s.checkout)

		orders := user.Group("/orders")
		orders.GET("", s.myOrders)
		orders.POST("/:id/cancel", s.cancelOrder)
		orders.POST("/:id/items/:idx/adjust", s.adjustLine)

		admin := v1.Group("/admin", s.requireUser, s.requireAdmin)
		admin.GET("/products", s.adminProducts)
		admin.POST("/products", s.createProduct)
		admin.PUT("/products/:id", s.updateProduct)
		admin.DELETE("/products/:id", s.deleteProduct)

		admin.GET("/orders", s.allOrders)
		admin.GET("/orders/stream", s.streamOrders)
		admin.POST("/orders/actions", s.orderAction)
		admin.POST("/brand-actions", s.brandAction)

		admin.GET("/auto-lock", s.getAutoLock)
		admin.PUT("/auto-lock", s.scheduleAutoLock)
		admin.DELETE("/auto-lock", s.cancelAutoLock)

		admin.GET("/dashboard", s.dashboard)
		admin.GET("/views/person", s.personView)
		admin.GET("/views/brand", s.brandView)
		admin.GET("/export", s.exportMonth)

		admin.PUT("/announcement", s.saveAnnouncement)
	}
}

func respondError(c *gin.Context, err error) {
	c.JSON(mapErrorToStatus(err), gin.H{"error": err.Error()})
}

func mapErrorToStatus(err error) int {
	if code, ok := domain.CodeOf(err); ok {
		switch code {
		case domain.StatusInvalidArgument:
			return http.StatusBadRequest
		case domain.StatusPermissionDenied:
			return http.StatusForbidden
		case domain.StatusNotFound:
			return http.StatusNotFound
		case domain.StatusFailedPrecondition:
			return http.StatusConflict
		}
	}
	switch {
	case errors.Is(err, service.ErrInvalidInput), errors.Is(err, service.ErrScheduleInPast):
		return http.StatusBadRequest
	case errors.Is(err, repository.ErrNotFound),
		errors.Is(err, service.ErrUserNotFound),
		errors.Is(err, service.ErrNothingToUpdate),
		errors.Is(err, report.ErrNoOrdersInMonth):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
