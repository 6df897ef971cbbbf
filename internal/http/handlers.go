package httpapi

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"requisition/internal/domain"
)

type loginReq struct {
	Name string `json:"name" binding:"required"`
}

// @Summary Login by roster name
// @Tags auth
// @Accept json
// @Produce json
// @Param input body loginReq true "Name"
// @Success 200 {object} service.Session
// @Failure 404 {object} map[string]string
// @Router /login [post]
func (s *Server) login(c *gin.Context) {
	var req loginReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	sess, err := s.Auth.Login(c, req.Name)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, sess)
}

// @Summary Active catalog
// @Tags products
// @Produce json
// @Param brand query string false "Brand"
// @Param q query string false "Name substring"
// @Success 200 {array} domain.Product
// @Router /products [get]
func (s *Server) catalog(c *gin.Context) {
	list, err := s.Products.Catalog(c, c.Query("brand"), c.Query("q"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

// @Summary Get product by id
// @Tags products
// @Produce json
// @Param id path string true "Product ID"
// @Success 200 {object} domain.Product
// @Failure 404 {object} map[string]string
// @Router /products/{id} [get]
func (s *Server) getProduct(c *gin.Context) {
	p, err := s.Products.GetByID(c, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (s *Server) brands(c *gin.Context) {
	list, err := s.Products.Brands(c)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (s *Server) getAnnouncement(c *gin.Context) {
	a, err := s.Announcements.Get(c)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, a)
}

// Cart handlers
type cartItemReq struct {
	ProductID   string             `json:"productId" binding:"required"`
	PricingMode domain.PricingMode `json:"pricingMode" binding:"required"`
	Delta       int64              `json:"delta"`
}

func (s *Server) viewCart(c *gin.Context) {
	c.JSON(http.StatusOK, s.Carts.View(currentUser(c)))
}

// @Summary Add one unit (or one bundle set) to cart
// @Tags cart
// @Accept json
// @Produce json
// @Param X-User header string true "User name"
// @Param input body cartItemReq true "Item"
// @Success 200 {object} service.CartView
// @Failure 400 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Router /cart/items [post]
func (s *Server) addToCart(c *gin.Context) {
	var req cartItemReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	v, err := s.Carts.Add(c, currentUser(c), req.ProductID, req.PricingMode)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, v)
}

func (s *Server) adjustCart(c *gin.Context) {
	var req cartItemReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	v, err := s.Carts.Adjust(c, currentUser(c), req.ProductID, req.PricingMode, req.Delta)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, v)
}

func (s *Server) clearCart(c *gin.Context) {
	s.Carts.Clear(currentUser(c))
	c.Status(http.StatusNoContent)
}

func (s *Server) previewCheckout(c *gin.Context) {
	orders, err := s.Carts.Preview(c, currentUser(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, orders)
}

// @Summary Checkout cart, one order per pricing mode
// @Tags cart
// @Produce json
// @Param X-User header string true "User name"
// @Success 201 {array} domain.Order
// @Failure 400 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Router /cart/checkout [post]
func (s *Server) checkout(c *gin.Context) {
	orders, err := s.Carts.Checkout(c, currentUser(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, orders)
}

// Order handlers
func (s *Server) myOrders(c *gin.Context) {
	list, err := s.Orders.ListByUser(c, currentUser(c).ID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

// @Summary Cancel own pending order
// @Tags orders
// @Param X-User header string true "User name"
// @Param id path string true "Order ID"
// @Success 204
// @Failure 403 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Router /orders/{id}/cancel [post]
func (s *Server) cancelOrder(c *gin.Context) {
	if err := s.Orders.CancelOrder(c, currentUser(c), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

type adjustLineReq struct {
	Delta int64 `json:"delta"`
}

// @Summary Adjust line quantity; bundle lines count sets
// @Tags orders
// @Accept json
// @Produce json
// @Param X-User header string true "User name"
// @Param id path string true "Order ID"
// @Param idx path int true "Line index"
// @Param input body adjustLineReq true "Delta"
// @Success 200 {object} domain.Order
// @Success 204 "order deleted after its last line was removed"
// @Failure 400 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Router /orders/{id}/items/{idx}/adjust [post]
func (s *Server) adjustLine(c *gin.Context) {
	idx, err := strconv.Atoi(c.Param("idx"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid line index"})
		return
	}
	var req adjustLineReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	o, err := s.Orders.AdjustQuantity(c, currentUser(c), c.Param("id"), idx, req.Delta)
	if err != nil {
		respondError(c, err)
		return
	}
	if o == nil {
		c.Status(http.StatusNoContent)
		return
	}
	c.JSON(http.StatusOK, o)
}
