package httpapi

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"requisition/internal/domain"
	"requisition/internal/report"
	"requisition/internal/repository"
)

// Product admin handlers
func (s *Server) adminProducts(c *gin.Context) {
	list, err := s.Products.List(c, repository.ProductFilter{NameSubstring: c.Query("q"), Brand: c.Query("brand")})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

// @Summary Create product
// @Tags admin
// @Accept json
// @Produce json
// @Param input body domain.Product true "Product"
// @Success 201 {object} domain.Product
// @Failure 400 {object} map[string]string
// @Router /admin/products [post]
func (s *Server) createProduct(c *gin.Context) {
	var req domain.Product
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	p, err := s.Products.Create(c, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, p)
}

func (s *Server) updateProduct(c *gin.Context) {
	var req domain.Product
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	req.ID = c.Param("id")
	p, err := s.Products.Update(c, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (s *Server) deleteProduct(c *gin.Context) {
	if err := s.Products.Delete(c, c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Order admin handlers
func (s *Server) allOrders(c *gin.Context) {
	list, err := s.Orders.ListAll(c)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

// @Summary Order list as server-sent events, full list on every change
// @Tags admin
// @Produce text/event-stream
// @Router /admin/orders/stream [get]
func (s *Server) streamOrders(c *gin.Context) {
	ch, err := s.Feed.Subscribe(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.Stream(func(w io.Writer) bool {
		orders, ok := <-ch
		if !ok {
			return false
		}
		c.SSEvent("orders", orders)
		return true
	})
}

type orderActionReq struct {
	OrderIDs []string           `json:"orderIds"`
	Action   domain.OrderAction `json:"action" binding:"required"`
}

// @Summary Apply ACCEPTED or PACKED to whole orders
// @Tags admin
// @Accept json
// @Produce json
// @Param input body orderActionReq true "Selection"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} map[string]string
// @Router /admin/orders/actions [post]
func (s *Server) orderAction(c *gin.Context) {
	var req orderActionReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	updated, err := s.Orders.ApplyOrderAction(c, req.OrderIDs, req.Action)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"updated": len(updated), "orders": updated})
}

type brandActionReq struct {
	ProductIDs []string           `json:"productIds"`
	Action     domain.BrandAction `json:"action" binding:"required"`
}

// @Summary Apply a line-level action to every order containing the selected products
// @Tags admin
// @Accept json
// @Produce json
// @Param input body brandActionReq true "Selection"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string "nothing to update"
// @Router /admin/brand-actions [post]
func (s *Server) brandAction(c *gin.Context) {
	var req brandActionReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	updated, err := s.Orders.ApplyBrandAction(c, req.ProductIDs, req.Action)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"updated": len(updated), "orders": updated})
}

// Auto-lock handlers
type autoLockReq struct {
	At time.Time `json:"at" binding:"required"`
}

func (s *Server) getAutoLock(c *gin.Context) {
	at, ok := s.AutoLock.Scheduled()
	if !ok {
		c.JSON(http.StatusOK, gin.H{"scheduled": false})
		return
	}
	c.JSON(http.StatusOK, gin.H{"scheduled": true, "at": at})
}

// @Summary Arm auto-lock of all pending orders at a future time
// @Tags admin
// @Accept json
// @Produce json
// @Param input body autoLockReq true "Fire time, RFC 3339"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} map[string]string
// @Router /admin/auto-lock [put]
func (s *Server) scheduleAutoLock(c *gin.Context) {
	var req autoLockReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	if err := s.AutoLock.Schedule(req.At); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"scheduled": true, "at": req.At})
}

func (s *Server) cancelAutoLock(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"cancelled": s.AutoLock.Cancel()})
}

// Reports
func (s *Server) dashboard(c *gin.Context) {
	orders, err := s.Orders.ListAll(c)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"stats":   report.Summarize(orders),
		"ranking": report.Ranking(orders, c.DefaultQuery("sort", "desc") != "asc"),
	})
}

func (s *Server) personView(c *gin.Context) {
	orders, err := s.Orders.ListAll(c)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, report.ByPerson(orders))
}

func (s *Server) brandView(c *gin.Context) {
	orders, err := s.Orders.ListAll(c)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, report.ByBrand(orders))
}

// @Summary Monthly pivot export as CSV
// @Tags admin
// @Produce text/csv
// @Param year query int false "Year, current by default"
// @Param month query int false "Month 1-12, current by default"
// @Success 200 {string} string
// @Failure 404 {object} map[string]string
// @Router /admin/export [get]
func (s *Server) exportMonth(c *gin.Context) {
	now := time.Now()
	year, month := now.Year(), now.Month()
	if v := c.Query("year"); v != "" {
		y, err := strconv.Atoi(v)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid year"})
			return
		}
		year = y
	}
	if v := c.Query("month"); v != "" {
		m, err := strconv.Atoi(v)
		if err != nil || m < 1 || m > 12 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid month"})
			return
		}
		month = time.Month(m)
	}
	orders, err := s.Orders.ListAll(c)
	if err != nil {
		respondError(c, err)
		return
	}
	var buf bytes.Buffer
	if err := report.WriteMonthlyCSV(&buf, orders, year, month, time.Local); err != nil {
		respondError(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=Monthly_Export_%d_%d.csv", year, int(month)))
	c.Data(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())
}

func (s *Server) saveAnnouncement(c *gin.Context) {
	var req domain.Announcement
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	if err := s.Announcements.Save(c, req); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, req)
}
