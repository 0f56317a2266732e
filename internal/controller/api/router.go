// Package api exposes the booking services over HTTP.
package api

import (
	"net/http"
	"reflect"
	"strings"
	"sync"
	"time"

	"github.com/Freeeeeet/boat_booking/internal/service"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

type Config struct {
	AllowedOrigins []string
}

type Handler struct {
	schedules *service.ScheduleService
	bookings  *service.BookingService
	payments  *service.PaymentService
	logger    *zap.Logger
}

func NewHandler(
	schedules *service.ScheduleService,
	bookings *service.BookingService,
	payments *service.PaymentService,
	logger *zap.Logger,
) *Handler {
	return &Handler{
		schedules: schedules,
		bookings:  bookings,
		payments:  payments,
		logger:    logger,
	}
}

var registerTagNames sync.Once

// useJSONFieldNames makes binding errors report json/form names.
func useJSONFieldNames() {
	registerTagNames.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			for _, tag := range []string{"json", "form"} {
				name, _, _ := strings.Cut(f.Tag.Get(tag), ",")
				if name == "-" {
					return ""
				}
				if name != "" {
					return name
				}
			}
			return f.Name
		})
	})
}

// NewRouter wires middleware and routes.
func NewRouter(cfg Config, h *Handler, tokens TokenParser) *gin.Engine {
	useJSONFieldNames()

	router := gin.New()
	router.Use(RequestID())
	router.Use(RequestLogger(h.logger))
	router.Use(Recovery(h.logger))

	corsConfig := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Content-Type", "Authorization", "Accept", "Origin", requestIDHeader},
		ExposeHeaders: []string{requestIDHeader},
		MaxAge:        12 * time.Hour,
	}
	if len(cfg.AllowedOrigins) == 0 || (len(cfg.AllowedOrigins) == 1 && cfg.AllowedOrigins[0] == "*") {
		corsConfig.AllowAllOrigins = true
	} else {
		corsConfig.AllowOrigins = cfg.AllowedOrigins
		corsConfig.AllowCredentials = true
	}
	router.Use(cors.New(corsConfig))

	router.NoRoute(func(c *gin.Context) {
		respondError(c, http.StatusNotFound, "not_found", "route not found")
	})
	router.GET("/health-check", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := router.Group("/api")
	api.GET("/schedules", h.listSchedules)
	api.GET("/schedules/ports", h.listPorts)
	api.GET("/schedules/:id", h.getSchedule)

	authed := api.Group("", Authenticate(tokens))
	authed.GET("/bookings", h.listMyBookings)
	authed.POST("/bookings", h.createBooking)
	authed.GET("/bookings/:id", h.getBooking)
	authed.POST("/payments/:bookingId", h.submitPayment)

	admin := authed.Group("/admin", RequireAdmin())
	admin.GET("/dashboard", h.dashboard)
	admin.GET("/schedules", h.adminListSchedules)
	admin.POST("/schedules", h.adminCreateSchedule)
	admin.GET("/schedules/:id", h.adminGetSchedule)
	admin.PUT("/schedules/:id", h.adminUpdateSchedule)
	admin.DELETE("/schedules/:id", h.adminDeleteSchedule)
	admin.GET("/bookings", h.adminListBookings)
	admin.GET("/bookings/:id", h.adminGetBooking)
	admin.PATCH("/bookings/:id", h.adminUpdateBooking)
	admin.GET("/boats", h.adminListBoats)
	admin.POST("/boats", h.adminCreateBoat)
	admin.GET("/routes", h.adminListRoutes)
	admin.POST("/routes", h.adminCreateRoute)

	return router
}
