package router

import (
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/time/rate"

	"github.com/medibook/booking-api/internal/handler"
	appointmentHandler "github.com/medibook/booking-api/internal/handler/appointment"
	doctorHandler "github.com/medibook/booking-api/internal/handler/doctor"
	paymentHandler "github.com/medibook/booking-api/internal/handler/payment"
	"github.com/medibook/booking-api/internal/middleware"
	"github.com/medibook/booking-api/internal/model"
)

type Router struct {
	engine *gin.Engine
}

type Config struct {
	RateLimit rate.Limit
	RateBurst int
}

func NewRouter(
	cfg Config,
	authMW *middleware.AuthMiddleware,
	healthH *handler.HealthHandler,
	appointmentH *appointmentHandler.Handler,
	paymentH *paymentHandler.Handler,
	doctorH *doctorHandler.Handler,
) *Router {
	registerValidations()

	engine := gin.New()
	engine.Use(
		middleware.RequestID(),
		middleware.Logger(),
		middleware.Recovery(),
		middleware.NewRateLimiter(cfg.RateLimit, cfg.RateBurst).RateLimit(),
	)

	engine.GET("/health", healthH.Health)
	engine.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := engine.Group("/api/v1")
	appointmentH.RegisterRoutes(api, authMW)
	paymentH.RegisterRoutes(api, authMW)
	doctorH.RegisterRoutes(api, authMW)

	return &Router{engine: engine}
}

func (r *Router) Engine() *gin.Engine {
	return r.engine
}

func registerValidations() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterValidation("slotdate", func(fl validator.FieldLevel) bool {
			return model.ValidSlotDate(fl.Field().String())
		})
	}
}
