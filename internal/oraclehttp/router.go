package oraclehttp

import (
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/5gon12eder/graphstudy-go/internal/oracle"
)

// RouterConfig configures NewRouter.
type RouterConfig struct {
	Oracle       *oracle.Oracle
	JWTSecretKey string
}

// NewRouter builds the oracle's single-endpoint gin.Engine, matching
// the teacher's own router assembly (middleware first, then a
// healthcheck, then the protected API group).
func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.Default()

	router.Use(cors.New(cors.Config{
		AllowMethods:     []string{"POST", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type"},
		AllowCredentials: false,
		AllowAllOrigins:  true,
	}))

	router.GET("/healthz", func(c *gin.Context) { c.String(http.StatusOK, "ok") })

	predict := NewPredictHandler(cfg.Oracle)
	v1 := router.Group("/v1")
	v1.Use(RequireBearerAuth(cfg.JWTSecretKey))
	v1.POST("/predict", predict.Predict)

	return router
}
