package server

import (
	"net/http"
	"strings"
	"time"

	"github.com/aggieseek/seatwatch/log"
	"github.com/gin-gonic/gin"
	"github.com/samber/lo"
)

const startKey = "seatwatch.start"

// timer records when handling began so bodies can report QUERY_TIME
func timer() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(startKey, time.Now())
		c.Next()
	}
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.Logger.InfoContext(c.Request.Context(), "request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"route", c.FullPath(),
			"status", c.Writer.Status(),
			"duration", time.Since(start),
		)
	}
}

// cors allows GET requests from the configured origins. Origins are
// compared without a trailing slash.
func cors(origins []string) gin.HandlerFunc {
	allowed := lo.SliceToMap(origins, func(o string) (string, struct{}) {
		return strings.TrimSuffix(o, "/"), struct{}{}
	})
	_, wildcard := allowed["*"]

	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		if origin != "" {
			if _, ok := allowed[strings.TrimSuffix(origin, "/")]; ok || wildcard {
				h := c.Writer.Header()
				h.Set("Access-Control-Allow-Origin", origin)
				h.Add("Vary", "Origin")
				h.Set("Access-Control-Allow-Methods", "GET, OPTIONS")
				h.Set("Access-Control-Allow-Headers", "Content-Type")
			}
		}
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}
