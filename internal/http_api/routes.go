package http_api

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// routes sets up the routes for the HTTP server.
func (s *HTTPServer) routes() {
	s.router.GET("/health", s.health)
	s.router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := s.router.Group("/api/v1")

	v1.GET("/ranks", s.listRanks)
	v1.GET("/ranks/resolve", s.resolveRank)
	v1.GET("/payment-methods", s.listPaymentMethods)
	v1.GET("/donors", s.leaderboard)
	v1.GET("/donations", s.recentDonations)

	v1.POST("/forms", s.createForm)
	v1.GET("/forms/:id", s.getForm)
	v1.PUT("/forms/:id/amount", s.setAmount)
	v1.PUT("/forms/:id/message", s.setMessage)
	v1.PUT("/forms/:id/donor", s.setDonor)
	v1.POST("/forms/:id/payment", s.openPayment)
	v1.DELETE("/forms/:id/payment", s.closePayment)
	v1.POST("/forms/:id/pay", s.pay)

	v1.GET("/alerts/current", s.currentAlert)
	v1.DELETE("/alerts/current", s.dismissAlert)
	v1.GET("/alerts/stream", s.streamAlerts)
}
