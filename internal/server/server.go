package server

import (
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"textproc/internal/handler"
)

type Server struct {
	router *gin.Engine
	log    *logrus.Logger
}

func NewServer(h *handler.Handler, log *logrus.Logger) *Server {
	router := gin.Default()

	s := &Server{
		router: router,
		log:    log,
	}

	// Setup routes
	h.RegisterRoutes(router)

	return s
}

func (s *Server) Run(addr string) {
	s.log.Infof("Server starting on port %s...", addr)
	if err := s.router.Run(addr); err != nil {
		s.log.Fatalf("Server failed to start: %v", err)
	}
}
