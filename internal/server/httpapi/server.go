// Package httpapi exposes the consistency core as a JSON request/response
// surface. Every handler is a short-lived unit of work: resolve the caller,
// call one service operation, map the outcome. No state is shared between
// requests beyond the injected services.
package httpapi

import (
	"context"
	"errors"
	"net/http"

	"github.com/dmitrijs2005/goodnight/internal/logging"
	"github.com/dmitrijs2005/goodnight/internal/server/config"
	"github.com/dmitrijs2005/goodnight/internal/server/services"
	"github.com/gin-gonic/gin"
)

type Server struct {
	addr         string
	engine       *gin.Engine
	logger       logging.Logger
	users        *services.UserService
	checkins     *services.CheckinService
	messages     *services.MessageService
	reactions    *services.ReactionService
	friendships  *services.FriendshipService
	aggregator   *services.Aggregator
	jwtSecret    []byte
	triggerToken string
}

func NewServer(
	cfg *config.Config,
	logger logging.Logger,
	us *services.UserService,
	cs *services.CheckinService,
	ms *services.MessageService,
	rs *services.ReactionService,
	fs *services.FriendshipService,
	agg *services.Aggregator,
) *Server {
	s := &Server{
		addr:         cfg.EndpointAddrHTTP,
		logger:       logger.With("module", "http_server"),
		users:        us,
		checkins:     cs,
		messages:     ms,
		reactions:    rs,
		friendships:  fs,
		aggregator:   agg,
		jwtSecret:    []byte(cfg.SecretKey),
		triggerToken: cfg.TriggerToken,
	}

	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery(), s.requestIDMiddleware())

	api := engine.Group("/api", s.authMiddleware())
	{
		api.GET("/profile", s.getProfile)
		api.PATCH("/profile", s.patchProfile)

		api.POST("/checkins", s.postCheckin)

		api.POST("/messages", s.postMessage)
		api.GET("/messages/draw", s.drawMessage)
		api.POST("/messages/:id/reactions", s.postReaction)

		api.GET("/friends", s.listFriends)
		api.POST("/friends/requests", s.sendFriendRequest)
		api.POST("/friends/requests/:id/respond", s.respondFriendRequest)
		api.POST("/friends/requests/:id/confirm", s.confirmFriendRequest)
		api.DELETE("/friends/:code", s.removeFriend)
	}

	engine.POST("/internal/aggregate", s.triggerAggregate)

	s.engine = engine
	return s
}

// Engine exposes the router for tests.
func (s *Server) Engine() *gin.Engine {
	return s.engine
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{Addr: s.addr, Handler: s.engine}

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")
		_ = srv.Shutdown(context.Background())
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", s.addr)

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// triggerAggregate is the zero-argument trigger the scheduler collaborator
// invokes on a fixed interval.
func (s *Server) triggerAggregate(c *gin.Context) {
	if c.GetHeader("X-Trigger-Token") != s.triggerToken {
		writeError(c, http.StatusUnauthorized, codeUnauthorized, "invalid trigger token", "")
		return
	}

	stats, err := s.aggregator.Run(c.Request.Context())
	if err != nil {
		s.logger.Error(c.Request.Context(), "aggregation run failed", "error", err.Error())
		writeError(c, http.StatusInternalServerError, codeInternal, "aggregation failed", "")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"events_read":    stats.EventsRead,
		"groups_applied": stats.GroupsApplied,
		"groups_failed":  stats.GroupsFailed,
		"events_deleted": stats.EventsDeleted,
	})
}
