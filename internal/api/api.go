// Package api provides internal REST endpoint for donator role management
package api

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/quaver/qbot/internal/modules/donator"
	"github.com/sirupsen/logrus"
)

// Gateway is the role surface exposed over HTTP
type Gateway interface {
	Grant(userID string) error
	Revoke(userID string) error
	Query(userID string) (bool, error)
}

// Options provide configuration options for server
type Options struct {
	Gateway Gateway
	Log     *logrus.Logger
	Secret  string
	Listen  string
	Metrics bool
}

// Server is REST endpoint backed by gateway
type Server struct {
	options Options
	engine  *gin.Engine
	srv     *http.Server
}

// scalar accepts JSON string or number, other values decode as empty
type scalar string

func (v *scalar) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*v = scalar(s)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err == nil {
		*v = scalar(n)
		return nil
	}

	*v = ""

	return nil
}

type donatorRequest struct {
	Key scalar `json:"key" form:"key"`
	ID  scalar `json:"id" form:"id"`
}

// New provides server instance with registered routes
func New(options Options) *Server {
	if options.Log == nil {
		options.Log = logrus.New()
	}

	gin.SetMode(gin.ReleaseMode)

	s := &Server{
		options: options,
		engine:  gin.New(),
	}

	s.srv = &http.Server{
		Addr:              options.Listen,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	s.engine.Use(gin.Recovery(), requestID(), s.logRequests())

	s.engine.POST("/donator/add", s.handleMutate("grant", options.Gateway.Grant))
	s.engine.POST("/donator/remove", s.handleMutate("revoke", options.Gateway.Revoke))
	s.engine.GET("/donator/discord/check/:id", s.handleCheck)
	s.engine.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": http.StatusOK, "message": "OK!"})
	})

	if options.Metrics {
		s.engine.GET("/metrics", gin.WrapH(promhttp.Handler()))
	}

	s.engine.NoRoute(func(c *gin.Context) {
		fail(c, http.StatusNotFound, "Nothing was found here")
	})

	return s
}

// Handler returns http handler of server
func (s *Server) Handler() http.Handler {
	return s.engine
}

// ListenAndServe serves requests on configured address until Shutdown is called
func (s *Server) ListenAndServe() error {
	s.options.Log.WithField("listen", s.srv.Addr).Info("Serving REST endpoint")

	err := s.srv.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}

	return err
}

// Shutdown gracefully stops server
func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}

func fail(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, gin.H{"status": status, "error": message})
}

func (s *Server) authorized(key string) bool {
	if s.options.Secret == "" || key == "" {
		return false
	}

	return subtle.ConstantTimeCompare([]byte(key), []byte(s.options.Secret)) == 1
}

// handleMutate answers OK for absent member or role, the billing caller does not retry on those
func (s *Server) handleMutate(op string, fn func(userID string) error) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req donatorRequest

		bindErr := c.ShouldBind(&req)

		if !s.authorized(string(req.Key)) {
			fail(c, http.StatusUnauthorized, "Unauthorized")
			return
		}

		if bindErr != nil {
			fail(c, http.StatusBadRequest, "Malformed request body")
			return
		}

		if req.ID == "" {
			fail(c, http.StatusBadRequest, "Missing Discord `id`")
			return
		}

		if _, err := strconv.ParseUint(string(req.ID), 10, 64); err != nil {
			fail(c, http.StatusBadRequest, "Invalid Discord `id`")
			return
		}

		err := fn(string(req.ID))

		switch {
		case err == nil:
		case errors.Is(err, donator.ErrMemberNotFound), errors.Is(err, donator.ErrRoleNotConfigured):
			s.log(c).WithError(err).WithField("op", op).WithField("user", req.ID).Warn("Donator role not changed")
		default:
			s.log(c).WithError(err).WithField("op", op).Error("Mutating donator role")
			fail(c, http.StatusInternalServerError, "Internal server error")

			return
		}

		c.JSON(http.StatusOK, gin.H{"status": http.StatusOK, "message": "OK!"})
	}
}

func (s *Server) handleCheck(c *gin.Context) {
	has, err := s.options.Gateway.Query(c.Param("id"))

	switch {
	case err == nil:
		c.JSON(http.StatusOK, gin.H{"status": http.StatusOK, "has_donator": has})
	case errors.Is(err, donator.ErrMemberNotFound):
		fail(c, http.StatusNotFound, "User was not found")
	default:
		s.log(c).WithError(err).Error("Checking membership")
		fail(c, http.StatusInternalServerError, "Internal server error")
	}
}
