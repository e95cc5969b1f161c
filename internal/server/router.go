// Package server implements daybookd, the reference remote store: a small
// JSON API holding each user's snapshot with last-writer-wins semantics.
package server

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/julianstephens/daybook/internal/models"
)

type snapshotRequest struct {
	models.Snapshot
	LastSyncedAt *time.Time `json:"last_synced_at,omitempty"`
}

type snapshotResponse struct {
	models.Snapshot
	SyncedAt time.Time `json:"synced_at"`
}

// NewRouter builds the daybookd HTTP API. If token is non-empty, every
// /api route requires it as a bearer credential.
func NewRouter(repo *Repo, token string) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(cors.Default())

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := r.Group("/api/v1")
	if token != "" {
		api.Use(bearerAuth(token))
	}

	api.GET("/users/:userID/snapshot", func(c *gin.Context) {
		userID := c.Param("userID")

		snap, syncedAt, err := repo.Snapshot(userID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		c.JSON(http.StatusOK, snapshotResponse{Snapshot: snap, SyncedAt: syncedAt})
	})

	api.PUT("/users/:userID/snapshot", func(c *gin.Context) {
		userID := c.Param("userID")

		var req snapshotRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid snapshot payload: " + err.Error()})
			return
		}

		// req.LastSyncedAt is advisory only: stale pushes are not rejected,
		// each entity record simply takes the last write.
		syncedAt, err := repo.Apply(userID, req.Snapshot)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		c.JSON(http.StatusOK, gin.H{"synced_at": syncedAt})
	})

	return r
}

func bearerAuth(token string) gin.HandlerFunc {
	const prefix = "Bearer "
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if len(header) <= len(prefix) || header[:len(prefix)] != prefix || header[len(prefix):] != token {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		c.Next()
	}
}
