package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/sync/errgroup"
)

// GET /api/admin/stats
//
// Dashboard numbers are recomputed on every call; the four queries run in
// parallel.
func GetDashboardStats(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /api/admin/stats"

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		var (
			userCount    int64
			productCount int64
			orderCount   int64
			revenue      float64
		)

		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			var err error
			userCount, err = db.Collection("users").CountDocuments(gctx, bson.M{})
			return err
		})
		g.Go(func() error {
			var err error
			productCount, err = db.Collection("products").CountDocuments(gctx, bson.M{})
			return err
		})
		g.Go(func() error {
			var err error
			orderCount, revenue, err = orderRevenue(gctx, db)
			return err
		})

		if err := g.Wait(); err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "Server Error")
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"totalUsers":    userCount,
			"totalProducts": productCount,
			"totalOrders":   orderCount,
			"totalRevenue":  revenue,
		})
	}
}
