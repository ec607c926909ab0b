package main

import (
	"log"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"backend/internal/config"
	"backend/internal/database"
	"backend/internal/handlers"
	"backend/internal/middleware"
)

func main() {
	config.Load()

	client, err := database.Connect(config.AppEnv.MongoURI)
	if err != nil {
		log.Fatal(err)
	}

	db := client.Database(config.AppEnv.DBName)

	log.Println("MongoDB connected to:", db.Name())

	if err := database.EnsureProductIndexes(db); err != nil {
		log.Printf("product index warning: %v", err)
	}
	if err := database.EnsureUserIndexes(db); err != nil {
		log.Printf("user index warning: %v", err)
	}
	if err := database.EnsureOrderIndexes(db); err != nil {
		log.Printf("order index warning: %v", err)
	}
	if err := database.EnsureCartIndexes(db); err != nil {
		log.Printf("cart index warning: %v", err)
	}
	if err := database.EnsureSubscriberIndexes(db); err != nil {
		log.Printf("subscriber index warning: %v", err)
	}

	secret := config.AppEnv.JWTSecret
	accessTTL := config.AppEnv.AccessTokenTTL

	r := gin.Default()

	r.Use(cors.New(cors.Config{
		AllowOrigins:     config.AppEnv.CORSOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	r.GET("/", func(c *gin.Context) {
		c.String(200, "Welcome to Rabbit API")
	})

	users := r.Group("/api/users")
	{
		users.POST("/register", handlers.Register(db, secret, accessTTL))
		users.POST("/login", handlers.Login(db, secret, accessTTL))
		users.GET("/profile", middleware.RequireAuth(db, secret), handlers.GetProfile())
	}

	products := r.Group("/api/products")
	{
		products.GET("", handlers.GetProducts(db))
		products.GET("/new-arrivals", handlers.GetNewArrivals(db))
		products.GET("/best-sellers", handlers.GetBestSellers(db))
		products.GET("/womens-tops", handlers.GetWomensTops(db))
		products.GET("/similar/:id", handlers.GetSimilarProducts(db))
		products.GET("/:id", handlers.GetProductByID(db))

		products.POST("", middleware.RequireAuth(db, secret), middleware.AdminOnly(), handlers.CreateProduct(db))
		products.PUT("/:id", middleware.RequireAuth(db, secret), middleware.AdminOnly(), handlers.UpdateProduct(db))
		products.DELETE("/:id", middleware.RequireAuth(db, secret), middleware.AdminOnly(), handlers.DeleteProduct(db))
	}

	cart := r.Group("/api/cart")
	cart.Use(middleware.OptionalAuth(db, secret))
	{
		cart.GET("", handlers.GetCart(db))
		cart.POST("/add", handlers.AddToCart(db))
		cart.PUT("/update", handlers.UpdateCartItem(db))
		cart.DELETE("/remove", handlers.RemoveCartItem(db))
		cart.POST("/merge", middleware.RequireAuth(db, secret), handlers.MergeCarts(db))
	}

	orders := r.Group("/api/orders")
	{
		orders.POST("", middleware.OptionalAuth(db, secret), handlers.CreateOrder(db))
		orders.GET("/myorders", middleware.RequireAuth(db, secret), handlers.GetMyOrders(db))
		orders.GET("/stats", middleware.RequireAuth(db, secret), middleware.AdminOnly(), handlers.GetOrderStats(db))
		orders.GET("/admin/all", middleware.RequireAuth(db, secret), middleware.AdminOnly(), handlers.GetAllOrders(db))
		orders.PUT("/:id/status", middleware.RequireAuth(db, secret), middleware.AdminOnly(), handlers.UpdateOrderStatus(db))
		orders.DELETE("/:id", middleware.RequireAuth(db, secret), middleware.AdminOnly(), handlers.DeleteOrder(db))
		orders.GET("/:id", middleware.OptionalAuth(db, secret), handlers.GetOrderByID(db))
	}

	r.POST("/api/subscribe", handlers.Subscribe(db))

	admin := r.Group("/api/admin")
	admin.Use(middleware.RequireAuth(db, secret), middleware.AdminOnly())
	{
		admin.GET("/stats", handlers.GetDashboardStats(db))

		admin.GET("/users", handlers.GetUsers(db))
		admin.POST("/users", handlers.AdminCreateUser(db))
		admin.PUT("/users/:id", handlers.AdminUpdateUser(db))
		admin.DELETE("/users/:id", handlers.AdminDeleteUser(db))

		admin.GET("/products", handlers.GetAllProducts(db))
		admin.POST("/products", handlers.CreateProduct(db))
		admin.PUT("/products/:id", handlers.UpdateProduct(db))
		admin.DELETE("/products/:id", handlers.DeleteProduct(db))

		admin.GET("/orders", handlers.GetAllOrders(db))
		admin.GET("/orders/stats", handlers.GetOrderStats(db))
		admin.GET("/orders/:id", handlers.GetOrderByID(db))
		admin.PUT("/orders/:id", handlers.UpdateOrderStatus(db))
		admin.DELETE("/orders/:id", handlers.DeleteOrder(db))
	}

	r.Run(":" + config.AppEnv.Port)
}
