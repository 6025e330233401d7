package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/sitewise/backend/internal/application/services"
	"github.com/sitewise/backend/internal/bootstrap"
	"github.com/sitewise/backend/internal/infrastructure/database"
	"github.com/sitewise/backend/internal/interfaces/middleware"
	"github.com/sitewise/backend/internal/interfaces/rest"
	"github.com/sitewise/backend/pkg/componentregistry"
)

func main() {
	port := os.Getenv("PORT")
	if port == "" {
		port = "3001"
	}

	// The component catalog is embedded; a broken catalog is a build defect,
	// so fail before touching the database
	registry := componentregistry.GetRegistry()
	if err := componentregistry.LoadError(); err != nil {
		log.Fatalf("Failed to load component catalog: %v", err)
	}
	log.Printf("🧩 Component catalog loaded (%d types)", len(registry.ListTypes()))

	db, err := database.GetInstance()
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	log.Println("✅ Database connection established")

	if err := bootstrap.InitializeSchema(db); err != nil {
		log.Fatalf("Failed to initialize schema: %v", err)
	}

	svcMgr := services.NewServiceManager(db)
	log.Println("🔧 Service manager initialized")

	if err := bootstrap.InitializeSystemData(svcMgr); err != nil {
		log.Fatalf("Failed to initialize system data: %v", err)
	}

	router := gin.Default()
	router.Use(middleware.Cors())

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status": "ok",
			"server": "golang",
		})
	})

	authHandler := rest.NewAuthHandler(svcMgr)
	registryHandler := rest.NewRegistryHandler(registry)
	siteHandler := rest.NewSiteHandler(svcMgr)
	pageHandler := rest.NewPageHandler(svcMgr)
	collectionHandler := rest.NewCollectionHandler(svcMgr)
	publicHandler := rest.NewPublicHandler(svcMgr)
	adminHandler := rest.NewAdminHandler(db)

	requireAuth := middleware.RequireAuth(svcMgr.Auth)
	requireAdmin := middleware.RequireAdmin()

	api := router.Group("/api")
	{
		auth := api.Group("/auth")
		{
			auth.POST("/login", authHandler.Login)
			auth.POST("/logout", requireAuth, authHandler.Logout)
			auth.GET("/me", requireAuth, authHandler.GetMe)
			auth.POST("/register", requireAuth, requireAdmin, authHandler.Register)
		}

		registryGroup := api.Group("/registry")
		registryGroup.Use(requireAuth)
		{
			registryGroup.GET("/components", registryHandler.ListComponents)
			registryGroup.GET("/components/:slug", registryHandler.GetComponent)
			registryGroup.GET("/renderer", registryHandler.GetRendererConfig)
		}

		sites := api.Group("/sites")
		sites.Use(requireAuth)
		{
			sites.GET("", siteHandler.List)
			sites.POST("", requireAdmin, siteHandler.Create)
			sites.GET("/:id", siteHandler.Get)
			sites.GET("/:id/pages", pageHandler.List)
			sites.GET("/:id/collections", collectionHandler.List)
		}

		pages := api.Group("/pages")
		pages.Use(requireAuth)
		{
			pages.POST("", pageHandler.Create)
			pages.GET("/:id", pageHandler.Get)
			pages.PATCH("/:id", pageHandler.UpdateMeta)
			pages.DELETE("/:id", pageHandler.Delete)
			pages.GET("/:id/draft", pageHandler.GetDraft)
			pages.PUT("/:id/draft", pageHandler.SaveDraft)
			pages.POST("/:id/publish", pageHandler.Publish)
			pages.POST("/:id/unpublish", pageHandler.Unpublish)
			pages.GET("/:id/revisions", pageHandler.ListRevisions)
			pages.POST("/:id/rollback", pageHandler.Rollback)
			pages.GET("/:id/compatibility", pageHandler.CheckCompatibility)
			pages.POST("/:id/schedule", pageHandler.Schedule)
		}

		collections := api.Group("/collections")
		collections.Use(requireAuth)
		{
			collections.POST("", requireAdmin, collectionHandler.Create)
			collections.GET("/:id", collectionHandler.Get)
			collections.PUT("/:id/schema", requireAdmin, collectionHandler.UpdateSchema)
			collections.DELETE("/:id", requireAdmin, collectionHandler.Delete)
			collections.GET("/:id/rules", collectionHandler.ListRules)
			collections.POST("/:id/rules", requireAdmin, collectionHandler.CreateRule)
			collections.GET("/:id/items", collectionHandler.ListItems)
			collections.POST("/:id/items", collectionHandler.CreateItem)
		}

		admin := api.Group("/admin")
		admin.Use(requireAuth, requireAdmin)
		{
			admin.GET("/tables", adminHandler.GetTableStats)
			admin.GET("/tables/:name", adminHandler.InspectTable)
		}

		rules := api.Group("/rules")
		rules.Use(requireAuth, requireAdmin)
		{
			rules.PUT("/:id", collectionHandler.UpdateRule)
			rules.DELETE("/:id", collectionHandler.DeleteRule)
		}

		items := api.Group("/items")
		items.Use(requireAuth)
		{
			items.GET("/:id", collectionHandler.GetItem)
			items.DELETE("/:id", collectionHandler.DeleteItem)
			items.GET("/:id/draft", collectionHandler.GetItemDraft)
			items.PUT("/:id/draft", collectionHandler.SaveItemDraft)
			items.POST("/:id/publish", collectionHandler.PublishItem)
			items.POST("/:id/unpublish", collectionHandler.UnpublishItem)
			items.GET("/:id/revisions", collectionHandler.ListItemRevisions)
			items.POST("/:id/rollback", collectionHandler.RollbackItem)
			items.POST("/:id/schedule", collectionHandler.ScheduleItem)
		}

		schedules := api.Group("/schedules")
		schedules.Use(requireAuth)
		{
			schedules.GET("", pageHandler.ListSchedules)
			schedules.DELETE("/:id", pageHandler.DeleteSchedule)
		}
	}

	// Public delivery routes, no auth
	public := router.Group("/public")
	{
		public.GET("/sites/:siteSlug/pages/:pageSlug", publicHandler.GetPage)
		public.GET("/sites/:siteSlug/collections/:collectionSlug/items", publicHandler.ListItems)
	}

	go svcMgr.Scheduler.Start()
	log.Println("⏰ Publish scheduler started (60s polling)")

	log.Println("\n═══════════════════════════════════════════════════════════════════════════")
	log.Println("🚀 Sitewise Backend Started Successfully")
	log.Println("═══════════════════════════════════════════════════════════════════════════")
	log.Printf("\n📍 Server:        http://localhost:%s", port)
	log.Printf("🔐 Auth API:      http://localhost:%s/api/auth", port)
	log.Printf("🧩 Registry API:  http://localhost:%s/api/registry", port)
	log.Printf("📄 Pages API:     http://localhost:%s/api/pages", port)
	log.Printf("🌐 Public API:    http://localhost:%s/public", port)
	log.Printf("💚 Health check:  http://localhost:%s/health\n", port)

	srv := &http.Server{
		Addr:    "0.0.0.0:" + port,
		Handler: router,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	svcMgr.Scheduler.Stop()
	log.Println("🛑 Scheduler stopped")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown: ", err)
	}

	log.Println("Server exiting")
}
