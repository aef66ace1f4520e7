/*
Copyright © 2025 lehoangvu
*/
package cmd

import (
	"context"
	"log"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/lehoangvu/docchat-be/config"
	"github.com/lehoangvu/docchat-be/database"
	"github.com/lehoangvu/docchat-be/handler"
	"github.com/lehoangvu/docchat-be/logger"
	"github.com/lehoangvu/docchat-be/middleware"
	"github.com/lehoangvu/docchat-be/repository"
	"github.com/lehoangvu/docchat-be/service"
)

// startServerCmd represents the startServer command
var startServerCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the document chat server",
	Long:  `Starts the HTTP server that handles uploads, chat and compiled document exports`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := config.LoadConfig(cfgFile)
		if err != nil {
			log.Fatalf("Failed to load config: %v", err)
		}
		zlog, err := logger.New(cfg.LogMode)
		if err != nil {
			log.Fatalf("Failed to init logger: %v", err)
		}
		defer zlog.Sync()

		ctx := context.Background()

		mongoClient, err := database.NewMongoClient(ctx, cfg.MongoURI)
		if err != nil {
			zlog.Fatalw("Failed to connect to MongoDB", "error", err)
		}
		defer mongoClient.Disconnect(ctx)
		mongoDb := mongoClient.Database(cfg.MongoDatabase)

		// init repos
		conversationRepo := repository.NewConversationRepo(mongoDb)
		messageRepo := repository.NewMessageRepo(mongoDb)
		compiledDocRepo := repository.NewCompiledDocumentRepo(mongoDb)
		userRepo := repository.NewUserRepo(mongoDb)

		// init services
		var blobs service.BlobStore
		switch cfg.StorageDriver {
		case "gcs":
			gcsStore, err := service.NewGCSBlobStore(ctx, cfg.GCSBucket, zlog)
			if err != nil {
				zlog.Fatalw("Failed to init GCS blob store", "error", err)
			}
			defer gcsStore.Close()
			blobs = gcsStore
		default:
			localStore, err := service.NewLocalBlobStore(cfg.UploadDir, zlog)
			if err != nil {
				zlog.Fatalw("Failed to init local blob store", "error", err)
			}
			blobs = localStore
		}

		var ocr service.OCREngine
		switch cfg.OCRProvider {
		case "vision":
			visionEngine, err := service.NewVisionEngine(ctx, zlog)
			if err != nil {
				zlog.Fatalw("Failed to init Vision OCR", "error", err)
			}
			defer visionEngine.Close()
			ocr = visionEngine
		default:
			ocr = service.NewTesseractEngine(zlog)
		}
		extractor := service.NewExtractionService(ocr, zlog)

		var aiService service.AIService
		switch cfg.AIProvider {
		case "gemini":
			geminiService, err := service.NewGeminiService(ctx, cfg.GeminiAPIKey, cfg.Model, zlog)
			if err != nil {
				zlog.Fatalw("Failed to init Gemini", "error", err)
			}
			defer geminiService.Close()
			aiService = geminiService
		default:
			aiService = service.NewOpenAIService(cfg.AIEndpoint, cfg.OpenAIAPIKey, cfg.Model, zlog)
		}

		pdfService := service.NewPDFService(zlog)
		compileService := service.NewCompileService(messageRepo, compiledDocRepo, zlog)
		chatService := service.NewChatService(conversationRepo, messageRepo, compiledDocRepo,
			aiService, blobs, compileService, pdfService, zlog)
		userService := service.NewUserService(userRepo)

		// Initialize handlers
		corsHandler := handler.NewCorsHandler()
		uploadHandler := handler.NewUploadHandler(blobs, extractor)
		chatHandler := handler.NewChatHandler(chatService)
		documentHandler := handler.NewDocumentHandler(chatService)
		loginHandler := handler.NewLoginHandler(userService)
		userHandler := handler.NewUserHandler(userService)

		// Setup Gin router
		router := gin.Default()
		router.Use(corsHandler.CorsMiddleware)

		apiV1 := router.Group("/api/v1")
		apiV1.POST("/login", loginHandler.HandleLogin)

		// Protected user routes
		userRoutes := apiV1.Group("/")
		userRoutes.Use(middleware.AuthMiddleware())
		{
			userRoutes.POST("/upload", uploadHandler.HandleUpload)
			userRoutes.POST("/chat/message", chatHandler.HandleChatMessage)
			userRoutes.GET("/chat/list", chatHandler.HandleListConversations)
			userRoutes.GET("/chat/:chatId/messages", chatHandler.HandleGetMessages)
			userRoutes.GET("/chat/:chatId/compiled-document", chatHandler.HandleGetCompiledDocument)
			userRoutes.GET("/chat/:chatId/download-compiled", chatHandler.HandleDownloadCompiled)
			userRoutes.GET("/documents", documentHandler.HandleListDocuments)
			userRoutes.POST("/users/create", userHandler.HandleCreateUser)
		}

		zlog.Infow("Starting server", "port", cfg.Port)
		if err := router.Run(":" + cfg.Port); err != nil {
			zlog.Fatalw("Server error", "error", err)
		}
	},
}

func init() {
	rootCmd.AddCommand(startServerCmd)
}
