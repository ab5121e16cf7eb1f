package cmd

import (
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/AzielCF/az-laundry/ui/rest"
	"github.com/AzielCF/az-laundry/ui/rest/middleware"
	"github.com/AzielCF/az-laundry/ui/websocket"
	"github.com/AzielCF/az-laundry/usecase"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the request layer to local admin UIs over http",
	Long:  `Exposes /proxy/<endpoint>, the diagnostics API and the queue websocket.`,
	Run:   serveServer,
}

func init() {
	serveCmd.Flags().StringP("port", "p", "", "change port number with --port <number> | example: --port=3100")
	serveCmd.Flags().String("cors-origins", "*", `allowed CORS origins | example: --cors-origins="http://localhost:5173"`)
	rootCmd.AddCommand(serveCmd)
}

func serveServer(cmd *cobra.Command, _ []string) {
	port := cfg.App.Port
	if p, _ := cmd.Flags().GetString("port"); p != "" {
		port = p
	}
	origins, _ := cmd.Flags().GetString("cors-origins")

	app := fiber.New(fiber.Config{
		AppName:               "AzLaundry Client " + cfg.App.Version,
		DisableStartupMessage: !cfg.App.Debug,
		ServerHeader:          "Hidden",
	})

	app.Use(requestid.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: origins,
		AllowHeaders: strings.Join([]string{
			"Origin", "Content-Type", "Accept", "Accept-Language", "X-Request-ID", "X-Station-Id",
			rest.HeaderFresh, rest.HeaderCurrentPath, rest.HeaderTimeoutMs,
		}, ", "),
	}))
	app.Use(middleware.Recovery())

	if cfg.App.Debug {
		app.Use(logger.New())
	}

	apiGroup := app.Group("/api")
	rest.InitRestCache(apiGroup, cacheStore)
	rest.InitRestQueue(apiGroup, offlineQueue, replayService)
	rest.InitRestConnectivity(apiGroup, online)
	rest.InitRestSession(apiGroup, sessions)
	rest.InitRestHealth(apiGroup, usecase.NewHealthService(cacheStore, offlineQueue, online, sessions))
	rest.InitRestProxy(app, requestService, nav)

	websocket.RegisterRoutes(apiGroup, offlineQueue)
	go websocket.RunHub(appCtx)

	apiGroup.All("/*", func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "API Endpoint not found",
			"path":  c.Path(),
		})
	})

	if probe != nil {
		probe.Start(appCtx)
	}
	if cfg.Queue.AutoReplay {
		replayService.StartAutoReplay(appCtx, cfg.Queue.ReplayInterval)
		replayService.Trigger()
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		logrus.Info("[REST] Reception of termination signal, shutting down gracefully...")
		if err := app.Shutdown(); err != nil {
			logrus.Errorf("[REST] Error during Fiber shutdown: %v", err)
		}
	}()

	logrus.Infof("[REST] listening on :%s, backend %s", port, cfg.API.BaseURL)
	if err := app.Listen(":" + port); err != nil {
		logrus.Fatalln("Failed to start: ", err.Error())
	}
}
