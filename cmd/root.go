package cmd

import (
	"context"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/AzielCF/az-laundry/core/config"
	domainCache "github.com/AzielCF/az-laundry/domains/cache"
	domainQueue "github.com/AzielCF/az-laundry/domains/queue"
	domainStorage "github.com/AzielCF/az-laundry/domains/storage"
	"github.com/AzielCF/az-laundry/infrastructure/connectivity"
	"github.com/AzielCF/az-laundry/infrastructure/navigator"
	"github.com/AzielCF/az-laundry/infrastructure/session"
	"github.com/AzielCF/az-laundry/infrastructure/storage"
	"github.com/AzielCF/az-laundry/infrastructure/transport"
	"github.com/AzielCF/az-laundry/pkg/utils"
	"github.com/AzielCF/az-laundry/ui/websocket"
	"github.com/AzielCF/az-laundry/usecase"
	"github.com/AzielCF/az-laundry/validations"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// connectivitySignal is the connectivity source the app was started with.
type connectivitySignal interface {
	IsOnline() bool
	OnTransition(fn func(online bool))
}

var (
	cfg *config.Config

	// Storage
	medium domainStorage.IMedium

	// Usecase
	cacheStore     domainCache.ICacheStore
	offlineQueue   domainQueue.IOfflineQueue
	requestService *usecase.RequestService
	replayService  *usecase.ReplayService
	resources      usecase.Resources

	// Infrastructure
	sessions *session.Store
	online   connectivitySignal
	probe    *connectivity.Probe
	nav      *navigator.Navigator

	appCtx    context.Context
	appCancel context.CancelFunc
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "azlaundry",
	Short: "Offline-first client core for the laundry POS admin",
	Long: `Talks to the laundry backend through a cache-first request layer.
Reads are served from the local cache when the device is offline and writes
are queued until the connection is restored.`,
	SilenceUsage: true,
}

func init() {
	time.Local = time.UTC

	rootCmd.CompletionOptions.DisableDefaultCmd = true

	initFlags()

	cobra.OnInitialize(initApp)
}

func initFlags() {
	flags := rootCmd.PersistentFlags()

	flags.BoolP("debug", "d", false, "displaying debug log with --debug <true/false> | example: --debug=true")
	flags.String("api-url", "", `backend base URL --api-url <string> | example: --api-url="http://192.168.1.10:5000/api"`)
	flags.String("storage", "", `storage driver --storage <memory|sqlite|postgres|gorm|valkey> | example: --storage=sqlite`)
	flags.String("storage-path", "", `SQLite file used by the sqlite and gorm drivers | example: --storage-path="storages/laundry.db"`)
	flags.String("connectivity", "", `connectivity source --connectivity <static|probe> | example: --connectivity=probe`)
	flags.Bool("offline", false, "start with the static connectivity signal reporting offline | example: --offline=true")
	flags.Int("timeout-ms", 0, "default request timeout in milliseconds | example: --timeout-ms=30000")

	_ = viper.BindPFlag("app_debug", flags.Lookup("debug"))
	_ = viper.BindPFlag("api_base_url", flags.Lookup("api-url"))
	_ = viper.BindPFlag("storage_driver", flags.Lookup("storage"))
	_ = viper.BindPFlag("storage_path", flags.Lookup("storage-path"))
	_ = viper.BindPFlag("connectivity_mode", flags.Lookup("connectivity"))
	_ = viper.BindPFlag("connectivity_offline", flags.Lookup("offline"))
	_ = viper.BindPFlag("api_timeout_ms", flags.Lookup("timeout-ms"))
}

// applyFlags lets command-line flags win over the environment.
func applyFlags(c *config.Config) {
	if viper.GetBool("app_debug") {
		c.App.Debug = true
	}
	if v := viper.GetString("api_base_url"); v != "" {
		c.API.BaseURL = v
	}
	if v := viper.GetString("storage_driver"); v != "" {
		c.Storage.Driver = v
	}
	if v := viper.GetString("storage_path"); v != "" {
		c.Storage.Path = v
	}
	if v := viper.GetString("connectivity_mode"); v != "" {
		c.Connectivity.Mode = v
	}
	if viper.GetBool("connectivity_offline") {
		c.Connectivity.Mode = "static"
		c.Connectivity.Online = false
	}
	if ms := viper.GetInt("api_timeout_ms"); ms > 0 {
		c.API.Timeout = time.Duration(ms) * time.Millisecond
	}
}

func initApp() {
	var err error
	cfg, err = config.LoadConfig()
	if err != nil {
		logrus.Fatalf("[CONFIG] failed to load configuration: %v", err)
	}
	applyFlags(cfg)

	if cfg.App.Debug {
		logrus.SetLevel(logrus.DebugLevel)
	}
	if err := validations.ValidateConfig(cfg); err != nil {
		logrus.Fatalf("[CONFIG] invalid configuration: %v", err)
	}

	appCtx, appCancel = context.WithCancel(context.Background())

	medium, err = storage.New(appCtx, cfg)
	if err != nil {
		logrus.Fatalf("[STORAGE] failed to open %s medium: %v", cfg.Storage.Driver, err)
	}
	if vm, ok := medium.(*storage.ValkeyMedium); ok {
		websocket.SetValkeyClient(vm.Client(), serverID())
	}

	cacheStore = usecase.NewCacheStore(medium, usecase.WithKeyPrefix(cfg.Cache.KeyPrefix))
	offlineQueue = usecase.NewOfflineQueue(medium, usecase.WithQueueKeys(cfg.Queue.Key, cfg.Queue.FailedKey))
	offlineQueue.OnChange(websocket.QueueChanged)

	sessions = session.NewStore(medium, cfg.Session.Key)

	nav = navigator.New("/")
	nav.OnRedirect(websocket.SessionExpired)

	switch cfg.Connectivity.Mode {
	case "static":
		online = connectivity.NewStatic(cfg.Connectivity.Online)
	default:
		probe = connectivity.NewProbe(connectivity.ProbeConfig{
			BaseURL:  cfg.API.BaseURL,
			Path:     cfg.Connectivity.ProbePath,
			Interval: cfg.Connectivity.ProbeInterval,
			Timeout:  cfg.Connectivity.ProbeTimeout,
		})
		probe.Check(appCtx)
		online = probe
	}

	requestService = usecase.NewRequestService(usecase.RequestDeps{
		Cache:        cacheStore,
		Queue:        offlineQueue,
		Doer:         transport.NewHTTPDoer(&http.Client{}),
		Tokens:       sessions,
		Connectivity: online,
		Navigator:    nav,
	}, usecase.RequestConfig{
		BaseURL:           cfg.API.BaseURL,
		Timeout:           cfg.API.Timeout,
		AuthPrefix:        cfg.API.AuthPrefix,
		LoginPath:         cfg.App.LoginPath,
		RedirectDelay:     cfg.App.RedirectDelay,
		LongTTL:           cfg.Cache.LongTTL,
		ShortTTL:          cfg.Cache.ShortTTL,
		CriticalEndpoints: cfg.Cache.CriticalEndpoints,
		DedupeRefresh:     cfg.Cache.DedupeRefresh,
		RefreshTimeout:    cfg.Cache.RefreshTimeout,
	})

	replayService = usecase.NewReplayService(offlineQueue, requestService, online)
	online.OnTransition(func(isOnline bool) {
		if isOnline {
			replayService.Trigger()
		}
	})

	resources = usecase.NewResources(requestService, cfg.API.BackupTimeout)
}

func serverID() string {
	return utils.GetPersistentServerID(os.Getenv("APP_SERVER_ID"), filepath.Dir(cfg.Storage.Path))
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	err := rootCmd.Execute()
	StopApp()
	if err != nil {
		os.Exit(1)
	}
}

// StopApp waits for background work and closes the storage medium.
func StopApp() {
	if appCancel == nil {
		return
	}
	logrus.Debug("[APP] Stopping application...")
	appCancel()

	if replayService != nil {
		replayService.Stop()
	}
	if probe != nil {
		probe.Wait()
	}
	if requestService != nil {
		requestService.Close()
	}
	if medium != nil {
		if err := medium.Close(); err != nil {
			logrus.Errorf("[STORAGE] failed to close medium: %v", err)
		}
	}
	appCancel = nil
	logrus.Debug("[APP] Application stopped cleanly.")
}
