package server

import (
	"database/sql"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/rdouglass/larder/internal/backup"
	"github.com/rdouglass/larder/internal/config"
	"github.com/rdouglass/larder/internal/handler"
	"github.com/rdouglass/larder/internal/middleware"
	"github.com/rdouglass/larder/internal/push"
	"github.com/rdouglass/larder/internal/store"
	ws "github.com/rdouglass/larder/internal/websocket"
)

type Server struct {
	db            *sql.DB
	hub           *ws.Hub
	recipeH       *handler.RecipeHandler
	collectionH   *handler.CollectionHandler
	plannerH      *handler.PlannerHandler
	groceryH      *handler.GroceryHandler
	pantryH       *handler.PantryHandler
	settingsH     *handler.SettingsHandler
	backupH       *handler.BackupHandler
	pushH         *handler.PushHandler
	rateLimiter   *middleware.RateLimiter
	backupManager *backup.Manager
	pushScheduler *push.Scheduler
	logger        *slog.Logger
}

func New(db *sql.DB, cfg config.Config, logger *slog.Logger) *Server {
	hub := ws.NewHub(logger.With("component", "websocket"))

	recipeStore := store.NewRecipeStore(db)
	collectionStore := store.NewCollectionStore(db)
	plannerStore := store.NewPlannerStore(db)
	groceryStore := store.NewGroceryStore(db)
	pantryStore := store.NewPantryStore(db)
	settingsStore := store.NewSettingsStore(db)
	backupStore := store.NewBackupStore(db)
	pushStore := store.NewPushStore(db)

	// Backup manager. S3 settings saved through the UI take precedence over
	// the environment so a reconfigured bucket survives restarts.
	backupCfg := backup.Config{
		S3: backup.S3Config{
			Endpoint:  cfg.S3Endpoint,
			Bucket:    cfg.S3Bucket,
			Region:    cfg.S3Region,
			AccessKey: cfg.S3AccessKey,
			SecretKey: cfg.S3SecretKey,
		},
		DBPath:     cfg.DBPath,
		Passphrase: cfg.BackupPassphrase,
	}
	if saved, err := settingsStore.GetS3Settings(); err == nil && saved["s3_bucket"] != "" {
		backupCfg.S3 = backup.S3Config{
			Endpoint:  saved["s3_endpoint"],
			Bucket:    saved["s3_bucket"],
			Region:    saved["s3_region"],
			AccessKey: saved["s3_access_key"],
			SecretKey: saved["s3_secret_key"],
		}
	}
	backupMgr := backup.NewManager(backupCfg, db, backupStore, settingsStore, func(s backup.Status) {
		hub.Broadcast(ws.Message{
			Type:   "backup_status",
			Entity: "backup",
			Action: string(s.State),
			Extra: map[string]any{
				"in_progress": s.InProgress,
				"error":       s.Error,
			},
		})
	}, logger.With("component", "backup"))

	// Push notifications only run when VAPID keys are configured.
	var pushSvc *push.Service
	var pushSched *push.Scheduler
	var pushH *handler.PushHandler
	if cfg.VAPIDPublicKey != "" && cfg.VAPIDPrivateKey != "" {
		pushSvc = push.NewService(cfg.VAPIDPublicKey, cfg.VAPIDPrivateKey)
		pushSched = push.NewScheduler(pushSvc, pushStore, plannerStore, recipeStore, settingsStore, logger.With("component", "push"))
		pushH = handler.NewPushHandler(pushStore, pushSvc, logger.With("component", "push_handler"))
	}

	return &Server{
		db:            db,
		hub:           hub,
		recipeH:       handler.NewRecipeHandler(recipeStore, hub, logger.With("component", "recipe")),
		collectionH:   handler.NewCollectionHandler(collectionStore, recipeStore, hub, logger.With("component", "collection")),
		plannerH:      handler.NewPlannerHandler(plannerStore, recipeStore, hub, logger.With("component", "planner")),
		groceryH:      handler.NewGroceryHandler(groceryStore, plannerStore, recipeStore, hub, pushSched, logger.With("component", "grocery")),
		pantryH:       handler.NewPantryHandler(pantryStore, hub, logger.With("component", "pantry")),
		settingsH:     handler.NewSettingsHandler(settingsStore, backupMgr, hub),
		backupH:       handler.NewBackupHandler(backupStore, backupMgr, logger.With("component", "backup_handler")),
		pushH:         pushH,
		rateLimiter:   middleware.NewRateLimiter(),
		backupManager: backupMgr,
		pushScheduler: pushSched,
		logger:        logger,
	}
}

// RateLimiter returns the rate limiter for cleanup tasks.
func (s *Server) RateLimiter() *middleware.RateLimiter {
	return s.rateLimiter
}

// BackupManager returns the backup manager.
func (s *Server) BackupManager() *backup.Manager {
	return s.backupManager
}

// PushScheduler returns the push notification scheduler, or nil when VAPID
// keys are not configured.
func (s *Server) PushScheduler() *push.Scheduler {
	return s.pushScheduler
}

func (s *Server) Router() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", s.healthHandler)
	mux.HandleFunc("GET /ws", ws.HandleWebSocket(s.hub))

	// Recipe API routes
	mux.HandleFunc("GET /api/recipes", s.recipeH.List)
	mux.HandleFunc("POST /api/recipes", s.rateLimited(s.recipeH.Create))
	mux.HandleFunc("GET /api/recipes/search", s.recipeH.Search)
	mux.HandleFunc("GET /api/recipes/{id}", s.recipeH.Get)
	mux.HandleFunc("PUT /api/recipes/{id}", s.rateLimited(s.recipeH.Update))
	mux.HandleFunc("DELETE /api/recipes/{id}", s.rateLimited(s.recipeH.Delete))

	// Collection API routes
	mux.HandleFunc("GET /api/collections", s.collectionH.List)
	mux.HandleFunc("POST /api/collections", s.rateLimited(s.collectionH.Create))
	mux.HandleFunc("PUT /api/collections/{id}", s.rateLimited(s.collectionH.Update))
	mux.HandleFunc("DELETE /api/collections/{id}", s.rateLimited(s.collectionH.Delete))
	mux.HandleFunc("GET /api/collections/{id}/recipes", s.collectionH.ListRecipes)
	mux.HandleFunc("POST /api/collections/{id}/recipes/{recipe_id}", s.rateLimited(s.collectionH.AddRecipe))
	mux.HandleFunc("DELETE /api/collections/{id}/recipes/{recipe_id}", s.rateLimited(s.collectionH.RemoveRecipe))

	// Planner API routes
	mux.HandleFunc("GET /api/planner/{week_id}", s.plannerH.GetWeek)
	mux.HandleFunc("PUT /api/planner/{week_id}/days/{date}", s.rateLimited(s.plannerH.AssignDay))
	mux.HandleFunc("DELETE /api/planner/{week_id}/days/{date}", s.rateLimited(s.plannerH.UnassignDay))
	mux.HandleFunc("DELETE /api/planner/{week_id}", s.rateLimited(s.plannerH.ClearWeek))

	// Grocery API routes
	mux.HandleFunc("POST /api/planner/{week_id}/grocery-list", s.rateLimited(s.groceryH.Generate))
	mux.HandleFunc("GET /api/grocery-lists/{week_id}", s.groceryH.Get)
	mux.HandleFunc("POST /api/grocery-lists/{week_id}/items/{id}/check", s.groceryH.ToggleChecked)
	mux.HandleFunc("GET /api/grocery-lists/{week_id}/progress", s.groceryH.GetProgress)
	mux.HandleFunc("DELETE /api/grocery-lists/{week_id}", s.rateLimited(s.groceryH.Delete))

	// Pantry API routes
	mux.HandleFunc("GET /api/pantry", s.pantryH.List)
	mux.HandleFunc("POST /api/pantry", s.rateLimited(s.pantryH.Create))
	mux.HandleFunc("PUT /api/pantry/{id}", s.rateLimited(s.pantryH.Update))
	mux.HandleFunc("DELETE /api/pantry/{id}", s.rateLimited(s.pantryH.Delete))

	// Settings API routes
	mux.HandleFunc("GET /api/settings/theme", s.settingsH.GetTheme)
	mux.HandleFunc("PUT /api/settings/theme", s.settingsH.UpdateTheme)
	mux.HandleFunc("GET /api/settings/reminder", s.settingsH.GetReminder)
	mux.HandleFunc("PUT /api/settings/reminder", s.settingsH.UpdateReminder)
	mux.HandleFunc("GET /api/settings/s3", s.settingsH.GetS3)
	mux.HandleFunc("PUT /api/settings/s3", s.settingsH.UpdateS3)

	// Backup API routes
	mux.HandleFunc("POST /api/backups", s.rateLimited(s.backupH.RunNow))
	mux.HandleFunc("GET /api/backups", s.backupH.History)
	mux.HandleFunc("GET /api/backups/status", s.backupH.Status)
	mux.HandleFunc("POST /api/backups/{id}/restore", s.rateLimited(s.backupH.Restore))

	// Push notification API routes
	if s.pushH != nil {
		mux.HandleFunc("POST /api/push/subscribe", s.pushH.Subscribe)
		mux.HandleFunc("DELETE /api/push/subscriptions/{id}", s.pushH.Unsubscribe)
		mux.HandleFunc("GET /api/push/subscriptions", s.pushH.ListSubscriptions)
		mux.HandleFunc("GET /api/push/vapid-key", s.pushH.GetVAPIDKey)
		mux.HandleFunc("POST /api/push/test", s.pushH.TestNotification)
	}

	return middleware.RequestLogger(s.logger.With("component", "http"))(mux)
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

func (s *Server) rateLimited(h http.HandlerFunc) http.HandlerFunc {
	keyFunc := func(r *http.Request) string {
		return middleware.RealIP(r)
	}
	rl := middleware.RateLimit(s.rateLimiter, keyFunc, 60, time.Minute)
	return func(w http.ResponseWriter, r *http.Request) {
		rl(http.HandlerFunc(h)).ServeHTTP(w, r)
	}
}
