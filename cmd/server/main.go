package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fixmarket/backend/internal/application/audit"
	contactapp "github.com/fixmarket/backend/internal/application/contact"
	identityapp "github.com/fixmarket/backend/internal/application/identity"
	"github.com/fixmarket/backend/internal/application/keylock"
	"github.com/fixmarket/backend/internal/application/notify"
	orderapp "github.com/fixmarket/backend/internal/application/order"
	relayapp "github.com/fixmarket/backend/internal/application/relay"
	"github.com/fixmarket/backend/internal/domain/pricing"
	"github.com/fixmarket/backend/internal/infrastructure/auth"
	"github.com/fixmarket/backend/internal/infrastructure/cache"
	"github.com/fixmarket/backend/internal/infrastructure/config"
	"github.com/fixmarket/backend/internal/infrastructure/event"
	"github.com/fixmarket/backend/internal/infrastructure/logger"
	"github.com/fixmarket/backend/internal/infrastructure/persistence/memory"
	"github.com/fixmarket/backend/internal/infrastructure/persistence/snapshot"
	"github.com/fixmarket/backend/internal/infrastructure/transport"
	"github.com/fixmarket/backend/internal/interfaces/http/handler"
	"github.com/fixmarket/backend/internal/interfaces/http/middleware"
	"github.com/fixmarket/backend/internal/interfaces/http/router"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	log, err := logger.New(&logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = log.Sync()
	}()

	log.Info("Starting fixmarket backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	// Repositories
	participants := memory.NewParticipantRepository()
	orders := memory.NewOrderRepository()
	links := memory.NewLinkRepository()
	reveals := memory.NewRevealRepository()
	contacts := memory.NewContactRepository()

	// Snapshot restore
	var snapStore *snapshot.Store
	if cfg.Snapshot.Enabled {
		snapStore, err = snapshot.New(cfg.Snapshot.Path)
		if err != nil {
			log.Fatal("Failed to open snapshot store", zap.Error(err))
		}
		snap, err := snapStore.Load(context.Background())
		if err != nil {
			log.Fatal("Failed to load snapshot", zap.Error(err))
		}
		participants.Restore(snap.Participants)
		orders.Restore(snap.Orders, snap.NextOrderID)
		links.Restore(snap.Links)
		reveals.Restore(snap.Reveals)
		contacts.Restore(snap.Contacts, snap.NextContactID)
		log.Info("State restored from snapshot",
			zap.String("path", cfg.Snapshot.Path),
			zap.Int("participants", len(snap.Participants)),
			zap.Int("orders", len(snap.Orders)),
		)
	}

	// Ambient collaborators
	operators := auth.NewAllowList(cfg.Operators.AllowedIDs)
	if operators.Size() == 0 {
		log.Warn("Operator allow-list is empty, operator features are inaccessible")
	}
	jwtService := auth.NewJWTService(cfg.JWT)
	locks := keylock.New()
	eventBus := event.NewInMemoryEventBus(log)
	eventBus.Subscribe(audit.NewHandler(log))

	var notifier notify.Transport
	if cfg.Webhook.URL != "" {
		notifier = transport.NewWebhookNotifier(cfg.Webhook, log)
		log.Info("Using webhook notification transport", zap.String("url", cfg.Webhook.URL))
	} else {
		notifier = transport.NewLogNotifier(log)
		log.Info("No webhook configured, notifications go to the log")
	}
	dispatcher := notify.NewDispatcher(notifier, log)

	cooldowns := cache.NewCooldownStore(cfg.Redis, cfg.Contact.Cooldown*2, log)

	commissionPct, err := cfg.CommissionPercent()
	if err != nil {
		log.Fatal("Invalid commission percent", zap.Error(err))
	}
	calculator, err := pricing.NewCalculator(commissionPct)
	if err != nil {
		log.Fatal("Invalid commission configuration", zap.Error(err))
	}

	// Application services
	identityService := identityapp.NewService(participants, operators, locks, log)
	relayManager := relayapp.NewManager(links, orders, dispatcher, eventBus, locks, log)
	orderService := orderapp.NewService(orders, calculator, relayManager, dispatcher, eventBus, locks, log)
	revealService := relayapp.NewRevealService(reveals, links, orders, participants, operators, identityService, dispatcher, locks, log)
	contactService := contactapp.NewService(contacts, cooldowns, participants, operators, identityService, dispatcher, locks, log,
		cfg.Contact.Cooldown, cfg.Contact.DoneLimit, cfg.Contact.SupportPhone)

	if err := middleware.RegisterValidators(); err != nil {
		log.Fatal("Failed to register validators", zap.Error(err))
	}

	engine := router.New(router.Deps{
		Config:       cfg,
		Logger:       log,
		JWT:          jwtService,
		Operators:    operators,
		Sessions:     handler.NewSessionHandler(identityService, jwtService),
		Participants: handler.NewParticipantHandler(identityService),
		Orders:       handler.NewOrderHandler(orderService),
		Relay:        handler.NewRelayHandler(relayManager, revealService),
		Contacts:     handler.NewContactHandler(contactService),
	})

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("HTTP server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("Forced shutdown", zap.Error(err))
	}

	// Snapshot save
	if snapStore != nil {
		participantDump := participants.Dump()
		orderDump, nextOrderID := orders.Dump()
		contactDump, nextContactID := contacts.Dump()
		snap := snapshot.Snapshot{
			Participants:  participantDump,
			Orders:        orderDump,
			NextOrderID:   nextOrderID,
			Links:         links.Dump(),
			Reveals:       reveals.Dump(),
			Contacts:      contactDump,
			NextContactID: nextContactID,
		}
		if err := snapStore.Save(ctx, snap); err != nil {
			log.Error("Failed to save snapshot", zap.Error(err))
		} else {
			log.Info("State snapshot saved", zap.String("path", cfg.Snapshot.Path))
		}
	}

	log.Info("Server stopped")
}
