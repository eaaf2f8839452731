package main

import (
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"primepool-backend/internal/adapter/events"
	httpadp "primepool-backend/internal/adapter/http"
	axmw "primepool-backend/internal/adapter/middleware"
	"primepool-backend/internal/adapter/repository/mysql"
	"primepool-backend/internal/config"
	"primepool-backend/internal/domain/asset"
	"primepool-backend/internal/domain/event"
	poolDomain "primepool-backend/internal/domain/pool"
	registryDomain "primepool-backend/internal/domain/registry"
	"primepool-backend/internal/infrastructure/cache"
	"primepool-backend/internal/infrastructure/db"
	factoryUC "primepool-backend/internal/usecase/factory"
	poolUC "primepool-backend/internal/usecase/pool"
	registryUC "primepool-backend/internal/usecase/registry"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatal(err)
	}

	gdb, err := db.OpenGorm(cfg.MySQLDSN())
	if err != nil {
		log.Fatal(err)
	}
	if err := gdb.AutoMigrate(
		&poolDomain.Pool{},
		&poolDomain.Position{},
		&poolDomain.Member{},
		&poolDomain.RollRequest{},
		&registryDomain.Member{},
		&registryDomain.Settings{},
		&registryDomain.Asset{},
		&asset.Account{},
		&event.Record{},
	); err != nil {
		log.Fatal(err)
	}

	rdb, err := cache.OpenRedis(cfg.RedisAddr, cfg.RedisDB)
	if err != nil {
		log.Fatal(err)
	}

	guow := mysql.NewGormUoW(gdb)
	pools := mysql.NewPoolRepository(gdb)
	pub := events.NewRedisPublisher(rdb, "pool-events")

	poolUsecase := poolUC.NewUsecase(pools, guow, pub)
	factoryUsecase := factoryUC.NewUsecase(guow)
	registryUsecase := registryUC.NewUsecase(mysql.NewRegistryRepository(gdb))

	h := httpadp.NewHandler()
	ph := httpadp.NewPoolHandler(poolUsecase)
	fh := httpadp.NewFactoryHandler(factoryUsecase)
	rh := httpadp.NewRegistryHandler(registryUsecase)

	e := echo.New()
	e.HideBanner = true
	e.Validator = httpadp.NewValidator()
	e.Use(echomw.Logger(), echomw.Recover())
	e.Use(axmw.IdempotencyMiddleware(rdb, time.Duration(cfg.IdempTTLSecs)*time.Second))

	// health
	e.GET("/health", h.Health)

	// pool lifecycle
	e.POST("/pools", fh.CreatePool)
	e.POST("/pools/:pool_id/lend", ph.Lend)
	e.POST("/pools/:pool_id/repay", ph.Repay)
	e.POST("/pools/:pool_id/repay-all", ph.RepayAll)
	e.POST("/pools/:pool_id/repay-interest", ph.RepayInterest)
	e.POST("/pools/:pool_id/callback/request", ph.RequestCallback)
	e.POST("/pools/:pool_id/callback/cancel", ph.CancelCallback)
	e.POST("/pools/:pool_id/roll/request", ph.RequestRoll)
	e.POST("/pools/:pool_id/roll/accept", ph.AcceptRoll)
	e.POST("/pools/:pool_id/default", ph.MarkDefaulted)
	e.POST("/pools/:pool_id/close", ph.Close)
	e.POST("/pools/:pool_id/whitelist", ph.WhitelistLenders)
	e.POST("/pools/:pool_id/blacklist", ph.BlacklistLenders)
	e.POST("/pools/:pool_id/switch-public", ph.SwitchToPublic)

	// pool queries
	e.GET("/pools/:pool_id", ph.GetPool)
	e.GET("/pools/:pool_id/due/:lender_id", ph.DueOf)
	e.GET("/pools/:pool_id/due-interest/:lender_id", ph.DueInterestOf)
	e.GET("/pools/:pool_id/balance/:lender_id", ph.BalanceOf)
	e.GET("/pools/:pool_id/penalty/:lender_id", ph.PenaltyOf)
	e.GET("/pools/:pool_id/total-due", ph.TotalDue)
	e.GET("/pools/:pool_id/total-due-interest", ph.TotalDueInterest)
	e.GET("/pools/:pool_id/next-payment", ph.NextPayment)
	e.GET("/pools/:pool_id/can-be-defaulted", ph.CanBeDefaulted)
	e.GET("/pools/:pool_id/events", ph.Events)

	// prime registry administration
	e.POST("/members", rh.WhitelistMember)
	e.GET("/members/:member_id", rh.GetMember)
	e.DELETE("/members/:member_id", rh.BlacklistMember)
	e.PUT("/members/:member_id/risk-score", rh.ChangeRiskScore)
	e.GET("/rates", rh.GetSettings)
	e.PUT("/rates/:kind", rh.SetRate)
	e.PUT("/treasury", rh.SetTreasury)
	e.POST("/assets", rh.RegisterAsset)

	addr := ":" + cfg.AppPort
	log.Printf("listening on %s", addr)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
