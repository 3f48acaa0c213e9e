package main

import (
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/mochi-xyz/market/base/ctx"
	"github.com/mochi-xyz/market/base/database/mongoclient"
	"github.com/mochi-xyz/market/base/database/redisclient"
	"github.com/mochi-xyz/market/base/env"
	"github.com/mochi-xyz/market/base/journal"
	"github.com/mochi-xyz/market/base/log"
	"github.com/mochi-xyz/market/base/metrics"
	bValidator "github.com/mochi-xyz/market/base/validator"
	"github.com/mochi-xyz/market/domain"
	"github.com/mochi-xyz/market/domain/activity"
	"github.com/mochi-xyz/market/domain/keys"
	"github.com/mochi-xyz/market/domain/vault"
	mmiddleware "github.com/mochi-xyz/market/middleware"
	"github.com/mochi-xyz/market/service/cache"
	"github.com/mochi-xyz/market/service/cache/provider"
	"github.com/mochi-xyz/market/service/cache/provider/primitive"
	cacheRedis "github.com/mochi-xyz/market/service/cache/provider/redis"
	"github.com/mochi-xyz/market/service/query"
	"github.com/mochi-xyz/market/service/redis"
	activity_delivery "github.com/mochi-xyz/market/stores/activity/delivery/http"
	activity_repository "github.com/mochi-xyz/market/stores/activity/repository"
	activity_usecase "github.com/mochi-xyz/market/stores/activity/usecase"
	asset_delivery "github.com/mochi-xyz/market/stores/asset/delivery/http"
	asset_usecase "github.com/mochi-xyz/market/stores/asset/usecase"
	auth_delivery "github.com/mochi-xyz/market/stores/auth/delivery/http"
	auth_middleware "github.com/mochi-xyz/market/stores/auth/delivery/http/middleware"
	auth_usecase "github.com/mochi-xyz/market/stores/auth/usecase"
	event_usecase "github.com/mochi-xyz/market/stores/event/usecase"
	exchangeorder_repository "github.com/mochi-xyz/market/stores/exchangeorder/repository"
	hc_delivery "github.com/mochi-xyz/market/stores/healthcheck/delivery/http"
	hc_repo "github.com/mochi-xyz/market/stores/healthcheck/repository"
	hc_usecase "github.com/mochi-xyz/market/stores/healthcheck/usecase"
	market_delivery "github.com/mochi-xyz/market/stores/market/delivery/http"
	market_usecase "github.com/mochi-xyz/market/stores/market/usecase"
	nftlist_delivery "github.com/mochi-xyz/market/stores/nftlist/delivery/http"
	nftlist_repository "github.com/mochi-xyz/market/stores/nftlist/repository"
	nftlist_usecase "github.com/mochi-xyz/market/stores/nftlist/usecase"
	sellorder_repository "github.com/mochi-xyz/market/stores/sellorder/repository"
	vault_delivery "github.com/mochi-xyz/market/stores/vault/delivery/http"
	vault_repository "github.com/mochi-xyz/market/stores/vault/repository"
	vault_usecase "github.com/mochi-xyz/market/stores/vault/usecase"
)

func init() {
	pflag.String("config", env.ConfigPath(), "path of the yaml config")
	pflag.Parse()
	if err := viper.BindPFlags(pflag.CommandLine); err != nil {
		panic(err)
	}

	viper.SetConfigType("yaml")
	viper.SetConfigFile(viper.GetString("config"))
	viper.AutomaticEnv()
	err := viper.ReadInConfig()
	if err != nil {
		panic(err)
	}

	log.Setup(viper.GetString("log.level"), viper.GetBool("debug"))
	if viper.GetBool(`debug`) {
		log.Log().Info("Service RUN on DEBUG mode")
	}
}

func fraction(key string) vault.Fraction {
	f := vault.Fraction{}
	if err := viper.UnmarshalKey(key, &f); err != nil {
		panic(err)
	}
	return f
}

func main() {
	// init echo
	e := echo.New()
	e.Use(middleware.Recover())
	e.Use(middleware.GzipWithConfig(middleware.GzipConfig{}))
	e.Use(middleware.RequestID())
	middL := mmiddleware.InitMiddleware(metrics.New("http"))
	e.Use(middL.ResponseLogger())
	e.Use(middL.AddContext())
	e.Use(middleware.CORS())
	e.Validator = bValidator.NewCustomValidator(validator.New())

	context := ctx.Background()

	// init mongo client, activity history is off without it
	var mongoClient *mongoclient.Client
	var activityRepo activity.Repo
	if uri := viper.GetString("mongo.uri"); uri != "" {
		context.Info("init mongo")
		authDBName := viper.GetString("mongo.authDBName")
		dbName := viper.GetString("mongo.dbName")
		enableSSL := viper.GetBool("mongo.enableSSL")
		checkIndex := viper.GetBool("mongo.checkIndex")
		mongoClient = mongoclient.MustConnectMongoClient(uri, authDBName, dbName, enableSSL, true, 2)
		q := query.New(mongoClient, checkIndex, metrics.New("mongo"))
		repo, err := activity_repository.New(context, q)
		if err != nil {
			context.WithField("err", err).Panic("activity_repository.New failed")
		}
		activityRepo = repo
	}

	// init Redis service, events are not published and caches stay in process without it
	var redisCache redis.Service
	var httpCache provider.Provider
	if uri := viper.GetString("redis_cache.uri"); uri != "" {
		context.Info("init redis cache")
		redisCachePool := redisclient.MustConnectRedis(uri, viper.GetString("redis_cache.password"), redisclient.RedisParam{
			PoolMultiplier: viper.GetFloat64("redis_cache.poolMultiplier"),
			Retry:          true,
		})
		redisCache = redis.New(viper.GetString("redis_cache.name"), metrics.New("redis"), redisCachePool)
		httpCache = cacheRedis.NewRedis(redisCache)
	} else {
		httpCache = primitive.NewPrimitive("http", viper.GetInt("local_cache.httpSizeMB"))
	}
	localCache := primitive.NewPrimitive("local", viper.GetInt("local_cache.sizeMB"))

	j := journal.New()
	admins := auth_usecase.NewAdminRegistry(viper.GetStringSlice("admin.addresses"))
	nonces := cache.New(cache.ServiceConfig{
		Ttl:   viper.GetDuration("auth.nonceTtl"),
		Pfx:   keys.PfxNonce,
		Cache: localCache,
	})
	auth := auth_usecase.New(viper.GetString("auth.jwtSecret"), nonces)
	tokenMeta := cache.New(cache.ServiceConfig{
		Ttl:   viper.GetDuration("local_cache.tokenMetaTtl"),
		Pfx:   keys.PfxTokenMeta,
		Cache: localCache,
	})

	assets := asset_usecase.New(j, asset_usecase.NativeConfig{
		Name:     viper.GetString("native.name"),
		Symbol:   viper.GetString("native.symbol"),
		Decimals: viper.GetInt32("native.decimals"),
		Minter:   domain.Address(viper.GetString("native.minter")),
	})
	nftList := nftlist_usecase.New(j, nftlist_repository.NewNFTListRepo(j), admins)

	// event sinks
	sinks := []domain.EventSink{}
	if redisCache != nil {
		sinks = append(sinks, event_usecase.NewRedisSink(redisCache, viper.GetString("events.topic")))
	}
	var activityUC activity.Usecase
	if activityRepo != nil {
		activityUC = activity_usecase.New(&activity_usecase.ActivityUseCaseCfg{
			Repo:     activityRepo,
			Ledger:   assets,
			Metadata: tokenMeta,
		})
		sinks = append(sinks, activityUC)
	}
	dispatcher := event_usecase.New(&event_usecase.EventUseCaseCfg{
		Journal:   j,
		Sinks:     sinks,
		QueueSize: viper.GetInt("events.queueSize"),
		BatchSize: viper.GetInt("events.batchSize"),
		Workers:   viper.GetInt("events.workers"),
		Metrics:   metrics.New("event"),
	})

	marketAddress := domain.Address(viper.GetString("market.address"))
	vaultUC := vault_usecase.New(&vault_usecase.VaultUseCaseCfg{
		Address:         domain.Address(viper.GetString("vault.address")),
		Market:          marketAddress,
		MomaToken:       domain.Address(viper.GetString("vault.momaToken")),
		RegularFee:      fraction("vault.regularFee"),
		MomaFee:         fraction("vault.momaFee"),
		Royalty:         fraction("vault.royalty"),
		RewardRecipient: vault.RecipientPolicy(viper.GetString("vault.rewardRecipient")),
		Repo:            vault_repository.NewVaultRepo(j),
		Journal:         j,
		Ledger:          assets,
		Custody:         assets,
		Admins:          admins,
		Emitter:         dispatcher,
		Metadata:        tokenMeta,
		Metrics:         metrics.New("vault"),
	})
	marketUC := market_usecase.New(&market_usecase.MarketUseCaseCfg{
		Address:           marketAddress,
		MaxLegs:           viper.GetInt("market.maxLegs"),
		Journal:           j,
		SellOrderRepo:     sellorder_repository.NewSellOrderRepo(j),
		ExchangeOrderRepo: exchangeorder_repository.NewExchangeOrderRepo(j),
		Vault:             vaultUC,
		Registry:          nftList,
		Custody:           assets,
		Ledger:            assets,
		Admins:            admins,
		Emitter:           dispatcher,
		Metrics:           metrics.New("market"),
	})

	hc := hc_usecase.New(hc_repo.New(mongoClient, redisCache))

	authMiddleware := auth_middleware.New(auth, admins)
	hc_delivery.New(e, hc)
	auth_delivery.New(e, auth)
	market_delivery.New(e, marketUC, authMiddleware)
	vault_delivery.New(e, vaultUC, authMiddleware)
	nftlist_delivery.New(e, nftList, authMiddleware)
	asset_delivery.New(e, assets, authMiddleware)
	if activityUC != nil {
		activity_delivery.New(e, activityUC, httpCache)
	}

	go func() {
		if err := e.Start(viper.GetString("server.address")); err != nil && err != http.ErrServerClosed {
			log.Log().WithField("err", err).Error("shutting down the server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM, syscall.SIGINT)
	sig := <-quit
	log.Log().WithField("signal", sig).Info("received signal")
	ctx, cancel := ctx.WithTimeout(context, 10*time.Second)
	defer cancel()
	if err := e.Shutdown(ctx); err != nil {
		log.Log().WithField("err", err).Error("shutting down the server")
	} else {
		log.Log().Info("shutdown server successfully")
	}
	dispatcher.Close()
}
