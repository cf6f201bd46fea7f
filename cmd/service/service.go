// @title        User Master API
// @version      1.0
// @description  使用者管理服務的後端 API 文件
// @host         localhost:8080
// @BasePath     /api
// @securityDefinitions.basic BasicAuth
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"strconv"

	"user-master/internal/cache"
	"user-master/internal/database"
	"user-master/internal/router"
	"user-master/internal/worker"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	_ "user-master/docs" // 引入 swag 產出的 docs

	echoSwagger "github.com/swaggo/echo-swagger"
)

// CustomValidator wraps go-playground/validator for Echo
// swagger:ignore
type CustomValidator struct {
	validator *validator.Validate
}

// Validate calls the underlying validator
func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validator.Struct(i)
}

var (
	newPgxPool      = database.NewPgxPool
	newRedisCache   = cache.NewRedisCache
	newMemoryCache  = cache.NewMemoryCache
	runMigrationsFn = database.RunMigrations
	startServer     = func(e *echo.Echo, addr string) error { return e.Start(addr) }
	newWorkerPool   = worker.NewPool
	exitFunc        = os.Exit
)

func run() error {
	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		return fmt.Errorf("環境變數 DATABASE_URL 未設定")
	}

	workerCount := 1
	if v := os.Getenv("WORKER_COUNT"); v != "" {
		c, err := strconv.Atoi(v)
		if err != nil || c <= 0 {
			return fmt.Errorf("無效的 WORKER_COUNT: %v", err)
		}
		workerCount = c
	}

	db, err := newPgxPool(context.Background(), dbURL)
	if err != nil {
		return fmt.Errorf("DB 連線失敗: %v", err)
	}
	defer db.Close()

	// REDIS_ADDR 未設定時使用進程內快取
	var cch cache.Cache
	if addr := os.Getenv("REDIS_ADDR"); addr != "" {
		redisIndex := 0
		if v := os.Getenv("REDIS_DB"); v != "" {
			redisIndex, err = strconv.Atoi(v)
			if err != nil {
				return fmt.Errorf("無效的 REDIS_DB: %v", err)
			}
		}
		cch, err = newRedisCache(addr, os.Getenv("REDIS_PASSWORD"), redisIndex)
		if err != nil {
			return fmt.Errorf("Redis 連線失敗: %v", err)
		}
	} else {
		cch = newMemoryCache()
	}
	defer func() {
		if err := cch.Close(); err != nil {
			log.Printf("關閉快取失敗: %v", err)
		}
	}()

	if err := runMigrationsFn(dbURL); err != nil {
		return fmt.Errorf("Migration 執行失敗: %v", err)
	}

	wp := newWorkerPool(workerCount)
	defer wp.Stop()

	e := echo.New()
	e.Validator = &CustomValidator{validator: validator.New()}
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())

	router.Setup(e, db, cch, wp)

	e.GET("/swagger/*", echoSwagger.WrapHandler)
	return startServer(e, ":8080")
}

func main() {
	if err := run(); err != nil {
		log.Print(err)
		exitFunc(1)
	}
}
