// Package main (in api-subfolder) provides launch of the whole application
package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/UnendingLoop/WatermarkStudio/internal/imageproc"
	"github.com/UnendingLoop/WatermarkStudio/internal/mwlogger"
	"github.com/UnendingLoop/WatermarkStudio/internal/service"
	"github.com/UnendingLoop/WatermarkStudio/internal/storage"
	"github.com/UnendingLoop/WatermarkStudio/internal/transport"
	"github.com/wb-go/wbf/config"
	"github.com/wb-go/wbf/ginext"
	"github.com/wb-go/wbf/retry"
	"github.com/wb-go/wbf/zlog"
)

func main() {
	// инициализировать конфиг/ считать энвы
	appConfig := config.New()
	appConfig.EnableEnv("")
	if err := appConfig.LoadEnvFiles("./.env"); err != nil {
		log.Fatalf("Failed to load envs: %s\nExiting app...", err)
	}
	appConfig.SetDefault("LOG_LEVEL", "info")
	appConfig.SetDefault("MAX_PIXELS", imageproc.DefaultMaxPixels)
	appConfig.SetDefault("MAX_UPLOAD_MB", int(transport.DefaultMaxUploadBytes>>20))
	appConfig.SetDefault("MAX_MERGE_IMAGES", service.DefaultMaxMergeImages)
	appConfig.SetDefault("DECODE_PARALLELISM", 0)
	appConfig.SetDefault("MINIO_SECURE", false)

	// стартуем логгер
	zlog.InitConsole()
	if err := zlog.SetLevel(appConfig.GetString("LOG_LEVEL")); err != nil {
		log.Fatalf("Failed to init logger: %v", err)
	}
	// готовим заранее слушатель прерываний - контекст для всего приложения
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// шрифты: пустые пути - встроенные Go-шрифты
	fonts, err := imageproc.LoadFontSet(appConfig.GetString("FONT_REGULAR_PATH"), appConfig.GetString("FONT_BOLD_PATH"))
	if err != nil {
		log.Fatalf("Failed to load fonts: %v", err)
	}

	// подключиться к хранилищу исходников - опционально
	var fetcher imageproc.Fetcher
	connectStrategy := retry.Strategy{Attempts: 5, Delay: 3 * time.Second, Backoff: 1.5}
	if strg := storage.NewSourceStore(ctx, appConfig, connectStrategy); strg != nil {
		fetcher = strg
	}

	// собираем движок; лимит размера один и для загрузки, и для объекта из хранилища
	maxUpload := appConfig.GetInt64("MAX_UPLOAD_MB") << 20
	surfaces := imageproc.NewSurfaces(appConfig.GetInt("MAX_PIXELS"))
	decoder := imageproc.NewDecoder(fetcher, surfaces, maxUpload)
	renderer := imageproc.NewRenderer(fonts, surfaces)
	merger := imageproc.NewMerger(decoder, surfaces, appConfig.GetInt("DECODE_PARALLELISM"))

	// создаем экземпляр сервиса
	var svc StudioAPIService = service.NewStudioService(decoder, renderer, merger, fonts,
		appConfig.GetInt("MAX_MERGE_IMAGES"), surfaces.MaxPixels())
	// cоздаем экземпляр хендлера HTTP
	handlers := transport.NewStudioHandler(svc, maxUpload)
	// сетапим сервер
	mode := appConfig.GetString("GIN_MODE")
	engine := ginext.New(mode)

	engine.GET("/ping", handlers.SimplePinger)
	engine.POST("/watermark", handlers.Watermark)    // подпись на одной картинке
	engine.POST("/merge", handlers.Merge)            // склейка нескольких картинок
	engine.GET("/watermark/layout", handlers.Layout) // раскладка подписи без рендера

	srv := &http.Server{
		Addr:              ":" + appConfig.GetString("APP_PORT"),
		Handler:           mwlogger.NewMWLogger(engine),
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Server launch
	go func() {
		log.Printf("Server running on http://localhost%s\n", srv.Addr)
		err := srv.ListenAndServe()
		if err != nil {
			switch {
			case errors.Is(err, http.ErrServerClosed):
				log.Println("Server gracefully stopping...")
			default:
				log.Printf("Server stopped: %v", err)
				stop()
			}
		}
	}()

	// ждем отмены контекста для запуска грейсфул остановки сервера
	<-ctx.Done()

	shutdown(srv)
	log.Println("Exiting app...")
}

func shutdown(srv *http.Server) {
	log.Println("Interrupt received!!! Starting shutdown sequence...")

	// даем текущим рендерам доработать
	shCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(shCtx); err != nil {
		log.Println("Failed to shutdown server correctly:", err)
		return
	}
	log.Println("Server stopped")
}
