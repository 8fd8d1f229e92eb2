package server

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"golang.org/x/sync/errgroup"

	"github.com/eliotdl/yt-any/server/activity"
	"github.com/eliotdl/yt-any/server/broadcast"
	"github.com/eliotdl/yt-any/server/config"
	"github.com/eliotdl/yt-any/server/cookies"
	"github.com/eliotdl/yt-any/server/formats"
	"github.com/eliotdl/yt-any/server/internal/extractor"
	"github.com/eliotdl/yt-any/server/internal/queue"
	"github.com/eliotdl/yt-any/server/internal/runner"
	"github.com/eliotdl/yt-any/server/internal/session"
	"github.com/eliotdl/yt-any/server/logging"
	middlewares "github.com/eliotdl/yt-any/server/middleware"
	"github.com/eliotdl/yt-any/server/platform"
	"github.com/eliotdl/yt-any/server/rest"
	"github.com/eliotdl/yt-any/server/status"
)

type serverConfig struct {
	cookies     *cookies.Store
	mq          *queue.MessageQueue
	broadcaster *broadcast.Broadcaster
	activity    *activity.Service
	rest        *rest.ContainerArgs
}

func Run(ctx context.Context) error {
	conf := config.Instance()

	// ---- LOGGING ---------------------------------------------------
	logWriters := []io.Writer{os.Stdout}

	if conf.Logging.EnableFileLogging {
		logger, err := logging.NewRotableLogger(conf.Logging.LogPath)
		if err != nil {
			return err
		}

		defer logger.Rotate()

		go func() {
			for {
				time.Sleep(time.Hour * 24)
				logger.Rotate()
			}
		}()

		logWriters = append(logWriters, logger)
	}

	logger := slog.New(slog.NewTextHandler(io.MultiWriter(logWriters...), &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	slog.SetDefault(logger)
	// ----------------------------------------------------------------

	registry, err := platform.LoadRegistry(conf.Platforms.ConfigPath)
	if err != nil {
		return err
	}

	cookieStore, err := cookies.NewStore(conf.Paths.CookiesPath, conf.DefaultCookieFile())
	if err != nil {
		return err
	}

	activityLog, err := activity.New(conf.Paths.DatabasePath)
	if err != nil {
		return err
	}

	builder := &formats.Builder{
		DownloadDir:       conf.Paths.DownloadPath,
		FFmpegDir:         conf.Paths.FFmpegPath,
		DefaultCookieFile: cookieStore.DefaultPath(),
	}

	sessions := session.NewStore()
	if conf.Sessions.Evict {
		go sessions.Schedule(ctx, time.Minute*5, conf.Sessions.TTL)
	}

	mq, err := queue.NewMessageQueue(conf.Server.QueueSize)
	if err != nil {
		return err
	}
	mq.SetupConsumers()

	broadcaster := broadcast.New()
	fetcher := extractor.New(conf.Paths.DownloaderPath)
	jobRunner := runner.New(registry, cookieStore, builder, fetcher, broadcaster, activityLog)

	scfg := serverConfig{
		cookies:     cookieStore,
		mq:          mq,
		broadcaster: broadcaster,
		activity:    activityLog,
		rest: &rest.ContainerArgs{
			Registry:    registry,
			Cookies:     cookieStore,
			Builder:     builder,
			Extractor:   fetcher,
			Sessions:    sessions,
			Runner:      jobRunner,
			MQ:          mq,
			Broadcaster: broadcaster,
			Activity:    activityLog,
		},
	}

	srv := newServer(scfg)

	var (
		network = "tcp"
		address = fmt.Sprintf("%s:%d", conf.Server.Host, conf.Server.Port)
	)

	// support unix sockets
	if strings.HasPrefix(conf.Server.Host, "/") {
		network = "unix"
		address = conf.Server.Host
	}

	listener, err := net.Listen(network, address)
	if err != nil {
		slog.Error("failed to listen", slog.String("err", err.Error()))
		return err
	}

	slog.Info("yt-any started", slog.String("address", address))

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := srv.Serve(listener); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		slog.Info("shutdown signal received")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Second*10)
		defer cancel()

		// stop the pool only once no request can publish anymore
		err := srv.Shutdown(shutdownCtx)

		mq.Stop()
		activityLog.Close()

		return err
	})

	if err := g.Wait(); err != nil {
		slog.Warn("http server stopped", slog.String("err", err.Error()))
		return err
	}

	return nil
}

func newServer(c serverConfig) *http.Server {
	r := chi.NewRouter()

	corsMiddleware := cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{
			http.MethodHead,
			http.MethodGet,
			http.MethodPost,
			http.MethodPut,
			http.MethodPatch,
			http.MethodDelete,
		},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
	})

	r.Use(corsMiddleware.Handler)
	r.Use(middlewares.CallerIdentity)

	// REST API handlers
	r.Route("/api/v1", rest.ApplyRouter(c.rest))

	// Session events
	r.Get("/ws", broadcast.WebSocket(c.broadcaster))

	// Status
	r.Route("/status", status.ApplyRouter(c.cookies))

	return &http.Server{Handler: r}
}
