package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/zouxu09/goban/internal/adapters"
	"github.com/zouxu09/goban/internal/bootstrap"
	boardDelivery "github.com/zouxu09/goban/internal/delivery/board"
	ownMiddleware "github.com/zouxu09/goban/internal/middleware"
	"github.com/zouxu09/goban/internal/repository"
	boardUseCase "github.com/zouxu09/goban/internal/usecase/board"
)

type dataBaseAdapters struct {
	redisAdapter *adapters.AdapterRedis
	mongoAdapter *adapters.AdapterMongo
}

func main() {
	logger := NewLogger()
	defer logger.Sync()

	cfg, err := bootstrap.Setup(".env")
	if err != nil {
		logger.Error("Failed to setup configuration", zap.Error(err))
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go handleShutdown(cancel, logger)

	store, closeStore := initBoardStore(ctx, logger, *cfg)
	defer closeStore()

	healthServer := health.NewServer()
	grpcServer := grpc.NewServer()
	healthpb.RegisterHealthServer(grpcServer, healthServer)
	go serveGrpc(grpcServer, cfg.GrpcPort, logger)

	boardUC := boardUseCase.NewBoardUseCase(store, logger, cfg.MaxBoardSize)
	handler := boardDelivery.NewBoardHandler(*cfg, logger, boardUC)

	r := chi.NewRouter()
	if cfg.IsLocalCors {
		r.Use(ownMiddleware.CORS)
	}
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	handler.Routes(r)

	srv := &http.Server{Addr: cfg.ServerPort, Handler: r}
	go func() {
		logger.Infof("Server is running on port %s", cfg.ServerPort)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()
	healthServer.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)

	<-ctx.Done()
	healthServer.SetServingStatus("", healthpb.HealthCheckResponse_NOT_SERVING)

	shutdownCtx, stop := context.WithTimeout(context.Background(), 5*time.Second)
	defer stop()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Errorf("http shutdown: %v", err)
	}
	grpcServer.GracefulStop()
	logger.Info("Server stopped")
}

func NewLogger() *zap.SugaredLogger {
	logger, err := zap.NewProduction()
	if err != nil {
		panic("failed to initialize logger: " + err.Error())
	}
	return logger.Sugar()
}

func serveGrpc(server *grpc.Server, port string, log *zap.SugaredLogger) {
	lis, err := net.Listen("tcp", port)
	if err != nil {
		log.Fatal("Failed to listen for grpc", zap.Error(err))
	}
	log.Infof("gRPC health service is running on port %s", port)
	if err := server.Serve(lis); err != nil {
		log.Errorf("grpc server: %v", err)
	}
}

func initBoardStore(ctx context.Context, log *zap.SugaredLogger, cfg bootstrap.Config) (boardUseCase.BoardStore, func()) {
	if cfg.StorageMode == bootstrap.StorageMemory {
		log.Info("Boards are kept in memory")
		return repository.NewMapBoardStorage(), func() {}
	}

	databaseAdapters := initDatabaseAdapters(ctx, log, cfg)
	store := repository.NewBoardRepository(cfg, log,
		databaseAdapters.redisAdapter.GetClient(), databaseAdapters.mongoAdapter.Database)
	return store, func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := databaseAdapters.mongoAdapter.Close(closeCtx); err != nil {
			log.Errorf("close mongodb: %v", err)
		}
		if err := databaseAdapters.redisAdapter.Close(closeCtx); err != nil {
			log.Errorf("close redis: %v", err)
		}
	}
}

func initDatabaseAdapters(ctx context.Context, log *zap.SugaredLogger, cfg bootstrap.Config) *dataBaseAdapters {
	mongoAdapter := adapters.NewAdapterMongo(&cfg, log)
	if err := mongoAdapter.Init(ctx); err != nil {
		log.Fatal("Failed to initialize MongoDB", zap.Error(err))
	}

	redisAdapter := adapters.NewAdapterRedis(&cfg, log)
	if err := redisAdapter.Init(ctx); err != nil {
		log.Fatal("Failed to initialize Redis", zap.Error(err))
	}

	log.Info("Database adapters initialized")
	return &dataBaseAdapters{
		redisAdapter: redisAdapter,
		mongoAdapter: mongoAdapter,
	}
}

func handleShutdown(cancelFunc context.CancelFunc, log *zap.SugaredLogger) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	<-sigs
	log.Info("Received shutdown signal")
	cancelFunc()
}
