package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"strconv"

	"booking-service/cache"
	"booking-service/clients"
	"booking-service/config"
	"booking-service/events"
	"booking-service/handlers"
	"booking-service/metrics"
	"booking-service/repository"
	"booking-service/routes"
	"booking-service/services"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/jaeger"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
	"gopkg.in/natefinch/lumberjack.v2"
)

var (
	server      *gin.Engine
	ctx         context.Context
	mongoclient *mongo.Client
	cfg         config.Config
	logger      *logrus.Logger

	reservationRepo *repository.ReservationRepo
	publisher       events.Publisher

	availabilityService services.AvailabilityService
	reservationService  services.ReservationService
	AvailabilityHandler handlers.AvailabilityHandler
	ReservationsHandler handlers.ReservationsHandler
	BookingRouteHandler routes.BookingRouteHandler
)

func init() {
	ctx = context.TODO()
	_ = godotenv.Load()
	cfg = config.GetConfig()

	logger = logrus.New()
	logger.SetLevel(logrus.DebugLevel)
	if cfg.LogFile != "" {
		logger.SetOutput(&lumberjack.Logger{
			Filename:  cfg.LogFile,
			MaxSize:   5,
			LocalTime: true,
		})
	}

	mongoconn := options.Client().ApplyURI(cfg.MongoDBURI)
	var err error
	mongoclient, err = mongo.Connect(ctx, mongoconn)
	if err != nil {
		panic(err)
	}
	if err := mongoclient.Ping(ctx, readpref.Primary()); err != nil {
		panic(err)
	}
	fmt.Println("MongoDB successfully connected...")

	tracerProvider, err := NewTracerProvider(cfg.ServiceName, cfg.JaegerAddress)
	if err != nil {
		log.Fatal("JaegerTraceProvider failed to Initialize", err)
	}
	tracer := tracerProvider.Tracer(cfg.ServiceName)

	availabilityCollection := mongoclient.Database("Booking").Collection("availability")
	availabilityStore, err := repository.NewMongoAvailabilityStore(availabilityCollection, ctx)
	if err != nil {
		log.Fatal("Failed to initialize availability store: ", err)
	}

	availabilityCache := cache.New(fmt.Sprintf("%s:%s", cfg.RedisHost, cfg.RedisPort), logger, tracer)
	availabilityCache.Ping()

	reservationRepo, err = repository.NewReservationRepo(cfg.CassandraHost, logger)
	if err != nil {
		log.Fatal("Failed to connect to Cassandra: ", err)
	}
	reservationRepo.CreateTable()

	if cfg.NatsHost != "" {
		natsPublisher, err := events.NewNATSPublisher(
			cfg.NatsHost, cfg.NatsPort, cfg.NatsUser, cfg.NatsPass,
			cfg.ReservationEventSubject, logger)
		if err != nil {
			log.Fatal("Failed to connect to NATS: ", err)
		}
		publisher = natsPublisher
	} else {
		publisher = events.NoopPublisher{}
	}

	defaultRate := 100.0
	if cfg.DefaultNightlyRate != "" {
		if parsed, err := strconv.ParseFloat(cfg.DefaultNightlyRate, 64); err == nil {
			defaultRate = parsed
		}
	}
	currency := cfg.Currency
	if currency == "" {
		currency = "EUR"
	}

	availabilityClient := clients.NewHTTPAvailabilityClient(cfg.AvailabilityServiceURL, logger)

	availabilityService = services.NewAvailabilityServiceImpl(availabilityStore, availabilityCache, logger, tracer)
	reservationService = services.NewReservationServiceImpl(reservationRepo, availabilityClient,
		services.NightlyRatePricer{DefaultRate: defaultRate, Currency: currency}, publisher, logger, tracer)

	AvailabilityHandler = handlers.NewAvailabilityHandler(availabilityService, tracer)
	ReservationsHandler = handlers.NewReservationsHandler(reservationService, tracer)
	BookingRouteHandler = routes.NewBookingRouteHandler(AvailabilityHandler, ReservationsHandler)

	server = gin.Default()
}

func main() {
	defer mongoclient.Disconnect(ctx)
	defer reservationRepo.CloseSession()
	defer publisher.Close()

	corsConfig := cors.DefaultConfig()
	allowedOrigin := cfg.AllowedOrigin
	if allowedOrigin == "" {
		allowedOrigin = "https://localhost:4200"
	}
	corsConfig.AllowOrigins = []string{allowedOrigin}
	corsConfig.AllowCredentials = true
	corsConfig.AllowHeaders = append(corsConfig.AllowHeaders, "Authorization", "X-User-Id", "X-User-Role")
	server.Use(cors.New(corsConfig))
	server.Use(metrics.Middleware())

	router := server.Group("/api")
	router.GET("/healthchecker", func(ctx *gin.Context) {
		ctx.JSON(http.StatusOK, gin.H{"status": "success", "message": "booking-service up"})
	})
	server.GET("/metrics", metrics.Handler())

	BookingRouteHandler.BookingRoute(router)

	port := cfg.Port
	if len(port) == 0 {
		port = "8080"
	}
	logger.WithFields(logrus.Fields{"port": port}).Info("Server starting")
	if err := server.Run(":" + port); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func NewTracerProvider(serviceName, collectorEndpoint string) (*sdktrace.TracerProvider, error) {
	exporter, err := jaeger.New(jaeger.WithCollectorEndpoint(jaeger.WithEndpoint(collectorEndpoint)))
	if err != nil {
		return nil, fmt.Errorf("unable to initialize exporter due: %w", err)
	}
	tp := sdktrace.NewTracerProvider(
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceNameKey.String(serviceName),
		)),
	)
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{}, propagation.Baggage{}))
	return tp, nil
}
