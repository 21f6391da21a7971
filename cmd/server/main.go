package main

import (
	"sharely/internal/bookings/events"
	bookingshandler "sharely/internal/bookings/handler"
	bookingsrepo "sharely/internal/bookings/repository"
	bookingsservice "sharely/internal/bookings/service"
	bookingsvalidator "sharely/internal/bookings/validator"
	itemshandler "sharely/internal/items/handler"
	itemsrepo "sharely/internal/items/repository"
	itemsservice "sharely/internal/items/service"
	usershandler "sharely/internal/users/handler"
	usersrepo "sharely/internal/users/repository"
	usersservice "sharely/internal/users/service"
	"sharely/pkg/app"
	"sharely/pkg/config"
	"sharely/pkg/kafka"
	kafka_config "sharely/pkg/kafka/config"
	kafka_middleware "sharely/pkg/kafka/middleware"
)

const ServiceName = "sharely"

func main() {
	cfg := config.Load(ServiceName)
	cfg.SetMongo()
	defer cfg.GracefulShutdown()

	cfg.Log.Info("Starting sharely service")

	publisher, closeProducer := initPublisher(cfg)
	defer closeProducer()

	userRepo := usersrepo.NewMongoUserRepository(cfg)
	userService := usersservice.NewUserService(userRepo, cfg)

	itemRepo := itemsrepo.NewMongoItemRepository(cfg)
	commentRepo := itemsrepo.NewMongoCommentRepository(cfg)

	bookingRepo := bookingsrepo.NewMongoBookingRepository(cfg)
	bookingLockRepo := bookingsrepo.NewBookingLockRepository(cfg)
	bookingService := bookingsservice.NewBookingService(
		bookingRepo,
		bookingLockRepo,
		itemRepo,
		userRepo,
		bookingsvalidator.NewBookingValidator(cfg.Log),
		publisher,
		cfg,
	)

	itemService := itemsservice.NewItemService(itemRepo, commentRepo, bookingRepo, userRepo, cfg)

	cfg.Log.Info("Services initialized", "database", cfg.MongoDatabaseName)

	serverApp := app.NewApplication(cfg)
	serverApp.SetApp(
		usershandler.NewUserHandler(userService, cfg.Log),
		itemshandler.NewItemHandler(itemService, cfg.Log),
		bookingshandler.NewBookingHandler(bookingService, cfg.Log),
	)
	serverApp.Run()
}

func initPublisher(cfg *config.Config) (events.Publisher, func()) {
	if !cfg.KafkaEnabled {
		cfg.Log.Info("Kafka disabled, booking events will not be published")
		return events.NewNoopPublisher(), func() {}
	}

	kafkaCfg := kafka_config.Load()
	kafkaCfg.LogConfiguration(cfg.Log.Info)

	producer, err := kafka.NewProducer(kafkaCfg, cfg.BookingEventTopic, "")
	if err != nil {
		cfg.Log.Fatal("Failed to create Kafka producer", "error", err)
	}

	if kafkaCfg.EnableMiddleware {
		producer.Use(kafka_middleware.LoggingProducerMiddleware(cfg.Log))
	}

	return events.NewKafkaPublisher(producer, cfg.Log), func() {
		if err := producer.Close(); err != nil {
			cfg.Log.Warn("Failed to close Kafka producer", "error", err)
		}
	}
}
