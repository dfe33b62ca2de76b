package main

import (
	"log"

	"github.com/gin-gonic/gin"

	"github.com/trobz/delivery-carrier/config"
	handler "github.com/trobz/delivery-carrier/handler/http"
	"github.com/trobz/delivery-carrier/internal/kafka"
	"github.com/trobz/delivery-carrier/internal/postlogistics"
	"github.com/trobz/delivery-carrier/service"
	"github.com/trobz/delivery-carrier/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	deliveryStore, err := store.NewPostgresStore(cfg.Database.URL())
	if err != nil {
		log.Fatalf("failed to create store: %v", err)
	}
	defer deliveryStore.Close()

	var producer service.Publisher
	if cfg.Kafka.Broker != "" {
		kafkaProducer := kafka.NewProducer(cfg.Kafka.Broker, cfg.Kafka.Topic)
		defer kafkaProducer.Close()
		producer = kafkaProducer
	}

	dispatch, err := service.ParseDispatchMode(cfg.Labels.DispatchMode)
	if err != nil {
		log.Fatalf("invalid label config: %v", err)
	}

	client := postlogistics.NewClient()
	labelService := service.NewLabelService(deliveryStore, client, producer, dispatch, cfg.Labels.DefaultLanguage)
	optionService := service.NewOptionService(deliveryStore)

	r := gin.Default()
	handler.NewLabelHandler(labelService, optionService).RegisterRoutes(r)

	log.Println("label service listening on", cfg.Server.Address)
	if err := r.Run(cfg.Server.Address); err != nil {
		log.Fatalf("failed to serve: %v", err)
	}
}
