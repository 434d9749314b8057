package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"

	"github.com/rs/xid"
	"github.com/shopspring/decimal"

	exchange "github.com/VictorAugustoCorrea/TradingEcosystem"
	"github.com/VictorAugustoCorrea/TradingEcosystem/protocol"
	"github.com/VictorAugustoCorrea/TradingEcosystem/structure"
)

func main() {
	var (
		configPath    = flag.String("config", "", "path to config file (yaml/toml/json)")
		kafkaBrokers  = flag.String("kafka-brokers", "", "comma-separated kafka brokers, empty disables publishing")
		updateTopic   = flag.String("update-topic", "market-updates", "kafka topic for market updates")
		responseTopic = flag.String("response-topic", "client-responses", "kafka topic for client responses")
		tickSize      = flag.String("tick-size", "0.01", "tick size applied to every instrument")
	)
	flag.Parse()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil)).
		With("run_id", xid.New().String())
	exchange.SetLogger(logger)

	cfg, err := exchange.LoadConfig(*configPath)
	if err != nil {
		logger.Error("load config failed", "error", err)
		os.Exit(1)
	}
	cfg.Logger = logger

	tick, err := decimal.NewFromString(*tickSize)
	if err != nil {
		logger.Error("invalid tick size", "error", err)
		os.Exit(1)
	}

	requests := structure.NewRing[protocol.ClientRequest](cfg.RequestRingSize)
	responses := structure.NewRing[protocol.ClientResponse](cfg.ResponseRingSize)
	updates := structure.NewRing[protocol.MarketUpdate](cfg.UpdateRingSize)

	engine, err := exchange.NewEngine(cfg, requests, responses, updates)
	if err != nil {
		logger.Error("engine construction failed", "error", err)
		os.Exit(1)
	}

	var (
		updatePub   exchange.UpdatePublisher   = exchange.NewDiscardPublisher()
		responsePub exchange.ResponsePublisher = exchange.NewDiscardPublisher()
		kafkaPub    *exchange.KafkaPublisher
	)
	if *kafkaBrokers != "" {
		kafkaPub, err = exchange.NewKafkaPublisher(exchange.KafkaPublisherOptions{
			Brokers:       strings.Split(*kafkaBrokers, ","),
			UpdateTopic:   *updateTopic,
			ResponseTopic: *responseTopic,
			Logger:        logger,
		})
		if err != nil {
			logger.Error("kafka publisher construction failed", "error", err)
			os.Exit(1)
		}
		updatePub = kafkaPub
		responsePub = kafkaPub
	}

	instruments := make([]exchange.Instrument, cfg.MaxInstruments)
	for i := range instruments {
		instruments[i] = exchange.Instrument{
			TickerID: protocol.TickerID(i),
			TickSize: tick,
		}
	}
	feed := exchange.NewMarketDataFeed(updates, updatePub, instruments, logger)
	relay := exchange.NewResponseRelay(responses, responsePub, logger)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	var wg sync.WaitGroup
	errCh := make(chan error, 1)

	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := engine.Run(); err != nil {
			errCh <- err
		}
	}()
	wg.Add(1)
	go func() {
		defer wg.Done()
		feed.Run()
	}()
	wg.Add(1)
	go func() {
		defer wg.Done()
		relay.Run()
	}()

	logger.Info("exchange up",
		"instruments", cfg.MaxInstruments,
		"max_orders", cfg.MaxOrders,
		"kafka", *kafkaBrokers != "")

	var haltErr error
	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	case haltErr = <-errCh:
		logger.Error("engine halted", "error", haltErr)
	}

	// Stop the engine first so no new records enter the outbound rings,
	// then let the feed and relay drain what is left.
	engine.Stop()
	feed.Stop()
	relay.Stop()
	wg.Wait()

	if kafkaPub != nil {
		if err := kafkaPub.Close(); err != nil {
			logger.Error("kafka close failed", "error", err)
		}
	}
	logger.Info("exchange down")
	if haltErr != nil {
		os.Exit(1)
	}
}
