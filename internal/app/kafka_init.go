package app

import (
	"context"
	"sync"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/foodorder/internal/domain"
	"github.com/vladislavdragonenkov/foodorder/internal/messaging/kafka"
	"github.com/vladislavdragonenkov/foodorder/internal/service/outbox"
)

// initKafkaProducer инициализирует Kafka producer если brokers не пустой.
// Возвращает nil, nil если brokers пустой.
func initKafkaProducer(cfg Config, logger *log.Entry) (*kafka.Producer, error) {
	brokerList := cfg.Brokers()
	if len(brokerList) == 0 {
		return nil, nil
	}

	producer, err := kafka.NewProducer(brokerList, cfg.KafkaClientID)
	if err != nil {
		logger.WithError(err).Warn("failed to create kafka producer, continuing without kafka")
		return nil, err
	}

	logger.WithField("brokers", brokerList).Info("kafka producer initialized")
	return producer, nil
}

// closeKafka закрывает Kafka producer если он не nil.
func closeKafka(producer *kafka.Producer, logger *log.Entry) {
	if producer == nil {
		return
	}

	if err := producer.Close(); err != nil {
		logger.WithError(err).Warn("failed to close kafka producer")
	} else {
		logger.Info("kafka producer closed")
	}
}

// newOutboxWorker собирает воркер публикации событий заказов в Kafka.
func newOutboxWorker(cfg Config, repo domain.OutboxRepository, producer *kafka.Producer, logger *log.Entry) *outbox.Worker {
	options := []outbox.Option{
		outbox.WithLogger(logger.WithField("component", "outbox-worker")),
		outbox.WithPollInterval(cfg.OutboxPollInterval),
		outbox.WithBatchSize(cfg.OutboxBatchSize),
		outbox.WithMaxAttempts(cfg.OutboxMaxAttempts),
		outbox.WithRetryBaseDelay(cfg.OutboxRetryDelay),
	}
	if cfg.KafkaDLQTopic != "" {
		options = append(options, outbox.WithDLQPublisher(kafka.NewOutboxPublisher(producer, cfg.KafkaDLQTopic)))
	}

	return outbox.NewWorker(repo, kafka.NewOutboxPublisher(producer, cfg.KafkaOrderTopic), options...)
}

// newOutboxCleanup собирает воркер очистки, если хранилище outbox умеет удалять события.
func newOutboxCleanup(cfg Config, repo domain.OutboxRepository, logger *log.Entry) *outbox.CleanupWorker {
	purger, ok := repo.(domain.OutboxPurger)
	if !ok {
		return nil
	}
	return outbox.NewCleanupWorker(purger,
		outbox.WithCleanupLogger(logger.WithField("component", "outbox-cleanup-worker")),
		outbox.WithCleanupInterval(cfg.OutboxCleanupInterval),
		outbox.WithCleanupBatchSize(cfg.OutboxBatchSize),
		outbox.WithRetention(cfg.OutboxRetention),
	)
}

type runner interface {
	Run(ctx context.Context)
}

// startOutboxWorker запускает воркеры outbox в отдельных горутинах; done закрывается,
// когда остановлены все.
func startOutboxWorker(ctx context.Context, workers ...runner) (context.CancelFunc, <-chan struct{}) {
	workerCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})

	var wg sync.WaitGroup
	for _, w := range workers {
		wg.Add(1)
		go func(w runner) {
			defer wg.Done()
			w.Run(workerCtx)
		}(w)
	}
	go func() {
		wg.Wait()
		close(done)
	}()
	return cancel, done
}

// shutdownOutboxWorker останавливает воркер и ждёт завершения текущего цикла.
func shutdownOutboxWorker(cancel context.CancelFunc, done <-chan struct{}, logger *log.Entry) {
	if cancel == nil {
		return
	}
	cancel()
	if done != nil {
		<-done
	}
	logger.Info("outbox worker stopped")
}
