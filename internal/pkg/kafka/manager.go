package kafka

import (
	"Viewpoint/internal/api/config"
	"Viewpoint/internal/pkg/metrics"
	"context"
	"errors"
	log "log/slog"
	"sync"

	"github.com/IBM/sarama"
)

type consumer struct {
	name    string
	topic   string
	group   sarama.ConsumerGroup
	handler sarama.ConsumerGroupHandler
}

// ConsumerManager 管理所有 Canal 主题的消费者
type ConsumerManager struct {
	consumers []consumer
}

// NewConsumerManager 按配置为每个主题创建消费组，未配置主题的跳过
func NewConsumerManager(cfg *config.Config, m *metrics.Metrics) (*ConsumerManager, error) {
	saramaCfg := newSaramaConfig(cfg.Kafka)

	specs := []struct {
		name    string
		topic   config.KafkaTopicConsumer
		handler sarama.ConsumerGroupHandler
	}{
		{"views", cfg.KafkaViewConsumer, NewViewsHandler(m)},
		{"interactions", cfg.KafkaInteractionConsumer, NewInteractionsHandler(m)},
		{"user_follows", cfg.KafkaUserFollowsConsumer, NewUserFollowsHandler(m)},
		{"contents", cfg.KafkaContentConsumer, NewContentsHandler(m)},
	}

	manager := &ConsumerManager{}
	for _, spec := range specs {
		if spec.topic.Topic == "" || spec.topic.GroupID == "" {
			log.Warn("Kafka consumer not configured, skipped", "consumer", spec.name)
			continue
		}
		group, err := sarama.NewConsumerGroup(cfg.Kafka.Brokers, spec.topic.GroupID, saramaCfg)
		if err != nil {
			_ = manager.close()
			return nil, err
		}
		manager.consumers = append(manager.consumers, consumer{
			name:    spec.name,
			topic:   spec.topic.Topic,
			group:   group,
			handler: spec.handler,
		})
	}
	return manager, nil
}

// Start 启动所有消费者，阻塞到 ctx 结束
func (m *ConsumerManager) Start(ctx context.Context) error {
	var wg sync.WaitGroup
	for _, c := range m.consumers {
		wg.Add(2)
		go func(c consumer) {
			defer wg.Done()
			log.Info("Kafka consumer started", "consumer", c.name, "topic", c.topic)
			for {
				if err := c.group.Consume(ctx, []string{c.topic}, c.handler); err != nil {
					if errors.Is(err, sarama.ErrClosedConsumerGroup) {
						return
					}
					log.Error("Error from consumer", "consumer", c.name, "err", err)
				}
				if ctx.Err() != nil {
					return
				}
			}
		}(c)
		go func(c consumer) {
			defer wg.Done()
			for {
				select {
				case err, ok := <-c.group.Errors():
					if !ok {
						return
					}
					log.Error("Kafka consumer group error", "consumer", c.name, "err", err)
				case <-ctx.Done():
					return
				}
			}
		}(c)
	}

	<-ctx.Done()
	log.Info("Kafka Manager shutting down...")
	err := m.close()
	wg.Wait()
	return err
}

func (m *ConsumerManager) close() error {
	var errs []error
	for _, c := range m.consumers {
		if err := c.group.Close(); err != nil {
			log.Error("Failed to close consumer", "consumer", c.name, "err", err)
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
