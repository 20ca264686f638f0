package producers

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/segmentio/kafka-go"
)

const (
	topicLookupAttempts = 5
	topicLookupDelay    = 2 * time.Second
)

// topicAdmin is the subset of *kafka.Conn used to manage topics.
type topicAdmin interface {
	ReadPartitions(topics ...string) ([]kafka.Partition, error)
	CreateTopics(topics ...kafka.TopicConfig) error
}

// createKafkaTopicIfNotExists looks up topicName and creates it when no partitions are visible.
func createKafkaTopicIfNotExists(conn topicAdmin, topicName string, numPartitions int, replicationFactor int, log *slog.Logger) error {
	partitions, err := lookupTopic(conn, topicName, topicLookupAttempts, topicLookupDelay, log)
	if len(partitions) > 0 {
		log.Info("Kafka topic exists", "topic", topicName, "partitions", len(partitions))
		return nil
	}

	log.Info("Creating Kafka topic", "topic", topicName, "last_lookup_error", err)
	if numPartitions <= 0 {
		numPartitions = 1
	}
	if replicationFactor <= 0 {
		replicationFactor = 1
	}

	if err := conn.CreateTopics(kafka.TopicConfig{
		Topic:             topicName,
		NumPartitions:     numPartitions,
		ReplicationFactor: replicationFactor,
	}); err != nil {
		return fmt.Errorf("failed to create kafka topic %s: %w", topicName, err)
	}

	log.Info("Created Kafka topic", "topic", topicName, "partitions", numPartitions)
	return nil
}

func lookupTopic(conn topicAdmin, topicName string, attempts int, delay time.Duration, log *slog.Logger) ([]kafka.Partition, error) {
	var lastErr error
	for i := 0; i < attempts; i++ {
		partitions, err := conn.ReadPartitions(topicName)
		if err == nil {
			return partitions, nil
		}
		lastErr = err
		log.Warn("Failed to read topic partitions", "topic", topicName, "attempt", i+1, "error", err)
		if i < attempts-1 {
			time.Sleep(delay)
		}
	}
	return nil, lastErr
}
