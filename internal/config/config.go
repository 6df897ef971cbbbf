package config

import (
	"strings"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/segmentio/kafka-go"
)

// Config настройки процесса; заполняется из флагов и переменных окружения в cmd
type Config struct {
	Addr         string
	Store        string
	RedisAddr    string
	Feed         string
	KafkaBrokers string
	KafkaTopic   string
	Roster       []string
	AdminName    string
	PollInterval time.Duration
	RateLimit    float64
	RateBurst    int
}

const (
	StoreMemory = "memory"
	StoreRedis  = "redis"

	// FeedPush уведомления хранилища; FeedPoll периодический опрос
	FeedPush = "push"
	FeedPoll = "poll"
)

func (c Config) Brokers() []string {
	var out []string
	for _, b := range strings.Split(c.KafkaBrokers, ",") {
		if b = strings.TrimSpace(b); b != "" {
			out = append(out, b)
		}
	}
	return out
}

func NewKafkaWriter(brokers []string, topic string) *kafka.Writer {
	return &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.LeastBytes{}, // Balancer for selecting partition
		AllowAutoTopicCreation: true,
	}
}

func NewRedisClient(addr string) *redis.Client {
	return redis.NewClient(&redis.Options{Addr: addr})
}
