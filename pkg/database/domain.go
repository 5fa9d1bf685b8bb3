package database

import (
	"time"
)

// Connection definition sql setting
type Connection struct {
	ConnectStr string

	RetryCount    int
	RetryInterval time.Duration
}

// RedisConnection definition redis; Addr selects a single node, otherwise sentinels are used.
type RedisConnection struct {
	Addr          string
	MasterName    string
	SentinelAddrs []string
	Password      string
	DB            int
}

// KafkaConnection definition kafka
type KafkaConnection struct {
	Brokers       []string
	Topic         string
	RetryCount    int
	RetryInterval time.Duration
}

// retry runs fn up to count times, sleeping interval seconds between attempts.
func retry(count int, interval time.Duration, fn func(attempt int) error) error {
	if count <= 0 {
		count = 1
	}
	var err error
	for i := 1; i <= count; i++ {
		if err = fn(i); err == nil {
			return nil
		}
		if i < count {
			time.Sleep(interval * time.Second)
		}
	}
	return err
}
