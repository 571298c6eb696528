package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoadConfig_SplitsKafkaBrokerList(t *testing.T) {
	t.Setenv("KAFKA_BROKERS", "broker-1:9092,broker-2:9092")

	cfg := loadConfig()

	assert.Equal(t, []string{"broker-1:9092", "broker-2:9092"}, cfg.KafkaBrokers)
}

func TestLoadConfig_SingleBrokerDefault(t *testing.T) {
	t.Setenv("KAFKA_BROKERS", "")

	cfg := loadConfig()

	assert.Equal(t, []string{"localhost:9092"}, cfg.KafkaBrokers)
}
