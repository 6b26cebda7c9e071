package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetConfigReadsEnvironment(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("MONGO_DB_URI", "mongodb://mongo:27017")
	t.Setenv("CASS_DB", "cassandra:9042")
	t.Setenv("REDIS_HOST", "redis")
	t.Setenv("REDIS_PORT", "6379")
	t.Setenv("AVAILABILITY_SERVICE_URL", "http://availability:8080")

	cfg := GetConfig()
	assert.Equal(t, "booking-service", cfg.ServiceName)
	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, "mongodb://mongo:27017", cfg.MongoDBURI)
	assert.Equal(t, "cassandra:9042", cfg.CassandraHost)
	assert.Equal(t, "redis", cfg.RedisHost)
	assert.Equal(t, "6379", cfg.RedisPort)
	assert.Equal(t, "http://availability:8080", cfg.AvailabilityServiceURL)
}
