package config

import "os"

type Config struct {
	Port                    string
	ServiceName             string
	JaegerAddress           string
	MongoDBURI              string
	CassandraHost           string
	RedisHost               string
	RedisPort               string
	NatsHost                string
	NatsPort                string
	NatsUser                string
	NatsPass                string
	ReservationEventSubject string
	AvailabilityServiceURL  string
	DefaultNightlyRate      string
	Currency                string
	LogFile                 string
	AllowedOrigin           string
}

func GetConfig() Config {
	return Config{
		Port:                    os.Getenv("PORT"),
		ServiceName:             "booking-service",
		JaegerAddress:           os.Getenv("JAEGER_ADDRESS"),
		MongoDBURI:              os.Getenv("MONGO_DB_URI"),
		CassandraHost:           os.Getenv("CASS_DB"),
		RedisHost:               os.Getenv("REDIS_HOST"),
		RedisPort:               os.Getenv("REDIS_PORT"),
		NatsHost:                os.Getenv("NATS_HOST"),
		NatsPort:                os.Getenv("NATS_PORT"),
		NatsUser:                os.Getenv("NATS_USER"),
		NatsPass:                os.Getenv("NATS_PASS"),
		ReservationEventSubject: os.Getenv("RESERVATION_EVENT_SUBJECT"),
		AvailabilityServiceURL:  os.Getenv("AVAILABILITY_SERVICE_URL"),
		DefaultNightlyRate:      os.Getenv("DEFAULT_NIGHTLY_RATE"),
		Currency:                os.Getenv("CURRENCY"),
		LogFile:                 os.Getenv("LOG_FILE"),
		AllowedOrigin:           os.Getenv("ALLOWED_ORIGIN"),
	}
}
