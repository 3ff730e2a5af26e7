package redis

// Config holds configuration for the Redis connection used for run locks and alerts.
type Config struct {
	// Enabled switches locks and alerts to Redis. When false the service
	// runs with an in-process lock and logs alerts only.
	Enabled bool `mapstructure:"enabled" default:"false"`
	// Addr is the host:port of the Redis server.
	Addr string `mapstructure:"addr" default:"localhost:6379"`
	// Password is the Redis password.
	Password string `mapstructure:"password" default:""`
	// DB is the Redis database index.
	DB int `mapstructure:"db" default:"0"`
	// AlertStream is the stream reconciliation alerts are appended to.
	AlertStream string `mapstructure:"alert_stream" default:"reconciliation:alerts"`
	// TimeoutSeconds bounds dialing and the initial ping.
	TimeoutSeconds int `mapstructure:"timeout_seconds" default:"5"`
}
