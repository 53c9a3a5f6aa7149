package config

// RedisConfig holds the connection settings for the cache layer. A client is
// always built from it, even with a zero-value Host; when the server cannot
// be reached, hint reads fail and callers rely on the authoritative database
// read alone.
type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}
