package config

type App struct {
	Port            string `env:"APP_PORT" default:"8080"`
	DatabaseURL     string `env:"DATABASE_URL,required"`
	JWTSecret       string `env:"JWT_SECRET,required"`
	SessionCookie   string `env:"SESSION_COOKIE" default:"librarydb_session"`
	SessionTTLHours int    `env:"SESSION_TTL_HOURS" default:"24"`
	OpenLibraryBase string `env:"OPENLIBRARY_BASE" default:"https://openlibrary.org"`
	RedisAddr       string `env:"REDIS_ADDR"`
	Env             string `env:"APP_ENV" default:"dev"`
}
