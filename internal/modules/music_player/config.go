package music_player

// Config holds the music player module configuration.
type Config struct {
	LavalinkAddress  string `env:"LAVALINK_ADDRESS,notEmpty"`
	LavalinkPassword string `env:"LAVALINK_PASSWORD,notEmpty"`
	LavalinkSecure   bool   `env:"LAVALINK_SECURE"          envDefault:"false"`

	SearchCacheSize int     `env:"SEARCH_CACHE_SIZE" envDefault:"100"`
	MaxQueueSize    int     `env:"MAX_QUEUE_SIZE"    envDefault:"500"`
	SearchRateLimit float64 `env:"SEARCH_RATE_LIMIT" envDefault:"5"`
	SearchRateBurst int     `env:"SEARCH_RATE_BURST" envDefault:"5"`
	QueuePageSize   int     `env:"QUEUE_PAGE_SIZE"   envDefault:"10"`
}
