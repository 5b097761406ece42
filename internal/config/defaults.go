package config

// Default coordinates center the Overpass query on the shipped resort.
const (
	defaultConditionsURL = "https://www.bromontmontagne.com/conditions-detaillees/"
	defaultOverpassURL   = "https://overpass-api.de/api/interpreter"
	defaultLatitude      = 45.3167
	defaultLongitude     = -72.65
	defaultRadiusMeters  = 5000
)

// Default returns the baseline configuration before any file overrides.
func Default() Config {
	return Config{
		Paths: Paths{
			DataDir: "~/.local/share/corduroy",
			LogDir:  "~/.local/share/corduroy/logs",
			APIBind: "127.0.0.1:7850",
		},
		Resort: Resort{
			Name:           "Bromont",
			ConditionsURL:  defaultConditionsURL,
			RequestTimeout: 10,
		},
		Overpass: Overpass{
			URL:            defaultOverpassURL,
			Latitude:       defaultLatitude,
			Longitude:      defaultLongitude,
			RadiusMeters:   defaultRadiusMeters,
			RequestTimeout: 90,
			MaxAttempts:    2,
			RetryDelay:     3,
			CacheTTLHours:  24,
		},
		Matching: Matching{
			Locale:         "fr",
			FuzzyThreshold: 0.75,
		},
		Workflow: Workflow{
			PollIntervalMinutes: 5,
			CatalogRefreshHours: 24,
		},
		Notifications: Notifications{
			RequestTimeout: 10,
			TrailChanges:   true,
			Errors:         true,
		},
		Logging: Logging{
			Format: "console",
			Level:  "info",
		},
	}
}
