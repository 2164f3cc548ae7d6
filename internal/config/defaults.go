package config

// DefaultConfig returns a Config populated with all default values.
func DefaultConfig() *Config {
	return &Config{
		API: APIConfig{
			BaseURL:        "",
			WorkspaceID:    "",
			TeamID:         "",
			ChunkDays:      30,
			TimeoutSeconds: 30,
			CookieEnv:      "COMMSIFT_COOKIE",
			CSRFTokenEnv:   "COMMSIFT_CSRF_TOKEN",
		},
		Filter: FilterConfig{
			InternalDomain:         "postman.com",
			SenderDenylist:         DefaultSenderDenylist(),
			AutomatedSenderMarkers: DefaultAutomatedSenderMarkers(),
			AutoReplyMarkers:       DefaultAutoReplyMarkers(),
			TemplateMarkers:        DefaultTemplateMarkers(),
			SimilarityThreshold:    0.85,
			DedupThreshold:         0.95,
			BlastWindowHours:       24,
			HighVolumeMinMessages:  5,
			HighVolumeTemplateRate: 0.7,
		},
		Output: OutputConfig{
			Dir:            "~/Desktop/commsift-output",
			EmailsPerBatch: 20,
		},
		Storage: StorageConfig{
			Path:       "~/.config/commsift",
			SQLiteFile: "commsift.db",
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}
