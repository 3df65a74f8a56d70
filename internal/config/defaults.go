package config

const (
	defaultDataDir    = "~/.local/share/newsroom"
	defaultLogDir     = "~/.local/share/newsroom/logs"
	defaultContextDir = "~/.config/newsroom/context"
	defaultAudioDir   = "~/.cache/newsroom/audio"

	defaultYouTubeDataAPIBaseURL = "https://www.googleapis.com/youtube/v3"
	defaultYouTubeWatchBaseURL   = "https://www.youtube.com"
	defaultYouTubeLanguage       = "en"
	defaultYouTubeTimeoutSeconds = 30
	defaultFetchIntervalMillis   = 1000
	defaultMaxListPages          = 4

	defaultLLMBaseURL           = "https://openrouter.ai/api/v1/chat/completions"
	defaultXAIBaseURL           = "https://api.x.ai/v1/chat/completions"
	defaultLLMModel             = "x-ai/grok-4-fast"
	defaultXAIModel             = "grok-4-fast"
	defaultLLMReferer           = "https://github.com/newsroom"
	defaultLLMTitle             = "newsroom"
	defaultLLMTimeoutSeconds    = 120
	defaultLLMTemperature       = 0.7
	defaultLLMRequestsPerMinute = 30

	defaultImagesBaseURL        = "https://api.openai.com/v1/images/generations"
	defaultImagesModel          = "gpt-image-1-mini"
	defaultImagesSize           = "1536x1024"
	defaultImagesQuality        = "medium"
	defaultImagesTimeoutSeconds = 180

	defaultWhisperXModel          = "large-v3-turbo"
	defaultWhisperXVADMethod      = "silero"
	defaultYTDLPBinary            = "yt-dlp"
	defaultWhisperXTimeoutSeconds = 3600

	defaultBatchSize          = 5
	defaultItemTimeoutSeconds = 300
	defaultSummaryMaxChars    = 850
	defaultSnippetMaxChars    = 250

	defaultJournalist  = "aurelius-stone"
	defaultArtist      = "spectra-veritas"
	defaultTone        = "analytical"
	defaultArticleType = "op_ed"

	defaultPublishTimeoutSeconds = 30

	defaultNotifyRequestTimeout = 10

	defaultAPIBind            = "127.0.0.1:7510"
	defaultRunIntervalMinutes = 0

	defaultLogFormat        = "console"
	defaultLogLevel         = "info"
	defaultLogRetentionDays = 30
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			DataDir:    defaultDataDir,
			LogDir:     defaultLogDir,
			ContextDir: defaultContextDir,
			AudioDir:   defaultAudioDir,
		},
		YouTube: YouTube{
			DataAPIBaseURL:        defaultYouTubeDataAPIBaseURL,
			WatchBaseURL:          defaultYouTubeWatchBaseURL,
			Language:              defaultYouTubeLanguage,
			RequestTimeoutSeconds: defaultYouTubeTimeoutSeconds,
			FetchIntervalMillis:   defaultFetchIntervalMillis,
			MaxListPages:          defaultMaxListPages,
		},
		LLM: LLM{
			BaseURL:           defaultLLMBaseURL,
			Model:             defaultLLMModel,
			Referer:           defaultLLMReferer,
			Title:             defaultLLMTitle,
			TimeoutSeconds:    defaultLLMTimeoutSeconds,
			Temperature:       defaultLLMTemperature,
			RequestsPerMinute: defaultLLMRequestsPerMinute,
		},
		Images: Images{
			BaseURL:        defaultImagesBaseURL,
			Model:          defaultImagesModel,
			Size:           defaultImagesSize,
			Quality:        defaultImagesQuality,
			TimeoutSeconds: defaultImagesTimeoutSeconds,
		},
		WhisperX: WhisperX{
			Enabled:        true,
			Model:          defaultWhisperXModel,
			VADMethod:      defaultWhisperXVADMethod,
			YTDLPBinary:    defaultYTDLPBinary,
			TimeoutSeconds: defaultWhisperXTimeoutSeconds,
		},
		Pipeline: Pipeline{
			BatchSize:          defaultBatchSize,
			ItemTimeoutSeconds: defaultItemTimeoutSeconds,
			AutoBuild:          true,
			SummaryMaxChars:    defaultSummaryMaxChars,
			SnippetMaxChars:    defaultSnippetMaxChars,
		},
		Creators: Creators{
			Journalist:  defaultJournalist,
			Artist:      defaultArtist,
			Tone:        defaultTone,
			ArticleType: defaultArticleType,
		},
		Publish: Publish{
			TimeoutSeconds: defaultPublishTimeoutSeconds,
		},
		Notifications: Notifications{
			RequestTimeout: defaultNotifyRequestTimeout,
			RunComplete:    true,
			Errors:         true,
		},
		Daemon: Daemon{
			APIBind:            defaultAPIBind,
			RunIntervalMinutes: defaultRunIntervalMinutes,
		},
		Logging: Logging{
			Format:        defaultLogFormat,
			Level:         defaultLogLevel,
			RetentionDays: defaultLogRetentionDays,
		},
	}
}
