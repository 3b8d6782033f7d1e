package config

const (
	defaultLibraryDir      = "~/.local/share/tunecast/audio"
	defaultLogDir          = "~/.local/share/tunecast/logs"
	defaultAPIBind         = "127.0.0.1:3000"
	defaultTranscoder      = "ffmpeg"
	defaultInfoTimeout     = 30
	defaultConvertTimeout  = 300
	defaultMaxCaptureBytes = 10 * 1024 * 1024
	defaultAudioFormat     = "mp3"
	defaultAudioQuality    = "192K"
	defaultConvertRate     = 6
	defaultConvertBurst    = 2
	defaultLogFormat       = "console"
	defaultLogLevel        = "info"
)

func defaultExtractorCandidates() []string {
	return []string{"yt-dlp", "youtube-dl"}
}

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			LibraryDir: defaultLibraryDir,
			LogDir:     defaultLogDir,
			APIBind:    defaultAPIBind,
		},
		Tools: Tools{
			ExtractorCandidates: defaultExtractorCandidates(),
			Transcoder:          defaultTranscoder,
		},
		Conversion: Conversion{
			InfoTimeout:     defaultInfoTimeout,
			ConvertTimeout:  defaultConvertTimeout,
			MaxCaptureBytes: defaultMaxCaptureBytes,
			AudioFormat:     defaultAudioFormat,
			AudioQuality:    defaultAudioQuality,
		},
		Server: Server{
			ConvertRatePerMinute: defaultConvertRate,
			ConvertBurst:         defaultConvertBurst,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
