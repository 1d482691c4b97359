package acquire

import "time"

const (
	userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) " +
		"AppleWebKit/537.36 (KHTML, like Gecko) Chrome/127.0.0.0 Safari/537.36"

	DefaultFetchTimeout     = 20 * time.Second
	DefaultMaxContentLength = 4000

	maxBodyBytes = 10 << 20

	audioBaseName      = "temp_audio"
	audioFileName      = audioBaseName + ".mp3"
	transcriptFileName = audioBaseName + ".txt"
	audioOutputPattern = audioBaseName + ".%(ext)s"

	whisperDeviceAuto = "auto"

	runOutputTailLength = 300
)
