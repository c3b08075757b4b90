package logger

import "time"

// LogDownload logs a media download event in a consistent format
func LogDownload(account, filename, mediaType string, success bool, err error) {
	fields := map[string]interface{}{
		"account":    account,
		"filename":   filename,
		"media_type": mediaType,
		"action":     "download",
	}

	if success {
		GetLogger().DebugWithFields("media downloaded", fields)
	} else {
		if err != nil {
			fields["error"] = err.Error()
		}
		GetLogger().ErrorWithFields("media download failed", fields)
	}
}

// LogPage logs a feed pagination event
func LogPage(account string, page, count int, cursor string) {
	GetLogger().DebugWithFields("feed page fetched", map[string]interface{}{
		"account": account,
		"page":    page,
		"count":   count,
		"cursor":  cursor,
	})
}

// LogConversion logs a playlist remux event
func LogConversion(input, output string, duration time.Duration, err error) {
	fields := map[string]interface{}{
		"input":    input,
		"output":   output,
		"duration": duration,
	}
	if err != nil {
		fields["error"] = err.Error()
		GetLogger().ErrorWithFields("playlist conversion failed", fields)
		return
	}
	GetLogger().InfoWithFields("playlist converted", fields)
}
