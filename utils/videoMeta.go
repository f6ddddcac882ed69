package utils

import (
	"fmt"
	"math"
	"time"

	"github.com/go-resty/resty/v2"

	"lms/config"
)

// FetchVideoDuration asks the configured oEmbed endpoint for the
// duration of a video URL, in minutes. Used to backfill a lesson's
// duration when the admin does not provide one.
func FetchVideoDuration(videoURL string) (int, error) {
	client := resty.New().SetTimeout(5 * time.Second)

	var result struct {
		Duration float64 `json:"duration"`
		Error    string  `json:"error"`
	}

	resp, err := client.R().
		SetQueryParam("url", videoURL).
		SetResult(&result).
		Get(config.AppConfig.OEmbedURL)
	if err != nil {
		return 0, err
	}
	if resp.IsError() {
		return 0, fmt.Errorf("oembed request failed with status %d", resp.StatusCode())
	}
	if result.Error != "" {
		return 0, fmt.Errorf("oembed lookup failed: %s", result.Error)
	}
	if result.Duration <= 0 {
		return 0, fmt.Errorf("no duration in oembed response for %s", videoURL)
	}

	return int(math.Ceil(result.Duration / 60)), nil
}
