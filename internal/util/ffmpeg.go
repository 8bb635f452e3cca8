package util

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	ffmpeg "github.com/u2takey/ffmpeg-go"
)

// MediaInfo ffprobe 解析出的音视频信息
type MediaInfo struct {
	Duration float64 `json:"duration"` // 秒
	Format   string  `json:"format"`
	Width    int     `json:"width,omitempty"`
	Height   int     `json:"height,omitempty"`
}

// ProbeMedia 需要 PATH 中有 ffprobe，出错时调用方按时长未知处理
func ProbeMedia(path string) (*MediaInfo, error) {
	jsonOutput, err := ffmpeg.Probe(path)
	if err != nil {
		return nil, fmt.Errorf("probe media: %w", err)
	}
	return parseProbeOutput(jsonOutput)
}

func parseProbeOutput(jsonOutput string) (*MediaInfo, error) {
	var result struct {
		Streams []struct {
			CodecType string `json:"codec_type"`
			Width     int    `json:"width"`
			Height    int    `json:"height"`
		} `json:"streams"`
		Format struct {
			Duration string `json:"duration"`
			Format   string `json:"format_name"`
		} `json:"format"`
	}

	if err := json.Unmarshal([]byte(jsonOutput), &result); err != nil {
		return nil, fmt.Errorf("parse probe output: %w", err)
	}

	info := &MediaInfo{Format: "unknown"}
	for _, stream := range result.Streams {
		if stream.CodecType == "video" {
			info.Width = stream.Width
			info.Height = stream.Height
			break
		}
	}

	if d, err := strconv.ParseFloat(result.Format.Duration, 64); err == nil {
		info.Duration = d
	}

	if result.Format.Format != "" {
		info.Format = strings.Split(result.Format.Format, ",")[0]
	}

	return info, nil
}
