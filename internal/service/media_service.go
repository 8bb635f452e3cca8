package service

import (
	"context"
	"elearn_backend/internal/model"
	"elearn_backend/internal/util"
	"elearn_backend/pkg/logger"
	"elearn_backend/pkg/monitoring"
	"elearn_backend/pkg/tracing"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

type MediaKind string

const (
	MediaAudio    MediaKind = "audio"
	MediaVideo    MediaKind = "video"
	MediaDocument MediaKind = "document"
)

type mediaRule struct {
	maxSize    int64
	extensions []string
	mimeTypes  []string
	probe      bool
}

// 内容识别无法区分所有容器格式，扩展名已匹配时接受 octet-stream
var mediaRules = map[MediaKind]mediaRule{
	MediaAudio: {
		maxSize:    util.MaxAudioSize,
		extensions: util.AllowedAudioExtensions,
		mimeTypes:  []string{util.MimeAudio, "application/ogg", "video/mp4", util.MimeOctetStream},
		probe:      true,
	},
	MediaVideo: {
		maxSize:    util.MaxVideoSize,
		extensions: util.AllowedVideoExtensions,
		mimeTypes:  []string{util.MimeVideo, util.MimeOctetStream},
		probe:      true,
	},
	MediaDocument: {
		maxSize:    util.MaxDocumentSize,
		extensions: util.AllowedDocumentExtensions,
		mimeTypes:  []string{util.MimePDF, util.MimeMSWord, util.MimeDocx, util.MimeZip, util.MimeOctetStream},
	},
}

type MediaUpload struct {
	URL      string   `json:"url"`
	Bytes    int64    `json:"bytes"`
	Format   string   `json:"format"`
	Duration *float64 `json:"duration,omitempty"`
}

type MediaService struct {
	Storage *StorageService
	// Probe 可替换，测试无需安装 ffprobe
	Probe func(path string) (*util.MediaInfo, error)
}

func NewMediaService(storage *StorageService) *MediaService {
	return &MediaService{Storage: storage, Probe: util.ProbeMedia}
}

// Upload 校验并保存单个文件。音视频会探测时长，
// 探测失败时时长为空，上传不失败
func (s *MediaService) Upload(ctx context.Context, kind MediaKind, header *multipart.FileHeader) (res *MediaUpload, err error) {
	ctx, end := tracing.Start(ctx, "MediaService.Upload", attribute.String("media.kind", string(kind)))
	defer func() { end(err) }()

	rule, ok := mediaRules[kind]
	if !ok {
		return nil, util.NewValidationError("kind must be one of: audio video document")
	}
	if header == nil {
		return nil, util.NewValidationError("file is required")
	}
	if header.Size > rule.maxSize {
		return nil, util.NewValidationError("%s files must be at most %dMB", kind, rule.maxSize/util.MB)
	}
	if !util.HasAllowedExtension(header.Filename, rule.extensions) {
		return nil, util.NewValidationError("unsupported %s file extension, allowed: %s", kind, strings.Join(rule.extensions, ", "))
	}

	file, err := header.Open()
	if err != nil {
		return nil, err
	}
	defer file.Close()

	mimeType, err := util.ValidateMimeType(file, rule.mimeTypes)
	if err != nil {
		return nil, util.NewValidationError("%v", err)
	}
	if _, err := file.Seek(0, io.SeekStart); err != nil {
		return nil, err
	}

	ext := strings.ToLower(filepath.Ext(header.Filename))
	tmp, err := os.CreateTemp("", "upload-*"+ext)
	if err != nil {
		return nil, err
	}
	defer os.Remove(tmp.Name())

	written, err := io.Copy(tmp, io.LimitReader(file, rule.maxSize+1))
	closeErr := tmp.Close()
	if err != nil {
		return nil, err
	}
	if closeErr != nil {
		return nil, closeErr
	}
	if written > rule.maxSize {
		return nil, util.NewValidationError("%s files must be at most %dMB", kind, rule.maxSize/util.MB)
	}

	res = &MediaUpload{Bytes: written, Format: strings.TrimPrefix(ext, ".")}
	if rule.probe && s.Probe != nil {
		info, err := s.Probe(tmp.Name())
		if err != nil {
			logger.Log.Debug("media probe failed", zap.String("file", header.Filename), zap.Error(err))
		} else {
			if info.Duration > 0 {
				d := info.Duration
				res.Duration = &d
			}
			if info.Format != "" && info.Format != "unknown" {
				res.Format = info.Format
			}
		}
	}

	key := fmt.Sprintf("%s/%s%s", kind, model.GenerateUUID(), ext)
	url, err := s.Storage.UploadFile(ctx, key, tmp.Name(), mimeType)
	if err != nil {
		return nil, err
	}
	res.URL = url

	monitoring.MediaUploadBytes.WithLabelValues(string(kind)).Add(float64(written))
	logger.Log.Info("media uploaded",
		zap.String("kind", string(kind)),
		zap.String("key", key),
		zap.Int64("bytes", written),
	)
	return res, nil
}
