package service

import (
	"bytes"
	"context"
	"elearn_backend/internal/config"
	"elearn_backend/internal/util"
	"errors"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fileHeader(t *testing.T, filename string, content []byte) *multipart.FileHeader {
	t.Helper()

	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	part, err := w.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	form, err := multipart.NewReader(&body, w.Boundary()).ReadForm(1 << 20)
	require.NoError(t, err)
	t.Cleanup(func() { form.RemoveAll() })
	return form.File["file"][0]
}

func newLocalMedia(t *testing.T) (*MediaService, string) {
	t.Helper()
	dir := t.TempDir()
	storage := NewStorageService(&config.Config{Storage: config.StorageConfig{Type: util.StorageLocal, LocalPath: dir}})
	return NewMediaService(storage), dir
}

func TestUploadDocument(t *testing.T) {
	media, dir := newLocalMedia(t)
	media.Probe = func(string) (*util.MediaInfo, error) {
		t.Fatal("documents are not probed")
		return nil, nil
	}

	content := []byte("%PDF-1.4\n%fake document body\n")
	res, err := media.Upload(context.Background(), MediaDocument, fileHeader(t, "notes.PDF", content))
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(res.URL, "/uploads/document/"))
	assert.True(t, strings.HasSuffix(res.URL, ".pdf"))
	assert.Equal(t, int64(len(content)), res.Bytes)
	assert.Equal(t, "pdf", res.Format)
	assert.Nil(t, res.Duration)

	stored, err := os.ReadFile(filepath.Join(dir, strings.TrimPrefix(res.URL, "/uploads/")))
	require.NoError(t, err)
	assert.Equal(t, content, stored)
}

func TestUploadAudioUsesProbe(t *testing.T) {
	media, _ := newLocalMedia(t)
	media.Probe = func(path string) (*util.MediaInfo, error) {
		assert.Equal(t, ".mp3", filepath.Ext(path))
		return &util.MediaInfo{Duration: 12.5, Format: "mp3"}, nil
	}

	res, err := media.Upload(context.Background(), MediaAudio, fileHeader(t, "lecture.mp3", []byte("ID3\x03\x00\x00\x00\x00\x00\x00audio")))
	require.NoError(t, err)
	require.NotNil(t, res.Duration)
	assert.Equal(t, 12.5, *res.Duration)
	assert.True(t, strings.HasPrefix(res.URL, "/uploads/audio/"))
}

func TestUploadSurvivesProbeFailure(t *testing.T) {
	media, _ := newLocalMedia(t)
	media.Probe = func(string) (*util.MediaInfo, error) {
		return nil, errors.New("ffprobe not found")
	}

	res, err := media.Upload(context.Background(), MediaAudio, fileHeader(t, "lecture.mp3", []byte("ID3\x03\x00\x00\x00\x00\x00\x00audio")))
	require.NoError(t, err)
	assert.Nil(t, res.Duration)
	assert.Equal(t, "mp3", res.Format)
}

func TestUploadRejects(t *testing.T) {
	media, _ := newLocalMedia(t)
	ctx := context.Background()

	_, err := media.Upload(ctx, "image", fileHeader(t, "a.png", []byte("x")))
	assert.ErrorIs(t, err, util.ErrValidation)

	_, err = media.Upload(ctx, MediaDocument, nil)
	assert.ErrorIs(t, err, util.ErrValidation)

	_, err = media.Upload(ctx, MediaDocument, fileHeader(t, "notes.txt", []byte("%PDF-1.4")))
	assert.ErrorIs(t, err, util.ErrValidation, "extension not allowed")

	_, err = media.Upload(ctx, MediaDocument, fileHeader(t, "notes.pdf", []byte("just some plain text")))
	assert.ErrorIs(t, err, util.ErrValidation, "content does not look like a document")

	h := fileHeader(t, "big.pdf", []byte("%PDF-1.4"))
	h.Size = util.MaxDocumentSize + 1
	_, err = media.Upload(ctx, MediaDocument, h)
	assert.ErrorIs(t, err, util.ErrValidation)
}
