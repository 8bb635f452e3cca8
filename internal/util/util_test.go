package util

import (
	"elearn_backend/internal/model"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJWTRoundTrip(t *testing.T) {
	user := &model.User{Email: "tolu@example.com", Role: model.RoleSubadmin}
	user.ID = 42

	token, err := GenerateJWT(user, "first-secret", time.Hour)
	require.NoError(t, err)

	claims, err := ParseJWT(token, "first-secret")
	require.NoError(t, err)
	assert.Equal(t, uint(42), claims.UserID)
	assert.Equal(t, model.RoleSubadmin, claims.Role)

	_, err = ParseJWT(token, "other-secret")
	assert.Error(t, err)

	expired, err := GenerateJWT(user, "first-secret", -time.Minute)
	require.NoError(t, err)
	_, err = ParseJWT(expired, "first-secret")
	assert.Error(t, err)
}

func TestNormalizeSet(t *testing.T) {
	assert.Equal(t, []string{"UNILAG", "OAU"}, NormalizeSet([]string{" UNILAG ", "", "OAU", "UNILAG"}))
	out := NormalizeSet(nil)
	assert.NotNil(t, out)
	assert.Empty(t, out)
}

func TestMustParseUint(t *testing.T) {
	assert.Equal(t, uint(7), MustParseUint("7"))
	assert.Zero(t, MustParseUint("-1"))
	assert.Zero(t, MustParseUint("abc"))
}

func TestParseProbeOutput(t *testing.T) {
	out := `{
		"streams": [
			{"codec_type": "audio"},
			{"codec_type": "video", "width": 1280, "height": 720}
		],
		"format": {"duration": "93.480000", "format_name": "mov,mp4,m4a,3gp,3g2,mj2"}
	}`

	info, err := parseProbeOutput(out)
	require.NoError(t, err)
	assert.InDelta(t, 93.48, info.Duration, 0.0001)
	assert.Equal(t, "mov", info.Format)
	assert.Equal(t, 1280, info.Width)
	assert.Equal(t, 720, info.Height)

	info, err = parseProbeOutput(`{"format": {}}`)
	require.NoError(t, err)
	assert.Zero(t, info.Duration)
	assert.Equal(t, "unknown", info.Format)

	_, err = parseProbeOutput("not json")
	assert.Error(t, err)
}

func TestValidateMimeType(t *testing.T) {
	mime, err := ValidateMimeType(strings.NewReader("%PDF-1.7 body"), []string{MimePDF})
	require.NoError(t, err)
	assert.Equal(t, MimePDF, mime)

	_, err = ValidateMimeType(strings.NewReader("<html><body>hi</body></html>"), []string{MimePDF, MimeAudio})
	assert.Error(t, err)

	assert.True(t, HasAllowedExtension("Lecture.MP4", AllowedVideoExtensions))
	assert.False(t, HasAllowedExtension("lecture.exe", AllowedVideoExtensions))
}
