package util

const (
	DateFormat = "2006-01-02"
	TimeFormat = "2006-01-02 15:04:05"
)

const (
	StorageLocal = "local"
	StorageMinio = "minio"
	StorageOSS   = "oss"
)

const (
	MB = int64(1) << 20

	MaxAudioSize    = 50 * MB
	MaxVideoSize    = 100 * MB
	MaxDocumentSize = 25 * MB
)

const (
	MimeVideo       = "video/"
	MimeAudio       = "audio/"
	MimePDF         = "application/pdf"
	MimeMSWord      = "application/msword"
	MimeDocx        = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	MimeZip         = "application/zip" // docx 识别为 zip
	MimeOctetStream = "application/octet-stream"
)

var (
	AllowedAudioExtensions    = []string{".mp3", ".wav", ".m4a", ".aac", ".ogg"}
	AllowedVideoExtensions    = []string{".mp4", ".mov", ".avi", ".mkv", ".webm"}
	AllowedDocumentExtensions = []string{".pdf", ".doc", ".docx"}
)
