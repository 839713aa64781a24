package common

// MaxUploadBytes is the largest file the upload relay accepts (10 MB).
// Clients check it before opening a request, the server enforces it again.
const MaxUploadBytes int64 = 10 << 20

// UploadFieldName is the multipart form field carrying the uploaded file.
const UploadFieldName = "file"

// SessionCookieName is the cookie that carries the signed session token.
const SessionCookieName = "token"

// AcceptedUploadTypes lists the content types the relay stores.
var AcceptedUploadTypes = map[string]string{
	"image/jpeg":      ".jpg",
	"image/png":       ".png",
	"image/gif":       ".gif",
	"image/webp":      ".webp",
	"application/pdf": ".pdf",
}
