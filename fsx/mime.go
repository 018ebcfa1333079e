package fsx

import (
	"mime"
	"net/http"
	"path/filepath"
	"strings"
)

// extraTypes covers formats WhatsApp accepts that the system MIME table
// often lacks.
var extraTypes = map[string]string{
	".txt":  "text/plain",
	".mp4":  "video/mp4",
	".jpg":  "image/jpeg",
	".opus": "audio/ogg",
	".ogg":  "audio/ogg",
	".amr":  "audio/amr",
	".m4a":  "audio/mp4",
	".aac":  "audio/aac",
	".3gp":  "video/3gpp",
	".webp": "image/webp",
	".docx": "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	".xlsx": "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
	".pptx": "application/vnd.openxmlformats-officedocument.presentationml.presentation",
}

// DetectContentType guesses a MIME type from the file extension and falls
// back to sniffing the content. Parameters such as charset are dropped.
func DetectContentType(name string, data []byte) string {
	ext := strings.ToLower(filepath.Ext(name))
	if t, ok := extraTypes[ext]; ok {
		return t
	}
	if t := mime.TypeByExtension(ext); t != "" {
		return stripParams(t)
	}
	return stripParams(http.DetectContentType(data))
}

func stripParams(t string) string {
	mediaType, _, err := mime.ParseMediaType(t)
	if err != nil {
		return t
	}
	return mediaType
}
