package sniff

import "strings"

const IconUnknown = "📁"

var iconMap = map[string]string{
	"image":  "🖼️",
	"video":  "🎞️",
	"audio":  "🎵",
	"pdf":    "📄",
	"zip":    "🗜️",
	"text":   "📄",
	"word":   "📝",
	"excel":  "📊",
	"ppt":    "📽️",
	"binary": "📦",
}

var zipTypes = map[string]bool{
	"application/zip":              true,
	"application/x-7z-compressed":  true,
	"application/x-rar-compressed": true,
}

var wordTypes = map[string]bool{
	"application/msword": true,
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document": true,
}

var excelTypes = map[string]bool{
	"application/vnd.ms-excel": true,
	"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet": true,
}

var pptTypes = map[string]bool{
	"application/vnd.ms-powerpoint":                                             true,
	"application/vnd.openxmlformats-officedocument.presentationml.presentation": true,
}

// IconForMIME picks the attachment icon shown next to a MIME type.
func IconForMIME(mt string) string {
	switch {
	case mt == "":
		return IconUnknown
	case strings.HasPrefix(mt, "image/"):
		return iconMap["image"]
	case strings.HasPrefix(mt, "video/"):
		return iconMap["video"]
	case strings.HasPrefix(mt, "audio/"):
		return iconMap["audio"]
	case mt == "application/pdf":
		return iconMap["pdf"]
	case zipTypes[mt]:
		return iconMap["zip"]
	case strings.HasPrefix(mt, "text/"):
		return iconMap["text"]
	case wordTypes[mt]:
		return iconMap["word"]
	case excelTypes[mt]:
		return iconMap["excel"]
	case pptTypes[mt]:
		return iconMap["ppt"]
	default:
		return iconMap["binary"]
	}
}
