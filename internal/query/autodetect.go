package query

import (
	"fmt"
	"strings"

	"github.com/starford/outliner/internal/markdown"
)

// MediaType classifies an asset by its file extension.
type MediaType int

const (
	MediaOther MediaType = iota
	MediaImage
	MediaVideo
	MediaAudio
	MediaCode
	MediaText
)

var mediaExtensions = map[string]MediaType{
	"jpg": MediaImage, "jpeg": MediaImage, "png": MediaImage, "gif": MediaImage, "webp": MediaImage, "svg": MediaImage,
	"mp4": MediaVideo, "webm": MediaVideo, "ogm": MediaVideo,
	"mp3": MediaAudio, "wav": MediaAudio, "flac": MediaAudio, "ogg": MediaAudio,
	"rs": MediaCode, "py": MediaCode, "js": MediaCode, "css": MediaCode, "java": MediaCode,
	"kt": MediaCode, "c": MediaCode, "sql": MediaCode, "go": MediaCode, "php": MediaCode,
	"txt": MediaText,
}

// MediaTypeOf returns the media type of the asset name.
func MediaTypeOf(name string) MediaType {
	return mediaExtensions[strings.ToLower(markdown.Extension(name, ""))]
}

// AssetMarkup returns the block markup that embeds the asset name: an
// image for pictures, an insert-file-content query for video, audio, code
// and text, and a plain link for everything else.
func AssetMarkup(name string) string {
	var display Display
	switch MediaTypeOf(name) {
	case MediaImage:
		return markdown.Image(name)
	case MediaVideo:
		display = DisplayVideo
	case MediaAudio:
		display = DisplayAudio
	case MediaCode:
		display = DisplayCodeBlock
	case MediaText:
		display = DisplayInlineText
	default:
		return markdown.AssetLink(name)
	}
	return fmt.Sprintf(`{query: %s %s:"%s" %s:"%s" }`, InsertFileContent, ParamTargetFile, name, ParamDisplay, display)
}
