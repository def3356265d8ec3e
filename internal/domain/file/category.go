package file

// Category groups files by MIME family for bucket layout and listing filters.
type Category string

const (
	CategoryImages    Category = "images"
	CategoryDocuments Category = "documents"
	CategoryVideos    Category = "videos"
	CategoryAudio     Category = "audio"
	CategoryArchives  Category = "archives"
	CategoryOther     Category = "other"
)

var categoryMimeTypes = map[Category][]string{
	CategoryImages: {
		"image/jpeg",
		"image/jpg",
		"image/png",
		"image/gif",
		"image/webp",
		"image/bmp",
		"image/tiff",
		"image/svg+xml",
	},
	CategoryDocuments: {
		"application/pdf",
		"text/plain",
		"text/csv",
		"application/msword",
		"application/vnd.openxmlformats-officedocument.wordprocessingml.document",
		"application/vnd.ms-excel",
		"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
		"application/vnd.ms-powerpoint",
		"application/vnd.openxmlformats-officedocument.presentationml.presentation",
		"application/rtf",
		"text/html",
		"application/json",
	},
	CategoryVideos: {
		"video/mp4",
		"video/mpeg",
		"video/quicktime",
		"video/x-msvideo",
		"video/x-ms-wmv",
		"video/webm",
		"video/3gpp",
		"video/x-flv",
	},
	CategoryAudio: {
		"audio/mpeg",
		"audio/wav",
		"audio/ogg",
		"audio/aac",
		"audio/x-m4a",
		"audio/flac",
		"audio/webm",
	},
	CategoryArchives: {
		"application/zip",
		"application/x-rar-compressed",
		"application/x-7z-compressed",
		"application/x-tar",
		"application/gzip",
		"application/x-bzip2",
	},
}

// CategoryForMimeType returns the category a MIME type belongs to, or
// CategoryOther for anything not in the tables.
func CategoryForMimeType(mimeType string) Category {
	for category, mimeTypes := range categoryMimeTypes {
		for _, mt := range mimeTypes {
			if mt == mimeType {
				return category
			}
		}
	}
	return CategoryOther
}

// IsAllowedMimeType reports whether mimeType appears in any category table.
func IsAllowedMimeType(mimeType string) bool {
	return CategoryForMimeType(mimeType) != CategoryOther
}

// AllowedMimeTypes returns every MIME type accepted for upload.
func AllowedMimeTypes() []string {
	var all []string
	for _, mimeTypes := range categoryMimeTypes {
		all = append(all, mimeTypes...)
	}
	return all
}

// IsValidCategory reports whether s names a known category.
func IsValidCategory(s string) bool {
	switch Category(s) {
	case CategoryImages, CategoryDocuments, CategoryVideos, CategoryAudio, CategoryArchives, CategoryOther:
		return true
	}
	return false
}
