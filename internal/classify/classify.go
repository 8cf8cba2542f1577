// Package classify maps media filenames to type categories and per-category
// size ceilings. It is pure and shared by both sides: the client uses it to
// reject files before queueing, the server re-checks the same policy when
// issuing credentials, so an oversized file can never be authorized even by
// a tampered client.
package classify

import (
	"path/filepath"
	"strings"
)

// Category is a media type bucket with its own size policy.
type Category string

const (
	CategoryRawImage     Category = "raw-image"
	CategoryGalleryImage Category = "gallery-image"
	CategoryVideo        Category = "video"
	CategoryAudio        Category = "audio"
	CategoryDocument     Category = "document"
	CategoryDesignFile   Category = "design-file"
	CategoryOther        Category = "other"
)

// Size ceilings per category. At the limit is accepted, one byte over is a
// validation error.
const (
	RawImageMaxBytes     int64 = 200 << 20
	GalleryImageMaxBytes int64 = 50 << 20
	VideoMaxBytes        int64 = 2 << 30
	AudioMaxBytes        int64 = 500 << 20
	DocumentMaxBytes     int64 = 50 << 20
	DesignFileMaxBytes   int64 = 1 << 30
	OtherMaxBytes        int64 = 10 << 20
)

var categories = map[string]Category{
	".cr2": CategoryRawImage,
	".cr3": CategoryRawImage,
	".nef": CategoryRawImage,
	".arw": CategoryRawImage,
	".dng": CategoryRawImage,
	".raf": CategoryRawImage,
	".orf": CategoryRawImage,

	".jpg":  CategoryGalleryImage,
	".jpeg": CategoryGalleryImage,
	".png":  CategoryGalleryImage,
	".webp": CategoryGalleryImage,
	".heic": CategoryGalleryImage,
	".gif":  CategoryGalleryImage,

	".mp4": CategoryVideo,
	".mov": CategoryVideo,
	".avi": CategoryVideo,
	".mkv": CategoryVideo,

	".mp3":  CategoryAudio,
	".wav":  CategoryAudio,
	".aac":  CategoryAudio,
	".flac": CategoryAudio,

	".pdf":  CategoryDocument,
	".txt":  CategoryDocument,
	".doc":  CategoryDocument,
	".docx": CategoryDocument,
	".xls":  CategoryDocument,
	".xlsx": CategoryDocument,

	".psd":  CategoryDesignFile,
	".ai":   CategoryDesignFile,
	".tif":  CategoryDesignFile,
	".tiff": CategoryDesignFile,
	".indd": CategoryDesignFile,
}

var limits = map[Category]int64{
	CategoryRawImage:     RawImageMaxBytes,
	CategoryGalleryImage: GalleryImageMaxBytes,
	CategoryVideo:        VideoMaxBytes,
	CategoryAudio:        AudioMaxBytes,
	CategoryDocument:     DocumentMaxBytes,
	CategoryDesignFile:   DesignFileMaxBytes,
	CategoryOther:        OtherMaxBytes,
}

// Classify returns the category for filename and the maximum declared size
// allowed for that category. Unknown extensions classify as CategoryOther
// with the smallest limit.
func Classify(filename string) (Category, int64) {
	ext := strings.ToLower(filepath.Ext(filename))
	cat, ok := categories[ext]
	if !ok {
		cat = CategoryOther
	}
	return cat, limits[cat]
}

// MaxBytes returns the size ceiling for a category. Unknown categories get
// the CategoryOther limit.
func MaxBytes(cat Category) int64 {
	if limit, ok := limits[cat]; ok {
		return limit
	}
	return OtherMaxBytes
}
