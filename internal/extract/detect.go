package extract

import "strings"

var imageContentTypes = map[string]bool{
	"image/jpeg": true,
	"image/jpg":  true,
	"image/png":  true,
	"image/tiff": true,
	"image/bmp":  true,
}

var imageExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".tiff": true,
	".bmp":  true,
}

// IsPDF sniffs a PDF upload from its declared content type or filename.
func IsPDF(contentType, filename string) bool {
	if strings.EqualFold(contentType, "application/pdf") {
		return true
	}
	return lowerExt(filename) == ".pdf"
}

// IsImage sniffs a supported image upload from its declared content
// type or filename.
func IsImage(contentType, filename string) bool {
	if imageContentTypes[strings.ToLower(contentType)] {
		return true
	}
	return imageExtensions[lowerExt(filename)]
}
