package constant

// Media Overlay defaults - class names applied to the rendering surface when the book does not declare its own.
const (
	DefaultActiveClass  = "-epub-media-overlay-active"
	DefaultPlayingClass = "-epub-media-overlay-playing"
)

// Manifest media types recognised by the book loader.
const (
	MediaTypeSMIL  = "application/smil+xml"
	MediaTypeXHTML = "application/xhtml+xml"
)
