package converter

// Config holds the pipeline settings. A Converter is constructed with a
// Config once; there is no package-level mutable state.
type Config struct {
	// SupportedFormats maps lower-case filename extensions (without the dot)
	// to acceptance.
	SupportedFormats map[string]bool
	// MaxFileSize is the maximum accepted input image size in bytes.
	MaxFileSize int64
	// TargetWidth and TargetHeight define the page envelope processed images
	// are fit into when resizing is requested. The defaults approximate an
	// A4 page at 2100x2970 pixel units.
	TargetWidth  int
	TargetHeight int
}

// NewDefaultConfig creates a new Config with default values.
func NewDefaultConfig() *Config {
	return &Config{
		SupportedFormats: map[string]bool{
			"jpeg": true, "jpg": true, "png": true,
			"bmp": true, "tiff": true, "tif": true,
		},
		MaxFileSize:  50 * 1024 * 1024,
		TargetWidth:  2100,
		TargetHeight: 2970,
	}
}
