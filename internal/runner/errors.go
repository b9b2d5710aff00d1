package runner

import "fmt"

// FilesystemError reports a failure preparing the output directory.
type FilesystemError struct {
	Path string
	Err  error
}

func (e *FilesystemError) Error() string {
	return fmt.Sprintf("output directory %s: %v", e.Path, e.Err)
}

func (e *FilesystemError) Unwrap() error { return e.Err }

// RasterizationError reports a failed render job. Output names the
// file that could not be produced.
type RasterizationError struct {
	Source string
	Output string
	Err    error
}

func (e *RasterizationError) Error() string {
	return fmt.Sprintf("rasterize %s: %v", e.Output, e.Err)
}

func (e *RasterizationError) Unwrap() error { return e.Err }

// CompressionError reports a failed quantization pass on one file.
type CompressionError struct {
	Path string
	Err  error
}

func (e *CompressionError) Error() string {
	return fmt.Sprintf("compress %s: %v", e.Path, e.Err)
}

func (e *CompressionError) Unwrap() error { return e.Err }
