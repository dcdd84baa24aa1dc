package dto

// ProcessVideoInput represents one uploaded lecture video
type ProcessVideoInput struct {
	Video    []byte
	FileName string
	FileSize int64 // Declared upload size; 0 means len(Video)
	OwnerID  string
}

// Size returns the declared size, or the byte length when none was declared
func (in ProcessVideoInput) Size() int64 {
	if in.FileSize > 0 {
		return in.FileSize
	}
	return int64(len(in.Video))
}
