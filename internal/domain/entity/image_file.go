package entity

// ImageFile is a raw image handed to the image store. Data is never empty.
type ImageFile struct {
	Filename    string
	ContentType string
	Data        []byte
}

func (f ImageFile) Size() int64 {
	return int64(len(f.Data))
}
