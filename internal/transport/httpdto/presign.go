package httpdto

// PresignRequest asks for a signed PUT URL for a direct-to-bucket upload.
type PresignRequest struct {
	FileName    string `json:"file_name" binding:"required"`
	ContentType string `json:"content_type" binding:"required"`
	SizeBytes   int64  `json:"size_bytes" binding:"required"`
}

// PresignResponse carries the object key and the signed URL.
type PresignResponse struct {
	Key string `json:"key"`
	URL string `json:"url"`
}
