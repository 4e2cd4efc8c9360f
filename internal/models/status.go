package models

// IndexStatus describes the configured collection and its contents.
type IndexStatus struct {
	Documents      int64  `json:"documents"`
	Collection     string `json:"collection"`
	StoreType      string `json:"store_type"`
	Provider       string `json:"embedding_provider"`
	Dimensions     int    `json:"embedding_dimensions"`
	IndexPath      string `json:"index_path,omitempty"`
	DiskUsageBytes *int64 `json:"disk_usage_bytes,omitempty"`
}
