package models

// VodMeta is the metadata the engine resolves for a VOD URL.
type VodMeta struct {
	Streamer   string  `json:"streamer" redis:"streamer"`
	Title      string  `json:"title" redis:"title"`
	Duration   float64 `json:"duration" redis:"duration"`
	PreviewURL string  `json:"preview_url" redis:"preview_url"`
	VodID      string  `json:"vod_id" redis:"vod_id"`
	Platform   string  `json:"platform" redis:"platform"`
}
