package models

// GraphContext is the per-request security and cache envelope
type GraphContext struct {
	Access       string `json:"access"`
	Auth         string `json:"auth"`
	Cache        string `json:"cache"`
	CacheSeconds int    `json:"cacheSeconds"`
}
