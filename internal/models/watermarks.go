package models

// WatermarkLayout is the on-disk format of a watermark timestamp.
const WatermarkLayout = "2006-01-02 15:04:05"

const WatermarkFileVersion = 2

// WatermarkFile is the persisted watermark envelope. Version 1 files are a bare
// source -> timestamp map.
type WatermarkFile struct {
	Version    int               `json:"version"`
	Watermarks map[string]string `json:"watermarks"`
}
