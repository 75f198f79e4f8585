package model

// ExportFilename is the attachment name of the CSV export
const ExportFilename = "CardioStent_Data.csv"

// ArchiveResult describes a CSV export copied to the archive store
type ArchiveResult struct {
	Key     string `json:"key"`
	URL     string `json:"url"`
	Records int    `json:"records"`
	Bytes   int64  `json:"bytes"`
}
