package models

import "time"

// Report is the metadata record of a generated PDF, the document itself lives
// in object storage under ObjectKey.
type Report struct {
	ID          int64     `json:"id"`
	CatID       int64     `json:"catId"`
	RequestedBy int64     `json:"requestedBy"`
	Sections    []string  `json:"sections"`
	ObjectKey   string    `json:"objectKey"`
	SizeBytes   int64     `json:"sizeBytes"`
	CreatedAt   time.Time `json:"createdAt"`
}
