package queue

import (
	"encoding/json"
	"time"

	"permit-report/src/pkg/report"
)

/*
ExportRequestMessage asks a worker to run one export. The dataset itself is
not carried; the worker reads it from DatasetPath (or its configured default).
*/
type ExportRequestMessage struct {
	JobID       string                `json:"jobId"`
	Kind        string                `json:"kind"`
	Format      string                `json:"format"`
	FileName    string                `json:"fileName,omitempty"`
	DatasetPath string                `json:"datasetPath,omitempty"`
	Criteria    report.FilterCriteria `json:"criteria"`
	Recipients  []string              `json:"recipients,omitempty"`
	Archive     bool                  `json:"archive,omitempty"`
	Timestamp   time.Time             `json:"timestamp"`
}

// ToJSON converts the message to JSON bytes.
func (message *ExportRequestMessage) ToJSON() ([]byte, error) {
	return json.Marshal(message)
}

// ExportRequestMessageFromJSON decodes a message body.
func ExportRequestMessageFromJSON(data []byte) (*ExportRequestMessage, error) {
	var message ExportRequestMessage
	err := json.Unmarshal(data, &message)
	if err != nil {
		return nil, err
	}
	return &message, nil
}
