package amqp

import (
	"encoding/json"
	"time"
)

// DashboardGeneratedMessage announces a freshly written dashboard document.
// Consumers reload the document instead of reading the payload.
type DashboardGeneratedMessage struct {
	RunID     string    `json:"run_id"`
	Output    string    `json:"output"`
	Records   int       `json:"records"`
	Years     []string  `json:"years"`
	Timestamp time.Time `json:"timestamp"`
}

func NewDashboardGeneratedMessage(runID, output string, records int, years []string) *DashboardGeneratedMessage {
	return &DashboardGeneratedMessage{
		RunID:     runID,
		Output:    output,
		Records:   records,
		Years:     append([]string(nil), years...),
		Timestamp: time.Now(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *DashboardGeneratedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func DashboardGeneratedMessageFromJSON(data []byte) (*DashboardGeneratedMessage, error) {
	var msg DashboardGeneratedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
