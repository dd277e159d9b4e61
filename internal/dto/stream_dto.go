package dto

import "encoding/json"

type EventType string

const (
	EventInit    EventType = "init"
	EventCreated EventType = "created"
	EventUpdated EventType = "updated"
	EventDeleted EventType = "deleted"
)

// StreamEvent is one change notification pushed to live subscribers.
// Init carries Reports, created/updated carry Report, deleted carries ID.
type StreamEvent struct {
	Type    EventType
	Reports []Report
	Report  *Report
	ID      string
}

func InitEvent(reports []Report) StreamEvent {
	return StreamEvent{Type: EventInit, Reports: reports}
}

func ReportEvent(kind EventType, report Report) StreamEvent {
	return StreamEvent{Type: kind, Report: &report}
}

func DeletedEvent(id string) StreamEvent {
	return StreamEvent{Type: EventDeleted, ID: id}
}

func (e StreamEvent) MarshalJSON() ([]byte, error) {
	switch e.Type {
	case EventInit:
		reports := e.Reports
		if reports == nil {
			reports = []Report{}
		}
		return json.Marshal(struct {
			Type    EventType `json:"type"`
			Reports []Report  `json:"reports"`
		}{e.Type, reports})
	case EventDeleted:
		return json.Marshal(struct {
			Type EventType `json:"type"`
			ID   string    `json:"id"`
		}{e.Type, e.ID})
	default:
		return json.Marshal(struct {
			Type   EventType `json:"type"`
			Report *Report   `json:"report"`
		}{e.Type, e.Report})
	}
}

func (e *StreamEvent) UnmarshalJSON(data []byte) error {
	var raw struct {
		Type    EventType `json:"type"`
		Reports []Report  `json:"reports"`
		Report  *Report   `json:"report"`
		ID      string    `json:"id"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*e = StreamEvent{Type: raw.Type, Reports: raw.Reports, Report: raw.Report, ID: raw.ID}
	return nil
}
