package domain

import (
	"time"

	"github.com/google/uuid"
)

// Type tags a notification with the school domain it belongs to
type Type string

const (
	TypeGrade        Type = "grade"
	TypeAttendance   Type = "attendance"
	TypeAnnouncement Type = "announcement"
	TypeTimetable    Type = "timetable"
	TypeBPS          Type = "bps"
	TypeGeneral      Type = "general"
)

// ParseType maps a payload "type" value to a Type. Unknown values are general.
func ParseType(s string) Type {
	switch t := Type(s); t {
	case TypeGrade, TypeAttendance, TypeAnnouncement, TypeTimetable, TypeBPS:
		return t
	default:
		return TypeGeneral
	}
}

// Record is one entry of the local notification history.
type Record struct {
	ID        string            `json:"id"`
	Title     string            `json:"title"`
	Body      string            `json:"body"`
	Data      map[string]string `json:"data,omitempty"`
	Timestamp time.Time         `json:"timestamp"`
	Read      bool              `json:"read"`
	Type      Type              `json:"type"`
}

// NewRecord builds an unread record stamped at now with a time-ordered id.
func NewRecord(title, body string, data map[string]string, now time.Time) Record {
	return Record{
		ID:        newID(),
		Title:     title,
		Body:      body,
		Data:      data,
		Timestamp: now,
		Type:      ParseType(data["type"]),
	}
}

// Message is an inbound push message as delivered by the messaging provider.
type Message struct {
	MessageID string            `json:"messageId,omitempty"`
	Title     string            `json:"title"`
	Body      string            `json:"body"`
	Data      map[string]string `json:"data,omitempty"`
}

// Type returns the message's type tag.
func (m Message) Type() Type {
	return ParseType(m.Data["type"])
}

func newID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.New().String()
	}
	return id.String()
}
