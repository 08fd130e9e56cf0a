package domain

// Priority of an announcement
type Priority string

const (
	PriorityNormal Priority = "normal"
	PriorityHigh   Priority = "high"
)

// Channel is a named notification grouping on platforms that support it.
type Channel string

const (
	ChannelAlerts  Channel = "alerts"
	ChannelGrade   Channel = "grade"
	ChannelBPS     Channel = "bps"
	ChannelUpdates Channel = "updates"
)

// Content is what a local notification displays.
type Content struct {
	Title    string            `json:"title"`
	Body     string            `json:"body"`
	Type     Type              `json:"type"`
	Priority Priority          `json:"priority,omitempty"`
	Data     map[string]string `json:"data,omitempty"`
	Badge    int               `json:"badge,omitempty"`
}

// Channel selects the channel for c: attendance and high-priority content
// raise alerts, grades and behavior points get their own channels.
func (c Content) Channel() Channel {
	switch {
	case c.Type == TypeAttendance:
		return ChannelAlerts
	case c.Priority == PriorityHigh && (c.Type == TypeAnnouncement || c.Type == TypeGeneral):
		return ChannelAlerts
	case c.Type == TypeGrade:
		return ChannelGrade
	case c.Type == TypeBPS:
		return ChannelBPS
	default:
		return ChannelUpdates
	}
}

// ChannelSpec describes how a channel is configured on the device.
type ChannelSpec struct {
	ID          Channel
	Name        string
	Description string
	Importance  string
	Sound       bool
	Vibrate     bool
}

// Channels lists every channel the app registers.
var Channels = []ChannelSpec{
	{ID: ChannelAlerts, Name: "School Alerts", Description: "Attendance and urgent announcements", Importance: "high", Sound: true, Vibrate: true},
	{ID: ChannelGrade, Name: "Grades", Description: "New grades and results", Importance: "default", Sound: true},
	{ID: ChannelBPS, Name: "Behavior Points", Description: "Behavior recognition and notices", Importance: "default", Sound: true},
	{ID: ChannelUpdates, Name: "Updates", Description: "General school updates", Importance: "low"},
}
