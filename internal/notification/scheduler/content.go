package scheduler

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"schoolapp/internal/notification/domain"
)

// ClassReminderLead is how long before class start the reminder fires.
const ClassReminderLead = 5 * time.Minute

const defaultAnnouncementTitle = "School Announcement"

// GradeUpdate announces a newly published grade.
type GradeUpdate struct {
	Subject   string
	GradeType string // e.g. "exam", "quiz"
	Grade     string
	StudentID string
}

// BPSRecord is one behavior-points entry. ItemType is "prs" for positive
// records and "dps" for negative ones.
type BPSRecord struct {
	ItemType  string
	ItemTitle string
	ItemPoint int
	Note      string
	StudentID string
}

// Announcement is a generic school announcement.
type Announcement struct {
	Title    string
	Body     string
	Priority domain.Priority
}

func GradeContent(g GradeUpdate) domain.Content {
	data := map[string]string{
		"type":    string(domain.TypeGrade),
		"subject": g.Subject,
	}
	if g.StudentID != "" {
		data["student_id"] = g.StudentID
	}
	return domain.Content{
		Title: "New Grade Available",
		Body:  fmt.Sprintf("Your %s grade for %s is now available: %s", g.GradeType, g.Subject, g.Grade),
		Type:  domain.TypeGrade,
		Data:  data,
	}
}

func BPSContent(b BPSRecord) domain.Content {
	title := "Behavior Notice"
	if b.ItemType == "prs" {
		title = "Positive Behavior Recognition"
	}

	body := fmt.Sprintf("%s (%s points)", b.ItemTitle, signedPoints(b.ItemPoint))
	if note := strings.TrimSpace(b.Note); note != "" {
		body += "\n" + note
	}

	data := map[string]string{
		"type":       string(domain.TypeBPS),
		"item_type":  b.ItemType,
		"item_point": strconv.Itoa(b.ItemPoint),
	}
	if b.StudentID != "" {
		data["student_id"] = b.StudentID
	}
	return domain.Content{Title: title, Body: body, Type: domain.TypeBPS, Data: data}
}

// signedPoints renders positive values with an explicit plus sign and
// leaves zero and negative values as they are.
func signedPoints(p int) string {
	if p > 0 {
		return "+" + strconv.Itoa(p)
	}
	return strconv.Itoa(p)
}

func ClassReminderContent(subject string, classTime time.Time) domain.Content {
	return domain.Content{
		Title: "Class Starting Soon",
		Body:  fmt.Sprintf("%s starts at %s", subject, classTime.Format("15:04")),
		Type:  domain.TypeAttendance,
		Data: map[string]string{
			"type":       string(domain.TypeAttendance),
			"subject":    subject,
			"class_time": classTime.Format(time.RFC3339),
		},
	}
}

func AnnouncementContent(a Announcement) domain.Content {
	title := a.Title
	if title == "" {
		title = defaultAnnouncementTitle
	}
	priority := a.Priority
	if priority == "" {
		priority = domain.PriorityNormal
	}
	return domain.Content{
		Title:    title,
		Body:     a.Body,
		Type:     domain.TypeAnnouncement,
		Priority: priority,
		Data: map[string]string{
			"type":     string(domain.TypeAnnouncement),
			"priority": string(priority),
		},
	}
}

func (s *Scheduler) ScheduleGrade(ctx context.Context, g GradeUpdate) Outcome {
	_, o := s.Schedule(ctx, GradeContent(g), Immediate())
	return o
}

func (s *Scheduler) ScheduleBPS(ctx context.Context, b BPSRecord) Outcome {
	_, o := s.Schedule(ctx, BPSContent(b), Immediate())
	return o
}

func (s *Scheduler) ScheduleAnnouncement(ctx context.Context, a Announcement) Outcome {
	_, o := s.Schedule(ctx, AnnouncementContent(a), Immediate())
	return o
}

// ScheduleClassReminder queues a reminder ClassReminderLead before classTime.
// When that moment has already passed nothing is queued and the outcome is
// OutcomeSkipped.
func (s *Scheduler) ScheduleClassReminder(ctx context.Context, subject string, classTime time.Time) (string, Outcome) {
	fireAt := classTime.Add(-ClassReminderLead)
	if !fireAt.After(s.now()) {
		return "", s.record(OutcomeSkipped)
	}
	return s.Schedule(ctx, ClassReminderContent(subject, classTime), At(fireAt))
}
