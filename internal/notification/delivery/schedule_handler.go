package delivery

import (
	"net/http"

	"schoolapp/internal/notification/domain"
	notificationdto "schoolapp/internal/notification/dto"
	"schoolapp/internal/notification/scheduler"

	"github.com/gin-gonic/gin"
)

// ScheduleHandler exposes the local notification scheduler.
type ScheduleHandler struct {
	scheduler *scheduler.Scheduler
}

func NewScheduleHandler(s *scheduler.Scheduler) *ScheduleHandler {
	return &ScheduleHandler{scheduler: s}
}

func (h *ScheduleHandler) ScheduleGrade(c *gin.Context) {
	var req notificationdto.ScheduleGradeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	outcome := h.scheduler.ScheduleGrade(c.Request.Context(), scheduler.GradeUpdate{
		Subject:   req.Subject,
		GradeType: req.GradeType,
		Grade:     req.Grade,
		StudentID: req.StudentID,
	})
	respond(c, "", outcome)
}

func (h *ScheduleHandler) ScheduleBPS(c *gin.Context) {
	var req notificationdto.ScheduleBPSRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	outcome := h.scheduler.ScheduleBPS(c.Request.Context(), scheduler.BPSRecord{
		ItemType:  req.ItemType,
		ItemTitle: req.ItemTitle,
		ItemPoint: req.ItemPoint,
		Note:      req.Note,
		StudentID: req.StudentID,
	})
	respond(c, "", outcome)
}

func (h *ScheduleHandler) ScheduleAnnouncement(c *gin.Context) {
	var req notificationdto.ScheduleAnnouncementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	outcome := h.scheduler.ScheduleAnnouncement(c.Request.Context(), scheduler.Announcement{
		Title:    req.Title,
		Body:     req.Body,
		Priority: domain.Priority(req.Priority),
	})
	respond(c, "", outcome)
}

func (h *ScheduleHandler) ScheduleClassReminder(c *gin.Context) {
	var req notificationdto.ScheduleClassReminderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	id, outcome := h.scheduler.ScheduleClassReminder(c.Request.Context(), req.Subject, req.ClassTime)
	respond(c, id, outcome)
}

func (h *ScheduleHandler) GetPending(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"pending": h.scheduler.Pending()})
}

func (h *ScheduleHandler) GetOutcomes(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"outcomes": h.scheduler.Outcomes()})
}

func (h *ScheduleHandler) Cancel(c *gin.Context) {
	if !h.scheduler.Cancel(c.Param("id")) {
		c.JSON(http.StatusNotFound, gin.H{"error": "scheduled notification not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func respond(c *gin.Context, id string, outcome scheduler.Outcome) {
	status := http.StatusOK
	if outcome == scheduler.OutcomeFailed {
		status = http.StatusBadGateway
	}
	c.JSON(status, notificationdto.ScheduleResponse{ID: id, Outcome: string(outcome)})
}
