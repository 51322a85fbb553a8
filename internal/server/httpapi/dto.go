package httpapi

import (
	"time"

	"github.com/dmitrijs2005/goodnight/internal/server/models"
)

// Wire representations. Internal models never serialize directly; the DTOs
// pin the JSON contract independently of storage columns.

type userDTO struct {
	ShortCode       string `json:"short_code"`
	DisplayName     string `json:"display_name"`
	SleepTime       string `json:"sleep_time"`
	SlotKey         string `json:"slot_key"`
	TzOffsetMin     int    `json:"tz_offset_min"`
	Streak          int    `json:"streak"`
	TotalDays       int    `json:"total_days"`
	LastCheckinDate string `json:"last_checkin_date,omitempty"`
	TodayStatus     string `json:"today_status"`
}

func toUserDTO(u *models.User) userDTO {
	return userDTO{
		ShortCode:       u.ShortCode,
		DisplayName:     u.DisplayName,
		SleepTime:       u.SleepTime,
		SlotKey:         u.SlotKey,
		TzOffsetMin:     u.TzOffsetMin,
		Streak:          u.Streak,
		TotalDays:       u.TotalDays,
		LastCheckinDate: u.LastCheckinDate,
		TodayStatus:     string(u.TodayStatus),
	}
}

type checkinDTO struct {
	Date      string    `json:"date"`
	Status    string    `json:"status"`
	MessageID string    `json:"message_id,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

func toCheckinDTO(c *models.Checkin) checkinDTO {
	return checkinDTO{
		Date:      c.Date,
		Status:    string(c.Status),
		MessageID: c.MessageID,
		CreatedAt: c.CreatedAt,
	}
}

type summaryDTO struct {
	Streak      int    `json:"streak"`
	TotalDays   int    `json:"total_days"`
	TodayStatus string `json:"today_status"`
	Date        string `json:"date"`
}

func toSummaryDTO(s *models.CheckinSummary) summaryDTO {
	return summaryDTO{
		Streak:      s.Streak,
		TotalDays:   s.TotalDays,
		TodayStatus: string(s.TodayStatus),
		Date:        s.Date,
	}
}

type messageDTO struct {
	ID         string    `json:"id"`
	AuthorCode string    `json:"author_code"`
	Date       string    `json:"date"`
	Content    string    `json:"content"`
	Likes      int       `json:"likes"`
	Dislikes   int       `json:"dislikes"`
	Score      int       `json:"score"`
	CreatedAt  time.Time `json:"created_at"`
}

func toMessageDTO(m *models.Message) messageDTO {
	return messageDTO{
		ID:         m.ID,
		AuthorCode: m.AuthorCode,
		Date:       m.Date,
		Content:    m.Content,
		Likes:      m.Likes,
		Dislikes:   m.Dislikes,
		Score:      m.Score,
		CreatedAt:  m.CreatedAt,
	}
}

type friendRequestDTO struct {
	ID            string    `json:"id"`
	RequesterCode string    `json:"requester_code"`
	TargetCode    string    `json:"target_code"`
	Status        string    `json:"status"`
	CreatedAt     time.Time `json:"created_at"`
}

func toFriendRequestDTO(r *models.FriendRequest) friendRequestDTO {
	return friendRequestDTO{
		ID:            r.ID,
		RequesterCode: r.RequesterCode,
		TargetCode:    r.TargetCode,
		Status:        string(r.Status),
		CreatedAt:     r.CreatedAt,
	}
}
