package httpapi

import (
	"net/http"
	"strconv"

	"github.com/dmitrijs2005/goodnight/internal/server/models"
	"github.com/dmitrijs2005/goodnight/internal/server/services"
	"github.com/gin-gonic/gin"
)

func (s *Server) getProfile(c *gin.Context) {
	c.JSON(http.StatusOK, toUserDTO(currentUser(c)))
}

type patchProfileRequest struct {
	DisplayName *string `json:"display_name"`
	SleepTime   *string `json:"sleep_time"`
	TzOffsetMin *int    `json:"tz_offset_min"`
}

func (s *Server) patchProfile(c *gin.Context) {
	var req patchProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, codeInvalidArgument, "invalid request body", err.Error())
		return
	}

	user, err := s.users.UpdateProfile(c.Request.Context(), currentUser(c), services.ProfilePatch{
		DisplayName: req.DisplayName,
		SleepTime:   req.SleepTime,
		TzOffsetMin: req.TzOffsetMin,
	})
	if err != nil {
		s.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, toUserDTO(user))
}

type postCheckinRequest struct {
	Date      string `json:"date"`
	Status    string `json:"status"`
	MessageID string `json:"message_id"`
}

type checkinResponse struct {
	Checkin       checkinDTO  `json:"checkin"`
	Summary       *summaryDTO `json:"summary,omitempty"`
	Reward        *messageDTO `json:"reward,omitempty"`
	AlreadyExists bool        `json:"already_exists"`
}

func (s *Server) postCheckin(c *gin.Context) {
	var req postCheckinRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, codeInvalidArgument, "invalid request body", err.Error())
		return
	}

	res, err := s.checkins.Submit(c.Request.Context(), currentUser(c), req.Date, models.CheckinStatus(req.Status), req.MessageID)
	if err != nil {
		s.handleServiceError(c, err)
		return
	}

	resp := checkinResponse{Checkin: toCheckinDTO(res.Checkin), AlreadyExists: res.AlreadyExists}
	if res.Summary != nil {
		d := toSummaryDTO(res.Summary)
		resp.Summary = &d
	}
	if res.Reward != nil {
		d := toMessageDTO(res.Reward)
		resp.Reward = &d
	}

	status := http.StatusCreated
	if res.AlreadyExists {
		// Duplicate submission is a success, never a conflict.
		status = http.StatusOK
	}
	c.JSON(status, resp)
}

type postMessageRequest struct {
	Date    string `json:"date"`
	Content string `json:"content"`
}

func (s *Server) postMessage(c *gin.Context) {
	var req postMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, codeInvalidArgument, "invalid request body", err.Error())
		return
	}

	res, err := s.messages.Publish(c.Request.Context(), currentUser(c), req.Date, req.Content)
	if err != nil {
		s.handleServiceError(c, err)
		return
	}

	status := http.StatusCreated
	if res.AlreadyExists {
		status = http.StatusOK
	}
	c.JSON(status, gin.H{
		"message":        toMessageDTO(res.Message),
		"already_exists": res.AlreadyExists,
	})
}

func (s *Server) drawMessage(c *gin.Context) {
	minScore := services.DefaultMinScore
	if raw := c.Query("min_score"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil {
			writeError(c, http.StatusBadRequest, codeInvalidArgument, "invalid min_score", "")
			return
		}
		minScore = v
	}

	avoidSelf := true
	if raw := c.Query("avoid_self"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			writeError(c, http.StatusBadRequest, codeInvalidArgument, "invalid avoid_self", "")
			return
		}
		avoidSelf = v
	}

	m, err := s.messages.Draw(c.Request.Context(), currentUser(c), minScore, avoidSelf)
	if err != nil {
		s.handleServiceError(c, err)
		return
	}
	if m == nil {
		c.JSON(http.StatusOK, gin.H{"message": nil})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": toMessageDTO(m)})
}

type postReactionRequest struct {
	Value int `json:"value"`
}

func (s *Server) postReaction(c *gin.Context) {
	var req postReactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, codeInvalidArgument, "invalid request body", err.Error())
		return
	}

	outcome, err := s.reactions.React(c.Request.Context(), currentUser(c), c.Param("id"), req.Value)
	if err != nil {
		s.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"outcome": string(outcome)})
}

func (s *Server) listFriends(c *gin.Context) {
	friends, err := s.friendships.ListFriends(c.Request.Context(), currentUser(c))
	if err != nil {
		s.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"friends": friends})
}

type sendFriendRequestRequest struct {
	TargetCode string `json:"target_code"`
}

func (s *Server) sendFriendRequest(c *gin.Context) {
	var req sendFriendRequestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, codeInvalidArgument, "invalid request body", err.Error())
		return
	}

	res, err := s.friendships.SendRequest(c.Request.Context(), currentUser(c), req.TargetCode)
	if err != nil {
		s.handleServiceError(c, err)
		return
	}

	status := http.StatusCreated
	if res.AlreadyExists || res.Incoming {
		status = http.StatusOK
	}
	c.JSON(status, gin.H{
		"request":        toFriendRequestDTO(res.Request),
		"incoming":       res.Incoming,
		"already_exists": res.AlreadyExists,
	})
}

type respondFriendRequestRequest struct {
	Decision string `json:"decision"`
}

func (s *Server) respondFriendRequest(c *gin.Context) {
	var req respondFriendRequestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, codeInvalidArgument, "invalid request body", err.Error())
		return
	}

	r, err := s.friendships.Respond(c.Request.Context(), currentUser(c), c.Param("id"), models.FriendRequestStatus(req.Decision))
	if err != nil {
		s.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"request": toFriendRequestDTO(r)})
}

func (s *Server) confirmFriendRequest(c *gin.Context) {
	r, err := s.friendships.Confirm(c.Request.Context(), currentUser(c), c.Param("id"))
	if err != nil {
		s.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"request": toFriendRequestDTO(r)})
}

func (s *Server) removeFriend(c *gin.Context) {
	if err := s.friendships.Remove(c.Request.Context(), currentUser(c), c.Param("code")); err != nil {
		s.handleServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
