package httpapi

import (
	"net/http"
	"strings"

	"coach_outreach_service/internal/app"
	"coach_outreach_service/internal/domain/outreach"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// transparentGIF is a 1x1 transparent pixel, served on every tracking hit.
var transparentGIF = []byte{
	0x47, 0x49, 0x46, 0x38, 0x39, 0x61, 0x01, 0x00, 0x01, 0x00, 0x80, 0x00,
	0x00, 0x00, 0x00, 0x00, 0xff, 0xff, 0xff, 0x21, 0xf9, 0x04, 0x01, 0x00,
	0x00, 0x00, 0x00, 0x2c, 0x00, 0x00, 0x00, 0x00, 0x01, 0x00, 0x01, 0x00,
	0x00, 0x02, 0x02, 0x44, 0x01, 0x00, 0x3b,
}

// TrackingHandler is the unauthenticated tracking surface. Mail clients
// prefetch pixels and third parties post webhooks here, so every endpoint
// swallows internal failures after logging and answers success regardless.
type TrackingHandler struct {
	tracking *app.TrackingService
	logger   *logrus.Logger
}

func NewTrackingHandler(tracking *app.TrackingService, logger *logrus.Logger) *TrackingHandler {
	return &TrackingHandler{tracking: tracking, logger: logger}
}

// HandlePixel serves the open-tracking pixel on GET /t/:id. The GIF is
// returned even for unknown tracking IDs.
func (h *TrackingHandler) HandlePixel(c *gin.Context) {
	trackingID := strings.TrimSuffix(c.Param("id"), ".gif")

	if _, err := h.tracking.RecordOpen(c.Request.Context(), trackingID); err != nil {
		h.logger.WithError(err).WithField("tracking_id", trackingID).Warn("open event not recorded")
	}

	c.Header("Cache-Control", "no-store, no-cache, must-revalidate")
	c.Data(http.StatusOK, "image/gif", transparentGIF)
}

// replyRequest identifies the reply either by tracking_id or by the
// athlete/coach-email pair, whichever the upstream mail hook can provide.
type replyRequest struct {
	TrackingID string `json:"tracking_id"`
	AthleteID  int64  `json:"athlete_id"`
	CoachEmail string `json:"coach_email"`
	Sentiment  string `json:"sentiment"`
}

// HandleReply serves POST /webhook/reply.
func (h *TrackingHandler) HandleReply(c *gin.Context) {
	var req replyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		// Malformed payloads still get a success answer; this endpoint is
		// probed by mail infrastructure we do not control.
		h.logger.WithError(err).Warn("reply webhook: malformed payload")
		c.JSON(http.StatusOK, gin.H{"status": "ignored"})
		return
	}

	sentiment := outreach.Sentiment(req.Sentiment)
	switch sentiment {
	case outreach.SentimentPositive, outreach.SentimentNeutral, outreach.SentimentNegative:
	default:
		sentiment = outreach.SentimentNeutral
	}

	var err error
	switch {
	case req.TrackingID != "":
		err = h.tracking.RecordReplyByTrackingID(c.Request.Context(), req.TrackingID, sentiment)
	case req.AthleteID != 0 && req.CoachEmail != "":
		err = h.tracking.RecordReply(c.Request.Context(), req.AthleteID, req.CoachEmail, sentiment)
	default:
		h.logger.Warn("reply webhook: payload names neither tracking_id nor athlete/coach pair")
		c.JSON(http.StatusOK, gin.H{"status": "ignored"})
		return
	}
	if err != nil {
		h.logger.WithError(err).WithFields(logrus.Fields{
			"tracking_id": req.TrackingID,
			"athlete_id":  req.AthleteID,
			"coach_email": req.CoachEmail,
		}).Warn("reply event not recorded")
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

type bounceRequest struct {
	TrackingID string `json:"tracking_id" binding:"required"`
}

// HandleBounce serves POST /webhook/bounce.
func (h *TrackingHandler) HandleBounce(c *gin.Context) {
	var req bounceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.WithError(err).Warn("bounce webhook: malformed payload")
		c.JSON(http.StatusOK, gin.H{"status": "ignored"})
		return
	}

	if err := h.tracking.RecordBounce(c.Request.Context(), req.TrackingID); err != nil {
		h.logger.WithError(err).WithField("tracking_id", req.TrackingID).Warn("bounce event not recorded")
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
