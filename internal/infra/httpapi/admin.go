package httpapi

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"strconv"
	"time"

	"coach_outreach_service/internal/app"
	"coach_outreach_service/internal/domain/athlete"
	"coach_outreach_service/internal/domain/directory"
	"coach_outreach_service/internal/domain/mail"
	"coach_outreach_service/internal/domain/outreach"
	"coach_outreach_service/internal/domain/template"
	idb "coach_outreach_service/internal/infra/database"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// CredentialWriter manages per-athlete SMTP credentials at rest.
type CredentialWriter interface {
	Save(ctx context.Context, athleteID int64, creds mail.Credentials) error
	Delete(ctx context.Context, athleteID int64) error
}

// AdminHandler exposes the management REST surface under /api.
type AdminHandler struct {
	admin       *app.AdminService
	eligibility *app.EligibilityService
	sender      *app.SendService
	credStore   CredentialWriter
	logger      *logrus.Logger
	batchLimit  int
}

func NewAdminHandler(
	admin *app.AdminService,
	eligibility *app.EligibilityService,
	sender *app.SendService,
	credStore CredentialWriter,
	logger *logrus.Logger,
	batchLimit int,
) *AdminHandler {
	return &AdminHandler{
		admin:       admin,
		eligibility: eligibility,
		sender:      sender,
		credStore:   credStore,
		logger:      logger,
		batchLimit:  batchLimit,
	}
}

// Register attaches all admin routes to the group.
func (h *AdminHandler) Register(rg *gin.RouterGroup) {
	rg.POST("/athletes", h.createAthlete)
	rg.GET("/athletes", h.listAthletes)
	rg.GET("/athletes/:id", h.getAthlete)
	rg.DELETE("/athletes/:id", h.deactivateAthlete)

	rg.GET("/athletes/:id/settings", h.getSettings)
	rg.PUT("/athletes/:id/settings", h.updateSettings)
	rg.POST("/athletes/:id/pause", h.pauseAthlete)

	rg.PUT("/athletes/:id/credentials", h.putCredentials)
	rg.DELETE("/athletes/:id/credentials", h.deleteCredentials)

	rg.POST("/athletes/:id/schools", h.selectSchool)
	rg.DELETE("/athletes/:id/schools/:schoolID", h.unselectSchool)

	rg.GET("/athletes/:id/eligible", h.eligibleCoaches)
	rg.POST("/athletes/:id/send", h.sendNow)
	rg.GET("/athletes/:id/stats", h.stats)
	rg.GET("/athletes/:id/hot-leads", h.hotLeads)
	rg.GET("/athletes/:id/dms", h.listDMs)

	rg.POST("/schools", h.createSchool)
	rg.GET("/schools", h.listSchools)
	rg.GET("/schools/:id/coaches", h.listCoaches)
	rg.POST("/coaches", h.createCoach)

	rg.POST("/templates", h.createTemplate)
	rg.GET("/templates", h.listTemplates)
	rg.PUT("/templates/:id", h.updateTemplate)
	rg.DELETE("/templates/:id", h.deleteTemplate)

	rg.POST("/dms", h.enqueueDM)
	rg.PUT("/dms/:id", h.markDM)
}

// respondError maps service errors onto HTTP status codes.
func (h *AdminHandler) respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, idb.ErrAthleteNotFound),
		errors.Is(err, idb.ErrSchoolNotFound),
		errors.Is(err, idb.ErrCoachNotFound),
		errors.Is(err, idb.ErrRecordNotFound),
		errors.Is(err, idb.ErrDMNotFound),
		errors.Is(err, idb.ErrTemplateNotFound),
		errors.Is(err, idb.ErrSettingsNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, app.ErrConfig),
		errors.Is(err, app.ErrInvalidCoachRole),
		errors.Is(err, app.ErrInvalidDMStatus),
		errors.Is(err, app.ErrAthleteInactive):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, app.ErrAthleteAlreadyExists),
		errors.Is(err, app.ErrDMAlreadyQueued),
		errors.Is(err, idb.ErrDuplicateSchool),
		errors.Is(err, idb.ErrDuplicateCoach),
		errors.Is(err, idb.ErrInFlightExists):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		h.logger.WithError(err).Error("admin api internal error")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

func pathID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + name})
		return 0, false
	}
	return id, true
}

// --- Athletes ---

type createAthleteRequest struct {
	Name         string `json:"name" binding:"required"`
	Email        string `json:"email" binding:"required,email"`
	GradYear     int    `json:"grad_year" binding:"required"`
	Position     string `json:"position"`
	HighlightURL string `json:"highlight_url"`
	HeightInches int64  `json:"height_inches"`
	WeightLbs    int64  `json:"weight_lbs"`
}

type athleteView struct {
	ID           int64  `json:"id"`
	Name         string `json:"name"`
	Email        string `json:"email"`
	GradYear     int    `json:"grad_year"`
	Position     string `json:"position,omitempty"`
	HighlightURL string `json:"highlight_url,omitempty"`
	IsActive     bool   `json:"is_active"`
}

func newAthleteView(a *athlete.Athlete) athleteView {
	return athleteView{
		ID:           a.ID,
		Name:         a.Name,
		Email:        a.Email,
		GradYear:     a.GradYear,
		Position:     a.Position.String,
		HighlightURL: a.HighlightURL.String,
		IsActive:     a.IsActive,
	}
}

func (h *AdminHandler) createAthlete(c *gin.Context) {
	var req createAthleteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	a := &athlete.Athlete{
		Name:     req.Name,
		Email:    req.Email,
		GradYear: req.GradYear,
	}
	if req.Position != "" {
		a.Position = sql.NullString{String: req.Position, Valid: true}
	}
	if req.HighlightURL != "" {
		a.HighlightURL = sql.NullString{String: req.HighlightURL, Valid: true}
	}
	if req.HeightInches > 0 {
		a.HeightInches = sql.NullInt64{Int64: req.HeightInches, Valid: true}
	}
	if req.WeightLbs > 0 {
		a.WeightLbs = sql.NullInt64{Int64: req.WeightLbs, Valid: true}
	}
	if err := h.admin.CreateAthlete(c.Request.Context(), a); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, newAthleteView(a))
}

func (h *AdminHandler) listAthletes(c *gin.Context) {
	athletes, err := h.admin.ListActiveAthletes(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}
	views := make([]athleteView, 0, len(athletes))
	for _, a := range athletes {
		views = append(views, newAthleteView(a))
	}
	c.JSON(http.StatusOK, gin.H{"athletes": views})
}

func (h *AdminHandler) getAthlete(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	a, err := h.admin.GetAthlete(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, newAthleteView(a))
}

func (h *AdminHandler) deactivateAthlete(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	a, err := h.admin.DeactivateAthlete(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, newAthleteView(a))
}

// --- Settings ---

type settingsPayload struct {
	AutoSendEnabled      bool   `json:"auto_send_enabled"`
	AutoSendCount        int    `json:"auto_send_count"`
	PausedUntil          string `json:"paused_until,omitempty"`
	DaysBetweenEmails    int    `json:"days_between_emails"`
	MaxFollowups         int    `json:"max_followups"`
	DaysBetweenFollowups int    `json:"days_between_followups"`
	SendHour             int    `json:"send_hour"`
	TimezoneOffset       int    `json:"timezone_offset"`
}

func newSettingsPayload(s *athlete.Settings) settingsPayload {
	p := settingsPayload{
		AutoSendEnabled:      s.AutoSendEnabled,
		AutoSendCount:        s.AutoSendCount,
		DaysBetweenEmails:    s.DaysBetweenEmails,
		MaxFollowups:         s.MaxFollowups,
		DaysBetweenFollowups: s.DaysBetweenFollowups,
		SendHour:             s.SendHour,
		TimezoneOffset:       s.TimezoneOffset,
	}
	if s.PausedUntil.Valid {
		p.PausedUntil = s.PausedUntil.Time.Format(time.RFC3339)
	}
	return p
}

func (h *AdminHandler) getSettings(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	settings, err := h.admin.GetSettings(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, newSettingsPayload(settings))
}

func (h *AdminHandler) updateSettings(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req settingsPayload
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	settings := &athlete.Settings{
		AthleteID:            id,
		AutoSendEnabled:      req.AutoSendEnabled,
		AutoSendCount:        req.AutoSendCount,
		DaysBetweenEmails:    req.DaysBetweenEmails,
		MaxFollowups:         req.MaxFollowups,
		DaysBetweenFollowups: req.DaysBetweenFollowups,
		SendHour:             req.SendHour,
		TimezoneOffset:       req.TimezoneOffset,
	}
	if req.PausedUntil != "" {
		until, err := time.Parse(time.RFC3339, req.PausedUntil)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "paused_until must be RFC3339"})
			return
		}
		settings.PausedUntil = sql.NullTime{Time: until, Valid: true}
	}
	if err := h.admin.UpdateSettings(c.Request.Context(), settings); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, newSettingsPayload(settings))
}

// --- Credentials ---

type credentialsRequest struct {
	Host     string `json:"host" binding:"required"`
	Port     int    `json:"port"`
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
	From     string `json:"from"`
}

func (h *AdminHandler) putCredentials(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if _, err := h.admin.GetAthlete(c.Request.Context(), id); err != nil {
		h.respondError(c, err)
		return
	}
	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Port == 0 {
		req.Port = 587
	}
	if req.From == "" {
		req.From = req.Username
	}
	creds := mail.Credentials{
		Host:     req.Host,
		Port:     req.Port,
		Username: req.Username,
		Password: req.Password,
		From:     req.From,
	}
	if err := h.credStore.Save(c.Request.Context(), id, creds); err != nil {
		h.respondError(c, err)
		return
	}
	// The password is never echoed back.
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *AdminHandler) deleteCredentials(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.credStore.Delete(c.Request.Context(), id); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

type pauseRequest struct {
	Until string `json:"until" binding:"required"`
}

func (h *AdminHandler) pauseAthlete(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req pauseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	until, err := time.Parse(time.RFC3339, req.Until)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "until must be RFC3339"})
		return
	}
	if err := h.admin.PauseAthlete(c.Request.Context(), id, until); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "paused", "until": until.Format(time.RFC3339)})
}

// --- School selection ---

type selectSchoolRequest struct {
	SchoolID   int64  `json:"school_id" binding:"required"`
	Preference string `json:"preference"`
}

func (h *AdminHandler) selectSchool(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req selectSchoolRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	pref := athlete.CoachPreference(req.Preference)
	if req.Preference == "" {
		pref = athlete.PreferBoth
	}
	if err := h.admin.SelectSchool(c.Request.Context(), id, req.SchoolID, pref); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"status": "selected"})
}

func (h *AdminHandler) unselectSchool(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	schoolID, ok := pathID(c, "schoolID")
	if !ok {
		return
	}
	if err := h.admin.UnselectSchool(c.Request.Context(), id, schoolID); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "removed"})
}

// --- Scheduling ---

type candidateView struct {
	CoachID    int64  `json:"coach_id"`
	CoachName  string `json:"coach_name"`
	CoachEmail string `json:"coach_email,omitempty"`
	Twitter    string `json:"twitter,omitempty"`
	Role       string `json:"role"`
	School     string `json:"school"`
	NextType   string `json:"next_type"`
}

func (h *AdminHandler) eligibleCoaches(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	limit := queryInt(c, "limit", h.batchLimit)
	daysBetween := queryInt(c, "days_between", -1)
	if daysBetween < 0 {
		settings, err := h.admin.GetSettings(c.Request.Context(), id)
		if err != nil {
			h.respondError(c, err)
			return
		}
		daysBetween = settings.DaysBetweenEmails
	}

	var (
		candidates []*app.Candidate
		err        error
	)
	if c.Query("channel") == string(app.ChannelDM) {
		candidates, err = h.eligibility.EligibleForDM(c.Request.Context(), id, limit)
	} else {
		candidates, err = h.eligibility.EligibleCoaches(c.Request.Context(), id, limit, daysBetween)
	}
	if err != nil {
		h.respondError(c, err)
		return
	}

	views := make([]candidateView, 0, len(candidates))
	for _, cand := range candidates {
		views = append(views, candidateView{
			CoachID:    cand.Coach.ID,
			CoachName:  cand.Coach.Name,
			CoachEmail: cand.Coach.Email.String,
			Twitter:    cand.Coach.Twitter.String,
			Role:       string(cand.Coach.Role),
			School:     cand.Coach.SchoolName,
			NextType:   string(cand.NextType),
		})
	}
	c.JSON(http.StatusOK, gin.H{"candidates": views})
}

// sendNow runs one send batch synchronously, outside the cron schedule.
func (h *AdminHandler) sendNow(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	maxCount := queryInt(c, "max", h.batchLimit)
	summary, err := h.sender.RunSendBatch(c.Request.Context(), id, maxCount)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

func (h *AdminHandler) stats(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	stats, err := h.admin.OutreachStats(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

func (h *AdminHandler) hotLeads(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	leads, err := h.admin.HotLeads(c.Request.Context(), id, queryInt(c, "limit", 20))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"hot_leads": leads})
}

// --- Directory ---

type createSchoolRequest struct {
	Name         string `json:"name" binding:"required"`
	Division     string `json:"division"`
	Conference   string `json:"conference"`
	State        string `json:"state"`
	StaffURL     string `json:"staff_url"`
	PriorityTier int    `json:"priority_tier"`
}

type schoolView struct {
	ID           int64  `json:"id"`
	Name         string `json:"name"`
	Division     string `json:"division,omitempty"`
	Conference   string `json:"conference,omitempty"`
	State        string `json:"state,omitempty"`
	PriorityTier int    `json:"priority_tier"`
}

func newSchoolView(s *directory.School) schoolView {
	return schoolView{
		ID:           s.ID,
		Name:         s.Name,
		Division:     s.Division.String,
		Conference:   s.Conference.String,
		State:        s.State.String,
		PriorityTier: s.PriorityTier,
	}
}

func (h *AdminHandler) createSchool(c *gin.Context) {
	var req createSchoolRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	school := &directory.School{Name: req.Name, PriorityTier: req.PriorityTier}
	if req.Division != "" {
		school.Division = sql.NullString{String: req.Division, Valid: true}
	}
	if req.Conference != "" {
		school.Conference = sql.NullString{String: req.Conference, Valid: true}
	}
	if req.State != "" {
		school.State = sql.NullString{String: req.State, Valid: true}
	}
	if req.StaffURL != "" {
		school.StaffURL = sql.NullString{String: req.StaffURL, Valid: true}
	}
	if err := h.admin.AddSchool(c.Request.Context(), school); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, newSchoolView(school))
}

func (h *AdminHandler) listSchools(c *gin.Context) {
	filter := directory.SchoolFilter{
		Query:    c.Query("q"),
		Division: c.Query("division"),
		State:    c.Query("state"),
		Limit:    queryInt(c, "limit", 100),
	}
	schools, err := h.admin.ListSchools(c.Request.Context(), filter)
	if err != nil {
		h.respondError(c, err)
		return
	}
	views := make([]schoolView, 0, len(schools))
	for _, s := range schools {
		views = append(views, newSchoolView(s))
	}
	c.JSON(http.StatusOK, gin.H{"schools": views})
}

type createCoachRequest struct {
	SchoolID int64  `json:"school_id" binding:"required"`
	Name     string `json:"name" binding:"required"`
	Role     string `json:"role" binding:"required"`
	Title    string `json:"title"`
	Email    string `json:"email"`
	Twitter  string `json:"twitter"`
	Verified bool   `json:"verified"`
}

type coachView struct {
	ID        int64  `json:"id"`
	SchoolID  int64  `json:"school_id"`
	Name      string `json:"name"`
	Role      string `json:"role"`
	Email     string `json:"email,omitempty"`
	Twitter   string `json:"twitter,omitempty"`
	Verified  bool   `json:"verified"`
	Responded bool   `json:"responded"`
}

func newCoachView(co *directory.Coach) coachView {
	return coachView{
		ID:        co.ID,
		SchoolID:  co.SchoolID,
		Name:      co.Name,
		Role:      string(co.Role),
		Email:     co.Email.String,
		Twitter:   co.Twitter.String,
		Verified:  co.Verified,
		Responded: co.Responded,
	}
}

func (h *AdminHandler) createCoach(c *gin.Context) {
	var req createCoachRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	coach := &directory.Coach{
		SchoolID: req.SchoolID,
		Name:     req.Name,
		Role:     directory.CoachRole(req.Role),
		Verified: req.Verified,
	}
	if req.Title != "" {
		coach.Title = sql.NullString{String: req.Title, Valid: true}
	}
	if req.Email != "" {
		coach.Email = sql.NullString{String: req.Email, Valid: true}
	}
	if req.Twitter != "" {
		coach.Twitter = sql.NullString{String: req.Twitter, Valid: true}
	}
	if err := h.admin.AddCoach(c.Request.Context(), coach); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, newCoachView(coach))
}

func (h *AdminHandler) listCoaches(c *gin.Context) {
	schoolID, ok := pathID(c, "id")
	if !ok {
		return
	}
	coaches, err := h.admin.ListCoaches(c.Request.Context(), schoolID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	views := make([]coachView, 0, len(coaches))
	for _, co := range coaches {
		views = append(views, newCoachView(co))
	}
	c.JSON(http.StatusOK, gin.H{"coaches": views})
}

// --- Templates ---

type templatePayload struct {
	Name      string `json:"name" binding:"required"`
	Subject   string `json:"subject"`
	Body      string `json:"body" binding:"required"`
	Kind      string `json:"kind"`
	EmailType string `json:"email_type"`
	CoachType string `json:"coach_type"`
	IsActive  bool   `json:"is_active"`
}

func (p *templatePayload) toTemplate(id int64) *template.Template {
	t := &template.Template{
		ID:        id,
		Name:      p.Name,
		Body:      p.Body,
		Kind:      template.Kind(p.Kind),
		EmailType: p.EmailType,
		CoachType: p.CoachType,
		IsActive:  p.IsActive,
	}
	if t.Kind == "" {
		t.Kind = template.KindEmail
	}
	if t.CoachType == "" {
		t.CoachType = "any"
	}
	if p.Subject != "" {
		t.Subject = sql.NullString{String: p.Subject, Valid: true}
	}
	return t
}

func (h *AdminHandler) createTemplate(c *gin.Context) {
	var req templatePayload
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	t := req.toTemplate(0)
	if err := h.admin.CreateTemplate(c.Request.Context(), t); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"id": t.ID})
}

func (h *AdminHandler) updateTemplate(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req templatePayload
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.admin.UpdateTemplate(c.Request.Context(), req.toTemplate(id)); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "updated"})
}

func (h *AdminHandler) deleteTemplate(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.admin.DeleteTemplate(c.Request.Context(), id); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}

func (h *AdminHandler) listTemplates(c *gin.Context) {
	kind := template.Kind(c.DefaultQuery("kind", string(template.KindEmail)))
	templates, err := h.admin.ListTemplates(c.Request.Context(), kind)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"templates": templates})
}

// --- DM queue ---

type enqueueDMRequest struct {
	AthleteID    int64  `json:"athlete_id" binding:"required"`
	CoachID      int64  `json:"coach_id"`
	CoachName    string `json:"coach_name" binding:"required"`
	CoachTwitter string `json:"coach_twitter" binding:"required"`
	SchoolName   string `json:"school_name"`
	Message      string `json:"message"`
}

func (h *AdminHandler) enqueueDM(c *gin.Context) {
	var req enqueueDMRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	d := &outreach.DMRecord{
		AthleteID:    req.AthleteID,
		CoachName:    req.CoachName,
		CoachTwitter: req.CoachTwitter,
		SchoolName:   req.SchoolName,
		Message:      req.Message,
	}
	if req.CoachID > 0 {
		d.CoachID = sql.NullInt64{Int64: req.CoachID, Valid: true}
	}
	if err := h.admin.EnqueueDM(c.Request.Context(), d); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"id": d.ID})
}

func (h *AdminHandler) listDMs(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	status := outreach.DMStatus(c.DefaultQuery("status", string(outreach.DMPending)))
	dms, err := h.admin.ListDMQueue(c.Request.Context(), id, status, queryInt(c, "limit", 50))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"dms": dms})
}

type markDMRequest struct {
	Status string `json:"status" binding:"required"`
	Notes  string `json:"notes"`
}

func (h *AdminHandler) markDM(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req markDMRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.admin.MarkDM(c.Request.Context(), id, outreach.DMStatus(req.Status), req.Notes); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "updated"})
}

func queryInt(c *gin.Context, name string, fallback int) int {
	raw := c.Query(name)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return v
}
