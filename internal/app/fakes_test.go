package app

import (
	"context"
	"sort"
	"sync"
	"time"

	"coach_outreach_service/internal/domain/athlete"
	"coach_outreach_service/internal/domain/directory"
	"coach_outreach_service/internal/domain/mail"
	"coach_outreach_service/internal/domain/outreach"
	"coach_outreach_service/internal/domain/template"
	idb "coach_outreach_service/internal/infra/database"

	"github.com/sirupsen/logrus"
)

func testLogger() *logrus.Logger {
	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)
	return log
}

// --- athlete repository fake ---

type fakeAthleteRepo struct {
	mu         sync.Mutex
	nextID     int64
	athletes   map[int64]*athlete.Athlete
	settings   map[int64]*athlete.Settings
	selections map[int64][]*athlete.SchoolSelection
}

func newFakeAthleteRepo() *fakeAthleteRepo {
	return &fakeAthleteRepo{
		nextID:     1,
		athletes:   make(map[int64]*athlete.Athlete),
		settings:   make(map[int64]*athlete.Settings),
		selections: make(map[int64][]*athlete.SchoolSelection),
	}
}

func (r *fakeAthleteRepo) Create(_ context.Context, a *athlete.Athlete) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	a.ID = r.nextID
	r.nextID++
	cp := *a
	r.athletes[a.ID] = &cp
	return nil
}

func (r *fakeAthleteRepo) GetByID(_ context.Context, id int64) (*athlete.Athlete, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.athletes[id]
	if !ok {
		return nil, idb.ErrAthleteNotFound
	}
	cp := *a
	return &cp, nil
}

func (r *fakeAthleteRepo) GetByEmail(_ context.Context, email string) (*athlete.Athlete, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range r.athletes {
		if a.Email == email {
			cp := *a
			return &cp, nil
		}
	}
	return nil, idb.ErrAthleteNotFound
}

func (r *fakeAthleteRepo) Update(_ context.Context, a *athlete.Athlete) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.athletes[a.ID]; !ok {
		return idb.ErrAthleteNotFound
	}
	cp := *a
	r.athletes[a.ID] = &cp
	return nil
}

func (r *fakeAthleteRepo) ListActive(_ context.Context) ([]*athlete.Athlete, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*athlete.Athlete, 0)
	for _, a := range r.athletes {
		if a.IsActive {
			cp := *a
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *fakeAthleteRepo) GetSettings(_ context.Context, athleteID int64) (*athlete.Settings, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.settings[athleteID]
	if !ok {
		return nil, idb.ErrSettingsNotFound
	}
	cp := *s
	return &cp, nil
}

func (r *fakeAthleteRepo) SaveSettings(_ context.Context, s *athlete.Settings) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *s
	r.settings[s.AthleteID] = &cp
	return nil
}

func (r *fakeAthleteRepo) AddSchoolSelection(_ context.Context, sel *athlete.SchoolSelection) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.selections[sel.AthleteID] {
		if existing.SchoolID == sel.SchoolID {
			existing.Preference = sel.Preference
			return nil
		}
	}
	cp := *sel
	r.selections[sel.AthleteID] = append(r.selections[sel.AthleteID], &cp)
	return nil
}

func (r *fakeAthleteRepo) RemoveSchoolSelection(_ context.Context, athleteID, schoolID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	kept := r.selections[athleteID][:0]
	for _, sel := range r.selections[athleteID] {
		if sel.SchoolID != schoolID {
			kept = append(kept, sel)
		}
	}
	r.selections[athleteID] = kept
	return nil
}

func (r *fakeAthleteRepo) ListSchoolSelections(_ context.Context, athleteID int64) ([]*athlete.SchoolSelection, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*athlete.SchoolSelection, 0, len(r.selections[athleteID]))
	for _, sel := range r.selections[athleteID] {
		cp := *sel
		out = append(out, &cp)
	}
	return out, nil
}

// --- directory repository fake ---

type fakeDirectoryRepo struct {
	mu       sync.Mutex
	nextID   int64
	schools  map[int64]*directory.School
	coaches  map[int64]*directory.Coach
}

func newFakeDirectoryRepo() *fakeDirectoryRepo {
	return &fakeDirectoryRepo{
		nextID:  1,
		schools: make(map[int64]*directory.School),
		coaches: make(map[int64]*directory.Coach),
	}
}

func (r *fakeDirectoryRepo) CreateSchool(_ context.Context, s *directory.School) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.schools {
		if existing.Name == s.Name {
			return idb.ErrDuplicateSchool
		}
	}
	s.ID = r.nextID
	r.nextID++
	cp := *s
	r.schools[s.ID] = &cp
	return nil
}

func (r *fakeDirectoryRepo) GetSchoolByID(_ context.Context, id int64) (*directory.School, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.schools[id]
	if !ok {
		return nil, idb.ErrSchoolNotFound
	}
	cp := *s
	return &cp, nil
}

func (r *fakeDirectoryRepo) GetSchoolByName(_ context.Context, name string) (*directory.School, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range r.schools {
		if s.Name == name {
			cp := *s
			return &cp, nil
		}
	}
	return nil, idb.ErrSchoolNotFound
}

func (r *fakeDirectoryRepo) UpdateSchool(_ context.Context, s *directory.School) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.schools[s.ID]; !ok {
		return idb.ErrSchoolNotFound
	}
	cp := *s
	r.schools[s.ID] = &cp
	return nil
}

func (r *fakeDirectoryRepo) ListSchools(_ context.Context, _ directory.SchoolFilter) ([]*directory.School, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*directory.School, 0, len(r.schools))
	for _, s := range r.schools {
		cp := *s
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *fakeDirectoryRepo) CreateCoach(_ context.Context, c *directory.Coach) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c.ID = r.nextID
	r.nextID++
	cp := *c
	r.coaches[c.ID] = &cp
	return nil
}

func (r *fakeDirectoryRepo) GetCoachByID(_ context.Context, id int64) (*directory.Coach, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.coaches[id]
	if !ok {
		return nil, idb.ErrCoachNotFound
	}
	cp := *c
	return &cp, nil
}

func (r *fakeDirectoryRepo) GetCoachByEmail(_ context.Context, email string) (*directory.Coach, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.coaches {
		if c.Email.Valid && c.Email.String == email {
			cp := *c
			return &cp, nil
		}
	}
	return nil, idb.ErrCoachNotFound
}

func (r *fakeDirectoryRepo) UpdateCoach(_ context.Context, c *directory.Coach) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.coaches[c.ID]; !ok {
		return idb.ErrCoachNotFound
	}
	cp := *c
	r.coaches[c.ID] = &cp
	return nil
}

func (r *fakeDirectoryRepo) ListCoachesBySchool(_ context.Context, schoolID int64) ([]*directory.Coach, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*directory.Coach, 0)
	for _, c := range r.coaches {
		if c.SchoolID == schoolID {
			cp := *c
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *fakeDirectoryRepo) ListContactableCoaches(_ context.Context, schoolIDs []int64) ([]*directory.CoachWithSchool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	scope := make(map[int64]bool, len(schoolIDs))
	for _, id := range schoolIDs {
		scope[id] = true
	}

	out := make([]*directory.CoachWithSchool, 0)
	for _, c := range r.coaches {
		if c.Inert() {
			continue
		}
		if len(schoolIDs) > 0 && !scope[c.SchoolID] {
			continue
		}
		cw := directory.CoachWithSchool{Coach: *c}
		if s, ok := r.schools[c.SchoolID]; ok {
			cw.SchoolName = s.Name
			cw.SchoolDivision = s.Division.String
			cw.SchoolTier = s.PriorityTier
		}
		out = append(out, &cw)
	}

	// Same ordering contract as the SQL implementation: tier, then
	// last-contacted ascending with never-contacted first, then ID.
	sort.Slice(out, func(i, j int) bool {
		ti, tj := out[i].SchoolTier, out[j].SchoolTier
		if ti == 0 {
			ti = 1 << 30
		}
		if tj == 0 {
			tj = 1 << 30
		}
		if ti != tj {
			return ti < tj
		}
		li, lj := out[i].LastContactedAt, out[j].LastContactedAt
		if li.Valid != lj.Valid {
			return !li.Valid
		}
		if li.Valid && !li.Time.Equal(lj.Time) {
			return li.Time.Before(lj.Time)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

// --- outreach repository fake ---

type fakeOutreachRepo struct {
	mu      sync.Mutex
	nextID  int64
	records map[int64]*outreach.Record
	dms     map[int64]*outreach.DMRecord
}

func newFakeOutreachRepo() *fakeOutreachRepo {
	return &fakeOutreachRepo{
		nextID:  1,
		records: make(map[int64]*outreach.Record),
		dms:     make(map[int64]*outreach.DMRecord),
	}
}

func (r *fakeOutreachRepo) Create(_ context.Context, rec *outreach.Record) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.records {
		if existing.AthleteID == rec.AthleteID &&
			existing.CoachID.Valid && rec.CoachID.Valid &&
			existing.CoachID.Int64 == rec.CoachID.Int64 &&
			existing.Status.InFlight() {
			return idb.ErrInFlightExists
		}
	}
	rec.ID = r.nextID
	r.nextID++
	rec.CreatedAt = time.Now()
	rec.UpdatedAt = rec.CreatedAt
	cp := *rec
	r.records[rec.ID] = &cp
	return nil
}

func (r *fakeOutreachRepo) GetByID(_ context.Context, id int64) (*outreach.Record, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.records[id]
	if !ok {
		return nil, idb.ErrRecordNotFound
	}
	cp := *rec
	return &cp, nil
}

func (r *fakeOutreachRepo) GetByTrackingID(_ context.Context, trackingID string) (*outreach.Record, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, rec := range r.records {
		if rec.TrackingID == trackingID {
			cp := *rec
			return &cp, nil
		}
	}
	return nil, idb.ErrRecordNotFound
}

func (r *fakeOutreachRepo) transition(id int64, from []outreach.Status, apply func(*outreach.Record)) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.records[id]
	if !ok {
		return idb.ErrRecordNotFound
	}
	for _, s := range from {
		if rec.Status == s {
			apply(rec)
			rec.UpdatedAt = time.Now()
			return nil
		}
	}
	return idb.ErrStatusConflict
}

func (r *fakeOutreachRepo) UpdateContent(_ context.Context, id int64, subject, body string) error {
	return r.transition(id, []outreach.Status{outreach.StatusPending}, func(rec *outreach.Record) {
		rec.Subject = subject
		rec.Body = body
	})
}

func (r *fakeOutreachRepo) ClaimPending(_ context.Context, id int64) error {
	return r.transition(id, []outreach.Status{outreach.StatusPending}, func(rec *outreach.Record) {
		rec.Status = outreach.StatusQueued
	})
}

func (r *fakeOutreachRepo) MarkSent(_ context.Context, id int64, sentAt time.Time) error {
	return r.transition(id, []outreach.Status{outreach.StatusQueued}, func(rec *outreach.Record) {
		rec.Status = outreach.StatusSent
		rec.SentAt.Time = sentAt
		rec.SentAt.Valid = true
	})
}

func (r *fakeOutreachRepo) MarkFailed(_ context.Context, id int64, reason string) error {
	return r.transition(id, []outreach.Status{outreach.StatusQueued}, func(rec *outreach.Record) {
		rec.Status = outreach.StatusFailed
		rec.FailureReason.String = reason
		rec.FailureReason.Valid = true
	})
}

func (r *fakeOutreachRepo) MarkBounced(_ context.Context, id int64) error {
	return r.transition(id, []outreach.Status{outreach.StatusQueued, outreach.StatusSent}, func(rec *outreach.Record) {
		rec.Status = outreach.StatusBounced
	})
}

func (r *fakeOutreachRepo) ApplyOpen(_ context.Context, trackingID string, now time.Time) (*outreach.Record, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, rec := range r.records {
		if rec.TrackingID == trackingID {
			rec.OpenCount++
			rec.Opened = true
			if !rec.OpenedAt.Valid {
				rec.OpenedAt.Time = now
				rec.OpenedAt.Valid = true
			}
			cp := *rec
			return &cp, nil
		}
	}
	return nil, idb.ErrRecordNotFound
}

func (r *fakeOutreachRepo) ApplyReply(_ context.Context, id int64, sentiment outreach.Sentiment, now time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.records[id]
	if !ok {
		return idb.ErrRecordNotFound
	}
	rec.Replied = true
	if !rec.RepliedAt.Valid {
		rec.RepliedAt.Time = now
		rec.RepliedAt.Valid = true
	}
	if !rec.ReplySentiment.Valid {
		rec.ReplySentiment.String = string(sentiment)
		rec.ReplySentiment.Valid = true
	}
	return nil
}

func (r *fakeOutreachRepo) GetLatestSentByCoachEmail(_ context.Context, athleteID int64, coachEmail string) (*outreach.Record, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var latest *outreach.Record
	for _, rec := range r.records {
		if rec.AthleteID != athleteID || rec.CoachEmail != coachEmail || rec.Status != outreach.StatusSent {
			continue
		}
		if latest == nil || rec.SentAt.Time.After(latest.SentAt.Time) {
			latest = rec
		}
	}
	if latest == nil {
		return nil, idb.ErrRecordNotFound
	}
	cp := *latest
	return &cp, nil
}

func (r *fakeOutreachRepo) ListByAthlete(_ context.Context, athleteID int64) ([]*outreach.Record, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*outreach.Record, 0)
	for _, rec := range r.records {
		if rec.AthleteID == athleteID {
			cp := *rec
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (r *fakeOutreachRepo) ListHistory(_ context.Context, athleteID, coachID int64) ([]*outreach.Record, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*outreach.Record, 0)
	for _, rec := range r.records {
		if rec.AthleteID == athleteID && rec.CoachID.Valid && rec.CoachID.Int64 == coachID {
			cp := *rec
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *fakeOutreachRepo) ListPending(_ context.Context, athleteID int64, limit int) ([]*outreach.Record, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*outreach.Record, 0)
	for _, rec := range r.records {
		if rec.AthleteID == athleteID && rec.Status == outreach.StatusPending {
			cp := *rec
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *fakeOutreachRepo) CountSentSince(_ context.Context, athleteID int64, since time.Time) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	count := 0
	for _, rec := range r.records {
		if rec.AthleteID == athleteID && rec.Status == outreach.StatusSent &&
			rec.SentAt.Valid && !rec.SentAt.Time.Before(since) {
			count++
		}
	}
	return count, nil
}

func (r *fakeOutreachRepo) ReclaimStaleQueued(_ context.Context, cutoff time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, rec := range r.records {
		if rec.Status == outreach.StatusQueued && rec.UpdatedAt.Before(cutoff) {
			rec.Status = outreach.StatusFailed
			rec.FailureReason.String = "reclaimed: stuck in queued"
			rec.FailureReason.Valid = true
			rec.UpdatedAt = time.Now()
			n++
		}
	}
	return n, nil
}

func (r *fakeOutreachRepo) Stats(_ context.Context, athleteID int64) (*outreach.Stats, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	st := outreach.Stats{}
	for _, rec := range r.records {
		if rec.AthleteID != athleteID {
			continue
		}
		st.Total++
		switch rec.Status {
		case outreach.StatusPending:
			st.Pending++
		case outreach.StatusSent:
			st.Sent++
		case outreach.StatusFailed:
			st.Failed++
		}
		if rec.Opened {
			st.Opened++
		}
		if rec.Replied {
			st.Replied++
		}
	}
	return &st, nil
}

func (r *fakeOutreachRepo) ListHotLeads(_ context.Context, athleteID int64, limit int) ([]*outreach.HotLead, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*outreach.HotLead, 0)
	for _, rec := range r.records {
		if rec.AthleteID == athleteID && rec.Status == outreach.StatusSent && rec.Opened {
			out = append(out, &outreach.HotLead{
				CoachName:      rec.CoachName,
				CoachEmail:     rec.CoachEmail,
				SchoolName:     rec.SchoolName,
				OpenCount:      rec.OpenCount,
				Replied:        rec.Replied,
				ReplySentiment: rec.ReplySentiment.String,
			})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].OpenCount > out[j].OpenCount })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *fakeOutreachRepo) CreateDM(_ context.Context, d *outreach.DMRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	d.ID = r.nextID
	r.nextID++
	cp := *d
	r.dms[d.ID] = &cp
	return nil
}

func (r *fakeOutreachRepo) GetDMByID(_ context.Context, id int64) (*outreach.DMRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	d, ok := r.dms[id]
	if !ok {
		return nil, idb.ErrDMNotFound
	}
	cp := *d
	return &cp, nil
}

func (r *fakeOutreachRepo) FindDMByTwitter(_ context.Context, athleteID int64, twitter string) (*outreach.DMRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, d := range r.dms {
		if d.AthleteID == athleteID && d.CoachTwitter == twitter {
			cp := *d
			return &cp, nil
		}
	}
	return nil, idb.ErrDMNotFound
}

func (r *fakeOutreachRepo) ListDMsByStatus(_ context.Context, athleteID int64, status outreach.DMStatus, limit int) ([]*outreach.DMRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*outreach.DMRecord, 0)
	for _, d := range r.dms {
		if d.AthleteID == athleteID && d.Status == status {
			cp := *d
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *fakeOutreachRepo) UpdateDMStatus(_ context.Context, id int64, status outreach.DMStatus, notes string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	d, ok := r.dms[id]
	if !ok {
		return idb.ErrDMNotFound
	}
	d.Status = status
	if notes != "" {
		d.Notes.String = notes
		d.Notes.Valid = true
	}
	return nil
}

// --- template repository fake ---

type fakeTemplateRepo struct {
	mu        sync.Mutex
	nextID    int64
	templates map[int64]*template.Template
}

func newFakeTemplateRepo() *fakeTemplateRepo {
	return &fakeTemplateRepo{nextID: 1, templates: make(map[int64]*template.Template)}
}

func (r *fakeTemplateRepo) Create(_ context.Context, t *template.Template) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	t.ID = r.nextID
	r.nextID++
	cp := *t
	r.templates[t.ID] = &cp
	return nil
}

func (r *fakeTemplateRepo) GetByID(_ context.Context, id int64) (*template.Template, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.templates[id]
	if !ok {
		return nil, idb.ErrTemplateNotFound
	}
	cp := *t
	return &cp, nil
}

func (r *fakeTemplateRepo) Update(_ context.Context, t *template.Template) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.templates[t.ID]; !ok {
		return idb.ErrTemplateNotFound
	}
	cp := *t
	r.templates[t.ID] = &cp
	return nil
}

func (r *fakeTemplateRepo) Delete(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.templates[id]; !ok {
		return idb.ErrTemplateNotFound
	}
	delete(r.templates, id)
	return nil
}

func (r *fakeTemplateRepo) List(_ context.Context, kind template.Kind) ([]*template.Template, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*template.Template, 0)
	for _, t := range r.templates {
		if t.Kind == kind {
			cp := *t
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *fakeTemplateRepo) FindActive(_ context.Context, kind template.Kind, emailType, coachType string) (*template.Template, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var fallback *template.Template
	for _, t := range r.templates {
		if t.Kind != kind || t.EmailType != emailType || !t.IsActive {
			continue
		}
		if t.CoachType == coachType {
			cp := *t
			return &cp, nil
		}
		if t.CoachType == "any" {
			fallback = t
		}
	}
	if fallback != nil {
		cp := *fallback
		return &cp, nil
	}
	return nil, idb.ErrTemplateNotFound
}

// --- transport / credential / notifier fakes ---

type fakeTransport struct {
	mu       sync.Mutex
	sent     []mail.Message
	failWith error
	failOnTo map[string]error
}

func newFakeTransport() *fakeTransport {
	return &fakeTransport{failOnTo: make(map[string]error)}
}

func (t *fakeTransport) Send(_ context.Context, _ mail.Credentials, msg mail.Message) (string, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.failWith != nil {
		return "", t.failWith
	}
	if err, ok := t.failOnTo[msg.To]; ok {
		return "", err
	}
	t.sent = append(t.sent, msg)
	return "msg-id", nil
}

func (t *fakeTransport) sentCount() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.sent)
}

type fakeCredStore struct {
	err error
}

func (c *fakeCredStore) ForAthlete(context.Context, int64) (mail.Credentials, error) {
	if c.err != nil {
		return mail.Credentials{}, c.err
	}
	return mail.Credentials{Host: "smtp.test", Port: 587, Username: "user", From: "user@test"}, nil
}

type fakeNotifier struct {
	mu       sync.Mutex
	messages []string
}

func (n *fakeNotifier) Notify(text string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.messages = append(n.messages, text)
}
