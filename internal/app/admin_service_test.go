package app

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"coach_outreach_service/internal/domain/athlete"
	"coach_outreach_service/internal/domain/directory"
	"coach_outreach_service/internal/domain/outreach"
	"coach_outreach_service/internal/domain/template"
	idb "coach_outreach_service/internal/infra/database"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAdminFixture(t *testing.T) (*AdminService, *fakeAthleteRepo, *fakeDirectoryRepo, *fakeOutreachRepo) {
	t.Helper()
	ar := newFakeAthleteRepo()
	dr := newFakeDirectoryRepo()
	or := newFakeOutreachRepo()
	tr := newFakeTemplateRepo()
	return NewAdminService(ar, dr, or, tr), ar, dr, or
}

func TestCreateAthlete_DefaultsAndDuplicates(t *testing.T) {
	svc, ar, _, _ := newAdminFixture(t)
	ctx := context.Background()

	a := &athlete.Athlete{Name: "Jordan Miles", Email: "jordan@test.com", GradYear: 2027}
	require.NoError(t, svc.CreateAthlete(ctx, a))
	assert.True(t, a.IsActive)
	assert.NotZero(t, a.ID)

	settings, err := ar.GetSettings(ctx, a.ID)
	require.NoError(t, err)
	assert.False(t, settings.AutoSendEnabled, "new athletes start with auto-send off")
	assert.Equal(t, 25, settings.AutoSendCount)
	assert.Equal(t, 3, settings.MaxFollowups)

	dup := &athlete.Athlete{Name: "Someone Else", Email: "jordan@test.com", GradYear: 2028}
	err = svc.CreateAthlete(ctx, dup)
	assert.ErrorIs(t, err, ErrAthleteAlreadyExists)
}

func TestDeactivateAthlete(t *testing.T) {
	svc, _, _, _ := newAdminFixture(t)
	ctx := context.Background()

	a := &athlete.Athlete{Name: "Jordan Miles", Email: "jordan@test.com", GradYear: 2027}
	require.NoError(t, svc.CreateAthlete(ctx, a))

	got, err := svc.DeactivateAthlete(ctx, a.ID)
	require.NoError(t, err)
	assert.False(t, got.IsActive)

	// Deactivating twice is idempotent.
	got, err = svc.DeactivateAthlete(ctx, a.ID)
	require.NoError(t, err)
	assert.False(t, got.IsActive)
}

func TestGetSettings_FallsBackToDefaults(t *testing.T) {
	svc, _, _, _ := newAdminFixture(t)
	ctx := context.Background()

	a := &athlete.Athlete{Name: "Jordan Miles", Email: "jordan@test.com", GradYear: 2027}
	require.NoError(t, svc.CreateAthlete(ctx, a))

	// Settings exist for created athletes; for an unknown id defaults come
	// back rather than an error.
	settings, err := svc.GetSettings(ctx, 42)
	require.NoError(t, err)
	assert.Equal(t, int64(42), settings.AthleteID)
	assert.Equal(t, 7, settings.DaysBetweenEmails)
}

func TestUpdateSettings_Validation(t *testing.T) {
	svc, _, _, _ := newAdminFixture(t)
	ctx := context.Background()

	a := &athlete.Athlete{Name: "Jordan Miles", Email: "jordan@test.com", GradYear: 2027}
	require.NoError(t, svc.CreateAthlete(ctx, a))

	bad := athlete.DefaultSettings(a.ID)
	bad.MaxFollowups = 5
	err := svc.UpdateSettings(ctx, bad)
	assert.ErrorIs(t, err, ErrConfig)

	bad.MaxFollowups = 2
	bad.SendHour = 24
	err = svc.UpdateSettings(ctx, bad)
	assert.ErrorIs(t, err, ErrConfig)

	good := athlete.DefaultSettings(a.ID)
	good.AutoSendEnabled = true
	good.SendHour = 8
	require.NoError(t, svc.UpdateSettings(ctx, good))

	err = svc.UpdateSettings(ctx, athlete.DefaultSettings(999))
	assert.ErrorIs(t, err, idb.ErrAthleteNotFound)
}

func TestPauseAthlete(t *testing.T) {
	svc, ar, _, _ := newAdminFixture(t)
	ctx := context.Background()

	a := &athlete.Athlete{Name: "Jordan Miles", Email: "jordan@test.com", GradYear: 2027}
	require.NoError(t, svc.CreateAthlete(ctx, a))

	until := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, svc.PauseAthlete(ctx, a.ID, until))

	settings, err := ar.GetSettings(ctx, a.ID)
	require.NoError(t, err)
	assert.True(t, settings.IsPaused(until.Add(-time.Hour)))
	assert.False(t, settings.IsPaused(until.Add(time.Hour)))
}

func TestAddCoach_RoleValidation(t *testing.T) {
	svc, _, _, _ := newAdminFixture(t)
	ctx := context.Background()

	school := &directory.School{Name: "Granite State"}
	require.NoError(t, svc.AddSchool(ctx, school))

	bad := &directory.Coach{SchoolID: school.ID, Name: "Pat Doyle", Role: "janitor"}
	err := svc.AddCoach(ctx, bad)
	assert.ErrorIs(t, err, ErrInvalidCoachRole)

	orphan := &directory.Coach{SchoolID: 999, Name: "Pat Doyle", Role: directory.RoleHeadCoach}
	err = svc.AddCoach(ctx, orphan)
	assert.ErrorIs(t, err, idb.ErrSchoolNotFound)

	good := &directory.Coach{SchoolID: school.ID, Name: "Pat Doyle", Role: directory.RoleHeadCoach}
	require.NoError(t, svc.AddCoach(ctx, good))
	assert.NotZero(t, good.ID)
}

func TestSelectSchool_PreferenceValidation(t *testing.T) {
	svc, ar, _, _ := newAdminFixture(t)
	ctx := context.Background()

	a := &athlete.Athlete{Name: "Jordan Miles", Email: "jordan@test.com", GradYear: 2027}
	require.NoError(t, svc.CreateAthlete(ctx, a))
	school := &directory.School{Name: "Granite State"}
	require.NoError(t, svc.AddSchool(ctx, school))

	err := svc.SelectSchool(ctx, a.ID, school.ID, "whatever")
	assert.ErrorIs(t, err, ErrConfig)

	require.NoError(t, svc.SelectSchool(ctx, a.ID, school.ID, athlete.PreferPositionOnly))

	selections, err := ar.ListSchoolSelections(ctx, a.ID)
	require.NoError(t, err)
	require.Len(t, selections, 1)
	assert.Equal(t, athlete.PreferPositionOnly, selections[0].Preference)

	require.NoError(t, svc.UnselectSchool(ctx, a.ID, school.ID))
	selections, err = ar.ListSchoolSelections(ctx, a.ID)
	require.NoError(t, err)
	assert.Empty(t, selections)
}

func TestEnqueueDM_DedupedByHandle(t *testing.T) {
	svc, _, _, _ := newAdminFixture(t)
	ctx := context.Background()

	d := &outreach.DMRecord{AthleteID: 1, CoachName: "Pat Doyle", CoachTwitter: "@patdoyle"}
	require.NoError(t, svc.EnqueueDM(ctx, d))
	assert.Equal(t, outreach.DMPending, d.Status)

	dup := &outreach.DMRecord{AthleteID: 1, CoachName: "Pat Doyle", CoachTwitter: "@patdoyle"}
	err := svc.EnqueueDM(ctx, dup)
	assert.ErrorIs(t, err, ErrDMAlreadyQueued)

	// Same handle for a different athlete is a separate queue.
	other := &outreach.DMRecord{AthleteID: 2, CoachName: "Pat Doyle", CoachTwitter: "@patdoyle"}
	require.NoError(t, svc.EnqueueDM(ctx, other))
}

func TestMarkDM_StatusValidation(t *testing.T) {
	svc, _, _, or := newAdminFixture(t)
	ctx := context.Background()

	d := &outreach.DMRecord{AthleteID: 1, CoachName: "Pat Doyle", CoachTwitter: "@patdoyle"}
	require.NoError(t, svc.EnqueueDM(ctx, d))

	err := svc.MarkDM(ctx, d.ID, "vanished", "")
	assert.ErrorIs(t, err, ErrInvalidDMStatus)

	// Resetting back to pending through MarkDM is not allowed.
	err = svc.MarkDM(ctx, d.ID, outreach.DMPending, "")
	assert.ErrorIs(t, err, ErrInvalidDMStatus)

	require.NoError(t, svc.MarkDM(ctx, d.ID, outreach.DMSent, "sent from phone"))
	got, err := or.GetDMByID(ctx, d.ID)
	require.NoError(t, err)
	assert.Equal(t, outreach.DMSent, got.Status)
	assert.Equal(t, "sent from phone", got.Notes.String)
}

func TestCreateTemplate_RequiresBody(t *testing.T) {
	svc, _, _, _ := newAdminFixture(t)
	ctx := context.Background()

	err := svc.CreateTemplate(ctx, &template.Template{Name: "empty", Kind: template.KindEmail})
	assert.ErrorIs(t, err, ErrConfig)

	tmpl := &template.Template{
		Name:      "intro",
		Subject:   sql.NullString{String: "Hi {coach_first_name}", Valid: true},
		Body:      "Hello from {athlete_name}",
		Kind:      template.KindEmail,
		EmailType: string(outreach.TypeIntro),
		CoachType: "any",
		IsActive:  true,
	}
	require.NoError(t, svc.CreateTemplate(ctx, tmpl))
	assert.NotZero(t, tmpl.ID)
}
