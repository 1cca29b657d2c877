package usecase

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"resume-tailor/internal/domain"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeStore is an in-memory ProfileStore. Inserts can be failed selectively
// to exercise partial-failure behavior.
type fakeStore struct {
	mu          sync.Mutex
	profile     *domain.Profile
	experiences []domain.WorkExperience
	education   []domain.EducationRecord
	skills      []domain.Skill
	projects    []domain.Project

	failSkillNamed string
}

func newFakeStore() *fakeStore { return &fakeStore{} }

func (f *fakeStore) GetProfile(ctx context.Context, userID uuid.UUID) (*domain.Profile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.profile, nil
}

func (f *fakeStore) UpdateProfileFields(ctx context.Context, userID uuid.UUID, fields map[string]string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.profile == nil {
		f.profile = &domain.Profile{UserID: userID}
	}
	for name, value := range fields {
		switch name {
		case "name":
			f.profile.Name = value
		case "phone":
			f.profile.Phone = value
		case "location":
			f.profile.Location = value
		case "linkedin":
			f.profile.LinkedIn = value
		case "github":
			f.profile.GitHub = value
		case "website":
			f.profile.Website = value
		}
	}
	return nil
}

func (f *fakeStore) ListExperiences(ctx context.Context, userID uuid.UUID) ([]domain.WorkExperience, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]domain.WorkExperience(nil), f.experiences...), nil
}

func (f *fakeStore) InsertExperience(ctx context.Context, exp *domain.WorkExperience) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.experiences = append(f.experiences, *exp)
	return nil
}

func (f *fakeStore) ListEducation(ctx context.Context, userID uuid.UUID) ([]domain.EducationRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]domain.EducationRecord(nil), f.education...), nil
}

func (f *fakeStore) InsertEducation(ctx context.Context, rec *domain.EducationRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.education = append(f.education, *rec)
	return nil
}

func (f *fakeStore) ListSkills(ctx context.Context, userID uuid.UUID) ([]domain.Skill, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]domain.Skill(nil), f.skills...), nil
}

func (f *fakeStore) InsertSkill(ctx context.Context, skill *domain.Skill) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failSkillNamed != "" && skill.Name == f.failSkillNamed {
		return errors.New("constraint violation")
	}
	f.skills = append(f.skills, *skill)
	return nil
}

func (f *fakeStore) ListProjects(ctx context.Context, userID uuid.UUID) ([]domain.Project, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]domain.Project(nil), f.projects...), nil
}

func (f *fakeStore) InsertProject(ctx context.Context, project *domain.Project) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.projects = append(f.projects, *project)
	return nil
}

func sampleDocument() *domain.StructuredDocument {
	return &domain.StructuredDocument{
		ContactInfo: domain.ContactInfo{
			Name:     "Jane Doe",
			Phone:    "+1 555 0100",
			Location: "Lisbon",
			GitHub:   "github.com/janedoe",
		},
		Experience: []domain.ExperienceEntry{
			{Company: "Acme", Position: "Backend Engineer", StartDate: "Jan 2021", EndDate: "Present", Achievements: []string{"Cut p99 latency by 40%"}},
			{Company: "Globex", Position: "SRE", StartDate: "2018", EndDate: "Dec 2020"},
		},
		Education: []domain.EducationEntry{
			{Institution: "MIT", Degree: "BSc", Field: "CS", StartDate: "2015", EndDate: "2019"},
		},
		Skills: domain.SkillsInput{Categories: []domain.SkillCategory{
			{Name: "Programming Languages", Skills: []string{"Go", "SQL"}},
			{Name: "Cloud Tools", Skills: []string{"Terraform"}},
		}},
		Projects: []domain.ProjectEntry{
			{Name: "Portfolio Site", URL: "a.example"},
			{Name: "CLI Toolkit", URL: "github.com/janedoe/clitk"},
		},
	}
}

func newTestReconciler(store ProfileStore) *Reconciler {
	rc := NewReconciler(store, zerolog.Nop())
	rc.now = func() time.Time { return time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC) }
	return rc
}

func TestReconcileIsIdempotent(t *testing.T) {
	store := newFakeStore()
	rc := newTestReconciler(store)
	userID := uuid.New()
	doc := sampleDocument()

	first, err := rc.Reconcile(context.Background(), userID, doc)
	require.NoError(t, err)
	assert.Equal(t, EntityCounts{Added: 2}, first.Experience)
	assert.Equal(t, EntityCounts{Added: 1}, first.Education)
	assert.Equal(t, EntityCounts{Added: 3}, first.Skills)
	assert.Equal(t, ProjectCounts{Added: 2}, first.Projects)
	assert.NotEmpty(t, first.ProfileFields)

	second, err := rc.Reconcile(context.Background(), userID, doc)
	require.NoError(t, err)
	assert.Equal(t, EntityCounts{Skipped: 2}, second.Experience)
	assert.Equal(t, EntityCounts{Skipped: 1}, second.Education)
	assert.Equal(t, EntityCounts{Skipped: 3}, second.Skills)
	assert.Equal(t, ProjectCounts{Skipped: 2}, second.Projects)
	assert.Empty(t, second.ProfileFields, "identical contact fields do not re-change")
}

func TestReconcileMapsOngoingEndDates(t *testing.T) {
	store := newFakeStore()
	rc := newTestReconciler(store)

	_, err := rc.Reconcile(context.Background(), uuid.New(), sampleDocument())
	require.NoError(t, err)

	byCompany := map[string]domain.WorkExperience{}
	for _, e := range store.experiences {
		byCompany[e.Company] = e
	}
	acme := byCompany["Acme"]
	assert.True(t, acme.IsCurrent)
	assert.Nil(t, acme.EndDate)
	assert.Equal(t, time.Date(2021, 1, 1, 0, 0, 0, 0, time.UTC), acme.StartDate)

	globex := byCompany["Globex"]
	assert.False(t, globex.IsCurrent)
	require.NotNil(t, globex.EndDate)
	assert.Equal(t, time.Date(2020, 12, 1, 0, 0, 0, 0, time.UTC), *globex.EndDate)
}

func TestReconcileUnparseableDateDefaultsWithoutFailingRecord(t *testing.T) {
	store := newFakeStore()
	rc := newTestReconciler(store)

	doc := &domain.StructuredDocument{
		Experience: []domain.ExperienceEntry{
			{Company: "Initech", Position: "Dev", StartDate: "a while ago", EndDate: "later", Achievements: []string{"kept the printer alive"}},
		},
	}
	report, err := rc.Reconcile(context.Background(), uuid.New(), doc)
	require.NoError(t, err)
	assert.Equal(t, EntityCounts{Added: 1}, report.Experience)

	e := store.experiences[0]
	assert.Equal(t, rc.now(), e.StartDate)
	require.NotNil(t, e.EndDate)
	assert.Equal(t, rc.now(), *e.EndDate)
	assert.False(t, e.IsCurrent)
	assert.Equal(t, []string{"kept the printer alive"}, e.Achievements)
}

func TestReconcileExperienceDedupIsCaseInsensitiveCompoundKey(t *testing.T) {
	store := newFakeStore()
	rc := newTestReconciler(store)
	userID := uuid.New()

	_, err := rc.Reconcile(context.Background(), userID, &domain.StructuredDocument{
		Experience: []domain.ExperienceEntry{{Company: "Acme", Position: "Backend Engineer"}},
	})
	require.NoError(t, err)

	report, err := rc.Reconcile(context.Background(), userID, &domain.StructuredDocument{
		Experience: []domain.ExperienceEntry{
			// same pair, different case
			{Company: "ACME", Position: "backend engineer"},
			// same company, new position
			{Company: "Acme", Position: "Staff Engineer"},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, EntityCounts{Added: 1, Skipped: 1}, report.Experience)
}

func TestReconcileProjectNameMatchWinsOverDifferentURL(t *testing.T) {
	store := newFakeStore()
	rc := newTestReconciler(store)
	userID := uuid.New()

	_, err := rc.Reconcile(context.Background(), userID, &domain.StructuredDocument{
		Projects: []domain.ProjectEntry{{Name: "Portfolio Site", URL: "a.example"}},
	})
	require.NoError(t, err)

	// Same name, different URL: the OR rule treats it as a duplicate.
	report, err := rc.Reconcile(context.Background(), userID, &domain.StructuredDocument{
		Projects: []domain.ProjectEntry{{Name: "Portfolio Site", URL: "b.example"}},
	})
	require.NoError(t, err)
	assert.Equal(t, ProjectCounts{Skipped: 1}, report.Projects)
	assert.Len(t, store.projects, 1)
}

func TestReconcileProjectURLMatchWinsOverDifferentName(t *testing.T) {
	store := newFakeStore()
	rc := newTestReconciler(store)
	userID := uuid.New()

	_, err := rc.Reconcile(context.Background(), userID, &domain.StructuredDocument{
		Projects: []domain.ProjectEntry{{Name: "Portfolio Site", URL: "a.example/site"}},
	})
	require.NoError(t, err)

	report, err := rc.Reconcile(context.Background(), userID, &domain.StructuredDocument{
		Projects: []domain.ProjectEntry{{Name: "My Homepage", URL: "https://a.example/site/"}},
	})
	require.NoError(t, err)
	assert.Equal(t, ProjectCounts{Skipped: 1}, report.Projects)
}

func TestReconcileSkillTaxonomyMapping(t *testing.T) {
	store := newFakeStore()
	rc := newTestReconciler(store)

	doc := &domain.StructuredDocument{
		Skills: domain.SkillsInput{Categories: []domain.SkillCategory{
			{Name: "Programming Languages", Skills: []string{"Go"}},
			{Name: "Frameworks & Libraries", Skills: []string{"Fiber"}},
			{Name: "DevOps Tooling", Skills: []string{"Terraform"}},
			{Name: "Soft Skills", Skills: []string{"Mentoring"}},
			{Name: "Misc", Skills: []string{"Whiteboarding"}},
		}},
	}
	_, err := rc.Reconcile(context.Background(), uuid.New(), doc)
	require.NoError(t, err)

	got := map[string]string{}
	for _, s := range store.skills {
		got[s.Name] = s.Category
	}
	assert.Equal(t, map[string]string{
		"Go":            "language",
		"Fiber":         "framework",
		"Terraform":     "tool",
		"Mentoring":     "soft",
		"Whiteboarding": "technical",
	}, got)
}

func TestReconcileFlatSkillListDefaultsToTechnical(t *testing.T) {
	store := newFakeStore()
	rc := newTestReconciler(store)

	doc := &domain.StructuredDocument{
		Skills: domain.SkillsInput{Flat: []string{"Go", "go", "Kubernetes"}},
	}
	report, err := rc.Reconcile(context.Background(), uuid.New(), doc)
	require.NoError(t, err)

	// "go" dedups against "Go" within the same batch.
	assert.Equal(t, EntityCounts{Added: 2, Skipped: 1}, report.Skills)
	for _, s := range store.skills {
		assert.Equal(t, "technical", s.Category)
	}
}

func TestReconcileSkillDedupIgnoresCategory(t *testing.T) {
	store := newFakeStore()
	rc := newTestReconciler(store)
	userID := uuid.New()

	_, err := rc.Reconcile(context.Background(), userID, &domain.StructuredDocument{
		Skills: domain.SkillsInput{Categories: []domain.SkillCategory{{Name: "Languages", Skills: []string{"Go"}}}},
	})
	require.NoError(t, err)

	report, err := rc.Reconcile(context.Background(), userID, &domain.StructuredDocument{
		Skills: domain.SkillsInput{Flat: []string{"Go"}},
	})
	require.NoError(t, err)
	assert.Equal(t, EntityCounts{Skipped: 1}, report.Skills)
}

func TestReconcilePartialInsertFailureContinuesBatch(t *testing.T) {
	store := newFakeStore()
	store.failSkillNamed = "SQL"
	rc := newTestReconciler(store)

	doc := &domain.StructuredDocument{
		Skills: domain.SkillsInput{Flat: []string{"Go", "SQL", "Kubernetes"}},
	}
	report, err := rc.Reconcile(context.Background(), uuid.New(), doc)
	require.NoError(t, err)

	// The failed insert is neither added nor skipped; the batch proceeds.
	assert.Equal(t, EntityCounts{Added: 2, Skipped: 0}, report.Skills)
}

func TestReconcileProfileFieldsReportsChangedNames(t *testing.T) {
	store := newFakeStore()
	store.profile = &domain.Profile{Name: "Jane Doe", Phone: "old"}
	rc := newTestReconciler(store)

	doc := &domain.StructuredDocument{ContactInfo: domain.ContactInfo{
		Name:    "Jane Doe", // unchanged
		Phone:   "+1 555 0100",
		Website: "janedoe.dev",
	}}
	report, err := rc.Reconcile(context.Background(), uuid.New(), doc)
	require.NoError(t, err)

	assert.Equal(t, []string{"phone", "website"}, report.ProfileFields)
	assert.Equal(t, "https://janedoe.dev", store.profile.Website, "links are normalized with a scheme")
	assert.Equal(t, "Jane Doe", store.profile.Name)
}

func TestReconcileFallbackDocumentIsANoOp(t *testing.T) {
	store := newFakeStore()
	rc := newTestReconciler(store)

	report, err := rc.Reconcile(context.Background(), uuid.New(), domain.NewFallbackDocument("raw text"))
	require.NoError(t, err)

	assert.Empty(t, report.ProfileFields)
	assert.Equal(t, EntityCounts{}, report.Experience)
	assert.Equal(t, EntityCounts{}, report.Education)
	assert.Equal(t, EntityCounts{}, report.Skills)
	assert.Equal(t, ProjectCounts{}, report.Projects)
}

func TestReportSummaryMentionsEveryEntity(t *testing.T) {
	r := &Report{
		ProfileFields: []string{"phone"},
		Experience:    EntityCounts{Added: 2, Skipped: 1},
		Projects:      ProjectCounts{Added: 1},
	}
	s := r.Summary()
	for _, want := range []string{"profile", "experience", "education", "skills", "projects"} {
		assert.Contains(t, s, want)
	}
}
