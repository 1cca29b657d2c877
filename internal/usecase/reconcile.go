package usecase

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"resume-tailor/internal/domain"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// ProfileStore is the persistent profile the reconciliation engine merges
// into. It is the single source of truth for dedup decisions.
type ProfileStore interface {
	GetProfile(ctx context.Context, userID uuid.UUID) (*domain.Profile, error)
	UpdateProfileFields(ctx context.Context, userID uuid.UUID, fields map[string]string) error
	ListExperiences(ctx context.Context, userID uuid.UUID) ([]domain.WorkExperience, error)
	InsertExperience(ctx context.Context, exp *domain.WorkExperience) error
	ListEducation(ctx context.Context, userID uuid.UUID) ([]domain.EducationRecord, error)
	InsertEducation(ctx context.Context, rec *domain.EducationRecord) error
	ListSkills(ctx context.Context, userID uuid.UUID) ([]domain.Skill, error)
	InsertSkill(ctx context.Context, skill *domain.Skill) error
	ListProjects(ctx context.Context, userID uuid.UUID) ([]domain.Project, error)
	InsertProject(ctx context.Context, project *domain.Project) error
}

// EntityCounts reports one sub-merge's outcome. Duplicates are skipped,
// never overwritten; a failed insert counts as neither.
type EntityCounts struct {
	Added   int `json:"added"`
	Skipped int `json:"skipped"`
}

// ProjectCounts additionally carries Updated, which stays zero until a
// project update path exists.
type ProjectCounts struct {
	Added   int `json:"added"`
	Skipped int `json:"skipped"`
	Updated int `json:"updated"`
}

// Report is the caller-visible change summary of one reconciliation.
type Report struct {
	ProfileFields []string      `json:"profileFieldsChanged"`
	Experience    EntityCounts  `json:"experience"`
	Education     EntityCounts  `json:"education"`
	Skills        EntityCounts  `json:"skills"`
	Projects      ProjectCounts `json:"projects"`
}

// Summary renders the report as a single human-readable line.
func (r *Report) Summary() string {
	return fmt.Sprintf(
		"profile: %d field(s) updated; experience: %d added, %d skipped; education: %d added, %d skipped; skills: %d added, %d skipped; projects: %d added, %d skipped, %d updated",
		len(r.ProfileFields),
		r.Experience.Added, r.Experience.Skipped,
		r.Education.Added, r.Education.Skipped,
		r.Skills.Added, r.Skills.Skipped,
		r.Projects.Added, r.Projects.Skipped, r.Projects.Updated,
	)
}

// Reconciler merges a StructuredDocument into a user's persistent profile
// with idempotent, duplicate-free inserts.
type Reconciler struct {
	store ProfileStore
	log   zerolog.Logger
	now   func() time.Time
}

func NewReconciler(store ProfileStore, log zerolog.Logger) *Reconciler {
	return &Reconciler{store: store, log: log, now: time.Now}
}

// Reconcile runs the four sub-merges concurrently. They touch disjoint
// entity collections for a single owning user, so no coordination or
// ordering guarantee is needed among them. No transaction spans sub-merges;
// a duplicate insert from two simultaneous ingestions for one user is a
// known, benign race.
func (rc *Reconciler) Reconcile(ctx context.Context, userID uuid.UUID, doc *domain.StructuredDocument) (*Report, error) {
	report := &Report{ProfileFields: []string{}}

	var wg sync.WaitGroup
	wg.Add(4)
	go func() {
		defer wg.Done()
		report.ProfileFields = rc.mergeProfileFields(ctx, userID, doc.ContactInfo)
	}()
	go func() {
		defer wg.Done()
		report.Experience = rc.mergeExperience(ctx, userID, doc.Experience)
	}()
	go func() {
		defer wg.Done()
		report.Education = rc.mergeEducation(ctx, userID, doc.Education)
	}()
	go func() {
		defer wg.Done()
		report.Skills = rc.mergeSkills(ctx, userID, doc.Skills)
		report.Projects = rc.mergeProjects(ctx, userID, doc.Projects)
	}()
	wg.Wait()

	return report, nil
}

// mergeProfileFields overwrites only the contact fields present in the
// input; absent fields are left untouched. Link fields get a scheme prefix
// when missing. Returns the names of fields that actually changed.
func (rc *Reconciler) mergeProfileFields(ctx context.Context, userID uuid.UUID, info domain.ContactInfo) []string {
	existing, err := rc.store.GetProfile(ctx, userID)
	if err != nil {
		rc.log.Error().Err(err).Str("user_id", userID.String()).Msg("profile lookup failed, skipping contact merge")
		return []string{}
	}
	if existing == nil {
		existing = &domain.Profile{UserID: userID}
	}

	fields := map[string]string{}
	set := func(name, incoming, current string) {
		incoming = strings.TrimSpace(incoming)
		if incoming == "" || incoming == current {
			return
		}
		fields[name] = incoming
	}
	set("name", info.Name, existing.Name)
	set("phone", info.Phone, existing.Phone)
	set("location", info.Location, existing.Location)
	set("linkedin", ensureScheme(info.LinkedIn), existing.LinkedIn)
	set("github", ensureScheme(info.GitHub), existing.GitHub)
	set("website", ensureScheme(info.Website), existing.Website)

	if len(fields) == 0 {
		return []string{}
	}
	if err := rc.store.UpdateProfileFields(ctx, userID, fields); err != nil {
		rc.log.Error().Err(err).Str("user_id", userID.String()).Msg("profile field update failed")
		return []string{}
	}

	changed := make([]string, 0, len(fields))
	for name := range fields {
		changed = append(changed, name)
	}
	sort.Strings(changed)
	return changed
}

// mergeExperience dedups on the lowercased (company, position) pair.
func (rc *Reconciler) mergeExperience(ctx context.Context, userID uuid.UUID, entries []domain.ExperienceEntry) EntityCounts {
	var counts EntityCounts
	if len(entries) == 0 {
		return counts
	}
	existing, err := rc.store.ListExperiences(ctx, userID)
	if err != nil {
		rc.log.Error().Err(err).Str("user_id", userID.String()).Msg("experience listing failed, skipping merge")
		return counts
	}
	seen := make(map[string]bool, len(existing))
	for _, e := range existing {
		seen[pairKey(e.Company, e.Position)] = true
	}

	now := rc.now()
	for _, in := range entries {
		key := pairKey(in.Company, in.Position)
		if seen[key] {
			counts.Skipped++
			continue
		}
		exp := &domain.WorkExperience{
			ID:           uuid.New(),
			UserID:       userID,
			Company:      in.Company,
			Position:     in.Position,
			Location:     in.Location,
			StartDate:    parseFlexibleDate(in.StartDate, now),
			Achievements: in.Achievements,
			CreatedAt:    now,
		}
		if exp.Achievements == nil {
			exp.Achievements = []string{}
		}
		if isOngoing(in.EndDate) {
			exp.IsCurrent = true
		} else if strings.TrimSpace(in.EndDate) != "" {
			end := parseFlexibleDate(in.EndDate, now)
			exp.EndDate = &end
		}
		if err := rc.store.InsertExperience(ctx, exp); err != nil {
			rc.log.Error().Err(err).Str("company", in.Company).Msg("experience insert failed, continuing batch")
			continue
		}
		seen[key] = true
		counts.Added++
	}
	return counts
}

// mergeEducation dedups on the lowercased (institution, degree) pair.
func (rc *Reconciler) mergeEducation(ctx context.Context, userID uuid.UUID, entries []domain.EducationEntry) EntityCounts {
	var counts EntityCounts
	if len(entries) == 0 {
		return counts
	}
	existing, err := rc.store.ListEducation(ctx, userID)
	if err != nil {
		rc.log.Error().Err(err).Str("user_id", userID.String()).Msg("education listing failed, skipping merge")
		return counts
	}
	seen := make(map[string]bool, len(existing))
	for _, e := range existing {
		seen[pairKey(e.Institution, e.Degree)] = true
	}

	now := rc.now()
	for _, in := range entries {
		key := pairKey(in.Institution, in.Degree)
		if seen[key] {
			counts.Skipped++
			continue
		}
		rec := &domain.EducationRecord{
			ID:          uuid.New(),
			UserID:      userID,
			Institution: in.Institution,
			Degree:      in.Degree,
			Field:       in.Field,
			StartDate:   parseFlexibleDate(in.StartDate, now),
			CreatedAt:   now,
		}
		if isOngoing(in.EndDate) {
			rec.IsCurrent = true
		} else if strings.TrimSpace(in.EndDate) != "" {
			end := parseFlexibleDate(in.EndDate, now)
			rec.EndDate = &end
		}
		if err := rc.store.InsertEducation(ctx, rec); err != nil {
			rc.log.Error().Err(err).Str("institution", in.Institution).Msg("education insert failed, continuing batch")
			continue
		}
		seen[key] = true
		counts.Added++
	}
	return counts
}

// mergeSkills accepts both skill shapes and dedups on the lowercased skill
// name against all existing skills regardless of category.
func (rc *Reconciler) mergeSkills(ctx context.Context, userID uuid.UUID, input domain.SkillsInput) EntityCounts {
	var counts EntityCounts
	if input.IsEmpty() {
		return counts
	}
	existing, err := rc.store.ListSkills(ctx, userID)
	if err != nil {
		rc.log.Error().Err(err).Str("user_id", userID.String()).Msg("skill listing failed, skipping merge")
		return counts
	}
	seen := make(map[string]bool, len(existing))
	for _, s := range existing {
		seen[strings.ToLower(s.Name)] = true
	}

	type candidate struct{ name, category string }
	var candidates []candidate
	for _, name := range input.Flat {
		candidates = append(candidates, candidate{name, "technical"})
	}
	for _, cat := range input.Categories {
		mapped := mapSkillCategory(cat.Name)
		for _, name := range cat.Skills {
			candidates = append(candidates, candidate{name, mapped})
		}
	}

	for _, c := range candidates {
		name := strings.TrimSpace(c.name)
		if name == "" {
			continue
		}
		key := strings.ToLower(name)
		if seen[key] {
			counts.Skipped++
			continue
		}
		skill := &domain.Skill{ID: uuid.New(), UserID: userID, Name: name, Category: c.category}
		if err := rc.store.InsertSkill(ctx, skill); err != nil {
			rc.log.Error().Err(err).Str("skill", name).Msg("skill insert failed, continuing batch")
			continue
		}
		seen[key] = true
		counts.Added++
	}
	return counts
}

// mergeProjects dedups on lowercased name OR matching URL: either match
// counts as a duplicate. This union rule is intentional and differs from
// the compound keys used for experience and education.
func (rc *Reconciler) mergeProjects(ctx context.Context, userID uuid.UUID, entries []domain.ProjectEntry) ProjectCounts {
	var counts ProjectCounts
	if len(entries) == 0 {
		return counts
	}
	existing, err := rc.store.ListProjects(ctx, userID)
	if err != nil {
		rc.log.Error().Err(err).Str("user_id", userID.String()).Msg("project listing failed, skipping merge")
		return counts
	}
	names := make(map[string]bool, len(existing))
	urls := make(map[string]bool, len(existing))
	for _, p := range existing {
		names[strings.ToLower(strings.TrimSpace(p.Name))] = true
		if key := normalizeURLKey(p.URL); key != "" {
			urls[key] = true
		}
	}

	now := rc.now()
	for _, in := range entries {
		nameKey := strings.ToLower(strings.TrimSpace(in.Name))
		urlKey := normalizeURLKey(in.URL)
		if names[nameKey] || (urlKey != "" && urls[urlKey]) {
			counts.Skipped++
			continue
		}
		project := &domain.Project{
			ID:          uuid.New(),
			UserID:      userID,
			Name:        in.Name,
			Description: in.Description,
			Skills:      in.Skills,
			URL:         ensureScheme(in.URL),
			CreatedAt:   now,
		}
		if project.Skills == nil {
			project.Skills = []string{}
		}
		if err := rc.store.InsertProject(ctx, project); err != nil {
			rc.log.Error().Err(err).Str("project", in.Name).Msg("project insert failed, continuing batch")
			continue
		}
		names[nameKey] = true
		if urlKey != "" {
			urls[urlKey] = true
		}
		counts.Added++
	}
	return counts
}

func pairKey(a, b string) string {
	return strings.ToLower(strings.TrimSpace(a)) + "\x00" + strings.ToLower(strings.TrimSpace(b))
}

// mapSkillCategory folds a declared category name into the closed taxonomy
// by substring matching, defaulting to technical.
func mapSkillCategory(declared string) string {
	c := strings.ToLower(declared)
	switch {
	case strings.Contains(c, "lang"):
		return "language"
	case strings.Contains(c, "framework"), strings.Contains(c, "librar"):
		return "framework"
	case strings.Contains(c, "tool"), strings.Contains(c, "platform"), strings.Contains(c, "devops"):
		return "tool"
	case strings.Contains(c, "soft"), strings.Contains(c, "interpersonal"), strings.Contains(c, "communication"):
		return "soft"
	default:
		return "technical"
	}
}
