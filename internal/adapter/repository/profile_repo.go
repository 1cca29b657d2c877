package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	"resume-tailor/internal/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
)

// ProfileRepo is the Postgres-backed profile store. Entity collections are
// keyed by the owning user; dedup decisions are always made against what is
// persisted here.
type ProfileRepo struct {
	pool *pgxpool.Pool
}

func NewProfileRepo(pool *pgxpool.Pool) *ProfileRepo {
	return &ProfileRepo{pool: pool}
}

func (r *ProfileRepo) GetProfile(ctx context.Context, userID uuid.UUID) (*domain.Profile, error) {
	var p domain.Profile
	err := r.pool.QueryRow(ctx,
		`SELECT user_id, name, phone, location, linkedin, github, website, updated_at
		 FROM profiles WHERE user_id = $1`, userID).
		Scan(&p.UserID, &p.Name, &p.Phone, &p.Location, &p.LinkedIn, &p.GitHub, &p.Website, &p.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// allowed profile columns; field names arrive from the reconciler, never
// from request input, but the allowlist keeps the dynamic SET clause safe.
var profileColumns = map[string]bool{
	"name": true, "phone": true, "location": true,
	"linkedin": true, "github": true, "website": true,
}

// UpdateProfileFields upserts only the given fields, leaving the rest of the
// row untouched.
func (r *ProfileRepo) UpdateProfileFields(ctx context.Context, userID uuid.UUID, fields map[string]string) error {
	if len(fields) == 0 {
		return nil
	}
	names := make([]string, 0, len(fields))
	for name := range fields {
		if !profileColumns[name] {
			return fmt.Errorf("unknown profile field %q", name)
		}
		names = append(names, name)
	}
	sort.Strings(names)

	cols := []string{"user_id"}
	placeholders := []string{"$1"}
	sets := []string{}
	args := []interface{}{userID}
	for i, name := range names {
		cols = append(cols, name)
		placeholders = append(placeholders, fmt.Sprintf("$%d", i+2))
		sets = append(sets, fmt.Sprintf("%s = EXCLUDED.%s", name, name))
		args = append(args, fields[name])
	}
	sets = append(sets, "updated_at = now()")

	query := fmt.Sprintf(
		`INSERT INTO profiles (%s) VALUES (%s)
		 ON CONFLICT (user_id) DO UPDATE SET %s`,
		strings.Join(cols, ", "), strings.Join(placeholders, ", "), strings.Join(sets, ", "))
	_, err := r.pool.Exec(ctx, query, args...)
	return err
}

func (r *ProfileRepo) ListExperiences(ctx context.Context, userID uuid.UUID) ([]domain.WorkExperience, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, user_id, company, position, location, start_date, end_date, is_current, achievements, created_at
		 FROM work_experiences WHERE user_id = $1 ORDER BY start_date DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.WorkExperience
	for rows.Next() {
		var e domain.WorkExperience
		var achievements []byte
		if err := rows.Scan(&e.ID, &e.UserID, &e.Company, &e.Position, &e.Location,
			&e.StartDate, &e.EndDate, &e.IsCurrent, &achievements, &e.CreatedAt); err != nil {
			return nil, err
		}
		if len(achievements) > 0 {
			if err := json.Unmarshal(achievements, &e.Achievements); err != nil {
				return nil, err
			}
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (r *ProfileRepo) InsertExperience(ctx context.Context, exp *domain.WorkExperience) error {
	achievements, err := json.Marshal(exp.Achievements)
	if err != nil {
		return err
	}
	_, err = r.pool.Exec(ctx,
		`INSERT INTO work_experiences (id, user_id, company, position, location, start_date, end_date, is_current, achievements, created_at)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)`,
		exp.ID, exp.UserID, exp.Company, exp.Position, exp.Location,
		exp.StartDate, exp.EndDate, exp.IsCurrent, achievements, exp.CreatedAt)
	return err
}

func (r *ProfileRepo) ListEducation(ctx context.Context, userID uuid.UUID) ([]domain.EducationRecord, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, user_id, institution, degree, field, start_date, end_date, is_current, created_at
		 FROM education_records WHERE user_id = $1 ORDER BY start_date DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.EducationRecord
	for rows.Next() {
		var rec domain.EducationRecord
		if err := rows.Scan(&rec.ID, &rec.UserID, &rec.Institution, &rec.Degree, &rec.Field,
			&rec.StartDate, &rec.EndDate, &rec.IsCurrent, &rec.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (r *ProfileRepo) InsertEducation(ctx context.Context, rec *domain.EducationRecord) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO education_records (id, user_id, institution, degree, field, start_date, end_date, is_current, created_at)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`,
		rec.ID, rec.UserID, rec.Institution, rec.Degree, rec.Field,
		rec.StartDate, rec.EndDate, rec.IsCurrent, rec.CreatedAt)
	return err
}

func (r *ProfileRepo) ListSkills(ctx context.Context, userID uuid.UUID) ([]domain.Skill, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, user_id, name, category FROM skills WHERE user_id = $1 ORDER BY name`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Skill
	for rows.Next() {
		var s domain.Skill
		if err := rows.Scan(&s.ID, &s.UserID, &s.Name, &s.Category); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (r *ProfileRepo) InsertSkill(ctx context.Context, skill *domain.Skill) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO skills (id, user_id, name, category) VALUES ($1,$2,$3,$4)`,
		skill.ID, skill.UserID, skill.Name, skill.Category)
	return err
}

func (r *ProfileRepo) ListProjects(ctx context.Context, userID uuid.UUID) ([]domain.Project, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, user_id, name, description, skills, url, created_at
		 FROM projects WHERE user_id = $1 ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Project
	for rows.Next() {
		var p domain.Project
		var skills []byte
		if err := rows.Scan(&p.ID, &p.UserID, &p.Name, &p.Description, &skills, &p.URL, &p.CreatedAt); err != nil {
			return nil, err
		}
		if len(skills) > 0 {
			if err := json.Unmarshal(skills, &p.Skills); err != nil {
				return nil, err
			}
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *ProfileRepo) InsertProject(ctx context.Context, project *domain.Project) error {
	skills, err := json.Marshal(project.Skills)
	if err != nil {
		return err
	}
	_, err = r.pool.Exec(ctx,
		`INSERT INTO projects (id, user_id, name, description, skills, url, created_at)
		 VALUES ($1,$2,$3,$4,$5,$6,$7)`,
		project.ID, project.UserID, project.Name, project.Description, skills, project.URL, project.CreatedAt)
	return err
}
