package portfolios

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/staffolio/staffolio/internal/common"
	"github.com/staffolio/staffolio/internal/dbx"
	"github.com/staffolio/staffolio/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const uniqueViolation = "23505"

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}

// listColumns marshals the ordered list fields for the jsonb columns.
// Nil slices are stored as empty arrays so reads always yield [].
func listColumns(p *models.Portfolio) (education, experience, projects, skills []byte, err error) {
	if education, err = json.Marshal(emptyIfNil(p.Education)); err != nil {
		return
	}
	if experience, err = json.Marshal(emptyIfNil(p.Experience)); err != nil {
		return
	}
	if projects, err = json.Marshal(emptyIfNil(p.Projects)); err != nil {
		return
	}
	skills, err = json.Marshal(emptyIfNilStrings(p.Skills))
	return
}

func emptyIfNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

func emptyIfNilStrings(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func (r *PostgresRepository) Create(ctx context.Context, p *models.Portfolio) (*models.Portfolio, error) {

	if p.ID == "" {
		p.ID = uuid.NewString()
	}

	education, experience, projects, skills, err := listColumns(p)
	if err != nil {
		return nil, fmt.Errorf("marshal error: %w", err)
	}

	query :=
		`INSERT INTO portfolios (id, employee_id, name, position, bio, picture, education, experience, projects, skills)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		 `

	_, err = r.db.ExecContext(ctx, query,
		p.ID, p.EmployeeID, p.Name, p.Position, p.Bio, p.Picture,
		education, experience, projects, skills)

	if err != nil {
		if isUniqueViolation(err) {
			return nil, common.ErrorAlreadyExists
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return p, nil
}

const selectColumns = `id, employee_id, name, position, bio, picture, education, experience, projects, skills`

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*models.Portfolio, error) {
	query := `SELECT ` + selectColumns + ` FROM portfolios WHERE id = $1`
	return r.scanOne(r.db.QueryRowContext(ctx, query, id))
}

func (r *PostgresRepository) GetByEmployeeID(ctx context.Context, employeeID string) (*models.Portfolio, error) {
	query := `SELECT ` + selectColumns + ` FROM portfolios WHERE employee_id = $1`
	return r.scanOne(r.db.QueryRowContext(ctx, query, employeeID))
}

func (r *PostgresRepository) scanOne(row *sql.Row) (*models.Portfolio, error) {
	p := &models.Portfolio{}
	var education, experience, projects, skills []byte

	err := row.Scan(&p.ID, &p.EmployeeID, &p.Name, &p.Position, &p.Bio, &p.Picture,
		&education, &experience, &projects, &skills)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	if err := unmarshalLists(p, education, experience, projects, skills); err != nil {
		return nil, err
	}

	return p, nil
}

func unmarshalLists(p *models.Portfolio, education, experience, projects, skills []byte) error {
	if err := json.Unmarshal(education, &p.Education); err != nil {
		return fmt.Errorf("unmarshal error: %w", err)
	}
	if err := json.Unmarshal(experience, &p.Experience); err != nil {
		return fmt.Errorf("unmarshal error: %w", err)
	}
	if err := json.Unmarshal(projects, &p.Projects); err != nil {
		return fmt.Errorf("unmarshal error: %w", err)
	}
	if err := json.Unmarshal(skills, &p.Skills); err != nil {
		return fmt.Errorf("unmarshal error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) Update(ctx context.Context, p *models.Portfolio) (*models.Portfolio, error) {

	education, experience, projects, skills, err := listColumns(p)
	if err != nil {
		return nil, fmt.Errorf("marshal error: %w", err)
	}

	query :=
		`UPDATE portfolios
		 SET name = $2, position = $3, bio = $4, picture = $5,
		     education = $6, experience = $7, projects = $8, skills = $9
		 WHERE id = $1
		 `

	res, err := r.db.ExecContext(ctx, query,
		p.ID, p.Name, p.Position, p.Bio, p.Picture,
		education, experience, projects, skills)

	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	if affected == 0 {
		return nil, common.ErrorNotFound
	}

	return p, nil
}

func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM portfolios WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if affected == 0 {
		return common.ErrorNotFound
	}

	return nil
}

func (r *PostgresRepository) ListAll(ctx context.Context) ([]*models.PortfolioWithOwner, error) {
	query :=
		`SELECT p.id, p.employee_id, p.name, p.position, p.bio, p.picture,
		        p.education, p.experience, p.projects, p.skills,
		        u.username, u.email
		 FROM portfolios p
		 JOIN users u ON u.id = p.employee_id
		 ORDER BY u.username, p.id
		 `

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []*models.PortfolioWithOwner
	for rows.Next() {
		item := &models.PortfolioWithOwner{}
		var education, experience, projects, skills []byte

		err := rows.Scan(&item.ID, &item.EmployeeID, &item.Name, &item.Position, &item.Bio, &item.Picture,
			&education, &experience, &projects, &skills,
			&item.Employee.Username, &item.Employee.Email)
		if err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}

		if err := unmarshalLists(&item.Portfolio, education, experience, projects, skills); err != nil {
			return nil, err
		}

		result = append(result, item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return result, nil
}
