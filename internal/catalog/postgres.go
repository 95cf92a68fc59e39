// internal/catalog/postgres.go
package catalog

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/lib/pq"

	"admissions-workers/internal/common/database"
	"admissions-workers/internal/common/errors"
	"admissions-workers/internal/common/logger"
	"admissions-workers/internal/models"
)

const defaultFetchLimit = 500

// programColumns is the shared select list; scanProgram must stay in sync.
const programColumns = `id, name, university, min_gpa, gpa_scale, min_work_exp_years,
	max_backlogs, ielts_min, toefl_min, pte_min, list_price, discounted_price,
	location, global_rank, intake_terms`

// PostgresProvider reads program records from the relational catalog.
type PostgresProvider struct {
	db     *database.PostgresClient
	logger logger.Logger
}

// NewPostgresProvider creates a catalog provider backed by PostgreSQL.
func NewPostgresProvider(db *database.PostgresClient, log logger.Logger) *PostgresProvider {
	return &PostgresProvider{db: db, logger: log}
}

// FetchPrograms returns the catalog slice matching the filters.
func (p *PostgresProvider) FetchPrograms(ctx context.Context, filters Filters) ([]models.ProgramRecord, error) {
	query, args := buildProgramQuery(filters)

	rows, err := p.db.Query(ctx, query, args...)
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return nil, errors.NewCatalogQueryTimeoutError()
		}
		return nil, errors.NewCatalogFetchFailedError(err)
	}
	defer rows.Close()

	programs := make([]models.ProgramRecord, 0, 64)
	for rows.Next() {
		program, err := scanProgram(rows)
		if err != nil {
			return nil, errors.NewCatalogFetchFailedError(err)
		}
		programs = append(programs, program)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewCatalogFetchFailedError(err)
	}

	p.logger.Debug("Fetched catalog slice", map[string]interface{}{
		"count":   len(programs),
		"filters": fmt.Sprintf("%+v", filters),
	})
	return programs, nil
}

// FetchProgram returns a single program by id.
func (p *PostgresProvider) FetchProgram(ctx context.Context, programID string) (*models.ProgramRecord, error) {
	query := "SELECT " + programColumns + " FROM programs WHERE id = $1"

	rows, err := p.db.Query(ctx, query, programID)
	if err != nil {
		return nil, errors.NewCatalogFetchFailedError(err)
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, errors.NewCatalogFetchFailedError(err)
		}
		return nil, errors.NewProgramNotFoundError(programID)
	}

	program, err := scanProgram(rows)
	if err != nil {
		return nil, errors.NewCatalogFetchFailedError(err)
	}
	return &program, nil
}

func buildProgramQuery(filters Filters) (string, []interface{}) {
	var sb strings.Builder
	sb.WriteString("SELECT " + programColumns + " FROM programs")

	var conditions []string
	var args []interface{}

	if len(filters.Countries) > 0 {
		args = append(args, pq.Array(filters.Countries))
		conditions = append(conditions, fmt.Sprintf("location = ANY($%d)", len(args)))
	}
	if filters.MaxPrice > 0 {
		args = append(args, filters.MaxPrice)
		conditions = append(conditions, fmt.Sprintf("discounted_price <= $%d", len(args)))
	}
	if filters.IntakeTerm != "" {
		args = append(args, filters.IntakeTerm)
		conditions = append(conditions, fmt.Sprintf("$%d = ANY(intake_terms)", len(args)))
	}

	if len(conditions) > 0 {
		sb.WriteString(" WHERE " + strings.Join(conditions, " AND "))
	}

	limit := filters.Limit
	if limit <= 0 {
		limit = defaultFetchLimit
	}
	args = append(args, limit)
	sb.WriteString(fmt.Sprintf(" ORDER BY id LIMIT $%d", len(args)))

	return sb.String(), args
}

// scanProgram maps one row to a ProgramRecord. Nullable columns become nil
// pointers so "no constraint" survives the database round trip.
func scanProgram(rows *sql.Rows) (models.ProgramRecord, error) {
	var (
		program         models.ProgramRecord
		minGPA          sql.NullFloat64
		gpaScale        sql.NullString
		minWorkExpYears sql.NullFloat64
		maxBacklogs     sql.NullInt64
		ieltsMin        sql.NullFloat64
		toeflMin        sql.NullFloat64
		pteMin          sql.NullFloat64
		globalRank      sql.NullInt64
		intakeTerms     pq.StringArray
	)

	err := rows.Scan(
		&program.ID,
		&program.Name,
		&program.University,
		&minGPA,
		&gpaScale,
		&minWorkExpYears,
		&maxBacklogs,
		&ieltsMin,
		&toeflMin,
		&pteMin,
		&program.ListPrice,
		&program.DiscountedPrice,
		&program.Location,
		&globalRank,
		&intakeTerms,
	)
	if err != nil {
		return models.ProgramRecord{}, fmt.Errorf("failed to scan program row: %w", err)
	}

	if minGPA.Valid {
		v := minGPA.Float64
		program.MinGPA = &v
	}
	if gpaScale.Valid {
		program.GPAScaleType = models.GPAScale(gpaScale.String)
	}
	if minWorkExpYears.Valid {
		v := minWorkExpYears.Float64
		program.MinWorkExpYears = &v
	}
	if maxBacklogs.Valid {
		v := int(maxBacklogs.Int64)
		program.MaxBacklogs = &v
	}
	if globalRank.Valid {
		v := int(globalRank.Int64)
		program.GlobalRank = &v
	}

	minimums := make(map[models.TestType]float64)
	if ieltsMin.Valid {
		minimums[models.TestTypeIELTS] = ieltsMin.Float64
	}
	if toeflMin.Valid {
		minimums[models.TestTypeTOEFL] = toeflMin.Float64
	}
	if pteMin.Valid {
		minimums[models.TestTypePTE] = pteMin.Float64
	}
	if len(minimums) > 0 {
		program.TestMinimums = minimums
	}

	program.IntakeTerms = []string(intakeTerms)
	return program, nil
}
