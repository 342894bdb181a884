// Package customerrepo manages repository layer of customers.
package customerrepo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/go-petr/bank-ledger/internal/domain"
	"github.com/go-petr/bank-ledger/pkg/dbpkg"
	"github.com/lib/pq"
	"github.com/rs/zerolog"
)

// RepoPGS facilitates customer repository layer logic.
type RepoPGS struct {
	db dbpkg.SQLInterface
}

// NewRepoPGS returns customer RepoPGS.
func NewRepoPGS(db dbpkg.SQLInterface) *RepoPGS {
	return &RepoPGS{
		db: db,
	}
}

const columns = `id, full_name, father_name, date_of_birth, gender, marital_status,
	address, city, state, mobile_number, email, nationality, class`

func scan(row interface{ Scan(...any) error }) (domain.Customer, error) {
	var c domain.Customer

	err := row.Scan(
		&c.ID,
		&c.FullName,
		&c.FatherName,
		&c.DateOfBirth,
		&c.Gender,
		&c.MaritalStatus,
		&c.Address,
		&c.City,
		&c.State,
		&c.MobileNumber,
		&c.Email,
		&c.Nationality,
		&c.Class,
	)

	return c, err
}

func translate(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return domain.ErrCustomerNotFound
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Constraint == "customers_class_check" {
		return domain.ErrInvalidCustomerClass
	}

	return fmt.Errorf("%w: %v", domain.ErrStore, err)
}

const createQuery = `
INSERT INTO customers (
	full_name, father_name, date_of_birth, gender, marital_status,
	address, city, state, mobile_number, email, nationality, class
)
VALUES
	($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
RETURNING ` + columns

// Create creates the customer and then returns it.
func (r *RepoPGS) Create(ctx context.Context, c domain.Customer) (domain.Customer, error) {
	l := zerolog.Ctx(ctx)

	row := r.db.QueryRowContext(ctx, createQuery,
		c.FullName, c.FatherName, c.DateOfBirth, c.Gender, c.MaritalStatus,
		c.Address, c.City, c.State, c.MobileNumber, c.Email, c.Nationality, c.Class,
	)

	created, err := scan(row)
	if err != nil {
		l.Error().Err(err).Send()
		return domain.Customer{}, translate(err)
	}

	return created, nil
}

const getQuery = `
SELECT ` + columns + `
FROM customers
WHERE id = $1
`

// Get returns the customer with the given id.
func (r *RepoPGS) Get(ctx context.Context, id int64) (domain.Customer, error) {
	l := zerolog.Ctx(ctx)

	c, err := scan(r.db.QueryRowContext(ctx, getQuery, id))
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			l.Error().Err(err).Send()
		}

		return domain.Customer{}, translate(err)
	}

	return c, nil
}

const listQuery = `
SELECT ` + columns + `
FROM customers
ORDER BY id
`

// List returns every customer ordered by id.
func (r *RepoPGS) List(ctx context.Context) ([]domain.Customer, error) {
	l := zerolog.Ctx(ctx)

	rows, err := r.db.QueryContext(ctx, listQuery)
	if err != nil {
		l.Error().Err(err).Send()
		return nil, translate(err)
	}
	defer rows.Close()

	items := []domain.Customer{}

	for rows.Next() {
		c, err := scan(rows)
		if err != nil {
			l.Error().Err(err).Send()
			return nil, translate(err)
		}

		items = append(items, c)
	}

	if err := rows.Err(); err != nil {
		l.Error().Err(err).Send()
		return nil, translate(err)
	}

	return items, nil
}

const updateQuery = `
UPDATE customers
SET
	full_name = $2, father_name = $3, date_of_birth = $4, gender = $5, marital_status = $6,
	address = $7, city = $8, state = $9, mobile_number = $10, email = $11, nationality = $12, class = $13
WHERE id = $1
RETURNING ` + columns

// Update replaces the customer fields and returns the stored customer.
func (r *RepoPGS) Update(ctx context.Context, c domain.Customer) (domain.Customer, error) {
	l := zerolog.Ctx(ctx)

	row := r.db.QueryRowContext(ctx, updateQuery, c.ID,
		c.FullName, c.FatherName, c.DateOfBirth, c.Gender, c.MaritalStatus,
		c.Address, c.City, c.State, c.MobileNumber, c.Email, c.Nationality, c.Class,
	)

	updated, err := scan(row)
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			l.Error().Err(err).Send()
		}

		return domain.Customer{}, translate(err)
	}

	return updated, nil
}

const deleteQuery = `
DELETE FROM customers
WHERE id = $1
`

// Delete removes the customer. Its accounts and their transactions go with it.
func (r *RepoPGS) Delete(ctx context.Context, id int64) error {
	l := zerolog.Ctx(ctx)

	res, err := r.db.ExecContext(ctx, deleteQuery, id)
	if err != nil {
		l.Error().Err(err).Send()
		return translate(err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		l.Error().Err(err).Send()
		return translate(err)
	}

	if n == 0 {
		return domain.ErrCustomerNotFound
	}

	return nil
}
