// Package sampledata produces the demonstration datasets served to the grid:
// randomly valued employee rows of any size and a small static organization
// tree.
//
// Row shape is fixed; only values are random. Every field is drawn
// independently from a fixed pool except id (sequential), name/email (built
// from the same two sampled name parts), salary (uniform integer) and
// startDate (uniform calendar date).
package sampledata

import (
	"math/rand/v2"
	"strings"
	"time"

	"griddemo/pkg/records"
)

// Field names, in row order.
const (
	FieldID         = "id"
	FieldName       = "name"
	FieldEmail      = "email"
	FieldCountry    = "country"
	FieldCity       = "city"
	FieldDepartment = "department"
	FieldPosition   = "position"
	FieldSalary     = "salary"
	FieldStartDate  = "startDate"
	FieldStatus     = "status"
)

// EmailDomain is appended to every generated email address.
const EmailDomain = "@company.com"

// Salary bounds: [MinSalary, MaxSalary).
const (
	MinSalary = 50000
	MaxSalary = 200000
)

// DateLayout is the ISO calendar date layout used for startDate.
const DateLayout = "2006-01-02"

// EarliestStartDate is the lower bound for generated start dates.
var EarliestStartDate = time.Date(2015, time.January, 1, 0, 0, 0, 0, time.UTC)

var (
	countries   = []string{"USA", "UK", "Germany", "France", "Spain", "Italy", "Canada", "Australia", "Japan", "Brazil"}
	cities      = []string{"New York", "London", "Berlin", "Paris", "Madrid", "Rome", "Toronto", "Sydney", "Tokyo", "Rio"}
	departments = []string{"Engineering", "Sales", "Marketing", "HR", "Finance", "Operations", "Support", "Product"}
	positions   = []string{"Manager", "Senior Developer", "Developer", "Analyst", "Specialist", "Coordinator", "Director"}
	statuses    = []string{"Active", "On Leave", "Remote", "In Office"}
	firstNames  = []string{"John", "Jane", "Michael", "Sarah", "David", "Emily", "Robert", "Lisa", "James", "Maria", "William", "Jennifer", "Richard", "Linda", "Thomas"}
	lastNames   = []string{"Smith", "Johnson", "Williams", "Brown", "Jones", "Garcia", "Miller", "Davis", "Rodriguez", "Martinez", "Wilson", "Anderson", "Taylor", "Thomas", "Moore"}
)

// Generator draws employee rows from a random source.
//
// A Generator is not safe for concurrent use; create one per goroutine.
type Generator struct {
	rnd *rand.Rand
	now func() time.Time
}

// Option configures a Generator.
type Option func(*Generator)

// WithRand sets the random source. Tests pass a seeded source for
// reproducible output.
func WithRand(r *rand.Rand) Option {
	return func(g *Generator) { g.rnd = r }
}

// WithClock sets the clock used as the upper bound for start dates.
func WithClock(now func() time.Time) Option {
	return func(g *Generator) { g.now = now }
}

// NewGenerator returns a Generator seeded from the runtime's random source
// unless WithRand is supplied.
func NewGenerator(opts ...Option) *Generator {
	g := &Generator{now: time.Now}
	for _, o := range opts {
		o(g)
	}
	if g.rnd == nil {
		g.rnd = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return g
}

// Generate is shorthand for NewGenerator().Generate(count).
func Generate(count int) records.Dataset {
	return NewGenerator().Generate(count)
}

// Generate returns exactly count employee rows with ids 1..count.
// A count of zero or less yields an empty dataset.
func (g *Generator) Generate(count int) records.Dataset {
	if count <= 0 {
		return records.Dataset{Rows: []records.Record{}}
	}

	// The upper bound is fixed once per call so every row shares it.
	end := g.now().UTC()

	rows := make([]records.Record, 0, count)
	for i := 1; i <= count; i++ {
		first := pick(g.rnd, firstNames)
		last := pick(g.rnd, lastNames)

		rows = append(rows, records.Record{
			{Name: FieldID, Value: i},
			{Name: FieldName, Value: first + " " + last},
			{Name: FieldEmail, Value: Email(first, last)},
			{Name: FieldCountry, Value: pick(g.rnd, countries)},
			{Name: FieldCity, Value: pick(g.rnd, cities)},
			{Name: FieldDepartment, Value: pick(g.rnd, departments)},
			{Name: FieldPosition, Value: pick(g.rnd, positions)},
			{Name: FieldSalary, Value: MinSalary + g.rnd.IntN(MaxSalary-MinSalary)},
			{Name: FieldStartDate, Value: randomDate(g.rnd, EarliestStartDate, end)},
			{Name: FieldStatus, Value: pick(g.rnd, statuses)},
		})
	}
	return records.Dataset{Rows: rows}
}

// Email builds the address for a first/last name pair.
func Email(first, last string) string {
	return strings.ToLower(first) + "." + strings.ToLower(last) + EmailDomain
}

func pick(r *rand.Rand, pool []string) string {
	return pool[r.IntN(len(pool))]
}

// randomDate returns a uniformly distributed instant in [start, end) rendered
// as a UTC calendar date. If end is not after start, start is used.
func randomDate(r *rand.Rand, start, end time.Time) string {
	span := end.Sub(start)
	if span <= 0 {
		return start.UTC().Format(DateLayout)
	}
	return start.Add(time.Duration(r.Int64N(int64(span)))).UTC().Format(DateLayout)
}
