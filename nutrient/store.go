package nutrient

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	_ "modernc.org/sqlite"

	"github.com/nutripeek/nutripeek-go/types"
)

// ErrNotFound is returned when a food item or intake bracket is absent.
var ErrNotFound = errors.New("resource not found")

const foodColumns = `id, food_name, food_category, food_detail,
	energy_with_fibre_kj, protein_g, total_fat_g, saturated_fat_g,
	carbs_with_sugar_alcohols_g, total_sugars_g, dietary_fibre_g,
	sodium_mg, calcium_mg, iron_mg, zinc_mg, magnesium_mg, vitamin_c_mg`

const schema = `
CREATE TABLE IF NOT EXISTS food_nutrient (
	id TEXT PRIMARY KEY,
	food_name TEXT NOT NULL,
	food_category TEXT NOT NULL DEFAULT '',
	food_detail TEXT NOT NULL DEFAULT '',
	energy_with_fibre_kj REAL NOT NULL DEFAULT 0,
	protein_g REAL NOT NULL DEFAULT 0,
	total_fat_g REAL NOT NULL DEFAULT 0,
	saturated_fat_g REAL NOT NULL DEFAULT 0,
	carbs_with_sugar_alcohols_g REAL NOT NULL DEFAULT 0,
	total_sugars_g REAL NOT NULL DEFAULT 0,
	dietary_fibre_g REAL NOT NULL DEFAULT 0,
	sodium_mg REAL NOT NULL DEFAULT 0,
	calcium_mg REAL NOT NULL DEFAULT 0,
	iron_mg REAL NOT NULL DEFAULT 0,
	zinc_mg REAL NOT NULL DEFAULT 0,
	magnesium_mg REAL NOT NULL DEFAULT 0,
	vitamin_c_mg REAL NOT NULL DEFAULT 0
);
CREATE INDEX IF NOT EXISTS idx_food_nutrient_category ON food_nutrient(food_category);
CREATE INDEX IF NOT EXISTS idx_food_nutrient_name ON food_nutrient(food_name);

CREATE TABLE IF NOT EXISTS daily_nutrient_intake (
	age INTEGER NOT NULL,
	gender TEXT NOT NULL,
	nutrient TEXT NOT NULL,
	intake REAL NOT NULL,
	unit TEXT NOT NULL DEFAULT '',
	category TEXT NOT NULL DEFAULT '',
	PRIMARY KEY (age, gender, nutrient)
);`

// Store reads the food composition and recommended intake tables from SQLite.
type Store struct {
	db *sql.DB
}

// Open opens (and if needed initializes) the nutrient database. Pass
// ":memory:" for an ephemeral database in tests.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	// one connection: sqlite allows a single writer, and a pooled
	// ":memory:" database would otherwise differ per connection
	db.SetMaxOpenConns(1)
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("initialize schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

func scanFood(row interface{ Scan(...any) error }) (*types.FoodNutrient, error) {
	var f types.FoodNutrient
	err := row.Scan(
		&f.ID, &f.FoodName, &f.FoodCategory, &f.FoodDetail,
		&f.EnergyKJ, &f.ProteinG, &f.TotalFatG, &f.SaturatedFatG,
		&f.CarbsG, &f.TotalSugarsG, &f.DietaryFibreG,
		&f.SodiumMg, &f.CalciumMg, &f.IronMg, &f.ZincMg, &f.MagnesiumMg, &f.VitaminCMg,
	)
	if err != nil {
		return nil, err
	}
	return &f, nil
}

func (s *Store) queryFoods(ctx context.Context, query string, args ...any) ([]*types.FoodNutrient, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query foods: %w", err)
	}
	defer rows.Close()

	var foods []*types.FoodNutrient
	for rows.Next() {
		f, err := scanFood(rows)
		if err != nil {
			return nil, fmt.Errorf("scan food: %w", err)
		}
		foods = append(foods, f)
	}
	return foods, rows.Err()
}

// GetByID fetches a single food item.
func (s *Store) GetByID(ctx context.Context, id string) (*types.FoodNutrient, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT "+foodColumns+" FROM food_nutrient WHERE id = ?", id)
	f, err := scanFood(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: food nutrient %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("get food nutrient: %w", err)
	}
	return f, nil
}

// SearchByExactCategory matches the food category case-insensitively.
func (s *Store) SearchByExactCategory(ctx context.Context, category string, limit int) ([]*types.FoodNutrient, error) {
	return s.queryFoods(ctx,
		"SELECT "+foodColumns+" FROM food_nutrient WHERE lower(food_category) = lower(?) LIMIT ?",
		category, limit)
}

// SearchByFuzzyCategory splits the term into words and matches any of them
// as a substring of the category.
func (s *Store) SearchByFuzzyCategory(ctx context.Context, category string, limit int) ([]*types.FoodNutrient, error) {
	terms := strings.Fields(strings.ToLower(category))
	if len(terms) == 0 {
		return nil, nil
	}

	conditions := make([]string, 0, len(terms))
	args := make([]any, 0, len(terms)+1)
	for _, term := range terms {
		conditions = append(conditions, "lower(food_category) LIKE '%' || ? || '%'")
		args = append(args, term)
	}
	args = append(args, limit)

	query := "SELECT " + foodColumns + " FROM food_nutrient WHERE " +
		strings.Join(conditions, " OR ") + " LIMIT ?"
	return s.queryFoods(ctx, query, args...)
}

// SearchByFuzzyName matches per-word substrings of the food name, and of
// the detail column for terms longer than two characters.
func (s *Store) SearchByFuzzyName(ctx context.Context, foodName string, limit int) ([]*types.FoodNutrient, error) {
	terms := strings.Fields(strings.ToLower(foodName))
	if len(terms) == 0 {
		return nil, nil
	}

	var conditions []string
	var args []any
	for _, term := range terms {
		conditions = append(conditions, "lower(food_name) LIKE '%' || ? || '%'")
		args = append(args, term)
		if len(term) > 2 {
			conditions = append(conditions, "lower(food_detail) LIKE '%' || ? || '%'")
			args = append(args, term)
		}
	}
	args = append(args, limit)

	query := "SELECT " + foodColumns + " FROM food_nutrient WHERE " +
		strings.Join(conditions, " OR ") + " LIMIT ?"
	return s.queryFoods(ctx, query, args...)
}

// RecommendedIntakes returns every recommended-intake row for the given
// age and gender bracket.
func (s *Store) RecommendedIntakes(ctx context.Context, age int, gender string) ([]types.DailyNutrientIntake, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT age, gender, nutrient, intake, unit, category
		 FROM daily_nutrient_intake WHERE age = ? AND lower(gender) = lower(?)`,
		age, gender)
	if err != nil {
		return nil, fmt.Errorf("query recommended intakes: %w", err)
	}
	defer rows.Close()

	var intakes []types.DailyNutrientIntake
	for rows.Next() {
		var in types.DailyNutrientIntake
		if err := rows.Scan(&in.Age, &in.Gender, &in.Nutrient, &in.Intake, &in.Unit, &in.Category); err != nil {
			return nil, fmt.Errorf("scan recommended intake: %w", err)
		}
		intakes = append(intakes, in)
	}
	return intakes, rows.Err()
}

// InsertFood adds one food composition row. Used by the seeding scripts
// and tests.
func (s *Store) InsertFood(ctx context.Context, f *types.FoodNutrient) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO food_nutrient (`+foodColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		f.ID, f.FoodName, f.FoodCategory, f.FoodDetail,
		f.EnergyKJ, f.ProteinG, f.TotalFatG, f.SaturatedFatG,
		f.CarbsG, f.TotalSugarsG, f.DietaryFibreG,
		f.SodiumMg, f.CalciumMg, f.IronMg, f.ZincMg, f.MagnesiumMg, f.VitaminCMg)
	if err != nil {
		return fmt.Errorf("insert food nutrient: %w", err)
	}
	return nil
}

// InsertRecommendedIntake adds one recommended-intake row.
func (s *Store) InsertRecommendedIntake(ctx context.Context, in *types.DailyNutrientIntake) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO daily_nutrient_intake (age, gender, nutrient, intake, unit, category)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		in.Age, in.Gender, in.Nutrient, in.Intake, in.Unit, in.Category)
	if err != nil {
		return fmt.Errorf("insert recommended intake: %w", err)
	}
	return nil
}
