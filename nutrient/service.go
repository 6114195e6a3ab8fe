package nutrient

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	ttlworker "github.com/FloatTech/ttl"
	"github.com/charmbracelet/log"

	"github.com/nutripeek/nutripeek-go/types"
)

const (
	mappingCacheTTL = 10 * time.Minute
	searchLimit     = 10
)

// nutrientColumn maps a FoodNutrient field to the display name and unit
// used by the recommended intake table.
type nutrientColumn struct {
	name  string
	unit  string
	value func(*types.FoodNutrient) float64
}

var nutrientColumns = []nutrientColumn{
	{"Energy(a)", "kJ", func(f *types.FoodNutrient) float64 { return f.EnergyKJ }},
	{"Protein", "g", func(f *types.FoodNutrient) float64 { return f.ProteinG }},
	{"Total Fat(c)", "g", func(f *types.FoodNutrient) float64 { return f.TotalFatG }},
	{"Saturated fat", "g", func(f *types.FoodNutrient) float64 { return f.SaturatedFatG }},
	{"Carbohydrate(c)", "g", func(f *types.FoodNutrient) float64 { return f.CarbsG }},
	{"Total sugars", "g", func(f *types.FoodNutrient) float64 { return f.TotalSugarsG }},
	{"Dietary Fibre", "g", func(f *types.FoodNutrient) float64 { return f.DietaryFibreG }},
	{"Sodium(e)", "mg", func(f *types.FoodNutrient) float64 { return f.SodiumMg }},
	{"Calcium", "mg", func(f *types.FoodNutrient) float64 { return f.CalciumMg }},
	{"Iron", "mg", func(f *types.FoodNutrient) float64 { return f.IronMg }},
	{"Zinc", "mg", func(f *types.FoodNutrient) float64 { return f.ZincMg }},
	{"Magnesium", "mg", func(f *types.FoodNutrient) float64 { return f.MagnesiumMg }},
	{"Vitamin C", "mg", func(f *types.FoodNutrient) float64 { return f.VitaminCMg }},
}

// Service maps detected food names to nutrient data and calculates
// nutritional gaps against recommended intakes.
type Service struct {
	store  *Store
	cache  *ttlworker.Cache[string, types.FoodNutrientSummary]
	logger *log.Logger
}

// NewService creates the service with a TTL cache in front of the mapping
// lookups; detected class names repeat a lot across uploads.
func NewService(store *Store, logger *log.Logger) *Service {
	if logger == nil {
		logger = log.Default()
	}
	return &Service{
		store:  store,
		cache:  ttlworker.NewCache[string, types.FoodNutrientSummary](mappingCacheTTL),
		logger: logger,
	}
}

func summarize(f *types.FoodNutrient) types.FoodNutrientSummary {
	return types.FoodNutrientSummary{
		ID:            f.ID,
		FoodName:      f.FoodName,
		FoodCategory:  f.FoodCategory,
		EnergyKJ:      f.EnergyKJ,
		ProteinG:      f.ProteinG,
		TotalFatG:     f.TotalFatG,
		CarbsG:        f.CarbsG,
		DietaryFibreG: f.DietaryFibreG,
	}
}

// lookup resolves one food name: exact category match first, then fuzzy
// category, then fuzzy name.
func (s *Service) lookup(ctx context.Context, name string) (types.FoodNutrientSummary, bool, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	if cached := s.cache.Get(key); cached.ID != "" {
		return cached, true, nil
	}

	for _, search := range []func() ([]*types.FoodNutrient, error){
		func() ([]*types.FoodNutrient, error) { return s.store.SearchByExactCategory(ctx, name, 1) },
		func() ([]*types.FoodNutrient, error) { return s.store.SearchByFuzzyCategory(ctx, name, 1) },
		func() ([]*types.FoodNutrient, error) { return s.store.SearchByFuzzyName(ctx, name, 1) },
	} {
		foods, err := search()
		if err != nil {
			return types.FoodNutrientSummary{}, false, err
		}
		if len(foods) > 0 {
			summary := summarize(foods[0])
			s.cache.Set(key, summary)
			return summary, true, nil
		}
	}
	return types.FoodNutrientSummary{}, false, nil
}

// MapFoodItems maps detected food names to nutrient data, counting
// duplicates into quantities. Names that match nothing come back in the
// unmapped list rather than failing the whole request.
func (s *Service) MapFoodItems(ctx context.Context, names []string) (map[string]types.FoodItemQuantity, []string, error) {
	counts := make(map[string]int, len(names))
	order := make([]string, 0, len(names))
	for _, name := range names {
		if counts[name] == 0 {
			order = append(order, name)
		}
		counts[name]++
	}

	mapped := make(map[string]types.FoodItemQuantity, len(order))
	unmapped := []string{}
	for _, name := range order {
		summary, ok, err := s.lookup(ctx, name)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to map food items: %w", err)
		}
		if !ok {
			unmapped = append(unmapped, name)
			continue
		}
		mapped[name] = types.FoodItemQuantity{NutrientData: summary, Quantity: counts[name]}
	}

	if len(unmapped) > 0 {
		s.logger.Debugf("Unmapped food items: %s", strings.Join(unmapped, ", "))
	}
	return mapped, unmapped, nil
}

// Search performs a fuzzy name search for the public search endpoint.
func (s *Service) Search(ctx context.Context, name string, limit int) ([]types.FoodNutrientSummary, error) {
	if limit <= 0 || limit > 100 {
		limit = searchLimit
	}
	foods, err := s.store.SearchByFuzzyName(ctx, name, limit)
	if err != nil {
		return nil, err
	}
	summaries := make([]types.FoodNutrientSummary, 0, len(foods))
	for _, f := range foods {
		summaries = append(summaries, summarize(f))
	}
	return summaries, nil
}

// CalculateGaps compares summed nutrient intakes of the chosen ingredients
// against the recommended daily intakes for the given age and gender.
func (s *Service) CalculateGaps(ctx context.Context, age int, gender string, ingredientIDs []string) (*types.NutrientGapResponse, error) {
	recommended, err := s.store.RecommendedIntakes(ctx, age, gender)
	if err != nil {
		return nil, err
	}
	if len(recommended) == 0 {
		return nil, fmt.Errorf("%w: no recommended nutrient intake data for age %d and gender %s",
			ErrNotFound, age, gender)
	}

	foods := make([]*types.FoodNutrient, 0, len(ingredientIDs))
	var missing []string
	for _, id := range ingredientIDs {
		food, err := s.store.GetByID(ctx, id)
		if errors.Is(err, ErrNotFound) {
			missing = append(missing, id)
			continue
		}
		if err != nil {
			return nil, err
		}
		foods = append(foods, food)
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: the following ingredients were not found: %s",
			ErrNotFound, strings.Join(missing, ", "))
	}

	intakes := sumIntakes(foods)

	gaps := make(map[string]types.NutrientInfo, len(recommended))
	missingNutrients := []string{}
	excessNutrients := []string{}
	totalCalories := intakes["Energy(a)"]

	for _, rec := range recommended {
		current := intakes[rec.Nutrient]
		gap := rec.Intake - current
		pct := 0.0
		if rec.Intake > 0 {
			pct = gap / rec.Intake * 100
		}
		gaps[rec.Nutrient] = types.NutrientInfo{
			Name:              rec.Nutrient,
			RecommendedIntake: rec.Intake,
			CurrentIntake:     current,
			Unit:              rec.Unit,
			Gap:               gap,
			GapPercentage:     pct,
			Category:          rec.Category,
		}
		if current == 0 {
			missingNutrients = append(missingNutrients, rec.Nutrient)
		} else if gap < 0 {
			excessNutrients = append(excessNutrients, rec.Nutrient)
		}
	}

	return &types.NutrientGapResponse{
		NutrientGaps:     gaps,
		MissingNutrients: missingNutrients,
		ExcessNutrients:  excessNutrients,
		TotalCalories:    totalCalories,
	}, nil
}

// sumIntakes totals each tracked nutrient across the selected foods.
func sumIntakes(foods []*types.FoodNutrient) map[string]float64 {
	intakes := make(map[string]float64, len(nutrientColumns))
	for _, food := range foods {
		for _, col := range nutrientColumns {
			intakes[col.name] += col.value(food)
		}
	}
	return intakes
}
