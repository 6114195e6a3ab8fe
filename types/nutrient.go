package types

// FoodNutrient is one row of the food composition table. Nutrient values
// are per 100g of the food item.
type FoodNutrient struct {
	ID            string
	FoodName      string
	FoodCategory  string
	FoodDetail    string
	EnergyKJ      float64
	ProteinG      float64
	TotalFatG     float64
	SaturatedFatG float64
	CarbsG        float64
	TotalSugarsG  float64
	DietaryFibreG float64
	SodiumMg      float64
	CalciumMg     float64
	IronMg        float64
	ZincMg        float64
	MagnesiumMg   float64
	VitaminCMg    float64
}

// FoodNutrientSummary is the trimmed view returned by search and mapping.
type FoodNutrientSummary struct {
	ID            string  `json:"id"`
	FoodName      string  `json:"food_name"`
	FoodCategory  string  `json:"food_category,omitempty"`
	EnergyKJ      float64 `json:"energy_with_fibre_kj"`
	ProteinG      float64 `json:"protein_g"`
	TotalFatG     float64 `json:"total_fat_g"`
	CarbsG        float64 `json:"carbs_with_sugar_alcohols_g"`
	DietaryFibreG float64 `json:"dietary_fibre_g"`
}

// FoodItemQuantity pairs mapped nutrient data with how many times the item
// was detected in the image.
type FoodItemQuantity struct {
	NutrientData FoodNutrientSummary `json:"nutrient_data"`
	Quantity     int                 `json:"quantity"`
}

// DailyNutrientIntake is one recommended-intake row keyed by age and gender.
type DailyNutrientIntake struct {
	Age      int
	Gender   string
	Nutrient string
	Intake   float64
	Unit     string
	Category string
}

// NutrientInfo describes the gap between recommended and actual intake for
// a single nutrient.
type NutrientInfo struct {
	Name              string  `json:"name"`
	RecommendedIntake float64 `json:"recommended_intake"`
	CurrentIntake     float64 `json:"current_intake"`
	Unit              string  `json:"unit"`
	Gap               float64 `json:"gap"`
	GapPercentage     float64 `json:"gap_percentage"`
	Category          string  `json:"category,omitempty"`
}

// NutrientGapResponse is returned by POST /nutrient/gap.
type NutrientGapResponse struct {
	NutrientGaps     map[string]NutrientInfo `json:"nutrient_gaps"`
	MissingNutrients []string                `json:"missing_nutrients"`
	ExcessNutrients  []string                `json:"excess_nutrients"`
	TotalCalories    float64                 `json:"total_calories"`
}

// FoodMappingRequest maps detected class names to nutrient data.
type FoodMappingRequest struct {
	DetectedItems []string `json:"detected_items" binding:"required"`
}

// FoodMappingResponse is returned by POST /food/map.
type FoodMappingResponse struct {
	MappedItems   map[string]FoodItemQuantity `json:"mapped_items"`
	UnmappedItems []string                    `json:"unmapped_items"`
}

// ChildProfile identifies the recommended-intake bracket for gap calculation.
type ChildProfile struct {
	Age    int    `json:"age" binding:"min=0,max=18"`
	Gender string `json:"gender" binding:"required,oneof=boy girl"`
}

// NutrientGapRequest is the body of POST /nutrient/gap.
type NutrientGapRequest struct {
	ChildProfile  ChildProfile `json:"child_profile" binding:"required"`
	IngredientIDs []string     `json:"ingredient_ids" binding:"required"`
}
