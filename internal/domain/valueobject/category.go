package valueobject

import "github.com/ignatzorin/foodrescue-backend/internal/pkg/apperror"

type FoodCategory string

const (
	FoodCategoryVegetarian    FoodCategory = "vegetarian"
	FoodCategoryNonVegetarian FoodCategory = "non-vegetarian"
	FoodCategorySnacks        FoodCategory = "snacks"
	FoodCategoryBeverages     FoodCategory = "beverages"
	FoodCategoryDairy         FoodCategory = "dairy"
	FoodCategoryBakery        FoodCategory = "bakery"
)

func FoodCategories() []FoodCategory {
	return []FoodCategory{
		FoodCategoryVegetarian,
		FoodCategoryNonVegetarian,
		FoodCategorySnacks,
		FoodCategoryBeverages,
		FoodCategoryDairy,
		FoodCategoryBakery,
	}
}

func (c FoodCategory) IsValid() bool {
	for _, known := range FoodCategories() {
		if c == known {
			return true
		}
	}
	return false
}

func NewFoodCategory(category string) (FoodCategory, error) {
	c := FoodCategory(category)
	if !c.IsValid() {
		return "", apperror.New(apperror.ErrCodeValidation, "некорректная категория еды")
	}
	return c, nil
}

type Urgency string

const (
	UrgencyUrgent   Urgency = "urgent"
	UrgencyMedium   Urgency = "medium"
	UrgencyFlexible Urgency = "flexible"
)
