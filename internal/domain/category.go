package domain

import "strings"

type Category string

const (
	CategoryLiving        Category = "Living"
	CategoryPersonal      Category = "Personal"
	CategoryWork          Category = "Work"
	CategoryFood          Category = "Food"
	CategoryTransport     Category = "Transport"
	CategoryHealth        Category = "Health"
	CategoryEntertainment Category = "Entertainment"

	// CategoryOther groups expenses recorded without a category.
	CategoryOther Category = "Other"
)

type CategoryInfo struct {
	Name  Category
	Emoji string
	Label string
}

// Categories is the closed set offered by the guided expense flow, in display order.
var Categories = []CategoryInfo{
	{CategoryLiving, "🏠", "Sinh hoạt"},
	{CategoryPersonal, "👤", "Cá nhân"},
	{CategoryWork, "💼", "Công việc"},
	{CategoryFood, "🍜", "Ăn uống"},
	{CategoryTransport, "🚗", "Di chuyển"},
	{CategoryHealth, "🏥", "Sức khỏe"},
	{CategoryEntertainment, "🎮", "Giải trí"},
}

// LookupCategory matches a category name case-insensitively against the closed set.
func LookupCategory(value string) (CategoryInfo, bool) {
	value = strings.TrimSpace(value)
	for _, c := range Categories {
		if strings.EqualFold(string(c.Name), value) {
			return c, true
		}
	}
	return CategoryInfo{}, false
}

// CategoryEmoji returns the icon for any stored category, including free text.
func CategoryEmoji(value string) string {
	if c, ok := LookupCategory(value); ok {
		return c.Emoji
	}
	return "📝"
}
