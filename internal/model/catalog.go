package model

// Option catalog: the fixed, ordered long-term-goal labels selectable under
// each category. Defined once at startup and never mutated; callers must not
// modify the returned slices.
//
// The first orientation label is also the default long-term goal for a
// freshly created group.
var (
	orientationGoals = []string{
		"感官知覺/動作能力",
		"概念發展",
		"人導法",
		"自我防衛技巧",
		"手杖技巧",
		"獨走技能",
		"搭乘大眾運輸",
		"求助技能",
	}

	dailyLivingGoals = []string{
		"飲食技能",
		"衣著穿脫與整理",
		"個人衛生與儀容",
		"居家環境整理",
		"金錢與時間管理",
		"簡易烹飪",
		"社區生活應用",
	}
)

// OptionsFor returns the ordered long-term-goal labels for a category.
// Unrecognized categories fall back to the orientation list, so the result
// is always non-empty.
func OptionsFor(c Category) []string {
	if c == CategoryDailyLiving {
		return dailyLivingGoals
	}
	return orientationGoals
}

// DefaultGoal returns the label preselected for a newly created group under
// the given category.
func DefaultGoal(c Category) string {
	return OptionsFor(c)[0]
}
